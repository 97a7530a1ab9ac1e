package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meshup-app/server/internal/models"
	"github.com/meshup-app/server/internal/questgen"
)

type VerifyService struct {
	attendeeRepo models.AttendeeRepo
	questRepo    models.QuestRepo
	logger       *slog.Logger
}

func NewVerifyService(attendeeRepo models.AttendeeRepo, questRepo models.QuestRepo, logger *slog.Logger) *VerifyService {
	return &VerifyService{
		attendeeRepo: attendeeRepo,
		questRepo:    questRepo,
		logger:       logger,
	}
}

// VerifyCompletion checks whether the claimed second attendee fulfils
// the quest draft's tag requirement. Draft tags are stored lowercased;
// the candidate's tags are normalized the same way before intersecting,
// so matching is case-insensitive on both sides. On success the draft is
// marked ANSWERED with completion provenance and a COMPLETED assignment
// row is inserted for traceability. On any failure nothing is mutated.
func (vs *VerifyService) VerifyCompletion(ctx context.Context, questID uuid.UUID, completedWithUserID string) (*models.UserQuestion, error) {
	draft, err := vs.questRepo.GetQuestionByID(ctx, questID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDraftNotFound, err)
	}
	if draft.Metadata.EventID == uuid.Nil {
		return nil, fmt.Errorf("%w: quest carries no event reference", ErrDraftNotFound)
	}

	companion, err := vs.attendeeRepo.FindEventUser(ctx, completedWithUserID, draft.Metadata.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttendeeNotFound, err)
	}

	required := make(map[string]struct{}, len(draft.Metadata.Tags))
	for _, tag := range questgen.NormalizeTags(draft.Metadata.Tags) {
		required[tag] = struct{}{}
	}

	matched := false
	for _, tag := range questgen.NormalizeTags(companion.Tags) {
		if _, ok := required[tag]; ok {
			matched = true
			break
		}
	}
	if !matched {
		return nil, ErrNoMatchingTags
	}

	completion := models.CompletionRecord{
		CompletedWithUserID: companion.UserID,
		CompletedWithTags:   companion.Tags,
		CompletedAt:         time.Now(),
	}

	answer := draft.Answer
	if record, err := json.Marshal(completion); err == nil {
		answer = answer + "\n\nCompleted: " + string(record)
	}

	updated, err := vs.questRepo.MarkQuestionAnswered(ctx, draft.ID, answer, completion)
	if err != nil {
		return nil, fmt.Errorf("failed to record completion: %v", err)
	}

	now := completion.CompletedAt
	if _, err := vs.questRepo.CreateUserQuest(ctx, &models.UserQuest{
		QuestID:     draft.ID,
		EventUserID: companion.ID,
		Status:      models.UserQuestStatusCompleted,
		CompletedAt: &now,
	}); err != nil {
		// The draft is already marked; surface the traceability gap
		// without undoing the completion.
		vs.logger.Error("Failed to insert completed assignment row", "question_id", draft.ID, "error", err)
	}

	vs.logger.Info("Quest completion verified",
		"question_id", draft.ID,
		"completed_with", companion.UserID,
	)
	return updated, nil
}
