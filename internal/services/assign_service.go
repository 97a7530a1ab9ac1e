package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/meshup-app/server/internal/models"
)

// DefaultQuestsPerUser is how many cross-authored quests each attendee
// receives from one assignment run.
const DefaultQuestsPerUser = 3

type AssignService struct {
	attendeeRepo models.AttendeeRepo
	questRepo    models.QuestRepo
	rng          *rand.Rand
	logger       *slog.Logger
}

func NewAssignService(attendeeRepo models.AttendeeRepo, questRepo models.QuestRepo, logger *slog.Logger) *AssignService {
	return &AssignService{
		attendeeRepo: attendeeRepo,
		questRepo:    questRepo,
		// One-shot organizer action; reproducibility across runs is
		// not required.
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}
}

// AssignmentSummary reports how many assignments each recipient got.
type AssignmentSummary struct {
	TotalAssigned int            `json:"totalAssigned"`
	ByRecipient   map[string]int `json:"byRecipient"`
}

// AssignRandomQuests draws questsPerUser cross-authored drafts for every
// accepted attendee. Drafts authored by the recipient are filtered out
// of that recipient's view; an attendee whose filtered view is empty is
// skipped. Draws are without replacement within one recipient's view
// only; the same draft may be drawn again for a different recipient.
func (as *AssignService) AssignRandomQuests(ctx context.Context, eventID uuid.UUID, questsPerUser int) (*AssignmentSummary, error) {
	if questsPerUser <= 0 {
		questsPerUser = DefaultQuestsPerUser
	}

	accepted, err := as.attendeeRepo.ListEventUsersByStatus(ctx, eventID, models.AttendeeStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list accepted attendees: %v", err)
	}
	if len(accepted) < 2 {
		return nil, ErrNotEnoughAttendees
	}

	ids := make([]uuid.UUID, len(accepted))
	for i, eventUser := range accepted {
		ids[i] = eventUser.ID
	}

	pool, err := as.questRepo.ListQuestionsByEventUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load quest pool: %v", err)
	}
	if len(pool) == 0 {
		return nil, ErrNoAssignmentsCreated
	}

	summary := &AssignmentSummary{ByRecipient: make(map[string]int)}
	for _, recipient := range accepted {
		var view []*models.UserQuestion
		for _, draft := range pool {
			if draft.EventUserID != recipient.ID {
				view = append(view, draft)
			}
		}
		if len(view) == 0 {
			continue
		}

		for _, draft := range as.draw(view, questsPerUser) {
			if err := as.assignDraft(ctx, draft, recipient); err != nil {
				as.logger.Error("Failed to assign quest",
					"question_id", draft.ID,
					"recipient", recipient.ID,
					"error", err,
				)
				continue
			}
			summary.TotalAssigned++
			summary.ByRecipient[recipient.UserID]++
		}
	}

	if summary.TotalAssigned == 0 {
		return nil, ErrNoAssignmentsCreated
	}
	return summary, nil
}

// draw pops up to n uniformly random elements without replacement.
func (as *AssignService) draw(view []*models.UserQuestion, n int) []*models.UserQuestion {
	remaining := append([]*models.UserQuestion{}, view...)
	if n > len(remaining) {
		n = len(remaining)
	}

	drawn := make([]*models.UserQuestion, 0, n)
	for i := 0; i < n; i++ {
		idx := as.rng.Intn(len(remaining))
		drawn = append(drawn, remaining[idx])
		remaining[idx] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}
	return drawn
}

func (as *AssignService) assignDraft(ctx context.Context, draft *models.UserQuestion, recipient *models.EventUser) error {
	existing, err := as.questRepo.FindAssignedQuest(ctx, draft.ID, recipient.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		// Already materialized for this draft+recipient pairing.
		return nil
	}

	quest, err := as.questRepo.CreateQuest(ctx, &models.Quest{
		Title:       draft.Question,
		Description: draft.Answer,
		Points:      models.QuestPoints,
		Tags:        draft.Metadata.Tags,
		Metadata: models.QuestProvenance{
			SourceQuestionID:  draft.ID,
			AuthorEventUserID: draft.EventUserID,
			EventID:           draft.Metadata.EventID,
		},
	})
	if err != nil {
		return err
	}

	_, err = as.questRepo.CreateUserQuest(ctx, &models.UserQuest{
		QuestID:     quest.ID,
		EventUserID: recipient.ID,
		Status:      models.UserQuestStatusAssigned,
	})
	return err
}
