package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meshup-app/server/internal/models"
	"github.com/meshup-app/server/internal/questgen"
)

// DefaultQuestCount is how many quests one generation batch asks for.
const DefaultQuestCount = 3

type QuestService struct {
	attendeeRepo models.AttendeeRepo
	eventRepo    models.EventRepo
	questRepo    models.QuestRepo
	userRepo     models.UserRepo
	generator    questgen.Generator
	logger       *slog.Logger
}

func NewQuestService(
	attendeeRepo models.AttendeeRepo,
	eventRepo models.EventRepo,
	questRepo models.QuestRepo,
	userRepo models.UserRepo,
	generator questgen.Generator,
	logger *slog.Logger,
) *QuestService {
	return &QuestService{
		attendeeRepo: attendeeRepo,
		eventRepo:    eventRepo,
		questRepo:    questRepo,
		userRepo:     userRepo,
		generator:    generator,
		logger:       logger,
	}
}

// GenerationResult reports a batch outcome with partial failures as
// first-class data. The operation succeeded iff Created is non-empty.
type GenerationResult struct {
	Created []*models.UserQuestion `json:"created"`
	Failed  []string               `json:"failed,omitempty"`
}

// EventGenerationResult is one attendee's slot in a bulk run.
type EventGenerationResult struct {
	UserID  string            `json:"userId"`
	Success bool              `json:"success"`
	Result  *GenerationResult `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// GenerateForAttendee runs the full per-attendee pipeline: load profile
// and event context, render the prompt, call the generator, parse the
// response, filter tags and persist one draft per section.
func (qs *QuestService) GenerateForAttendee(ctx context.Context, eventUserID uuid.UUID, questCount int) (*GenerationResult, error) {
	if questCount <= 0 {
		questCount = DefaultQuestCount
	}

	eventUser, err := qs.attendeeRepo.GetEventUserByID(ctx, eventUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttendeeNotFound, err)
	}

	event, err := qs.eventRepo.GetEventByID(ctx, eventUser.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEventNotFound, err)
	}

	// Fast path before taking the generation claim.
	count, err := qs.questRepo.CountQuestionsByEventUser(ctx, eventUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing questions: %v", err)
	}
	if count > 0 {
		return nil, ErrAlreadyHasQuests
	}

	// The atomic claim is what actually enforces at-most-one batch;
	// the loser of a concurrent double trigger stops here.
	claimed, err := qs.questRepo.ClaimGeneration(ctx, eventUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim generation: %v", err)
	}
	if !claimed {
		return nil, ErrAlreadyHasQuests
	}

	result, err := qs.generate(ctx, eventUser, event, questCount)
	if err != nil || len(result.Created) == 0 {
		// Nothing persisted; free the claim so the action can be
		// re-triggered by hand.
		if relErr := qs.questRepo.ReleaseGeneration(ctx, eventUserID); relErr != nil {
			qs.logger.Error("Failed to release generation claim", "event_user_id", eventUserID, "error", relErr)
		}
	}
	return result, err
}

func (qs *QuestService) generate(ctx context.Context, eventUser *models.EventUser, event *models.Event, questCount int) (*GenerationResult, error) {
	userLocation := ""
	if user, err := qs.userRepo.GetUserByAddress(ctx, eventUser.UserID); err == nil {
		userLocation = user.Country
	}

	prompt := questgen.RenderPrompt(questgen.PromptInput{
		EventName:          event.Name,
		EventDescription:   event.Description,
		EventTags:          event.Tags,
		UserInterests:      eventUser.Tags,
		MeetingPreferences: eventUser.MeetingPreferences,
		UserLocation:       userLocation,
		QuestCount:         questCount,
	})

	questsText, err := qs.generator.Generate(ctx, prompt)
	if err != nil {
		qs.logger.Error("Quest generation call failed", "event_user_id", eventUser.ID, "error", err)
		return &GenerationResult{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	sections := questgen.ParseQuests(questsText)
	if len(sections) == 0 {
		return &GenerationResult{}, ErrNoQuestsParsed
	}

	reference := append(append([]string{}, eventUser.Tags...), event.Tags...)

	result := &GenerationResult{}
	for _, section := range sections {
		tags := questgen.MatchTags(section.RawTags, reference, questgen.CommonTags)
		if len(tags) == 0 {
			// Never persist a tagless quest; fall back to the
			// attendee's own leading interests.
			n := len(eventUser.Tags)
			if n > 3 {
				n = 3
			}
			tags = questgen.NormalizeTags(eventUser.Tags[:n])
		}

		question := &models.UserQuestion{
			EventUserID: eventUser.ID,
			Question:    section.Title,
			Answer:      section.Description,
			Status:      models.QuestionStatusPending,
			Metadata: models.QuestionMetadata{
				Type:          "networking_quest",
				GeneratedAt:   time.Now(),
				UserInterests: eventUser.Tags,
				EventTags:     event.Tags,
				UserLocation:  userLocation,
				Tags:          tags,
				EventID:       event.ID,
				UserID:        eventUser.UserID,
			},
		}

		created, err := qs.questRepo.CreateQuestion(ctx, question)
		if err != nil {
			qs.logger.Error("Failed to create quest", "event_user_id", eventUser.ID, "title", section.Title, "error", err)
			result.Failed = append(result.Failed, fmt.Sprintf("%s: %v", section.Title, err))
			continue
		}
		qs.logger.Info("Created quest", "question_id", created.ID, "event_user_id", eventUser.ID)
		result.Created = append(result.Created, created)
	}

	if len(result.Created) == 0 {
		return result, ErrAllWritesFailed
	}
	return result, nil
}

// GenerateForEvent fans the per-attendee flow out over every accepted,
// draft-less attendee of the event. Individual failures never abort the
// batch.
func (qs *QuestService) GenerateForEvent(ctx context.Context, eventID uuid.UUID, questCount int) ([]EventGenerationResult, error) {
	accepted, err := qs.attendeeRepo.ListEventUsersByStatus(ctx, eventID, models.AttendeeStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list accepted attendees: %v", err)
	}

	var results []EventGenerationResult
	for _, eventUser := range accepted {
		count, err := qs.questRepo.CountQuestionsByEventUser(ctx, eventUser.ID)
		if err == nil && count > 0 {
			continue
		}

		res, genErr := qs.GenerateForAttendee(ctx, eventUser.ID, questCount)
		entry := EventGenerationResult{UserID: eventUser.UserID, Success: genErr == nil, Result: res}
		if genErr != nil {
			entry.Error = genErr.Error()
		}
		results = append(results, entry)
	}
	return results, nil
}

// GenerationStatus supports the polling contract for detached
// generation runs.
type GenerationStatus struct {
	IsComplete    bool   `json:"isComplete"`
	QuestionCount int64  `json:"questionCount"`
	JobStatus     string `json:"jobStatus,omitempty"`
}

func (qs *QuestService) Status(ctx context.Context, eventUserID uuid.UUID, job *models.Job) (*GenerationStatus, error) {
	count, err := qs.questRepo.CountQuestionsByEventUser(ctx, eventUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check question generation status: %v", err)
	}

	status := &GenerationStatus{
		IsComplete:    count > 0,
		QuestionCount: count,
	}
	if job != nil {
		status.JobStatus = job.Status
	}
	return status, nil
}

// QuestBoard is everything one attendee sees on their quest screen.
type QuestBoard struct {
	Questions   []*models.UserQuestion `json:"questions"`
	Assignments []*models.UserQuest    `json:"assignments"`
}

func (qs *QuestService) BoardForAttendee(ctx context.Context, eventUserID uuid.UUID) (*QuestBoard, error) {
	questions, err := qs.questRepo.ListQuestionsByEventUser(ctx, eventUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %v", err)
	}
	assignments, err := qs.questRepo.ListUserQuestsByEventUser(ctx, eventUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %v", err)
	}
	return &QuestBoard{Questions: questions, Assignments: assignments}, nil
}
