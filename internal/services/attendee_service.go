package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/meshup-app/server/internal/background"
	"github.com/meshup-app/server/internal/models"
)

type AttendeeService struct {
	attendeeRepo models.AttendeeRepo
	eventRepo    models.EventRepo
	userRepo     models.UserRepo
	questService *QuestService
	runner       *background.Runner
	logger       *slog.Logger
}

func NewAttendeeService(
	attendeeRepo models.AttendeeRepo,
	eventRepo models.EventRepo,
	userRepo models.UserRepo,
	questService *QuestService,
	runner *background.Runner,
	logger *slog.Logger,
) *AttendeeService {
	return &AttendeeService{
		attendeeRepo: attendeeRepo,
		eventRepo:    eventRepo,
		userRepo:     userRepo,
		questService: questService,
		runner:       runner,
		logger:       logger,
	}
}

// RegistrationInput is the registration form payload.
type RegistrationInput struct {
	UserID             string            `json:"user_id" validate:"required"`
	EventID            uuid.UUID         `json:"event_id" validate:"required"`
	Bio                string            `json:"bio"`
	Socials            map[string]string `json:"socials"`
	Tags               []string          `json:"tags"`
	MeetingPreferences []string          `json:"meeting_preferences"`
	Name               string            `json:"name"`
	Country            string            `json:"country"`
	Address            string            `json:"address"`
}

// Register creates the profile row if the wallet is new, then the
// attendee record with PENDING status.
func (ats *AttendeeService) Register(ctx context.Context, input RegistrationInput) (*models.EventUser, error) {
	if err := models.Validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid registration data: %v", err)
	}

	if _, err := ats.eventRepo.GetEventByID(ctx, input.EventID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEventNotFound, err)
	}

	address := input.Address
	if address == "" {
		address = input.UserID
	}
	if _, err := ats.userRepo.EnsureUser(ctx, &models.User{
		Address: address,
		Name:    input.Name,
		Country: input.Country,
	}); err != nil {
		return nil, fmt.Errorf("failed to ensure user profile: %v", err)
	}

	return ats.attendeeRepo.CreateEventUser(ctx, &models.EventUser{
		UserID:             input.UserID,
		EventID:            input.EventID,
		Bio:                input.Bio,
		Socials:            input.Socials,
		Tags:               input.Tags,
		MeetingPreferences: input.MeetingPreferences,
		Status:             models.AttendeeStatusPending,
	})
}

// UpdateStatus flips an attendee's approval status. Flipping to
// ACCEPTED hands quest generation to the background runner and returns
// immediately; the caller polls the status endpoint for the outcome.
func (ats *AttendeeService) UpdateStatus(ctx context.Context, eventUserID uuid.UUID, status string) (*models.EventUser, bool, error) {
	if status != models.AttendeeStatusAccepted && status != models.AttendeeStatusRejected {
		return nil, false, fmt.Errorf("status must be %s or %s", models.AttendeeStatusAccepted, models.AttendeeStatusRejected)
	}

	updated, err := ats.attendeeRepo.UpdateEventUserStatus(ctx, eventUserID, status)
	if err != nil {
		return nil, false, fmt.Errorf("failed to update user status: %v", err)
	}

	if status != models.AttendeeStatusAccepted {
		return updated, false, nil
	}

	taskName := fmt.Sprintf("quest-generation-for-user-%s", updated.ID)
	ats.runner.Run(taskName, func(ctx context.Context) (map[string]interface{}, error) {
		result, err := ats.questService.GenerateForAttendee(ctx, updated.ID, DefaultQuestCount)
		if err != nil {
			return nil, fmt.Errorf("quest generation failed: %w", err)
		}
		return map[string]interface{}{
			"questCount": len(result.Created),
			"userId":     updated.ID.String(),
		}, nil
	})

	return updated, true, nil
}

func (ats *AttendeeService) Remove(ctx context.Context, userID string, eventID uuid.UUID) error {
	if strings.TrimSpace(userID) == "" || eventID == uuid.Nil {
		return fmt.Errorf("invalid user or event ID")
	}
	return ats.attendeeRepo.DeleteEventUser(ctx, userID, eventID)
}

// RegisterNfc binds a physical tag to an attendee, rejecting tags
// already bound to someone else in the same event.
func (ats *AttendeeService) RegisterNfc(ctx context.Context, userID, eventSlug, nfcAddress string) (*models.EventUser, error) {
	if strings.TrimSpace(nfcAddress) == "" {
		return nil, fmt.Errorf("NFC address is required")
	}

	event, err := ats.eventRepo.GetEventBySlug(ctx, eventSlug)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEventNotFound, err)
	}

	eventUser, err := ats.attendeeRepo.FindEventUser(ctx, userID, event.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttendeeNotFound, err)
	}

	if existing, err := ats.attendeeRepo.FindByNfcAddress(ctx, nfcAddress, event.ID); err == nil && existing.ID != eventUser.ID {
		return nil, fmt.Errorf("this NFC tag is already registered to another user")
	}

	return ats.attendeeRepo.SetNfcAddress(ctx, eventUser.ID, nfcAddress)
}

// NfcIdentity mirrors the QR-code payload shape.
type NfcIdentity struct {
	Address    string   `json:"address"`
	PrimaryTag string   `json:"primaryTag"`
	AllTags    []string `json:"allTags"`
}

func (ats *AttendeeService) VerifyNfc(ctx context.Context, eventSlug, nfcAddress string) (*NfcIdentity, error) {
	event, err := ats.eventRepo.GetEventBySlug(ctx, eventSlug)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEventNotFound, err)
	}

	eventUser, err := ats.attendeeRepo.FindByNfcAddress(ctx, nfcAddress, event.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttendeeNotFound, err)
	}

	identity := &NfcIdentity{
		Address: eventUser.UserID,
		AllTags: eventUser.Tags,
	}
	if len(eventUser.Tags) > 0 {
		identity.PrimaryTag = eventUser.Tags[0]
	}
	return identity, nil
}
