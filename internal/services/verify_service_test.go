package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/meshup-app/server/internal/models"
)

func verifyFixture() (*VerifyService, *fakeAttendeeRepo, *fakeQuestRepo, *models.UserQuestion, *models.EventUser) {
	eventID := uuid.New()
	owner := &models.EventUser{
		ID:      uuid.New(),
		UserID:  "0xowner",
		EventID: eventID,
		Status:  models.AttendeeStatusAccepted,
		Tags:    []string{"defi", "nft"},
	}
	companion := &models.EventUser{
		ID:      uuid.New(),
		UserID:  "0xcompanion",
		EventID: eventID,
		Status:  models.AttendeeStatusAccepted,
		Tags:    []string{"DeFi", "gaming"},
	}
	attendeeRepo := &fakeAttendeeRepo{eventUsers: []*models.EventUser{owner, companion}}

	draft := &models.UserQuestion{
		ID:          uuid.New(),
		EventUserID: owner.ID,
		Question:    "Find a DeFi Builder",
		Answer:      "Strike up a conversation with someone building in decentralized finance.",
		Status:      models.QuestionStatusPending,
		Metadata: models.QuestionMetadata{
			Tags:    []string{"defi", "nft"},
			EventID: eventID,
			UserID:  owner.UserID,
		},
	}
	questRepo := newFakeQuestRepo()
	questRepo.questions = append(questRepo.questions, draft)

	vs := NewVerifyService(attendeeRepo, questRepo, testLogger())
	return vs, attendeeRepo, questRepo, draft, companion
}

func TestVerifyCompletionMatchesCaseInsensitively(t *testing.T) {
	vs, _, questRepo, draft, companion := verifyFixture()

	// Companion carries "DeFi"; the draft requires lowercase "defi".
	updated, err := vs.VerifyCompletion(context.Background(), draft.ID, companion.UserID)
	if err != nil {
		t.Fatalf("VerifyCompletion failed: %v", err)
	}

	if updated.Status != models.QuestionStatusAnswered {
		t.Errorf("draft status = %q, want ANSWERED", updated.Status)
	}
	if updated.Metadata.Completion == nil {
		t.Fatal("completion record was not written")
	}
	if updated.Metadata.Completion.CompletedWithUserID != companion.UserID {
		t.Errorf("completion recorded with %q, want %q",
			updated.Metadata.Completion.CompletedWithUserID, companion.UserID)
	}
	if !strings.Contains(updated.Answer, "Completed:") {
		t.Error("answer was not annotated with the completion record")
	}

	assignments, _ := questRepo.ListUserQuestsByEventUser(context.Background(), companion.ID)
	if len(assignments) != 1 {
		t.Fatalf("expected 1 completed assignment row, got %d", len(assignments))
	}
	if assignments[0].Status != models.UserQuestStatusCompleted {
		t.Errorf("assignment status = %q, want COMPLETED", assignments[0].Status)
	}
	if assignments[0].CompletedAt == nil {
		t.Error("completed assignment is missing its timestamp")
	}
}

func TestVerifyCompletionNoMatchingTags(t *testing.T) {
	vs, attendeeRepo, questRepo, draft, _ := verifyFixture()

	stranger := &models.EventUser{
		ID:      uuid.New(),
		UserID:  "0xstranger",
		EventID: draft.Metadata.EventID,
		Status:  models.AttendeeStatusAccepted,
		Tags:    []string{"cooking", "hiking"},
	}
	attendeeRepo.eventUsers = append(attendeeRepo.eventUsers, stranger)

	_, err := vs.VerifyCompletion(context.Background(), draft.ID, stranger.UserID)
	if !errors.Is(err, ErrNoMatchingTags) {
		t.Fatalf("expected ErrNoMatchingTags, got %v", err)
	}

	// Nothing mutated on the failure path.
	if draft.Status != models.QuestionStatusPending {
		t.Errorf("draft status changed to %q on failed verification", draft.Status)
	}
	if draft.Metadata.Completion != nil {
		t.Error("completion record written on failed verification")
	}
	if len(questRepo.userQuests) != 0 {
		t.Errorf("%d assignment rows inserted on failed verification", len(questRepo.userQuests))
	}
}

func TestVerifyCompletionUnknownDraft(t *testing.T) {
	vs, _, _, _, companion := verifyFixture()

	_, err := vs.VerifyCompletion(context.Background(), uuid.New(), companion.UserID)
	if !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}
}

func TestVerifyCompletionCompanionNotRegistered(t *testing.T) {
	vs, _, _, draft, _ := verifyFixture()

	_, err := vs.VerifyCompletion(context.Background(), draft.ID, "0xnobody")
	if !errors.Is(err, ErrAttendeeNotFound) {
		t.Fatalf("expected ErrAttendeeNotFound, got %v", err)
	}
}
