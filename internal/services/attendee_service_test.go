package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meshup-app/server/internal/background"
	"github.com/meshup-app/server/internal/models"
)

func attendeeFixture() (*AttendeeService, *fakeAttendeeRepo, *fakeQuestRepo, *fakeJobRepo, *models.Event) {
	event := &models.Event{
		ID:          uuid.New(),
		Name:        "ETH Accra",
		Slug:        "eth-accra",
		Description: "Builders across West Africa.",
		Tags:        []string{"web3"},
	}
	eventRepo := &fakeEventRepo{events: []*models.Event{event}}
	attendeeRepo := &fakeAttendeeRepo{}
	questRepo := newFakeQuestRepo()
	userRepo := &fakeUserRepo{}
	jobRepo := newFakeJobRepo()

	generator := &fakeGenerator{response: threeQuestResponse}
	questService := NewQuestService(attendeeRepo, eventRepo, questRepo, userRepo, generator, testLogger())
	runner := background.NewRunner(testLogger(), jobRepo)
	ats := NewAttendeeService(attendeeRepo, eventRepo, userRepo, questService, runner, testLogger())
	return ats, attendeeRepo, questRepo, jobRepo, event
}

func TestRegisterCreatesPendingAttendee(t *testing.T) {
	ats, _, _, _, event := attendeeFixture()

	eventUser, err := ats.Register(context.Background(), RegistrationInput{
		UserID:  "0xabc",
		EventID: event.ID,
		Bio:     "Protocol engineer.",
		Tags:    []string{"DeFi", "Music"},
		Name:    "Ama",
		Country: "Ghana",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if eventUser.Status != models.AttendeeStatusPending {
		t.Errorf("attendee status = %q, want PENDING", eventUser.Status)
	}
	if eventUser.ID == uuid.Nil {
		t.Error("attendee was not assigned an ID")
	}
}

func TestRegisterUnknownEvent(t *testing.T) {
	ats, _, _, _, _ := attendeeFixture()

	_, err := ats.Register(context.Background(), RegistrationInput{
		UserID:  "0xabc",
		EventID: uuid.New(),
	})
	if err == nil {
		t.Fatal("registration against an unknown event was accepted")
	}
}

func TestUpdateStatusAcceptTriggersGeneration(t *testing.T) {
	ats, _, questRepo, jobRepo, event := attendeeFixture()

	eventUser, err := ats.Register(context.Background(), RegistrationInput{
		UserID:  "0xabc",
		EventID: event.ID,
		Tags:    []string{"DeFi"},
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	updated, processing, err := ats.UpdateStatus(context.Background(), eventUser.ID, models.AttendeeStatusAccepted)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if !processing {
		t.Error("acceptance did not report background processing")
	}
	if updated.Status != models.AttendeeStatusAccepted {
		t.Errorf("attendee status = %q, want ACCEPTED", updated.Status)
	}

	// Wait for the detached generation job to settle.
	taskName := fmt.Sprintf("quest-generation-for-user-%s", eventUser.ID)
	deadline := time.Now().Add(2 * time.Second)
	var job *models.Job
	for time.Now().Before(deadline) {
		job, _ = jobRepo.GetJob(context.Background(), taskName)
		if job != nil && (job.Status == models.JobStatusCompleted || job.Status == models.JobStatusFailed) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if job == nil || job.Status != models.JobStatusCompleted {
		t.Fatalf("generation job did not complete: %+v", job)
	}

	count, _ := questRepo.CountQuestionsByEventUser(context.Background(), eventUser.ID)
	if count != 3 {
		t.Errorf("generated %d drafts, want 3", count)
	}
}

func TestUpdateStatusRejectSkipsGeneration(t *testing.T) {
	ats, _, _, jobRepo, event := attendeeFixture()

	eventUser, err := ats.Register(context.Background(), RegistrationInput{
		UserID:  "0xabc",
		EventID: event.ID,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, processing, err := ats.UpdateStatus(context.Background(), eventUser.ID, models.AttendeeStatusRejected)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if processing {
		t.Error("rejection reported background processing")
	}
	if len(jobRepo.jobs) != 0 {
		t.Errorf("rejection recorded %d background jobs", len(jobRepo.jobs))
	}

	if _, _, err := ats.UpdateStatus(context.Background(), eventUser.ID, "MAYBE"); err == nil {
		t.Fatal("invalid status value was accepted")
	}
}

func TestNfcRegistrationAndVerification(t *testing.T) {
	ats, _, _, _, event := attendeeFixture()

	first, err := ats.Register(context.Background(), RegistrationInput{
		UserID:  "0xabc",
		EventID: event.ID,
		Tags:    []string{"DeFi", "Music"},
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := ats.Register(context.Background(), RegistrationInput{
		UserID:  "0xdef",
		EventID: event.ID,
	}); err != nil {
		t.Fatalf("second Register failed: %v", err)
	}

	if _, err := ats.RegisterNfc(context.Background(), first.UserID, event.Slug, "04:A2:B9"); err != nil {
		t.Fatalf("RegisterNfc failed: %v", err)
	}

	// The same tag cannot be bound to a second attendee.
	if _, err := ats.RegisterNfc(context.Background(), "0xdef", event.Slug, "04:A2:B9"); err == nil {
		t.Fatal("duplicate NFC binding was accepted")
	}
	// Re-binding the same tag to its owner is fine.
	if _, err := ats.RegisterNfc(context.Background(), first.UserID, event.Slug, "04:A2:B9"); err != nil {
		t.Fatalf("re-binding own tag failed: %v", err)
	}

	identity, err := ats.VerifyNfc(context.Background(), event.Slug, "04:A2:B9")
	if err != nil {
		t.Fatalf("VerifyNfc failed: %v", err)
	}
	if identity.Address != first.UserID {
		t.Errorf("identity address = %q, want %q", identity.Address, first.UserID)
	}
	if identity.PrimaryTag != "DeFi" {
		t.Errorf("primary tag = %q, want DeFi", identity.PrimaryTag)
	}

	if _, err := ats.VerifyNfc(context.Background(), event.Slug, "FF:FF:FF"); err == nil {
		t.Fatal("unknown tag verified")
	}
}
