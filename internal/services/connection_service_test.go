package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/meshup-app/server/internal/models"
)

func connectionFixture() (*ConnectionService, *fakeConnectionRepo, *fakeAttendeeRepo, *fakeQuestRepo, uuid.UUID) {
	eventID := uuid.New()
	sender := &models.EventUser{
		ID:      uuid.New(),
		UserID:  "0xsender",
		EventID: eventID,
		Status:  models.AttendeeStatusAccepted,
		Tags:    []string{"defi", "nft"},
	}
	receiver := &models.EventUser{
		ID:      uuid.New(),
		UserID:  "0xreceiver",
		EventID: eventID,
		Status:  models.AttendeeStatusAccepted,
		Tags:    []string{"DeFi", "gaming"},
	}
	attendeeRepo := &fakeAttendeeRepo{eventUsers: []*models.EventUser{sender, receiver}}
	connectionRepo := &fakeConnectionRepo{}
	questRepo := newFakeQuestRepo()
	userRepo := &fakeUserRepo{}

	verifyService := NewVerifyService(attendeeRepo, questRepo, testLogger())
	cs := NewConnectionService(connectionRepo, attendeeRepo, userRepo, verifyService, testLogger())
	return cs, connectionRepo, attendeeRepo, questRepo, eventID
}

func TestSendRequestCreatesPendingConnection(t *testing.T) {
	cs, _, _, _, eventID := connectionFixture()

	conn, err := cs.SendRequest(context.Background(), eventID, "0xsender", "0xreceiver", nil)
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}
	if conn.Status != models.ConnectionStatusPending {
		t.Errorf("connection status = %q, want PENDING", conn.Status)
	}
}

func TestSendRequestRejectsDuplicates(t *testing.T) {
	cs, _, _, _, eventID := connectionFixture()

	if _, err := cs.SendRequest(context.Background(), eventID, "0xsender", "0xreceiver", nil); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	// The reverse direction counts as the same pairing.
	if _, err := cs.SendRequest(context.Background(), eventID, "0xreceiver", "0xsender", nil); err == nil {
		t.Fatal("duplicate connection request was accepted")
	}
}

func TestSendRequestRequiresAcceptedAttendees(t *testing.T) {
	cs, _, attendeeRepo, _, eventID := connectionFixture()

	pending := &models.EventUser{
		ID:      uuid.New(),
		UserID:  "0xpending",
		EventID: eventID,
		Status:  models.AttendeeStatusPending,
		Tags:    []string{"web3"},
	}
	attendeeRepo.eventUsers = append(attendeeRepo.eventUsers, pending)

	if _, err := cs.SendRequest(context.Background(), eventID, "0xsender", "0xpending", nil); err == nil {
		t.Fatal("request toward a pending attendee was accepted")
	}
	if _, err := cs.SendRequest(context.Background(), eventID, "0xsender", "0xsender", nil); err == nil {
		t.Fatal("self-connection was accepted")
	}
	if _, err := cs.SendRequest(context.Background(), eventID, "0xsender", "0xghost", nil); err == nil {
		t.Fatal("request toward an unregistered user was accepted")
	}
}

func TestUpdateStatusAcceptVerifiesQuest(t *testing.T) {
	cs, _, attendeeRepo, questRepo, eventID := connectionFixture()

	sender, _ := attendeeRepo.FindEventUser(context.Background(), "0xsender", eventID)
	draft := &models.UserQuestion{
		ID:          uuid.New(),
		EventUserID: sender.ID,
		Question:    "Find a DeFi Builder",
		Answer:      "Strike up a conversation with someone building in decentralized finance.",
		Status:      models.QuestionStatusPending,
		Metadata: models.QuestionMetadata{
			Tags:    []string{"defi"},
			EventID: eventID,
			UserID:  sender.UserID,
		},
	}
	questRepo.questions = append(questRepo.questions, draft)

	conn, err := cs.SendRequest(context.Background(), eventID, "0xsender", "0xreceiver", &draft.ID)
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	updated, err := cs.UpdateStatus(context.Background(), conn.ID, models.ConnectionStatusAccepted)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != models.ConnectionStatusAccepted {
		t.Errorf("connection status = %q, want ACCEPTED", updated.Status)
	}

	// Accepting the connection verified the pinned quest: the receiver
	// carries "DeFi", matching the draft's "defi" requirement.
	verified, _ := questRepo.GetQuestionByID(context.Background(), draft.ID)
	if verified.Status != models.QuestionStatusAnswered {
		t.Errorf("pinned quest status = %q, want ANSWERED", verified.Status)
	}
}

func TestUpdateStatusRejectLeavesQuestUntouched(t *testing.T) {
	cs, _, attendeeRepo, questRepo, eventID := connectionFixture()

	sender, _ := attendeeRepo.FindEventUser(context.Background(), "0xsender", eventID)
	draft := &models.UserQuestion{
		ID:          uuid.New(),
		EventUserID: sender.ID,
		Question:    "Find a DeFi Builder",
		Answer:      "Strike up a conversation with someone building in decentralized finance.",
		Status:      models.QuestionStatusPending,
		Metadata: models.QuestionMetadata{
			Tags:    []string{"defi"},
			EventID: eventID,
			UserID:  sender.UserID,
		},
	}
	questRepo.questions = append(questRepo.questions, draft)

	conn, err := cs.SendRequest(context.Background(), eventID, "0xsender", "0xreceiver", &draft.ID)
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	if _, err := cs.UpdateStatus(context.Background(), conn.ID, models.ConnectionStatusRejected); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if draft.Status != models.QuestionStatusPending {
		t.Errorf("quest was verified on a rejected connection")
	}

	// A settled connection cannot flip again.
	if _, err := cs.UpdateStatus(context.Background(), conn.ID, models.ConnectionStatusAccepted); err == nil {
		t.Fatal("status update on a settled connection was accepted")
	}
}

func TestMatchedInterestsPreservesCasing(t *testing.T) {
	got := matchedInterests([]string{"DeFi", "NFT", "Music"}, []string{"defi", "music", "cooking"})
	if len(got) != 2 || got[0] != "DeFi" || got[1] != "Music" {
		t.Errorf("matchedInterests = %v, want [DeFi Music]", got)
	}
}
