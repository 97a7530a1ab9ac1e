package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meshup-app/server/internal/models"
)

type ConnectionService struct {
	connectionRepo models.ConnectionRepo
	attendeeRepo   models.AttendeeRepo
	userRepo       models.UserRepo
	verifyService  *VerifyService
	logger         *slog.Logger
}

func NewConnectionService(connectionRepo models.ConnectionRepo, attendeeRepo models.AttendeeRepo, userRepo models.UserRepo, verifyService *VerifyService, logger *slog.Logger) *ConnectionService {
	return &ConnectionService{
		connectionRepo: connectionRepo,
		attendeeRepo:   attendeeRepo,
		userRepo:       userRepo,
		verifyService:  verifyService,
		logger:         logger,
	}
}

// SendRequest creates a pending connection between two accepted attendees
// of the same event. QuestID is optional and pins the connection to a quest
// that gets verified once the receiver accepts.
func (cs *ConnectionService) SendRequest(ctx context.Context, eventID uuid.UUID, senderUserID, receiverUserID string, questID *uuid.UUID) (*models.Connection, error) {
	if senderUserID == receiverUserID {
		return nil, fmt.Errorf("cannot send a connection request to yourself")
	}

	sender, err := cs.attendeeRepo.FindEventUser(ctx, senderUserID, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: sender is not registered for this event", ErrAttendeeNotFound)
	}
	receiver, err := cs.attendeeRepo.FindEventUser(ctx, receiverUserID, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: receiver is not registered for this event", ErrAttendeeNotFound)
	}
	if sender.Status != models.AttendeeStatusAccepted || receiver.Status != models.AttendeeStatusAccepted {
		return nil, fmt.Errorf("both attendees must be accepted before connecting")
	}

	existing, err := cs.connectionRepo.FindConnectionBetween(ctx, sender.ID, receiver.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing connection: %v", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("a connection between these attendees already exists")
	}

	connection := &models.Connection{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		QuestID:    questID,
	}
	connection.BeforeCreate()

	created, err := cs.connectionRepo.CreateConnection(ctx, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection: %v", err)
	}
	cs.logger.Info("connection request sent", "connection_id", created.ID, "sender", sender.ID, "receiver", receiver.ID)
	return created, nil
}

func (cs *ConnectionService) PendingRequests(ctx context.Context, eventUserID uuid.UUID) ([]*models.Connection, error) {
	if eventUserID == uuid.Nil {
		return nil, fmt.Errorf("invalid event user ID")
	}
	return cs.connectionRepo.ListConnectionsByStatus(ctx, eventUserID, models.ConnectionStatusPending, 0)
}

// RecentConnections returns the latest accepted connections for an attendee,
// enriched with the counterpart's profile and matched interests.
func (cs *ConnectionService) RecentConnections(ctx context.Context, eventUserID uuid.UUID, limit int64) ([]*models.ConnectionView, error) {
	me, err := cs.attendeeRepo.GetEventUserByID(ctx, eventUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttendeeNotFound, err)
	}

	connections, err := cs.connectionRepo.ListConnectionsByStatus(ctx, eventUserID, models.ConnectionStatusAccepted, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %v", err)
	}

	views := make([]*models.ConnectionView, 0, len(connections))
	for _, conn := range connections {
		otherID := conn.SenderID
		connType := "received"
		if conn.SenderID == eventUserID {
			otherID = conn.ReceiverID
			connType = "sent"
		}

		other, err := cs.attendeeRepo.GetEventUserByID(ctx, otherID)
		if err != nil {
			cs.logger.Warn("skipping connection with missing attendee", "connection_id", conn.ID, "event_user_id", otherID)
			continue
		}

		view := &models.ConnectionView{
			ID:               conn.ID,
			Address:          other.NfcAddress,
			MatchedInterests: matchedInterests(me.Tags, other.Tags),
			Status:           conn.Status,
			Timestamp:        conn.UpdatedAt.Format(time.RFC3339),
			Type:             connType,
		}
		if conn.QuestID != nil {
			view.XpEarned = models.QuestPoints
		}
		if uid, perr := uuid.Parse(other.UserID); perr == nil {
			if user, uerr := cs.userRepo.GetUser(ctx, uid, ""); uerr == nil && user != nil {
				view.Name = user.Name
				if user.Address != "" {
					view.Address = user.Address
				}
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// UpdateStatus accepts or rejects a pending connection. Accepting a
// connection that carries a quest also runs completion verification for
// both sides; a verification failure does not block the acceptance.
func (cs *ConnectionService) UpdateStatus(ctx context.Context, connectionID uuid.UUID, status string) (*models.Connection, error) {
	if status != models.ConnectionStatusAccepted && status != models.ConnectionStatusRejected {
		return nil, fmt.Errorf("status must be %s or %s", models.ConnectionStatusAccepted, models.ConnectionStatusRejected)
	}

	connection, err := cs.connectionRepo.GetConnectionByID(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("connection not found: %v", err)
	}
	if connection.Status != models.ConnectionStatusPending {
		return nil, fmt.Errorf("connection is already %s", strings.ToLower(connection.Status))
	}

	updated, err := cs.connectionRepo.UpdateConnectionStatus(ctx, connectionID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update connection: %v", err)
	}

	if status == models.ConnectionStatusAccepted && connection.QuestID != nil {
		receiver, err := cs.attendeeRepo.GetEventUserByID(ctx, connection.ReceiverID)
		if err != nil {
			cs.logger.Error("quest verification skipped, receiver missing", "connection_id", connectionID, "error", err)
			return updated, nil
		}
		if _, err := cs.verifyService.VerifyCompletion(ctx, *connection.QuestID, receiver.UserID); err != nil {
			cs.logger.Warn("quest verification failed on accept", "connection_id", connectionID, "quest_id", connection.QuestID, "error", err)
		}
	}
	return updated, nil
}

// matchedInterests intersects two tag lists ignoring case, preserving the
// casing of the first list.
func matchedInterests(mine, theirs []string) []string {
	theirSet := make(map[string]bool, len(theirs))
	for _, tag := range theirs {
		theirSet[strings.ToLower(strings.TrimSpace(tag))] = true
	}
	var matched []string
	seen := make(map[string]bool)
	for _, tag := range mine {
		key := strings.ToLower(strings.TrimSpace(tag))
		if key == "" || seen[key] || !theirSet[key] {
			continue
		}
		seen[key] = true
		matched = append(matched, tag)
	}
	return matched
}
