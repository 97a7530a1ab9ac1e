package models

import (
	"time"

	"github.com/google/uuid"
)

const ConnectionsColName = "connections"

const (
	ConnectionStatusPending  = "PENDING"
	ConnectionStatusAccepted = "ACCEPTED"
	ConnectionStatusRejected = "REJECTED"
)

// Connection is a request between two attendees of the same event.
// QuestID, when set, names the quest draft the sender claims this
// meeting fulfils; it is verified on acceptance.
type Connection struct {
	ID         uuid.UUID  `bson:"id" json:"id"`
	SenderID   uuid.UUID  `bson:"sender_id" json:"sender_id"`
	ReceiverID uuid.UUID  `bson:"receiver_id" json:"receiver_id"`
	Status     string     `bson:"status" json:"status"`
	QuestID    *uuid.UUID `bson:"quest_id,omitempty" json:"quest_id,omitempty"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updated_at"`
}

func (cn *Connection) BeforeCreate() {
	if cn.ID == uuid.Nil {
		cn.ID = uuid.New()
	}
	if cn.Status == "" {
		cn.Status = ConnectionStatusPending
	}
	now := time.Now()
	cn.CreatedAt = now
	cn.UpdatedAt = now
}

// ConnectionView is the shape returned to clients: the other party's
// identity plus match context.
type ConnectionView struct {
	ID               uuid.UUID `json:"id"`
	Address          string    `json:"address"`
	Name             string    `json:"name"`
	MatchedInterests []string  `json:"matchedInterests"`
	Status           string    `json:"status"`
	Timestamp        string    `json:"timestamp"`
	Type             string    `json:"type"`
	XpEarned         int       `json:"xpEarned,omitempty"`
}
