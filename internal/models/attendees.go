package models

import (
	"time"

	"github.com/google/uuid"
)

const EventUsersColName = "event_users"

const (
	AttendeeStatusPending  = "PENDING"
	AttendeeStatusAccepted = "ACCEPTED"
	AttendeeStatusRejected = "REJECTED"
)

// EventUser is one person's registration for one event. Uniqueness on
// (user_id, event_id) is the registration invariant.
type EventUser struct {
	ID                 uuid.UUID         `bson:"id" json:"id"`
	UserID             string            `bson:"user_id" json:"user_id" validate:"required"`
	EventID            uuid.UUID         `bson:"event_id" json:"event_id" validate:"required"`
	Bio                string            `bson:"bio" json:"bio"`
	Socials            map[string]string `bson:"socials" json:"socials"`
	Tags               []string          `bson:"tags" json:"tags"`
	MeetingPreferences []string          `bson:"meeting_preferences" json:"meeting_preferences"`
	Status             string            `bson:"status" json:"status"`
	NfcAddress         string            `bson:"nfc_address,omitempty" json:"nfc_address,omitempty"`
	CreatedAt          time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time         `bson:"updated_at" json:"updated_at"`
}

func (eu *EventUser) BeforeCreate() {
	if eu.ID == uuid.Nil {
		eu.ID = uuid.New()
	}
	if eu.Status == "" {
		eu.Status = AttendeeStatusPending
	}
	now := time.Now()
	eu.CreatedAt = now
	eu.UpdatedAt = now
}
