package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventsColName     = "events"
	OrganizersColName = "organizers"
)

type Event struct {
	ID             uuid.UUID `bson:"id" json:"id"`
	Name           string    `bson:"name" json:"name" validate:"required,min=3"`
	Slug           string    `bson:"slug" json:"slug"`
	Description    string    `bson:"description" json:"description"`
	StartDate      time.Time `bson:"start_date" json:"start_date" validate:"required"`
	EndDate        time.Time `bson:"end_date" json:"end_date" validate:"required"`
	PictureURL     string    `bson:"picture_url" json:"picture_url"`
	Tags           []string  `bson:"tags" json:"tags"`
	CreatorAddress string    `bson:"creator_address" json:"creator_address"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// Organizer grants a wallet address management rights over one event.
type Organizer struct {
	ID      uuid.UUID `bson:"id" json:"id"`
	EventID uuid.UUID `bson:"event_id" json:"event_id"`
	Address string    `bson:"address" json:"address"`
	Role    string    `bson:"role" json:"role"`
}

func (e *Event) BeforeCreate() {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
}
