package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserQuestionsColName    = "user_questions"
	QuestsColName           = "quests"
	UserQuestsColName       = "user_quests"
	QuestGenerationsColName = "quest_generations"
)

const (
	QuestionStatusPending  = "PENDING"
	QuestionStatusAnswered = "ANSWERED"

	UserQuestStatusAssigned  = "ASSIGNED"
	UserQuestStatusCompleted = "COMPLETED"
)

// QuestPoints is the fixed point value of every materialized quest.
const QuestPoints = 50

// CompletionRecord is the provenance written when a second attendee
// fulfils a quest in person.
type CompletionRecord struct {
	CompletedWithUserID string    `bson:"completed_with_user_id" json:"completed_with_user_id"`
	CompletedWithTags   []string  `bson:"completed_with_tags" json:"completed_with_tags"`
	CompletedAt         time.Time `bson:"completed_at" json:"completed_at"`
}

// QuestionMetadata carries generation provenance. Tags are stored
// lowercased; every later comparison is against this canonical form.
type QuestionMetadata struct {
	Type          string            `bson:"type" json:"type"`
	GeneratedAt   time.Time         `bson:"generated_at" json:"generated_at"`
	UserInterests []string          `bson:"user_interests" json:"user_interests"`
	EventTags     []string          `bson:"event_tags" json:"event_tags"`
	UserLocation  string            `bson:"user_location" json:"user_location"`
	Tags          []string          `bson:"tags" json:"tags"`
	EventID       uuid.UUID         `bson:"event_id" json:"event_id"`
	UserID        string            `bson:"user_id" json:"user_id"`
	Completion    *CompletionRecord `bson:"completion,omitempty" json:"completion,omitempty"`
}

// UserQuestion is a quest draft generated for one attendee.
type UserQuestion struct {
	ID          uuid.UUID        `bson:"id" json:"id"`
	EventUserID uuid.UUID        `bson:"event_user_id" json:"event_user_id"`
	Question    string           `bson:"question" json:"question" validate:"required,min=3"`
	Answer      string           `bson:"answer" json:"answer" validate:"required,min=10"`
	Status      string           `bson:"status" json:"status"`
	Metadata    QuestionMetadata `bson:"metadata" json:"metadata"`
	CreatedAt   time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `bson:"updated_at" json:"updated_at"`
}

func (q *UserQuestion) BeforeCreate() {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.Status == "" {
		q.Status = QuestionStatusPending
	}
	now := time.Now()
	q.CreatedAt = now
	q.UpdatedAt = now
}

// QuestProvenance links a shared quest back to the draft and author it
// was materialized from.
type QuestProvenance struct {
	SourceQuestionID  uuid.UUID `bson:"source_question_id" json:"source_question_id"`
	AuthorEventUserID uuid.UUID `bson:"author_event_user_id" json:"author_event_user_id"`
	EventID           uuid.UUID `bson:"event_id" json:"event_id"`
}

// Quest is the shareable form of a draft, created when the draft is
// assigned to a different attendee. Immutable after creation.
type Quest struct {
	ID          uuid.UUID       `bson:"id" json:"id"`
	Title       string          `bson:"title" json:"title"`
	Description string          `bson:"description" json:"description"`
	Points      int             `bson:"points" json:"points"`
	Tags        []string        `bson:"tags" json:"tags"`
	Metadata    QuestProvenance `bson:"metadata" json:"metadata"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
}

func (q *Quest) BeforeCreate() {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.Points == 0 {
		q.Points = QuestPoints
	}
	q.CreatedAt = time.Now()
}

// UserQuest links a quest to one recipient attendee.
type UserQuest struct {
	ID          uuid.UUID  `bson:"id" json:"id"`
	QuestID     uuid.UUID  `bson:"quest_id" json:"quest_id"`
	EventUserID uuid.UUID  `bson:"event_user_id" json:"event_user_id"`
	Status      string     `bson:"status" json:"status"`
	AssignedAt  time.Time  `bson:"assigned_at" json:"assigned_at"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

func (uq *UserQuest) BeforeCreate() {
	if uq.ID == uuid.Nil {
		uq.ID = uuid.New()
	}
	if uq.Status == "" {
		uq.Status = UserQuestStatusAssigned
	}
	uq.AssignedAt = time.Now()
}
