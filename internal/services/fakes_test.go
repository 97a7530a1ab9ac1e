package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/meshup-app/server/internal/models"
)

// In-memory repo doubles. They mirror the Mongo implementations closely
// enough for service behavior: BeforeCreate hooks run on insert, lookups
// miss with an error, FindAssignedQuest and FindConnectionBetween return
// nil on no match.

type fakeAttendeeRepo struct {
	eventUsers []*models.EventUser
}

func (f *fakeAttendeeRepo) CreateEventUser(ctx context.Context, eventUser *models.EventUser) (*models.EventUser, error) {
	eventUser.BeforeCreate()
	f.eventUsers = append(f.eventUsers, eventUser)
	return eventUser, nil
}

func (f *fakeAttendeeRepo) GetEventUserByID(ctx context.Context, id uuid.UUID) (*models.EventUser, error) {
	for _, eu := range f.eventUsers {
		if eu.ID == id {
			return eu, nil
		}
	}
	return nil, fmt.Errorf("event user not found")
}

func (f *fakeAttendeeRepo) FindEventUser(ctx context.Context, userID string, eventID uuid.UUID) (*models.EventUser, error) {
	for _, eu := range f.eventUsers {
		if eu.UserID == userID && eu.EventID == eventID {
			return eu, nil
		}
	}
	return nil, fmt.Errorf("event user not found")
}

func (f *fakeAttendeeRepo) ListEventUsers(ctx context.Context, eventID uuid.UUID) ([]*models.EventUser, error) {
	var out []*models.EventUser
	for _, eu := range f.eventUsers {
		if eu.EventID == eventID {
			out = append(out, eu)
		}
	}
	return out, nil
}

func (f *fakeAttendeeRepo) CountEventUsers(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	for _, eu := range f.eventUsers {
		if eu.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (f *fakeAttendeeRepo) ListEventUsersByStatus(ctx context.Context, eventID uuid.UUID, status string) ([]*models.EventUser, error) {
	var out []*models.EventUser
	for _, eu := range f.eventUsers {
		if eu.EventID == eventID && eu.Status == status {
			out = append(out, eu)
		}
	}
	return out, nil
}

func (f *fakeAttendeeRepo) UpdateEventUserStatus(ctx context.Context, id uuid.UUID, status string) (*models.EventUser, error) {
	eu, err := f.GetEventUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	eu.Status = status
	return eu, nil
}

func (f *fakeAttendeeRepo) SetNfcAddress(ctx context.Context, id uuid.UUID, nfcAddress string) (*models.EventUser, error) {
	eu, err := f.GetEventUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	eu.NfcAddress = nfcAddress
	return eu, nil
}

func (f *fakeAttendeeRepo) FindByNfcAddress(ctx context.Context, nfcAddress string, eventID uuid.UUID) (*models.EventUser, error) {
	for _, eu := range f.eventUsers {
		if eu.NfcAddress == nfcAddress && eu.EventID == eventID {
			return eu, nil
		}
	}
	return nil, fmt.Errorf("event user not found")
}

func (f *fakeAttendeeRepo) DeleteEventUser(ctx context.Context, userID string, eventID uuid.UUID) error {
	for i, eu := range f.eventUsers {
		if eu.UserID == userID && eu.EventID == eventID {
			f.eventUsers = append(f.eventUsers[:i], f.eventUsers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("event user not found")
}

type fakeEventRepo struct {
	events []*models.Event
}

func (f *fakeEventRepo) CreateEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	event.BeforeCreate()
	f.events = append(f.events, event)
	return event, nil
}

func (f *fakeEventRepo) ListEvents(ctx context.Context) ([]*models.Event, error) {
	return f.events, nil
}

func (f *fakeEventRepo) GetEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	for _, ev := range f.events {
		if ev.Slug == slug {
			return ev, nil
		}
	}
	return nil, fmt.Errorf("event not found")
}

func (f *fakeEventRepo) GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	for _, ev := range f.events {
		if ev.ID == id {
			return ev, nil
		}
	}
	return nil, fmt.Errorf("event not found")
}

func (f *fakeEventRepo) UpdateEvent(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Event, error) {
	return f.GetEventByID(ctx, id)
}

func (f *fakeEventRepo) ListOrganizers(ctx context.Context, eventID uuid.UUID) ([]*models.Organizer, error) {
	return nil, nil
}

func (f *fakeEventRepo) RemoveOrganizer(ctx context.Context, organizerID uuid.UUID) error {
	return nil
}

type fakeQuestRepo struct {
	claims     map[uuid.UUID]bool
	questions  []*models.UserQuestion
	quests     []*models.Quest
	userQuests []*models.UserQuest

	// failQuestionTitles makes CreateQuestion fail for specific drafts
	// so partial-batch outcomes can be exercised.
	failQuestionTitles map[string]bool
}

func newFakeQuestRepo() *fakeQuestRepo {
	return &fakeQuestRepo{claims: make(map[uuid.UUID]bool)}
}

func (f *fakeQuestRepo) ClaimGeneration(ctx context.Context, eventUserID uuid.UUID) (bool, error) {
	if f.claims[eventUserID] {
		return false, nil
	}
	f.claims[eventUserID] = true
	return true, nil
}

func (f *fakeQuestRepo) ReleaseGeneration(ctx context.Context, eventUserID uuid.UUID) error {
	delete(f.claims, eventUserID)
	return nil
}

func (f *fakeQuestRepo) CountQuestionsByEventUser(ctx context.Context, eventUserID uuid.UUID) (int64, error) {
	var count int64
	for _, q := range f.questions {
		if q.EventUserID == eventUserID {
			count++
		}
	}
	return count, nil
}

func (f *fakeQuestRepo) CreateQuestion(ctx context.Context, question *models.UserQuestion) (*models.UserQuestion, error) {
	if f.failQuestionTitles[question.Question] {
		return nil, fmt.Errorf("write refused")
	}
	question.BeforeCreate()
	f.questions = append(f.questions, question)
	return question, nil
}

func (f *fakeQuestRepo) GetQuestionByID(ctx context.Context, id uuid.UUID) (*models.UserQuestion, error) {
	for _, q := range f.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, fmt.Errorf("question not found")
}

func (f *fakeQuestRepo) ListQuestionsByEventUser(ctx context.Context, eventUserID uuid.UUID) ([]*models.UserQuestion, error) {
	var out []*models.UserQuestion
	for _, q := range f.questions {
		if q.EventUserID == eventUserID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestRepo) ListQuestionsByEventUsers(ctx context.Context, eventUserIDs []uuid.UUID) ([]*models.UserQuestion, error) {
	members := make(map[uuid.UUID]bool, len(eventUserIDs))
	for _, id := range eventUserIDs {
		members[id] = true
	}
	var out []*models.UserQuestion
	for _, q := range f.questions {
		if members[q.EventUserID] {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestRepo) MarkQuestionAnswered(ctx context.Context, id uuid.UUID, answer string, completion models.CompletionRecord) (*models.UserQuestion, error) {
	q, err := f.GetQuestionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Status = models.QuestionStatusAnswered
	q.Answer = answer
	q.Metadata.Completion = &completion
	return q, nil
}

func (f *fakeQuestRepo) CreateQuest(ctx context.Context, quest *models.Quest) (*models.Quest, error) {
	quest.BeforeCreate()
	f.quests = append(f.quests, quest)
	return quest, nil
}

func (f *fakeQuestRepo) FindAssignedQuest(ctx context.Context, sourceQuestionID, recipientEventUserID uuid.UUID) (*models.Quest, error) {
	for _, quest := range f.quests {
		if quest.Metadata.SourceQuestionID != sourceQuestionID {
			continue
		}
		for _, uq := range f.userQuests {
			if uq.QuestID == quest.ID && uq.EventUserID == recipientEventUserID {
				return quest, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeQuestRepo) CreateUserQuest(ctx context.Context, userQuest *models.UserQuest) (*models.UserQuest, error) {
	userQuest.BeforeCreate()
	f.userQuests = append(f.userQuests, userQuest)
	return userQuest, nil
}

func (f *fakeQuestRepo) ListUserQuestsByEventUser(ctx context.Context, eventUserID uuid.UUID) ([]*models.UserQuest, error) {
	var out []*models.UserQuest
	for _, uq := range f.userQuests {
		if uq.EventUserID == eventUserID {
			out = append(out, uq)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	usersByAddress map[string]*models.User
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (interface{}, error) {
	return user, nil
}

func (f *fakeUserRepo) AuthenticateUser(ctx context.Context, email, password string) (interface{}, error) {
	return nil, fmt.Errorf("not supported")
}

func (f *fakeUserRepo) RefreshToken(ctx context.Context, refreshToken string) (interface{}, error) {
	return nil, fmt.Errorf("not supported")
}

func (f *fakeUserRepo) GetUser(ctx context.Context, id uuid.UUID, accessToken string) (*models.User, error) {
	return nil, fmt.Errorf("user not found")
}

func (f *fakeUserRepo) GetUserByAddress(ctx context.Context, address string) (*models.User, error) {
	if user, ok := f.usersByAddress[address]; ok {
		return user, nil
	}
	return nil, fmt.Errorf("user not found")
}

func (f *fakeUserRepo) UpdateUser(ctx context.Context, user map[string]interface{}, userid uuid.UUID, accessToken string) (*models.User, error) {
	return nil, fmt.Errorf("not supported")
}

func (f *fakeUserRepo) EnsureUser(ctx context.Context, user *models.User) (*models.User, error) {
	if existing, ok := f.usersByAddress[user.Address]; ok {
		return existing, nil
	}
	if f.usersByAddress == nil {
		f.usersByAddress = make(map[string]*models.User)
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.usersByAddress[user.Address] = user
	return user, nil
}

type fakeConnectionRepo struct {
	connections []*models.Connection
}

func (f *fakeConnectionRepo) CreateConnection(ctx context.Context, connection *models.Connection) (*models.Connection, error) {
	connection.BeforeCreate()
	f.connections = append(f.connections, connection)
	return connection, nil
}

func (f *fakeConnectionRepo) GetConnectionByID(ctx context.Context, id uuid.UUID) (*models.Connection, error) {
	for _, conn := range f.connections {
		if conn.ID == id {
			return conn, nil
		}
	}
	return nil, fmt.Errorf("connection not found")
}

func (f *fakeConnectionRepo) FindConnectionBetween(ctx context.Context, a, b uuid.UUID) (*models.Connection, error) {
	for _, conn := range f.connections {
		if (conn.SenderID == a && conn.ReceiverID == b) || (conn.SenderID == b && conn.ReceiverID == a) {
			return conn, nil
		}
	}
	return nil, nil
}

func (f *fakeConnectionRepo) ListConnectionsByStatus(ctx context.Context, eventUserID uuid.UUID, status string, limit int64) ([]*models.Connection, error) {
	var out []*models.Connection
	for _, conn := range f.connections {
		if conn.Status != status {
			continue
		}
		if conn.SenderID == eventUserID || conn.ReceiverID == eventUserID {
			out = append(out, conn)
		}
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeConnectionRepo) UpdateConnectionStatus(ctx context.Context, id uuid.UUID, status string) (*models.Connection, error) {
	conn, err := f.GetConnectionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	conn.Status = status
	return conn, nil
}

// fakeJobRepo is mutex-guarded because the background runner finishes
// jobs from its own goroutine.
type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*models.Job
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*models.Job)}
}

func (f *fakeJobRepo) UpsertJob(ctx context.Context, name, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[name] = &models.Job{Name: name, Status: status}
	return nil
}

func (f *fakeJobRepo) FinishJob(ctx context.Context, name, status, errMsg string, result map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[name] = &models.Job{Name: name, Status: status, Error: errMsg, Result: result}
	return nil
}

func (f *fakeJobRepo) GetJob(ctx context.Context, name string) (*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job, ok := f.jobs[name]; ok {
		return job, nil
	}
	return nil, fmt.Errorf("job not found")
}

// fakeGenerator returns a canned response or error.
type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}
