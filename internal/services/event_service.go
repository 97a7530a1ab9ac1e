package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/google/uuid"
	"github.com/meshup-app/server/internal/helpers"
	"github.com/meshup-app/server/internal/models"
)

type EventService struct {
	eventRepo    models.EventRepo
	attendeeRepo models.AttendeeRepo
	userRepo     models.UserRepo
	cld          *cloudinary.Cloudinary
	logger       *slog.Logger
}

func NewEventService(eventRepo models.EventRepo, attendeeRepo models.AttendeeRepo, userRepo models.UserRepo, cld *cloudinary.Cloudinary, logger *slog.Logger) *EventService {
	return &EventService{
		eventRepo:    eventRepo,
		attendeeRepo: attendeeRepo,
		userRepo:     userRepo,
		cld:          cld,
		logger:       logger,
	}
}

func (es *EventService) CreateEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	if err := models.Validate.Struct(event); err != nil {
		return nil, fmt.Errorf("invalid event data: %v", err)
	}
	if !event.EndDate.After(event.StartDate) {
		return nil, fmt.Errorf("event end date must be after start date")
	}

	event.Slug = helpers.GenerateSlug(event.Name)
	event.CreatorAddress = strings.ToLower(event.CreatorAddress)

	var tags []string
	for _, tag := range event.Tags {
		if t := strings.TrimSpace(tag); t != "" {
			tags = append(tags, t)
		}
	}
	event.Tags = tags

	return es.eventRepo.CreateEvent(ctx, event)
}

func (es *EventService) ListEvents(ctx context.Context) ([]*models.Event, error) {
	return es.eventRepo.ListEvents(ctx)
}

func (es *EventService) GetEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, fmt.Errorf("slug is required")
	}
	return es.eventRepo.GetEventBySlug(ctx, slug)
}

func (es *EventService) UpdateEvent(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Event, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid event ID")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	allowed := map[string]bool{
		"name": true, "description": true, "start_date": true,
		"end_date": true, "picture_url": true, "tags": true,
	}
	for key := range fields {
		if !allowed[key] {
			return nil, fmt.Errorf("field %q cannot be updated", key)
		}
	}
	return es.eventRepo.UpdateEvent(ctx, id, fields)
}

// UpdateEventImage uploads the picture and stores the resulting URL.
func (es *EventService) UpdateEventImage(ctx context.Context, id uuid.UUID, imageData string) (*models.Event, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid event ID")
	}

	url, err := helpers.UploadImage(ctx, es.cld, imageData, helpers.EventsFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to upload event image: %v", err)
	}

	return es.eventRepo.UpdateEvent(ctx, id, map[string]interface{}{"picture_url": url})
}

// EventHighlights is the landing page aggregate: events still running
// or ahead, and the ones that drew the most registrations.
type EventHighlights struct {
	Upcoming []*models.Event `json:"upcoming"`
	Popular  []*models.Event `json:"popular"`
}

const highlightsLimit = 10

func (es *EventService) Highlights(ctx context.Context) (*EventHighlights, error) {
	events, err := es.eventRepo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %v", err)
	}

	now := time.Now()
	var upcoming []*models.Event
	for _, event := range events {
		if event.EndDate.After(now) {
			upcoming = append(upcoming, event)
		}
	}
	if len(upcoming) > highlightsLimit {
		upcoming = upcoming[:highlightsLimit]
	}

	counts := make(map[uuid.UUID]int64, len(events))
	for _, event := range events {
		count, err := es.attendeeRepo.CountEventUsers(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count registrations: %v", err)
		}
		counts[event.ID] = count
	}

	popular := append([]*models.Event{}, events...)
	sort.SliceStable(popular, func(i, j int) bool {
		return counts[popular[i].ID] > counts[popular[j].ID]
	})
	if len(popular) > highlightsLimit {
		popular = popular[:highlightsLimit]
	}

	return &EventHighlights{Upcoming: upcoming, Popular: popular}, nil
}

// DashboardData is the organizer view of one event.
type DashboardData struct {
	Event      *models.Event       `json:"event"`
	Organizers []*models.Organizer `json:"organizers"`
	Attendees  []*models.EventUser `json:"eventUsers"`
}

func (es *EventService) Dashboard(ctx context.Context, slug string) (*DashboardData, error) {
	event, err := es.eventRepo.GetEventBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEventNotFound, err)
	}

	organizers, err := es.eventRepo.ListOrganizers(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizers: %v", err)
	}
	attendees, err := es.attendeeRepo.ListEventUsers(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %v", err)
	}

	return &DashboardData{Event: event, Organizers: organizers, Attendees: attendees}, nil
}

type CountEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// EventStatistics summarizes registrations for the dashboard.
type EventStatistics struct {
	TotalRegistrations int            `json:"totalRegistrations"`
	ByStatus           map[string]int `json:"byStatus"`
	ByCountry          map[string]int `json:"byCountry"`
	TopInterests       []CountEntry   `json:"topInterests"`
}

func (es *EventService) Statistics(ctx context.Context, eventID uuid.UUID) (*EventStatistics, error) {
	attendees, err := es.attendeeRepo.ListEventUsers(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %v", err)
	}

	stats := &EventStatistics{
		TotalRegistrations: len(attendees),
		ByStatus:           make(map[string]int),
		ByCountry:          make(map[string]int),
	}

	interestCount := make(map[string]int)
	for _, eu := range attendees {
		stats.ByStatus[eu.Status]++
		for _, tag := range eu.Tags {
			interestCount[tag]++
		}

		country := "Unknown"
		if user, err := es.userRepo.GetUserByAddress(ctx, eu.UserID); err == nil && user.Country != "" {
			country = user.Country
		}
		stats.ByCountry[country]++
	}

	for interest, count := range interestCount {
		stats.TopInterests = append(stats.TopInterests, CountEntry{Key: interest, Count: count})
	}
	sort.Slice(stats.TopInterests, func(i, j int) bool {
		if stats.TopInterests[i].Count != stats.TopInterests[j].Count {
			return stats.TopInterests[i].Count > stats.TopInterests[j].Count
		}
		return stats.TopInterests[i].Key < stats.TopInterests[j].Key
	})
	if len(stats.TopInterests) > 10 {
		stats.TopInterests = stats.TopInterests[:10]
	}
	return stats, nil
}

func (es *EventService) RemoveOrganizer(ctx context.Context, organizerID uuid.UUID) error {
	if organizerID == uuid.Nil {
		return fmt.Errorf("invalid organizer ID")
	}
	return es.eventRepo.RemoveOrganizer(ctx, organizerID)
}
