package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventRepo interface {
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	ListEvents(ctx context.Context) ([]*Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*Event, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*Event, error)
	ListOrganizers(ctx context.Context, eventID uuid.UUID) ([]*Organizer, error)
	RemoveOrganizer(ctx context.Context, organizerID uuid.UUID) error
}

func (mdb *MongodbRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	// Slugs are the public event handle; refuse duplicates up front.
	count, err := col.CountDocuments(ctx, bson.M{"slug": event.Slug})
	if err != nil {
		return nil, fmt.Errorf("error checking slug: %v", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("an event with slug %q already exists", event.Slug)
	}

	event.BeforeCreate()
	if _, err := col.InsertOne(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to insert event: %v", err)
	}
	return event, nil
}

func (mdb *MongodbRepo) ListEvents(ctx context.Context) ([]*Event, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})
	cursor, err := col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding events: %v", err)
	}
	defer cursor.Close(ctx)

	var events []*Event
	for cursor.Next(ctx) {
		var ev Event
		if err := cursor.Decode(&ev); err != nil {
			return nil, fmt.Errorf("error decoding event: %v", err)
		}
		events = append(events, &ev)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return events, nil
}

func (mdb *MongodbRepo) GetEventBySlug(ctx context.Context, slug string) (*Event, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var ev Event
	if err := col.FindOne(ctx, bson.M{"slug": slug}).Decode(&ev); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("event not found")
		}
		return nil, fmt.Errorf("error finding event: %v", err)
	}
	return &ev, nil
}

func (mdb *MongodbRepo) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var ev Event
	if err := col.FindOne(ctx, bson.M{"id": id}).Decode(&ev); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("event not found")
		}
		return nil, fmt.Errorf("error finding event: %v", err)
	}
	return &ev, nil
}

func (mdb *MongodbRepo) UpdateEvent(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*Event, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	fields["updated_at"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Event
	err = col.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": fields}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("event not found")
		}
		return nil, fmt.Errorf("error updating event: %v", err)
	}
	return &updated, nil
}

func (mdb *MongodbRepo) ListOrganizers(ctx context.Context, eventID uuid.UUID) ([]*Organizer, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, OrganizersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return nil, fmt.Errorf("error finding organizers: %v", err)
	}
	defer cursor.Close(ctx)

	var organizers []*Organizer
	for cursor.Next(ctx) {
		var org Organizer
		if err := cursor.Decode(&org); err != nil {
			return nil, fmt.Errorf("error decoding organizer: %v", err)
		}
		organizers = append(organizers, &org)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return organizers, nil
}

func (mdb *MongodbRepo) RemoveOrganizer(ctx context.Context, organizerID uuid.UUID) error {
	col, err := mdb.GetCollection(ctx, MeshupDbName, OrganizersColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"id": organizerID})
	if err != nil {
		return fmt.Errorf("error removing organizer: %v", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("organizer not found")
	}
	return nil
}
