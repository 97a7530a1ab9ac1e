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

type AttendeeRepo interface {
	CreateEventUser(ctx context.Context, eventUser *EventUser) (*EventUser, error)
	GetEventUserByID(ctx context.Context, id uuid.UUID) (*EventUser, error)
	FindEventUser(ctx context.Context, userID string, eventID uuid.UUID) (*EventUser, error)
	ListEventUsers(ctx context.Context, eventID uuid.UUID) ([]*EventUser, error)
	CountEventUsers(ctx context.Context, eventID uuid.UUID) (int64, error)
	ListEventUsersByStatus(ctx context.Context, eventID uuid.UUID, status string) ([]*EventUser, error)
	UpdateEventUserStatus(ctx context.Context, id uuid.UUID, status string) (*EventUser, error)
	SetNfcAddress(ctx context.Context, id uuid.UUID, nfcAddress string) (*EventUser, error)
	FindByNfcAddress(ctx context.Context, nfcAddress string, eventID uuid.UUID) (*EventUser, error)
	DeleteEventUser(ctx context.Context, userID string, eventID uuid.UUID) error
}

func (mdb *MongodbRepo) CreateEventUser(ctx context.Context, eventUser *EventUser) (*EventUser, error) {
	if err := Validate.Struct(eventUser); err != nil {
		return nil, fmt.Errorf("invalid registration data: %w", err)
	}

	col, err := mdb.GetCollection(ctx, MeshupDbName, EventUsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	// One registration per (user, event).
	count, err := col.CountDocuments(ctx, bson.M{
		"user_id":  eventUser.UserID,
		"event_id": eventUser.EventID,
	})
	if err != nil {
		return nil, fmt.Errorf("error checking existing registration: %v", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("user is already registered for this event")
	}

	eventUser.BeforeCreate()
	if _, err := col.InsertOne(ctx, eventUser); err != nil {
		return nil, fmt.Errorf("failed to insert registration: %v", err)
	}
	return eventUser, nil
}

func (mdb *MongodbRepo) GetEventUserByID(ctx context.Context, id uuid.UUID) (*EventUser, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, EventUsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var eu EventUser
	if err := col.FindOne(ctx, bson.M{"id": id}).Decode(&eu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("event user not found")
		}
		return nil, fmt.Errorf("error finding event user: %v", err)
	}
	return &eu, nil
}

func (mdb *MongodbRepo) FindEventUser(ctx context.Context, userID string, eventID uuid.UUID) (*EventUser, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, EventUsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var eu EventUser
	err = col.FindOne(ctx, bson.M{"user_id": userID, "event_id": eventID}).Decode(&eu)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user is not registered for this event")
		}
		return nil, fmt.Errorf("error finding event user: %v", err)
	}
	return &eu, nil
}

func (mdb *MongodbRepo) ListEventUsers(ctx context.Context, eventID uuid.UUID) ([]*EventUser, error) {
	return mdb.listEventUsers(ctx, bson.M{"event_id": eventID})
}

func (mdb *MongodbRepo) ListEventUsersByStatus(ctx context.Context, eventID uuid.UUID, status string) ([]*EventUser, error) {
	return mdb.listEventUsers(ctx, bson.M{"event_id": eventID, "status": status})
}

func (mdb *MongodbRepo) CountEventUsers(ctx context.Context, eventID uuid.UUID) (int64, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, EventUsersColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %v", err)
	}

	count, err := col.CountDocuments(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return 0, fmt.Errorf("error counting registrations: %v", err)
	}
	return count, nil
}

func (mdb *MongodbRepo) listEventUsers(ctx context.Context, filter bson.M) ([]*EventUser, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, EventUsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	// Insertion order drives assignment iteration order downstream.
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding event users: %v", err)
	}
	defer cursor.Close(ctx)

	var attendees []*EventUser
	for cursor.Next(ctx) {
		var eu EventUser
		if err := cursor.Decode(&eu); err != nil {
			return nil, fmt.Errorf("error decoding event user: %v", err)
		}
		attendees = append(attendees, &eu)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return attendees, nil
}

func (mdb *MongodbRepo) UpdateEventUserStatus(ctx context.Context, id uuid.UUID, status string) (*EventUser, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, EventUsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated EventUser
	if err := col.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user registration not found")
		}
		return nil, fmt.Errorf("error updating status: %v", err)
	}
	return &updated, nil
}

func (mdb *MongodbRepo) SetNfcAddress(ctx context.Context, id uuid.UUID, nfcAddress string) (*EventUser, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, EventUsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	update := bson.M{"$set": bson.M{"nfc_address": nfcAddress, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated EventUser
	if err := col.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("event user not found")
		}
		return nil, fmt.Errorf("error setting NFC address: %v", err)
	}
	return &updated, nil
}

func (mdb *MongodbRepo) FindByNfcAddress(ctx context.Context, nfcAddress string, eventID uuid.UUID) (*EventUser, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, EventUsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var eu EventUser
	err = col.FindOne(ctx, bson.M{"nfc_address": nfcAddress, "event_id": eventID}).Decode(&eu)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("no user found with this NFC tag")
		}
		return nil, fmt.Errorf("error finding NFC address: %v", err)
	}
	return &eu, nil
}

func (mdb *MongodbRepo) DeleteEventUser(ctx context.Context, userID string, eventID uuid.UUID) error {
	col, err := mdb.GetCollection(ctx, MeshupDbName, EventUsersColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"user_id": userID, "event_id": eventID})
	if err != nil {
		return fmt.Errorf("error removing registration: %v", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("user registration not found")
	}
	return nil
}
