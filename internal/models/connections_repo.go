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

type ConnectionRepo interface {
	CreateConnection(ctx context.Context, connection *Connection) (*Connection, error)
	GetConnectionByID(ctx context.Context, id uuid.UUID) (*Connection, error)
	FindConnectionBetween(ctx context.Context, a, b uuid.UUID) (*Connection, error)
	ListConnectionsByStatus(ctx context.Context, eventUserID uuid.UUID, status string, limit int64) ([]*Connection, error)
	UpdateConnectionStatus(ctx context.Context, id uuid.UUID, status string) (*Connection, error)
}

func (mdb *MongodbRepo) CreateConnection(ctx context.Context, connection *Connection) (*Connection, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, ConnectionsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	connection.BeforeCreate()
	if _, err := col.InsertOne(ctx, connection); err != nil {
		return nil, fmt.Errorf("failed to insert connection: %v", err)
	}
	return connection, nil
}

func (mdb *MongodbRepo) GetConnectionByID(ctx context.Context, id uuid.UUID) (*Connection, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, ConnectionsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var cn Connection
	if err := col.FindOne(ctx, bson.M{"id": id}).Decode(&cn); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("connection not found")
		}
		return nil, fmt.Errorf("error finding connection: %v", err)
	}
	return &cn, nil
}

// FindConnectionBetween matches in either direction.
func (mdb *MongodbRepo) FindConnectionBetween(ctx context.Context, a, b uuid.UUID) (*Connection, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, ConnectionsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"$or": []bson.M{
		{"sender_id": a, "receiver_id": b},
		{"sender_id": b, "receiver_id": a},
	}}

	var cn Connection
	if err := col.FindOne(ctx, filter).Decode(&cn); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding connection: %v", err)
	}
	return &cn, nil
}

func (mdb *MongodbRepo) ListConnectionsByStatus(ctx context.Context, eventUserID uuid.UUID, status string, limit int64) ([]*Connection, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, ConnectionsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{
		"status": status,
		"$or": []bson.M{
			{"sender_id": eventUserID},
			{"receiver_id": eventUserID},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding connections: %v", err)
	}
	defer cursor.Close(ctx)

	var connections []*Connection
	for cursor.Next(ctx) {
		var cn Connection
		if err := cursor.Decode(&cn); err != nil {
			return nil, fmt.Errorf("error decoding connection: %v", err)
		}
		connections = append(connections, &cn)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return connections, nil
}

func (mdb *MongodbRepo) UpdateConnectionStatus(ctx context.Context, id uuid.UUID, status string) (*Connection, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, ConnectionsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Connection
	if err := col.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("connection not found")
		}
		return nil, fmt.Errorf("error updating connection: %v", err)
	}
	return &updated, nil
}
