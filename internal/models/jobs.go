package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const JobsColName = "jobs"

const (
	JobStatusPending   = "PENDING"
	JobStatusRunning   = "RUNNING"
	JobStatusCompleted = "COMPLETED"
	JobStatusFailed    = "FAILED"
)

// Job is the durable record of one background task, keyed by its label.
// It exists so progress of detached work can be observed across requests
// instead of polling side-channel row counts.
type Job struct {
	Name      string                 `bson:"name" json:"name"`
	Status    string                 `bson:"status" json:"status"`
	Error     string                 `bson:"error,omitempty" json:"error,omitempty"`
	Result    map[string]interface{} `bson:"result,omitempty" json:"result,omitempty"`
	CreatedAt time.Time              `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time              `bson:"updated_at" json:"updated_at"`
}

type JobRepo interface {
	UpsertJob(ctx context.Context, name, status string) error
	FinishJob(ctx context.Context, name, status, errMsg string, result map[string]interface{}) error
	GetJob(ctx context.Context, name string) (*Job, error)
}

func (mdb *MongodbRepo) UpsertJob(ctx context.Context, name, status string) error {
	col, err := mdb.GetCollection(ctx, MeshupDbName, JobsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now()
	filter := bson.M{"name": name}
	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"error":      "",
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"name":       name,
			"created_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := col.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("error upserting job: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) FinishJob(ctx context.Context, name, status, errMsg string, result map[string]interface{}) error {
	col, err := mdb.GetCollection(ctx, MeshupDbName, JobsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"error":      errMsg,
			"result":     result,
			"updated_at": time.Now(),
		},
	}
	if _, err := col.UpdateOne(ctx, bson.M{"name": name}, update); err != nil {
		return fmt.Errorf("error finishing job: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) GetJob(ctx context.Context, name string) (*Job, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, JobsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var job Job
	if err := col.FindOne(ctx, bson.M{"name": name}).Decode(&job); err != nil {
		return nil, fmt.Errorf("job not found: %v", err)
	}
	return &job, nil
}
