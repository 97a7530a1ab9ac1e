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

type QuestRepo interface {
	ClaimGeneration(ctx context.Context, eventUserID uuid.UUID) (bool, error)
	ReleaseGeneration(ctx context.Context, eventUserID uuid.UUID) error
	CountQuestionsByEventUser(ctx context.Context, eventUserID uuid.UUID) (int64, error)
	CreateQuestion(ctx context.Context, question *UserQuestion) (*UserQuestion, error)
	GetQuestionByID(ctx context.Context, id uuid.UUID) (*UserQuestion, error)
	ListQuestionsByEventUser(ctx context.Context, eventUserID uuid.UUID) ([]*UserQuestion, error)
	ListQuestionsByEventUsers(ctx context.Context, eventUserIDs []uuid.UUID) ([]*UserQuestion, error)
	MarkQuestionAnswered(ctx context.Context, id uuid.UUID, answer string, completion CompletionRecord) (*UserQuestion, error)
	CreateQuest(ctx context.Context, quest *Quest) (*Quest, error)
	FindAssignedQuest(ctx context.Context, sourceQuestionID, recipientEventUserID uuid.UUID) (*Quest, error)
	CreateUserQuest(ctx context.Context, userQuest *UserQuest) (*UserQuest, error)
	ListUserQuestsByEventUser(ctx context.Context, eventUserID uuid.UUID) ([]*UserQuest, error)
}

// ClaimGeneration atomically reserves the one-generation-per-attendee
// slot via an upsert marker. Returns false when another caller already
// holds it, which closes the check-then-act window on double triggers.
func (mdb *MongodbRepo) ClaimGeneration(ctx context.Context, eventUserID uuid.UUID) (bool, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, QuestGenerationsColName)
	if err != nil {
		return false, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"event_user_id": eventUserID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"event_user_id": eventUserID,
			"claimed_at":    time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	res, err := col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return false, fmt.Errorf("error claiming generation: %v", err)
	}
	return res.UpsertedCount == 1, nil
}

// ReleaseGeneration frees the marker after a generation run that created
// nothing, so a human can re-trigger the action.
func (mdb *MongodbRepo) ReleaseGeneration(ctx context.Context, eventUserID uuid.UUID) error {
	col, err := mdb.GetCollection(ctx, MeshupDbName, QuestGenerationsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.DeleteOne(ctx, bson.M{"event_user_id": eventUserID}); err != nil {
		return fmt.Errorf("error releasing generation: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) CountQuestionsByEventUser(ctx context.Context, eventUserID uuid.UUID) (int64, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, UserQuestionsColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %v", err)
	}

	count, err := col.CountDocuments(ctx, bson.M{"event_user_id": eventUserID})
	if err != nil {
		return 0, fmt.Errorf("error counting questions: %v", err)
	}
	return count, nil
}

func (mdb *MongodbRepo) CreateQuestion(ctx context.Context, question *UserQuestion) (*UserQuestion, error) {
	if err := Validate.Struct(question); err != nil {
		return nil, fmt.Errorf("invalid question data: %w", err)
	}

	col, err := mdb.GetCollection(ctx, MeshupDbName, UserQuestionsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	question.BeforeCreate()
	if _, err := col.InsertOne(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to insert question: %v", err)
	}
	return question, nil
}

func (mdb *MongodbRepo) GetQuestionByID(ctx context.Context, id uuid.UUID) (*UserQuestion, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, UserQuestionsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var q UserQuestion
	if err := col.FindOne(ctx, bson.M{"id": id}).Decode(&q); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("question not found")
		}
		return nil, fmt.Errorf("error finding question: %v", err)
	}
	return &q, nil
}

func (mdb *MongodbRepo) ListQuestionsByEventUser(ctx context.Context, eventUserID uuid.UUID) ([]*UserQuestion, error) {
	return mdb.listQuestions(ctx, bson.M{"event_user_id": eventUserID})
}

func (mdb *MongodbRepo) ListQuestionsByEventUsers(ctx context.Context, eventUserIDs []uuid.UUID) ([]*UserQuestion, error) {
	return mdb.listQuestions(ctx, bson.M{"event_user_id": bson.M{"$in": eventUserIDs}})
}

func (mdb *MongodbRepo) listQuestions(ctx context.Context, filter bson.M) ([]*UserQuestion, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, UserQuestionsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding questions: %v", err)
	}
	defer cursor.Close(ctx)

	var questions []*UserQuestion
	for cursor.Next(ctx) {
		var q UserQuestion
		if err := cursor.Decode(&q); err != nil {
			return nil, fmt.Errorf("error decoding question: %v", err)
		}
		questions = append(questions, &q)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return questions, nil
}

func (mdb *MongodbRepo) MarkQuestionAnswered(ctx context.Context, id uuid.UUID, answer string, completion CompletionRecord) (*UserQuestion, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, UserQuestionsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	update := bson.M{
		"$set": bson.M{
			"status":              QuestionStatusAnswered,
			"answer":              answer,
			"metadata.completion": completion,
			"updated_at":          time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated UserQuestion
	if err := col.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("question not found")
		}
		return nil, fmt.Errorf("error marking question answered: %v", err)
	}
	return &updated, nil
}

func (mdb *MongodbRepo) CreateQuest(ctx context.Context, quest *Quest) (*Quest, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, QuestsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	quest.BeforeCreate()
	if _, err := col.InsertOne(ctx, quest); err != nil {
		return nil, fmt.Errorf("failed to insert quest: %v", err)
	}
	return quest, nil
}

// FindAssignedQuest reports whether a draft was already materialized for
// this recipient: a quest sourced from the draft that the recipient
// already holds an assignment for.
func (mdb *MongodbRepo) FindAssignedQuest(ctx context.Context, sourceQuestionID, recipientEventUserID uuid.UUID) (*Quest, error) {
	questCol, err := mdb.GetCollection(ctx, MeshupDbName, QuestsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := questCol.Find(ctx, bson.M{"metadata.source_question_id": sourceQuestionID})
	if err != nil {
		return nil, fmt.Errorf("error finding quests: %v", err)
	}
	defer cursor.Close(ctx)

	var questIDs []uuid.UUID
	quests := map[uuid.UUID]*Quest{}
	for cursor.Next(ctx) {
		var q Quest
		if err := cursor.Decode(&q); err != nil {
			return nil, fmt.Errorf("error decoding quest: %v", err)
		}
		questIDs = append(questIDs, q.ID)
		quest := q
		quests[q.ID] = &quest
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	if len(questIDs) == 0 {
		return nil, nil
	}

	uqCol, err := mdb.GetCollection(ctx, MeshupDbName, UserQuestsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var uq UserQuest
	err = uqCol.FindOne(ctx, bson.M{
		"quest_id":      bson.M{"$in": questIDs},
		"event_user_id": recipientEventUserID,
	}).Decode(&uq)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding assignment: %v", err)
	}
	return quests[uq.QuestID], nil
}

func (mdb *MongodbRepo) CreateUserQuest(ctx context.Context, userQuest *UserQuest) (*UserQuest, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, UserQuestsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	userQuest.BeforeCreate()
	if _, err := col.InsertOne(ctx, userQuest); err != nil {
		return nil, fmt.Errorf("failed to insert assignment: %v", err)
	}
	return userQuest, nil
}

func (mdb *MongodbRepo) ListUserQuestsByEventUser(ctx context.Context, eventUserID uuid.UUID) ([]*UserQuest, error) {
	col, err := mdb.GetCollection(ctx, MeshupDbName, UserQuestsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "assigned_at", Value: -1}})
	cursor, err := col.Find(ctx, bson.M{"event_user_id": eventUserID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding assignments: %v", err)
	}
	defer cursor.Close(ctx)

	var assignments []*UserQuest
	for cursor.Next(ctx) {
		var uq UserQuest
		if err := cursor.Decode(&uq); err != nil {
			return nil, fmt.Errorf("error decoding assignment: %v", err)
		}
		assignments = append(assignments, &uq)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return assignments, nil
}
