package repository

import (
	"context"
	"fmt"
	"time"

	"pnrdesk-service/internal/domain/entity"
	"pnrdesk-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoInboxRepository implements the InboxRepository interface
type MongoInboxRepository struct {
	collection *mongo.Collection
}

// NewMongoInboxRepository creates a new MongoDB inbox repository
func NewMongoInboxRepository(db *mongo.Database) repository.InboxRepository {
	collection := db.Collection("inboxMessages")

	// Create indexes for better performance
	ctx := context.Background()

	messageIDIndex := mongo.IndexModel{
		Keys:    bson.M{"messageId": 1},
		Options: options.Index().SetUnique(true),
	}

	// Index on processStatus for finding messages by status
	processStatusIndex := mongo.IndexModel{
		Keys: bson.M{"processStatus": 1},
	}

	// Index on receivedAt for sorting and filtering
	receivedAtIndex := mongo.IndexModel{
		Keys: bson.M{"receivedAt": -1},
	}

	// Compound index for finding pending messages efficiently
	pendingIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "processStatus", Value: 1},
			{Key: "receivedAt", Value: 1},
		},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		messageIDIndex,
		processStatusIndex,
		receivedAtIndex,
		pendingIndex,
	})

	return &MongoInboxRepository{
		collection: collection,
	}
}

// Save saves an inbox message to MongoDB
func (r *MongoInboxRepository) Save(ctx context.Context, msg *entity.InboxMessage) error {
	if msg.ProcessStatus == "" {
		msg.ProcessStatus = entity.StatusPending
	}

	_, err := r.collection.InsertOne(ctx, msg)
	return err
}

// FindByMessageID finds a message by Gmail message ID
func (r *MongoInboxRepository) FindByMessageID(ctx context.Context, messageID string) (*entity.InboxMessage, error) {
	var msg entity.InboxMessage
	err := r.collection.FindOne(ctx, bson.M{"messageId": messageID}).Decode(&msg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// FindByStatus finds messages by status, oldest first
func (r *MongoInboxRepository) FindByStatus(ctx context.Context, status string, limit int) ([]*entity.InboxMessage, error) {
	filter := bson.M{"processStatus": status}

	limit64 := int64(limit)
	cursor, err := r.collection.Find(ctx, filter, &options.FindOptions{
		Limit: &limit64,
		Sort:  bson.D{{Key: "receivedAt", Value: 1}}, // Process oldest first
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*entity.InboxMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}

// UpdateStatus updates just the status and started time
func (r *MongoInboxRepository) UpdateStatus(ctx context.Context, messageID string, status string, startedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"processStatus": status,
		},
	}

	// Only set processStartedAt when moving to PROCESSING
	if status == entity.StatusProcessing && !startedAt.IsZero() {
		update["$set"].(bson.M)["processStartedAt"] = startedAt
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"messageId": messageID},
		update,
	)

	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no document found with messageId: %s", messageID)
	}

	return nil
}

// MarkAsProcessed marks a message as processed with full details
func (r *MongoInboxRepository) MarkAsProcessed(ctx context.Context, messageID, status, handlerType, errorDetail string, extractedData map[string]interface{}) error {
	update := bson.M{
		"$set": bson.M{
			"processedAt":   time.Now(),
			"processStatus": status,
			"handlerType":   handlerType,
		},
	}

	if len(extractedData) > 0 {
		update["$set"].(bson.M)["extractedData"] = extractedData
	}

	if errorDetail != "" {
		update["$set"].(bson.M)["errorDetail"] = errorDetail
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"messageId": messageID},
		update,
	)

	if err != nil {
		return fmt.Errorf("failed to mark as processed: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no document found with messageId: %s", messageID)
	}

	return nil
}

// GetLastMessage gets the most recently received message
func (r *MongoInboxRepository) GetLastMessage(ctx context.Context) (*entity.InboxMessage, error) {
	var msg entity.InboxMessage
	opts := options.FindOne().SetSort(bson.D{{Key: "receivedAt", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&msg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// ResetProcessingMessages resets messages stuck in PROCESSING state back to PENDING
func (r *MongoInboxRepository) ResetProcessingMessages(ctx context.Context) error {
	// Anything processing for more than 5 minutes is considered stale
	staleTime := time.Now().Add(-5 * time.Minute)

	filter := bson.M{
		"processStatus": entity.StatusProcessing,
		"$or": []bson.M{
			{"processStartedAt": bson.M{"$lt": staleTime}},
			{"processStartedAt": bson.M{"$exists": false}},
		},
	}

	update := bson.M{
		"$set": bson.M{
			"processStatus": entity.StatusPending,
			"errorDetail":   "Reset from stale PROCESSING state",
		},
	}

	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}
