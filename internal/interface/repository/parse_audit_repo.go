package repository

import (
	"context"
	"time"

	"pnrdesk-service/internal/domain/entity"
	"pnrdesk-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoParseAuditRepository implements the ParseAuditRepository interface
type MongoParseAuditRepository struct {
	collection *mongo.Collection
}

// NewMongoParseAuditRepository creates a new parse audit repository
func NewMongoParseAuditRepository(db *mongo.Database) repository.ParseAuditRepository {
	collection := db.Collection("parseAudits")

	ctx := context.Background()

	// Index on pnr for replay lookups
	pnrIndex := mongo.IndexModel{
		Keys: bson.M{"pnr": 1},
	}

	// Index on createdAt for recency queries
	createdAtIndex := mongo.IndexModel{
		Keys: bson.M{"createdAt": -1},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		pnrIndex,
		createdAtIndex,
	})

	return &MongoParseAuditRepository{
		collection: collection,
	}
}

// Save saves a parse audit entry
func (r *MongoParseAuditRepository) Save(ctx context.Context, audit *entity.ParseAudit) error {
	if audit.ID == "" {
		audit.ID = primitive.NewObjectID().Hex()
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, audit)
	return err
}

// FindRecent returns the most recent audit entries
func (r *MongoParseAuditRepository) FindRecent(ctx context.Context, limit int) ([]*entity.ParseAudit, error) {
	limit64 := int64(limit)
	cursor, err := r.collection.Find(ctx, bson.M{}, &options.FindOptions{
		Limit: &limit64,
		Sort:  bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var audits []*entity.ParseAudit
	if err := cursor.All(ctx, &audits); err != nil {
		return nil, err
	}

	return audits, nil
}
