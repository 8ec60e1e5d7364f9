// Package repository archives generated reports. The archive is strictly
// write-behind: report generation never reads from it, and a failed save
// never fails a request.
package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ecograde/ecograde/internal/config"
	"github.com/ecograde/ecograde/internal/models"
)

// Repository defines operations on the report archive
type Repository interface {
	SaveReport(ctx context.Context, record *models.ReportRecord) error
	GetReport(ctx context.Context, id string) (*models.ReportRecord, error)
	GetRecentReports(ctx context.Context, limit int) ([]*models.ReportRecord, error)
	GetStats(ctx context.Context) (*models.Stats, error)
	Close(ctx context.Context) error
}

// MongoRepository implements Repository for MongoDB
type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoRepository creates a new MongoDB repository
func NewMongoRepository(ctx context.Context, cfg config.MongoDBConfig) (*MongoRepository, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.Timeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Check the connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	collection := client.Database(cfg.Database).Collection(cfg.CollectionName)

	// Index URL and recency for the archive reads, request IDs for lookups
	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "url", Value: 1}},
			Options: options.Index().SetBackground(true),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetBackground(true),
		},
		{
			Keys:    bson.D{{Key: "request_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		return nil, err
	}

	return &MongoRepository{
		client:     client,
		collection: collection,
	}, nil
}

// SaveReport archives one generated report
func (r *MongoRepository) SaveReport(ctx context.Context, record *models.ReportRecord) error {
	// Set creation time if not set
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return err
	}

	// Update ID in the record object
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid
	}

	return nil
}

// GetReport retrieves an archived report by its document ID or, when the
// value is not a valid object ID, by the request ID it was generated under.
func (r *MongoRepository) GetReport(ctx context.Context, id string) (*models.ReportRecord, error) {
	filter := bson.M{"request_id": id}
	if objectID, err := primitive.ObjectIDFromHex(id); err == nil {
		filter = bson.M{"_id": objectID}
	}

	var record models.ReportRecord
	err := r.collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Not found
		}
		return nil, err
	}

	return &record, nil
}

// GetRecentReports retrieves the most recently archived reports
func (r *MongoRepository) GetRecentReports(ctx context.Context, limit int) ([]*models.ReportRecord, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*models.ReportRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	return records, nil
}

// GetStats summarizes the archive
func (r *MongoRepository) GetStats(ctx context.Context) (*models.Stats, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	urls, err := r.collection.Distinct(ctx, "url", bson.M{})
	if err != nil {
		return nil, err
	}

	since := time.Now().Add(-24 * time.Hour)
	recent, err := r.collection.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": since}})
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$analysis_method"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Method string `bson:"_id"`
		Count  int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	byMethod := make(map[string]int, len(rows))
	for _, row := range rows {
		byMethod[row.Method] = row.Count
	}

	return &models.Stats{
		TotalReports:   int(total),
		UniqueURLs:     len(urls),
		ReportsLast24h: int(recent),
		ByMethod:       byMethod,
		LastUpdated:    time.Now(),
	}, nil
}

// Close closes the MongoDB connection
func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
