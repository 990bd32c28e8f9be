package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bakehouse/storefront/internal/customorder/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "custom_orders"

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection(collectionName),
	}
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) Create(ctx context.Context, order *domain.CustomOrder) error {
	if _, err := m.collection.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert custom order: %w", err)
	}
	return nil
}

func (m *MongoRepository) Get(ctx context.Context, id string) (*domain.CustomOrder, error) {
	var order domain.CustomOrder
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get custom order: %w", err)
	}
	return &order, nil
}

// List returns requests newest first. limit <= 0 means no limit.
func (m *MongoRepository) List(ctx context.Context, limit int64) ([]*domain.CustomOrder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]*domain.CustomOrder, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode custom orders: %w", err)
	}
	return orders, nil
}
