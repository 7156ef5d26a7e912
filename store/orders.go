package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dstore-svc/models"
)

type mongoOrderStore struct {
	collection *mongo.Collection
}

func NewOrderStore(db *mongo.Database) OrderStore {
	return &mongoOrderStore{collection: db.Collection("Orders")}
}

// Insert is append-only. The unique index on order_payment.paypalCaptureId
// rejects a second order for the same capture.
func (s *mongoOrderStore) Insert(ctx context.Context, order *models.Order) error {
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	res, err := s.collection.InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateCapture
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return nil
}

func (s *mongoOrderStore) ListByUserAndStatus(ctx context.Context, userID primitive.ObjectID, status models.OrderStatus) ([]models.Order, error) {
	filter := bson.M{"order_userId": userID, "order_status": status}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}
