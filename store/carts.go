package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dstore-svc/models"
)

// mongoCartStore keeps each cart in a single document and mutates it with
// aggregation-pipeline updates. Every pipeline ends by recomputing
// cart_count_product from the lines, so the count can never be observed
// out of sync with cart_products, and concurrent line mutations never
// race a separate count write.
type mongoCartStore struct {
	collection *mongo.Collection
}

func NewCartStore(db *mongo.Database) CartStore {
	return &mongoCartStore{collection: db.Collection("Carts")}
}

func activeCartFilter(userID primitive.ObjectID) bson.M {
	return bson.M{"cart_userId": userID, "cart_state": models.CartStateActive}
}

// recountStage recomputes the derived line count inside the same update.
func recountStage() bson.D {
	return bson.D{{Key: "$set", Value: bson.M{
		"cart_count_product": bson.M{"$sum": bson.M{"$ifNull": bson.A{"$cart_products.quantity", bson.A{}}}},
	}}}
}

func (s *mongoCartStore) EnsureActive(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	now := time.Now()
	update := bson.M{
		"$setOnInsert": bson.M{
			"cart_products":      []models.CartItem{},
			"cart_count_product": 0,
			"createdAt":          now,
		},
		"$set": bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	// The unique partial index on (cart_userId, cart_state="active") makes
	// this upsert safe under concurrent calls for the same user.
	var cart models.Cart
	err := s.collection.FindOneAndUpdate(ctx, activeCartFilter(userID), update, opts).Decode(&cart)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost the upsert race; the winner's cart is the active one.
			return s.GetActive(ctx, userID)
		}
		return nil, fmt.Errorf("failed to ensure active cart: %w", err)
	}
	return &cart, nil
}

func (s *mongoCartStore) GetActive(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	if err := s.collection.FindOne(ctx, activeCartFilter(userID)).Decode(&cart); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get active cart: %w", err)
	}
	return &cart, nil
}

func (s *mongoCartStore) AddItem(ctx context.Context, userID primitive.ObjectID, item models.CartItem) error {
	now := time.Now()
	lines := bson.M{"$ifNull": bson.A{"$cart_products", bson.A{}}}
	newLine := bson.M{"productId": item.ProductID, "quantity": item.Quantity}

	// Increment the matching line if present, append otherwise, then
	// recount. One UpdateOne, so there is no read-modify-write window.
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{
			"cart_products": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{item.ProductID, bson.M{"$ifNull": bson.A{"$cart_products.productId", bson.A{}}}}},
				bson.M{"$map": bson.M{
					"input": lines,
					"as":    "line",
					"in": bson.M{"$cond": bson.A{
						bson.M{"$eq": bson.A{"$$line.productId", item.ProductID}},
						bson.M{
							"productId": "$$line.productId",
							"quantity":  bson.M{"$add": bson.A{"$$line.quantity", item.Quantity}},
						},
						"$$line",
					}},
				}},
				bson.M{"$concatArrays": bson.A{lines, bson.A{newLine}}},
			}},
			"createdAt": bson.M{"$ifNull": bson.A{"$createdAt", now}},
			"updatedAt": now,
		}}},
		recountStage(),
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.collection.UpdateOne(ctx, activeCartFilter(userID), pipeline, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Concurrent upsert created the cart first; retry against it.
			_, err = s.collection.UpdateOne(ctx, activeCartFilter(userID), pipeline)
		}
		if err != nil {
			return fmt.Errorf("failed to add cart item: %w", err)
		}
	}
	return nil
}

func (s *mongoCartStore) SetItemQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error {
	now := time.Now()
	lines := bson.M{"$ifNull": bson.A{"$cart_products", bson.A{}}}

	var newLines bson.M
	if quantity <= 0 {
		// Zero or negative removes the line entirely.
		newLines = bson.M{"$filter": bson.M{
			"input": lines,
			"as":    "line",
			"cond":  bson.M{"$ne": bson.A{"$$line.productId", productID}},
		}}
	} else {
		newLines = bson.M{"$map": bson.M{
			"input": lines,
			"as":    "line",
			"in": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$$line.productId", productID}},
				bson.M{"productId": "$$line.productId", "quantity": quantity},
				"$$line",
			}},
		}}
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{"cart_products": newLines, "updatedAt": now}}},
		recountStage(),
	}

	filter := activeCartFilter(userID)
	filter["cart_products.productId"] = productID

	res, err := s.collection.UpdateOne(ctx, filter, pipeline)
	if err != nil {
		return fmt.Errorf("failed to set item quantity: %w", err)
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing cart from a missing line.
		if _, err := s.GetActive(ctx, userID); err != nil {
			return err
		}
		return ErrItemNotFound
	}
	return nil
}

func (s *mongoCartStore) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	now := time.Now()
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{
			"cart_products": bson.M{"$filter": bson.M{
				"input": bson.M{"$ifNull": bson.A{"$cart_products", bson.A{}}},
				"as":    "line",
				"cond":  bson.M{"$ne": bson.A{"$$line.productId", productID}},
			}},
			"updatedAt": now,
		}}},
		recountStage(),
	}

	// Removing a line that is not present is a no-op, not an error.
	res, err := s.collection.UpdateOne(ctx, activeCartFilter(userID), pipeline)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (s *mongoCartStore) SetState(ctx context.Context, userID primitive.ObjectID, from, to models.CartState) error {
	filter := bson.M{"cart_userId": userID, "cart_state": from}
	update := bson.M{"$set": bson.M{"cart_state": to, "updatedAt": time.Now()}}

	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to transition cart state: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}
