package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"dstore-svc/cache"
	"dstore-svc/models"
	"dstore-svc/store"
)

// Catalog resolves products for the cart and checkout workflows, fronted
// by Redis with singleflight so a hot product miss hits Mongo once.
type Catalog struct {
	products store.ProductStore
	rdb      *redis.Client // nil disables caching
	sfg      singleflight.Group
	logger   *zap.Logger
}

func NewCatalog(products store.ProductStore, rdb *redis.Client, logger *zap.Logger) *Catalog {
	return &Catalog{
		products: products,
		rdb:      rdb,
		logger:   logger,
	}
}

func (c *Catalog) FindByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	if c.rdb != nil {
		if data, err := cache.GetProduct(ctx, c.rdb, id); err == nil {
			var product models.Product
			if err := json.Unmarshal(data, &product); err == nil {
				return &product, nil
			}
		}
	}

	v, err, _ := c.sfg.Do(id, func() (interface{}, error) {
		product, err := c.products.FindByID(ctx, oid)
		if err != nil {
			return nil, err
		}

		if c.rdb != nil {
			go func() {
				if err := cache.SetProduct(context.Background(), c.rdb, id, product, cache.ProductTTL); err != nil {
					c.logger.Warn("Failed to cache product", zap.String("product_id", id), zap.Error(err))
				}
			}()
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Product), nil
}

// FindByIDFresh skips the cache and reads the store directly. Stock
// gates use it so a cached quantity never widens the window between the
// check and the write.
func (c *Catalog) FindByIDFresh(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	return c.products.FindByID(ctx, oid)
}

// Invalidate drops the cached entry after a catalog mutation.
func (c *Catalog) Invalidate(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	if err := cache.DeleteProduct(ctx, c.rdb, id); err != nil {
		c.logger.Warn("Failed to invalidate product cache", zap.String("product_id", id), zap.Error(err))
	}
}

// resolveObjectID is shared by the services that accept transport ids.
func resolveObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}
