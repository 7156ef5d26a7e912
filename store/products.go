package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dstore-svc/models"
)

// Price range buckets used by the storefront list/search filters.
const (
	priceRangeBelow   = "below"
	priceRangeBetween = "between"
	priceRangeAbove   = "above"

	priceBucketLow  = 200.0
	priceBucketHigh = 750.0
)

type mongoProductStore struct {
	collection *mongo.Collection
}

func NewProductStore(db *mongo.Database) ProductStore {
	return &mongoProductStore{collection: db.Collection("Products")}
}

func (s *mongoProductStore) Create(ctx context.Context, product *models.Product) error {
	// Duplicate guard on (name, type) before insert; the unique index is
	// the real arbiter under concurrency.
	count, err := s.collection.CountDocuments(ctx, bson.M{
		"product_name": product.Name,
		"product_type": product.Type,
	})
	if err != nil {
		return fmt.Errorf("failed to check existing product: %w", err)
	}
	if count > 0 {
		return ErrDuplicateProduct
	}

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.Slug = slug.Make(product.Name)
	if product.RatingsAverage == 0 {
		product.RatingsAverage = 4.5
	}
	if product.Variations == nil {
		product.Variations = []string{}
	}

	res, err := s.collection.InsertOne(ctx, product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateProduct
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ID = id
	}
	return nil
}

func (s *mongoProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (s *mongoProductStore) List(ctx context.Context, q models.ListProductsQuery) (*models.ProductListResult, error) {
	filter := listFilter(q)

	page, limit := normalizePage(q)
	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	sort := bson.D{{Key: "_id", Value: 1}}
	switch q.Sort {
	case "priceDesc":
		sort = bson.D{{Key: "product_price", Value: -1}}
	case "priceAsc":
		sort = bson.D{{Key: "product_price", Value: 1}}
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64(limit * (page - 1))).
		SetLimit(int64(limit)).
		SetProjection(bson.M{
			"product_name":     1,
			"product_price":    1,
			"product_thumb":    1,
			"product_type":     1,
			"product_quantity": 1,
			"isPublished":      1,
		})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return &models.ProductListResult{
		Products:   products,
		TotalPages: totalPages(count, limit),
		Count:      count,
	}, nil
}

func (s *mongoProductStore) Search(ctx context.Context, q models.ListProductsQuery) (*models.ProductListResult, error) {
	filter := listFilter(q)
	if q.KeySearch != "" {
		filter["$text"] = bson.M{"$search": q.KeySearch}
	}

	page, limit := normalizePage(q)
	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	opts := options.Find().
		SetSkip(int64(limit * (page - 1))).
		SetLimit(int64(limit))

	switch q.Sort {
	case "priceDesc":
		opts.SetSort(bson.D{{Key: "product_price", Value: -1}})
	case "priceAsc":
		opts.SetSort(bson.D{{Key: "product_price", Value: 1}})
	default:
		if q.KeySearch != "" {
			opts.SetSort(bson.M{"score": bson.M{"$meta": "textScore"}})
			opts.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
		} else {
			opts.SetSort(bson.D{{Key: "_id", Value: 1}})
		}
	}

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return &models.ProductListResult{
		Products:   products,
		TotalPages: totalPages(count, limit),
		Count:      count,
	}, nil
}

func (s *mongoProductStore) Update(ctx context.Context, id primitive.ObjectID, req models.UpdateProductRequest) (*models.Product, error) {
	set := bson.M{"updatedAt": time.Now()}
	if req.Name != nil {
		set["product_name"] = *req.Name
		set["product_slug"] = slug.Make(*req.Name)
	}
	if req.Thumb != nil {
		set["product_thumb"] = *req.Thumb
	}
	if req.Description != nil {
		set["product_description"] = *req.Description
	}
	if req.Price != nil {
		set["product_price"] = *req.Price
	}
	if req.Stock != nil {
		set["product_quantity"] = *req.Stock
	}
	if req.Attributes != nil {
		set["product_attributes"] = *req.Attributes
	}
	if req.IsPublished != nil {
		set["isPublished"] = *req.IsPublished
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var product models.Product
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

func (s *mongoProductStore) UpdateStock(ctx context.Context, id primitive.ObjectID, stock int) (*models.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"product_quantity": stock, "updatedAt": time.Now()}}

	var product models.Product
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product stock: %w", err)
	}
	return &product, nil
}

func listFilter(q models.ListProductsQuery) bson.M {
	filter := bson.M{}

	// Unset defaults to published-only, mirroring the storefront.
	switch q.IsPublished {
	case "false":
		filter["isPublished"] = false
	default:
		filter["isPublished"] = true
	}

	if q.Category != "" && q.Category != "All" {
		filter["product_type"] = q.Category
	}

	switch q.PriceRange {
	case priceRangeBelow:
		filter["product_price"] = bson.M{"$lt": priceBucketLow}
	case priceRangeBetween:
		filter["product_price"] = bson.M{"$gte": priceBucketLow, "$lte": priceBucketHigh}
	case priceRangeAbove:
		filter["product_price"] = bson.M{"$gt": priceBucketHigh}
	}

	return filter
}

func normalizePage(q models.ListProductsQuery) (page, limit int) {
	page = q.Page
	if page < 1 {
		page = 1
	}
	limit = q.Limit
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

func totalPages(count int64, limit int) int {
	pages := int(count) / limit
	if int(count)%limit != 0 {
		pages++
	}
	return pages
}
