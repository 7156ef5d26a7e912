package handlers

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"dstore-svc/models"
	"dstore-svc/service"
	"dstore-svc/store"
)

// ProductCatalog is the cached read path for single products.
type ProductCatalog interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Invalidate(ctx context.Context, id string)
}

type ProductHandler struct {
	products store.ProductStore
	catalog  ProductCatalog
	logger   *zap.Logger
}

func NewProductHandler(products store.ProductStore, catalog ProductCatalog, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		catalog:  catalog,
		logger:   logger,
	}
}

// validateCategory accepts empty and "All" as "no filter"; anything else
// must be a known catalog category.
func validateCategory(category string) error {
	if category == "" || category == "All" {
		return nil
	}
	if !models.ProductType(category).Valid() {
		return fmt.Errorf("unknown category %q", category)
	}
	return nil
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "CreateProduct")
	defer span.End()

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if !req.Type.Valid() {
		respondValidationError(c, fmt.Errorf("unknown product type %q", req.Type))
		return
	}
	if err := req.Attributes.Validate(req.Type); err != nil {
		respondValidationError(c, err)
		return
	}

	product := &models.Product{
		Name:        req.Name,
		Thumb:       req.Thumb,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Type:        req.Type,
		Attributes:  req.Attributes,
		IsPublished: req.IsPublished,
	}
	if err := h.products.Create(ctx, product); err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to create product", zap.Error(err))
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.String("product.id", product.ID.Hex()))
	h.logger.Info("Product created",
		zap.String("product_id", product.ID.Hex()),
		zap.String("product_type", string(product.Type)),
	)
	respondCreated(c, product, "Product created successfully")
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "GetProducts")
	defer span.End()

	var q models.ListProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondValidationError(c, err)
		return
	}
	if err := validateCategory(q.Category); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := h.products.List(ctx, q)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to list products", zap.Error(err))
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("products.count", len(result.Products)))
	respondOK(c, result, "")
}

func (h *ProductHandler) SearchProducts(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "SearchProducts")
	defer span.End()

	var q models.ListProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondValidationError(c, err)
		return
	}
	if err := validateCategory(q.Category); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := h.products.Search(ctx, q)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to search products", zap.Error(err))
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("products.count", len(result.Products)))
	respondOK(c, result, "")
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "GetProduct")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("product.id", id))

	product, err := h.catalog.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	// Unpublished products are invisible on the storefront read path.
	if !product.IsPublished {
		respondError(c, store.ErrProductNotFound)
		return
	}
	respondOK(c, product, "")
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "UpdateProduct")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("product.id", id))

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		respondError(c, service.ErrInvalidID)
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	product, err := h.products.Update(ctx, oid, req)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to update product", zap.String("product_id", id), zap.Error(err))
		respondError(c, err)
		return
	}

	h.catalog.Invalidate(ctx, id)
	h.logger.Info("Product updated", zap.String("product_id", id))
	respondOK(c, product, "Product updated successfully")
}

func (h *ProductHandler) UpdateStock(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "UpdateStock")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("product.id", id))

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		respondError(c, service.ErrInvalidID)
		return
	}

	var req models.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	product, err := h.products.UpdateStock(ctx, oid, *req.Stock)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to update stock", zap.String("product_id", id), zap.Error(err))
		respondError(c, err)
		return
	}

	h.catalog.Invalidate(ctx, id)
	h.logger.Info("Stock updated", zap.String("product_id", id), zap.Int("stock", product.Stock))
	respondOK(c, product, "Stock updated successfully")
}
