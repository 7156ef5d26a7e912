package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductType string

const (
	ProductTypePhone     ProductType = "Phone"
	ProductTypeWatch     ProductType = "Watch"
	ProductTypeTablet    ProductType = "Tablet"
	ProductTypeAccessory ProductType = "Accessory"
)

// ProductTypes is the closed set of catalog categories.
var ProductTypes = []ProductType{
	ProductTypePhone,
	ProductTypeWatch,
	ProductTypeTablet,
	ProductTypeAccessory,
}

func (t ProductType) Valid() bool {
	for _, known := range ProductTypes {
		if t == known {
			return true
		}
	}
	return false
}

type PhoneAttributes struct {
	Brand           string `bson:"phone_brand" json:"phone_brand" binding:"required"`
	Color           string `bson:"color" json:"color"`
	StorageCapacity string `bson:"storage_capacity" json:"storage_capacity"`
	ScreenSize      string `bson:"screen_size" json:"screen_size"`
	BatteryCapacity string `bson:"battery_capacity" json:"battery_capacity"`
}

type WatchAttributes struct {
	Brand          string `bson:"watch_brand" json:"watch_brand" binding:"required"`
	WatchType      string `bson:"watch_type" json:"watch_type" binding:"required"`
	Color          string `bson:"color" json:"color"`
	BandMaterial   string `bson:"band_material" json:"band_material"`
	WaterResistant bool   `bson:"water_resistant" json:"water_resistant"`
}

type TabletAttributes struct {
	Brand           string `bson:"tablet_brand" json:"tablet_brand" binding:"required"`
	Color           string `bson:"color" json:"color"`
	StorageCapacity string `bson:"storage_capacity" json:"storage_capacity"`
	ScreenSize      string `bson:"screen_size" json:"screen_size"`
	BatteryCapacity string `bson:"battery_capacity" json:"battery_capacity"`
	OperatingSystem string `bson:"operating_system" json:"operating_system"`
}

type AccessoryAttributes struct {
	AccessoryType string `bson:"accessory_type" json:"accessory_type" binding:"required"`
	Brand         string `bson:"brand" json:"brand"`
	Color         string `bson:"color" json:"color"`
	Material      string `bson:"material" json:"material"`
}

// ProductAttributes is a closed tagged variant over the category set.
// Exactly one branch must be populated and it must match the product's
// type tag; there is no dynamic schema lookup by name.
type ProductAttributes struct {
	Phone     *PhoneAttributes     `bson:"phone,omitempty" json:"phone,omitempty"`
	Watch     *WatchAttributes     `bson:"watch,omitempty" json:"watch,omitempty"`
	Tablet    *TabletAttributes    `bson:"tablet,omitempty" json:"tablet,omitempty"`
	Accessory *AccessoryAttributes `bson:"accessory,omitempty" json:"accessory,omitempty"`
}

// Validate checks that the populated branch matches the type tag.
func (a ProductAttributes) Validate(t ProductType) error {
	set := 0
	if a.Phone != nil {
		set++
	}
	if a.Watch != nil {
		set++
	}
	if a.Tablet != nil {
		set++
	}
	if a.Accessory != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("product_attributes must carry exactly one category, got %d", set)
	}

	var matches bool
	switch t {
	case ProductTypePhone:
		matches = a.Phone != nil
	case ProductTypeWatch:
		matches = a.Watch != nil
	case ProductTypeTablet:
		matches = a.Tablet != nil
	case ProductTypeAccessory:
		matches = a.Accessory != nil
	default:
		return fmt.Errorf("unknown product type %q", t)
	}
	if !matches {
		return fmt.Errorf("product_attributes do not match product type %q", t)
	}
	return nil
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"product_name" json:"product_name"`
	Thumb       string             `bson:"product_thumb" json:"product_thumb"`
	Description string             `bson:"product_description" json:"product_description"`
	Slug        string             `bson:"product_slug" json:"product_slug"`
	Price       float64            `bson:"product_price" json:"product_price"`
	Stock       int                `bson:"product_quantity" json:"product_quantity"`
	Type        ProductType        `bson:"product_type" json:"product_type"`
	Attributes  ProductAttributes  `bson:"product_attributes" json:"product_attributes"`

	RatingsAverage float64  `bson:"product_ratingsAverage" json:"product_ratingsAverage"`
	Variations     []string `bson:"product_variations" json:"product_variations"`

	IsPublished bool `bson:"isPublished" json:"isPublished"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type CreateProductRequest struct {
	Name        string            `json:"product_name" binding:"required"`
	Thumb       string            `json:"product_thumb" binding:"required"`
	Description string            `json:"product_description"`
	Price       float64           `json:"product_price" binding:"required,gt=0"`
	Stock       int               `json:"product_quantity" binding:"gte=0"`
	Type        ProductType       `json:"product_type" binding:"required"`
	Attributes  ProductAttributes `json:"product_attributes" binding:"required"`
	IsPublished bool              `json:"isPublished"`
}

type UpdateProductRequest struct {
	Name        *string            `json:"product_name"`
	Thumb       *string            `json:"product_thumb"`
	Description *string            `json:"product_description"`
	Price       *float64           `json:"product_price" binding:"omitempty,gt=0"`
	Stock       *int               `json:"product_quantity" binding:"omitempty,gte=0"`
	Attributes  *ProductAttributes `json:"product_attributes"`
	IsPublished *bool              `json:"isPublished"`
}

type UpdateStockRequest struct {
	Stock *int `json:"product_quantity" binding:"required,gte=0"`
}

// ListProductsQuery captures the list/search query string. PriceRange
// buckets and the sort keys come from the storefront contract.
type ListProductsQuery struct {
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
	Category    string `form:"category"`
	PriceRange  string `form:"priceRange"` // below | between | above
	Sort        string `form:"sort"`       // priceAsc | priceDesc
	IsPublished string `form:"isPublished"`
	KeySearch   string `form:"keySearch"`
}

type ProductListResult struct {
	Products   []Product `json:"products"`
	TotalPages int       `json:"totalPages"`
	Count      int64     `json:"count"`
}
