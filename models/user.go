package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone" json:"phone"`

	// Never serialized; only loaded through FindByEmailWithPassword.
	PasswordHash string `bson:"password" json:"-"`

	Role Role `bson:"role" json:"role"`

	AvatarURL string `bson:"avatarUrl" json:"avatarUrl"`
	CoverURL  string `bson:"coverUrl" json:"coverUrl"`

	City    string `bson:"city" json:"city"`
	Country string `bson:"country" json:"country"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zipCode" json:"zipCode"`
	Address string `bson:"address" json:"address"`

	IsDeleted bool `bson:"isDeleted" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest carries the whitelisted profile fields. Pointers
// distinguish "not sent" from an explicit empty value.
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatarUrl"`
	CoverURL  *string `json:"coverUrl"`
	City      *string `json:"city"`
	Country   *string `json:"country"`
	State     *string `json:"state"`
	ZipCode   *string `json:"zipCode"`
	Address   *string `json:"address"`
}

type AuthResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
}
