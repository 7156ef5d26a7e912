package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"dstore-svc/middleware"
	"dstore-svc/models"
	"dstore-svc/service"
	"dstore-svc/store"
)

const tracerName = "dstore-svc"

// CartProvisioner is the slice of the cart workflow the user handler
// needs: every registered user starts with an empty active cart.
type CartProvisioner interface {
	EnsureActiveCart(ctx context.Context, userID string) (*models.Cart, error)
}

type UserHandler struct {
	users     store.UserStore
	carts     CartProvisioner
	jwtSecret string
	logger    *zap.Logger
}

func NewUserHandler(users store.UserStore, carts CartProvisioner, jwtSecret string, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:     users,
		carts:     carts,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "Register")
	defer span.End()

	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	exists, err := h.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to check email", zap.Error(err))
		respondError(c, err)
		return
	}
	if exists {
		respondError(c, store.ErrDuplicateUser)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to hash password", zap.Error(err))
		respondError(c, err)
		return
	}

	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := h.users.Create(ctx, user); err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to create user", zap.Error(err))
		respondError(c, err)
		return
	}

	// New accounts get an empty active cart right away.
	if _, err := h.carts.EnsureActiveCart(ctx, user.ID.Hex()); err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to provision cart", zap.String("user_id", user.ID.Hex()), zap.Error(err))
	}

	token, err := middleware.GenerateToken(h.jwtSecret, user.ID.Hex(), user.Role)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to sign token", zap.Error(err))
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.String("user.id", user.ID.Hex()))
	h.logger.Info("User registered", zap.String("user_id", user.ID.Hex()), zap.String("email", user.Email))

	user.PasswordHash = ""
	respondCreated(c, models.AuthResponse{User: *user, AccessToken: token}, "Registered successfully")
}

func (h *UserHandler) Login(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "Login")
	defer span.End()

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := h.users.FindByEmailWithPassword(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			abortBadCredentials(c)
			return
		}
		span.RecordError(err)
		h.logger.Error("Failed to load user", zap.Error(err))
		respondError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		abortBadCredentials(c)
		return
	}

	token, err := middleware.GenerateToken(h.jwtSecret, user.ID.Hex(), user.Role)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to sign token", zap.Error(err))
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.String("user.id", user.ID.Hex()))
	h.logger.Info("User logged in", zap.String("user_id", user.ID.Hex()))

	user.PasswordHash = ""
	respondOK(c, models.AuthResponse{User: *user, AccessToken: token}, "Logged in successfully")
}

func (h *UserHandler) GetMe(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "GetMe")
	defer span.End()

	uid, err := primitive.ObjectIDFromHex(middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, store.ErrUserNotFound)
		return
	}

	user, err := h.users.FindByID(ctx, uid)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	respondOK(c, user, "")
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "UpdateProfile")
	defer span.End()

	// Users can only edit their own profile.
	if c.Param("userId") != middleware.CurrentUserID(c) {
		respondError(c, service.ErrPermissionDenied)
		return
	}

	uid, err := primitive.ObjectIDFromHex(middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, store.ErrUserNotFound)
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := h.users.FindByID(ctx, uid)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	applyProfileUpdate(user, req)
	user.UpdatedAt = time.Now()

	if err := h.users.Update(ctx, user); err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to update profile", zap.String("user_id", user.ID.Hex()), zap.Error(err))
		respondError(c, err)
		return
	}

	h.logger.Info("Profile updated", zap.String("user_id", user.ID.Hex()))
	respondOK(c, user, "Profile updated successfully")
}

func applyProfileUpdate(user *models.User, req models.UpdateProfileRequest) {
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}
	if req.CoverURL != nil {
		user.CoverURL = *req.CoverURL
	}
	if req.City != nil {
		user.City = *req.City
	}
	if req.Country != nil {
		user.Country = *req.Country
	}
	if req.State != nil {
		user.State = *req.State
	}
	if req.ZipCode != nil {
		user.ZipCode = *req.ZipCode
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
}

func abortBadCredentials(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, models.Response{
		Success: false,
		Errors:  gin.H{"message": "Invalid email or password"},
		Message: "Authentication",
	})
}
