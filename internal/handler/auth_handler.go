package handler

import (
	"net/http"
	"time"

	"crm-service/internal/model"
	"crm-service/internal/notify"
	"crm-service/pkg/database"
	"crm-service/pkg/jwtutil"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = time.Hour

// AuthHandler serves signup, login and the password reset flow.
type AuthHandler struct {
	producer *notify.Producer
}

// NewAuthHandler wires the handler with the notification producer.
func NewAuthHandler(producer *notify.Producer) *AuthHandler {
	return &AuthHandler{producer: producer}
}

// Signup registers a new organizer. The user and its tenant profile are
// created in one transaction; a user never exists without its profile.
func (h *AuthHandler) Signup(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.SignupCounter.Inc()

	// Parse request
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		OrgName   string `json:"org_name"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse signup request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		log.Error("Invalid signup data",
			zap.String("email", req.Email),
			zap.Bool("password_provided", req.Password != ""))
		prometheus.RecordAuthError("incomplete_signup")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	// Check if user already exists - track DB query
	defer prometheus.TrackDBOperation("query")(time.Now())
	var existingUser model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&existingUser)
	if result.Error == nil {
		log.Error("User already exists", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	user := model.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashedPassword),
		Role:      model.RoleOrganizer,
	}
	var profile model.Profile

	// Create user and tenant profile atomically
	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&user); result.Error != nil {
			return result.Error
		}
		profile = model.Profile{UserID: user.ID, OrgName: req.OrgName}
		return tx.Create(&profile).Error
	})
	if err != nil {
		log.Error("Failed to create user", zap.Error(err))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	log.Info("Organizer registered",
		zap.String("email", user.Email),
		zap.Uint("profile_id", profile.ID))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		},
		"profile": map[string]interface{}{
			"id":       profile.ID,
			"org_name": profile.OrgName,
		},
	})
}

// Login verifies credentials and issues a session token carrying the actor's
// role and tenant.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	// Parse request
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Find user in database - track DB operation duration
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Error("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Resolve the actor's tenant from its role
	var tenantID, agentID uint
	switch user.Role {
	case model.RoleAgent:
		var agent model.Agent
		if result := database.GetDB().Where("user_id = ?", user.ID).First(&agent); result.Error != nil {
			log.Error("Agent record missing for agent user",
				zap.Uint("user_id", user.ID), zap.Error(result.Error))
			prometheus.RecordAuthError("agent_record_missing")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		tenantID = agent.ProfileID
		agentID = agent.ID
	default:
		var profile model.Profile
		if result := database.GetDB().Where("user_id = ?", user.ID).First(&profile); result.Error != nil {
			log.Error("Profile missing for organizer user",
				zap.Uint("user_id", user.ID), zap.Error(result.Error))
			prometheus.RecordAuthError("profile_missing")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		tenantID = profile.ID
	}

	// Generate JWT token with the actor identity
	token, err := jwtutil.GenerateToken(user.Email, user.ID, user.Role, tenantID, agentID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	// Increment active tokens gauge
	prometheus.IncreaseActiveTokens()

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("role", user.Role),
		zap.Uint("tenant_id", tenantID))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		},
		"tenant_id": tenantID,
	})
}

// Logout ends the session on the client side; tokens are stateless.
func (h *AuthHandler) Logout(c echo.Context) error {
	prometheus.DecreaseActiveTokens()
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// RequestPasswordReset starts the reset flow. The response is identical
// whether or not the email matches a user.
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Email string `json:"email"`
	}

	if err := c.Bind(&req); err != nil || req.Email == "" {
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&user)
	if result.Error == nil {
		token := model.PasswordResetToken{
			Token:     uuid.New().String(),
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(resetTokenTTL),
		}
		if result := database.GetDB().Create(&token); result.Error != nil {
			log.Error("Failed to store reset token", zap.Error(result.Error))
			prometheus.RecordAuthError("reset_token_failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset request failed"})
		}

		if err := h.producer.PasswordReset(c.Request().Context(), user.Email, token.Token); err != nil {
			// Fire-and-forget: the token exists, delivery is retried by ops.
			log.Warn("Failed to queue password reset mail", zap.Error(err))
		} else {
			prometheus.RecordNotification(notify.KindPasswordReset)
		}

		log.Info("Password reset requested", zap.Uint("user_id", user.ID))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "If the address is registered, a reset token has been sent",
	})
}

// ConfirmPasswordReset validates a reset token without consuming it.
func (h *AuthHandler) ConfirmPasswordReset(c echo.Context) error {
	log := logger.FromContext(c)

	tokenString := c.QueryParam("token")
	if tokenString == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var token model.PasswordResetToken
	result := database.GetDB().Where("token = ?", tokenString).First(&token)
	if result.Error != nil || !token.Valid(time.Now()) {
		log.Warn("Invalid or expired reset token")
		prometheus.RecordAuthError("invalid_reset_token")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "token is valid"})
}

// CompletePasswordReset consumes a valid token and sets the new password.
func (h *AuthHandler) CompletePasswordReset(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil || req.Token == "" || req.Password == "" {
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token and password are required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var token model.PasswordResetToken
	result := database.GetDB().Where("token = ?", req.Token).First(&token)
	if result.Error != nil || !token.Valid(time.Now()) {
		log.Warn("Invalid or expired reset token")
		prometheus.RecordAuthError("invalid_reset_token")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	now := time.Now()
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if result := tx.Model(&model.User{}).
			Where("id = ?", token.UserID).
			Update("password", string(hashedPassword)); result.Error != nil {
			return result.Error
		}
		return tx.Model(&token).Update("used_at", now).Error
	})
	if err != nil {
		log.Error("Failed to complete password reset", zap.Error(err))
		prometheus.RecordAuthError("reset_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}

	log.Info("Password reset completed", zap.Uint("user_id", token.UserID))
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
