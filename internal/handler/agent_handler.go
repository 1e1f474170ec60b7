package handler

import (
	"net/http"
	"strconv"
	"time"

	"crm-service/internal/middleware"
	"crm-service/internal/model"
	"crm-service/internal/notify"
	"crm-service/internal/policy"
	"crm-service/pkg/database"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AgentHandler serves the tenant's agent directory. All routes are
// organizer-gated.
type AgentHandler struct {
	producer *notify.Producer
}

// NewAgentHandler wires the handler with the notification producer.
func NewAgentHandler(producer *notify.Producer) *AgentHandler {
	return &AgentHandler{producer: producer}
}

// AgentRequest defines the structure for agent creation/update requests
type AgentRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// List returns the tenant's agents with their user accounts.
func (h *AgentHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAgentOperation("list")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var agents []model.Agent
	result := database.GetDB().
		Scopes(policy.AgentScope(actor)).
		Preload("User").
		Find(&agents)
	if result.Error != nil {
		log.Error("Failed to retrieve agents",
			zap.Uint("tenant_id", actor.TenantID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve agents"})
	}

	log.Info("Agents retrieved",
		zap.Int("count", len(agents)),
		zap.Uint("tenant_id", actor.TenantID))
	return c.JSON(http.StatusOK, agents)
}

// Get returns one agent of the tenant.
func (h *AgentHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAgentOperation("get")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid agent ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid agent ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var agent model.Agent
	result := database.GetDB().
		Scopes(policy.AgentScope(actor)).
		Preload("User").
		Where("agents.id = ?", id).
		First(&agent)
	if result.Error != nil {
		log.Error("Agent not found or does not belong to tenant",
			zap.Uint64("agent_id", id),
			zap.Uint("tenant_id", actor.TenantID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Agent not found"})
	}

	return c.JSON(http.StatusOK, agent)
}

// Create provisions an agent: a user account with the agent role and a
// random throwaway password, the agent record, and an emailed invitation.
func (h *AgentHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAgentOperation("create")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req AgentRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	// Check if user already exists
	defer prometheus.TrackDBOperation("query")(time.Now())
	var existingUser model.User
	if result := database.GetDB().Where("email = ?", req.Email).First(&existingUser); result.Error == nil {
		log.Error("User already exists", zap.String("email", req.Email))
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	// The agent never learns this password; they reset it from the invite.
	throwaway := uuid.New().String()
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(throwaway), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "agent creation failed"})
	}

	user := model.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashedPassword),
		Role:      model.RoleAgent,
	}
	var agent model.Agent

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&user); result.Error != nil {
			return result.Error
		}
		agent = model.Agent{UserID: user.ID, ProfileID: actor.TenantID}
		return tx.Create(&agent).Error
	})
	if err != nil {
		log.Error("Failed to create agent", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "agent creation failed"})
	}

	if err := h.producer.AgentInvited(c.Request().Context(), user.Email, user.FirstName); err != nil {
		// The agent exists either way; the invite can be resent.
		log.Warn("Failed to queue agent invitation", zap.Error(err))
	} else {
		prometheus.RecordNotification(notify.KindAgentInvitation)
	}

	log.Info("Agent created",
		zap.Uint("id", agent.ID),
		zap.String("email", user.Email),
		zap.Uint("tenant_id", agent.ProfileID))

	agent.User = user
	return c.JSON(http.StatusCreated, agent)
}

// Update rewrites the agent's user account fields.
func (h *AgentHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAgentOperation("update")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid agent ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid agent ID"})
	}

	var req AgentRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var agent model.Agent
	result := database.GetDB().
		Scopes(policy.AgentScope(actor)).
		Preload("User").
		Where("agents.id = ?", id).
		First(&agent)
	if result.Error != nil {
		log.Error("Agent not found or does not belong to tenant",
			zap.Uint64("agent_id", id),
			zap.Uint("tenant_id", actor.TenantID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Agent not found"})
	}

	if req.Email != "" {
		agent.User.Email = req.Email
	}
	agent.User.FirstName = req.FirstName
	agent.User.LastName = req.LastName

	if result := database.GetDB().Save(&agent.User); result.Error != nil {
		log.Error("Failed to update agent", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update agent"})
	}

	log.Info("Agent updated", zap.Uint("id", agent.ID))
	return c.JSON(http.StatusOK, agent)
}

// Delete removes the agent and its user account. Leads assigned to the
// agent drop back to the unassigned bucket.
func (h *AgentHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAgentOperation("delete")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid agent ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid agent ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	var agent model.Agent
	result := database.GetDB().
		Scopes(policy.AgentScope(actor)).
		Where("agents.id = ?", id).
		First(&agent)
	if result.Error != nil {
		log.Error("Agent not found or does not belong to tenant",
			zap.Uint64("agent_id", id),
			zap.Uint("tenant_id", actor.TenantID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Agent not found"})
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if result := tx.Model(&model.Lead{}).
			Where("agent_id = ?", agent.ID).
			Update("agent_id", nil); result.Error != nil {
			return result.Error
		}
		if result := tx.Delete(&agent); result.Error != nil {
			return result.Error
		}
		return tx.Delete(&model.User{}, agent.UserID).Error
	})
	if err != nil {
		log.Error("Failed to delete agent", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete agent"})
	}

	log.Info("Agent deleted", zap.Uint("id", agent.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Agent deleted"})
}
