package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"crm-service/internal/middleware"
	"crm-service/internal/model"
	"crm-service/internal/policy"
	"crm-service/pkg/database"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// FollowUpHandler serves the append-only follow-up log of a lead.
type FollowUpHandler struct {
	mediaDir string
}

// NewFollowUpHandler wires the handler.
func NewFollowUpHandler(mediaDir string) *FollowUpHandler {
	return &FollowUpHandler{mediaDir: mediaDir}
}

// Create appends a follow-up to a lead the actor can see.
func (h *FollowUpHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordFollowUpOperation("create")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	leadID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid lead ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid lead ID"})
	}

	// The lead must be visible to the actor; agents can only follow up on
	// their own leads.
	var lead model.Lead
	result := database.GetDB().
		Scopes(policy.LeadScope(actor)).
		Where("leads.id = ?", leadID).
		First(&lead)
	if result.Error != nil {
		log.Error("Lead not found or outside actor scope", zap.Uint64("lead_id", leadID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Lead not found"})
	}

	var req struct {
		Notes string `json:"notes" form:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	followUp := model.FollowUp{
		LeadID: lead.ID,
		Notes:  req.Notes,
	}

	// Optional attachment (multipart only)
	if file, err := c.FormFile("attachment"); err == nil {
		path, err := saveUpload(file, filepath.Join(h.mediaDir, "lead_followups", fmt.Sprintf("lead_%d", lead.ID)))
		if err != nil {
			log.Error("Failed to store attachment", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to store attachment"})
		}
		followUp.Attachment = path
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if result := database.GetDB().Create(&followUp); result.Error != nil {
		log.Error("Failed to create follow-up", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create follow-up"})
	}

	log.Info("Follow-up created",
		zap.Uint("id", followUp.ID),
		zap.Uint("lead_id", lead.ID))
	return c.JSON(http.StatusCreated, followUp)
}

// Update overwrites a follow-up's notes in place; no edit history is kept.
func (h *FollowUpHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordFollowUpOperation("update")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid follow-up ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid follow-up ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var followUp model.FollowUp
	result := database.GetDB().
		Scopes(policy.FollowUpScope(actor)).
		Where("follow_ups.id = ?", id).
		First(&followUp)
	if result.Error != nil {
		log.Error("Follow-up not found or outside actor scope", zap.Uint64("followup_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Follow-up not found"})
	}

	var req struct {
		Notes string `json:"notes" form:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	followUp.Notes = req.Notes

	if file, err := c.FormFile("attachment"); err == nil {
		path, err := saveUpload(file, filepath.Join(h.mediaDir, "lead_followups", fmt.Sprintf("lead_%d", followUp.LeadID)))
		if err != nil {
			log.Error("Failed to store attachment", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to store attachment"})
		}
		followUp.Attachment = path
	}

	if result := database.GetDB().Save(&followUp); result.Error != nil {
		log.Error("Failed to update follow-up", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update follow-up"})
	}

	log.Info("Follow-up updated", zap.Uint("id", followUp.ID))
	return c.JSON(http.StatusOK, followUp)
}

// Delete removes a follow-up. The route is organizer-gated.
func (h *FollowUpHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordFollowUpOperation("delete")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid follow-up ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid follow-up ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	var followUp model.FollowUp
	result := database.GetDB().
		Scopes(policy.FollowUpScope(actor)).
		Where("follow_ups.id = ?", id).
		First(&followUp)
	if result.Error != nil {
		log.Error("Follow-up not found or outside actor scope", zap.Uint64("followup_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Follow-up not found"})
	}

	if result := database.GetDB().Delete(&followUp); result.Error != nil {
		log.Error("Failed to delete follow-up", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete follow-up"})
	}

	log.Info("Follow-up deleted", zap.Uint("id", followUp.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Follow-up deleted"})
}
