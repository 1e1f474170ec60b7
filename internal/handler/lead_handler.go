package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"crm-service/internal/middleware"
	"crm-service/internal/model"
	"crm-service/internal/policy"
	"crm-service/internal/usecase"
	"crm-service/pkg/database"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LeadHandler serves the lead collection: listing, CRUD, assignment and
// category transitions. State changes go through the lifecycle engine.
type LeadHandler struct {
	lifecycle *usecase.LeadLifecycle
	mediaDir  string
}

// NewLeadHandler wires the handler.
func NewLeadHandler(lifecycle *usecase.LeadLifecycle, mediaDir string) *LeadHandler {
	return &LeadHandler{lifecycle: lifecycle, mediaDir: mediaDir}
}

// List returns the actor's visible assigned leads. Organizers additionally
// get the tenant's unassigned bucket.
func (h *LeadHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordLeadOperation("list")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var leads []model.Lead
	result := database.GetDB().
		Scopes(policy.LeadScope(actor)).
		Where("leads.agent_id IS NOT NULL").
		Order("created_at desc").
		Find(&leads)
	if result.Error != nil {
		log.Error("Failed to retrieve leads",
			zap.Uint("tenant_id", actor.TenantID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve leads"})
	}

	response := echo.Map{"leads": leads}

	if actor.IsOrganizer() {
		var unassigned []model.Lead
		result := database.GetDB().
			Scopes(policy.LeadScope(actor)).
			Where("leads.agent_id IS NULL").
			Order("created_at desc").
			Find(&unassigned)
		if result.Error != nil {
			log.Error("Failed to retrieve unassigned leads", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve leads"})
		}
		response["unassigned_leads"] = unassigned
	}

	prometheus.LeadsPerTenantGauge.WithLabelValues(strconv.FormatUint(uint64(actor.TenantID), 10)).
		Set(float64(len(leads)))

	log.Info("Leads retrieved",
		zap.Int("count", len(leads)),
		zap.Uint("tenant_id", actor.TenantID))
	return c.JSON(http.StatusOK, response)
}

// Get returns one visible lead with its category, agent and follow-ups.
func (h *LeadHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordLeadOperation("get")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid lead ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid lead ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var lead model.Lead
	result := database.GetDB().
		Scopes(policy.LeadScope(actor)).
		Preload("Category").
		Preload("Agent").
		Preload("FollowUps").
		Where("leads.id = ?", id).
		First(&lead)
	if result.Error != nil {
		log.Error("Lead not found or outside actor scope",
			zap.Uint64("lead_id", id),
			zap.Uint("tenant_id", actor.TenantID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Lead not found"})
	}

	return c.JSON(http.StatusOK, lead)
}

// Create stores a new lead in the organizer's tenant.
func (h *LeadHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordLeadOperation("create")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req usecase.CreateLeadInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	lead, err := h.lifecycle.Create(c.Request().Context(), actor, req)
	if err != nil {
		return respondUsecaseError(c, log, err, "Failed to create lead")
	}

	log.Info("Lead created",
		zap.Uint("id", lead.ID),
		zap.String("name", lead.FirstName+" "+lead.LastName),
		zap.Uint("tenant_id", lead.ProfileID))
	return c.JSON(http.StatusCreated, lead)
}

// Update rewrites the organizer-editable fields of a lead.
func (h *LeadHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordLeadOperation("update")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid lead ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid lead ID"})
	}

	var req usecase.CreateLeadInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var lead model.Lead
	result := database.GetDB().
		Scopes(policy.LeadScope(actor)).
		Where("leads.id = ?", id).
		First(&lead)
	if result.Error != nil {
		log.Error("Lead not found or outside actor scope", zap.Uint64("lead_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Lead not found"})
	}

	lead.FirstName = req.FirstName
	lead.LastName = req.LastName
	lead.Age = req.Age
	lead.Email = req.Email
	lead.PhoneNumber = req.PhoneNumber
	lead.Description = req.Description

	if result := database.GetDB().Save(&lead); result.Error != nil {
		log.Error("Failed to update lead", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update lead"})
	}

	log.Info("Lead updated", zap.Uint("id", lead.ID))
	return c.JSON(http.StatusOK, lead)
}

// Delete removes a lead and its follow-ups.
func (h *LeadHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordLeadOperation("delete")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid lead ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid lead ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := h.lifecycle.Delete(c.Request().Context(), actor, uint(id)); err != nil {
		return respondUsecaseError(c, log, err, "Failed to delete lead")
	}

	log.Info("Lead deleted", zap.Uint64("id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Lead deleted"})
}

// AssignAgent hands a lead to an agent of the same tenant.
func (h *LeadHandler) AssignAgent(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordLeadOperation("assign")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid lead ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid lead ID"})
	}

	var req struct {
		AgentID uint `json:"agent_id"`
	}
	if err := c.Bind(&req); err != nil || req.AgentID == 0 {
		log.Error("Invalid request data")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "agent_id is required"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	lead, err := h.lifecycle.AssignAgent(c.Request().Context(), actor, uint(id), req.AgentID)
	if err != nil {
		return respondUsecaseError(c, log, err, "Failed to assign agent")
	}

	log.Info("Agent assigned to lead",
		zap.Uint("lead_id", lead.ID),
		zap.Uint("agent_id", req.AgentID))
	return c.JSON(http.StatusOK, lead)
}

// UpdateCategory moves a lead into another pipeline stage. Allowed for the
// organizer or the lead's assigned agent.
func (h *LeadHandler) UpdateCategory(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordLeadOperation("transition")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid lead ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid lead ID"})
	}

	var req struct {
		CategoryID uint `json:"category_id"`
	}
	if err := c.Bind(&req); err != nil || req.CategoryID == 0 {
		log.Error("Invalid request data")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category_id is required"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	lead, err := h.lifecycle.UpdateCategory(c.Request().Context(), actor, uint(id), req.CategoryID)
	if err != nil {
		return respondUsecaseError(c, log, err, "Failed to update category")
	}

	log.Info("Lead category updated",
		zap.Uint("lead_id", lead.ID),
		zap.Uint("category_id", req.CategoryID))
	return c.JSON(http.StatusOK, lead)
}

// UploadPicture attaches a profile picture to a lead.
func (h *LeadHandler) UploadPicture(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordLeadOperation("upload_picture")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid lead ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid lead ID"})
	}

	var lead model.Lead
	result := database.GetDB().
		Scopes(policy.LeadScope(actor)).
		Where("leads.id = ?", id).
		First(&lead)
	if result.Error != nil {
		log.Error("Lead not found or outside actor scope", zap.Uint64("lead_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Lead not found"})
	}

	file, err := c.FormFile("picture")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "picture file is required"})
	}

	path, err := saveUpload(file, filepath.Join(h.mediaDir, "profile_pictures", fmt.Sprintf("lead_%d", lead.ID)))
	if err != nil {
		log.Error("Failed to store picture", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to store picture"})
	}

	lead.ProfilePicture = path
	if result := database.GetDB().Save(&lead); result.Error != nil {
		log.Error("Failed to update lead", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update lead"})
	}

	log.Info("Lead picture uploaded", zap.Uint("lead_id", lead.ID), zap.String("path", path))
	return c.JSON(http.StatusOK, lead)
}

// ExportJSON is the machine-readable dump of every lead's name and age.
// It applies no tenant scoping; the legacy reporting integration expects
// the full table.
func (h *LeadHandler) ExportJSON(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordLeadOperation("export")

	defer prometheus.TrackDBOperation("query")(time.Now())

	rows, err := h.lifecycle.ExportAll(c.Request().Context())
	if err != nil {
		log.Error("Failed to export leads", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to export leads"})
	}

	return c.JSON(http.StatusOK, echo.Map{"qs": rows})
}

// saveUpload writes a multipart file under dir and returns the stored path.
func saveUpload(file *multipart.FileHeader, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(dir, filepath.Base(file.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return path, nil
}
