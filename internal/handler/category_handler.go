package handler

import (
	"net/http"
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
	"gorm.io/gorm"
)

// CategoryRequest defines the structure for category creation/update requests
type CategoryRequest struct {
	Name      string `json:"name"`
	Converted bool   `json:"converted"`
}

// convertedStageName keeps the original UX working: creating a stage with
// this name marks it converted even when the flag is omitted.
const convertedStageName = "Converted"

// ListCategories retrieves the tenant's pipeline stages along with the
// count of leads not yet in any stage.
func ListCategories(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCategoryOperation("list")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var categories []model.Category
	result := database.GetDB().
		Scopes(policy.CategoryScope(actor)).
		Order("name").
		Find(&categories)
	if result.Error != nil {
		log.Error("Failed to retrieve categories",
			zap.Error(result.Error),
			zap.Uint("tenant_id", actor.TenantID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve categories"})
	}

	var uncategorized int64
	result = database.GetDB().
		Model(&model.Lead{}).
		Scopes(policy.LeadScope(actor)).
		Where("leads.category_id IS NULL").
		Count(&uncategorized)
	if result.Error != nil {
		log.Error("Failed to count uncategorized leads", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve categories"})
	}

	log.Info("Categories retrieved",
		zap.Int("count", len(categories)),
		zap.Uint("tenant_id", actor.TenantID))
	return c.JSON(http.StatusOK, echo.Map{
		"categories":            categories,
		"unassigned_lead_count": uncategorized,
	})
}

// GetCategory retrieves a stage and the visible leads currently in it.
func GetCategory(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCategoryOperation("get")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid category ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid category ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var category model.Category
	result := database.GetDB().
		Scopes(policy.CategoryScope(actor)).
		Where("categories.id = ?", id).
		First(&category)
	if result.Error != nil {
		log.Error("Category not found or does not belong to tenant",
			zap.Uint64("category_id", id),
			zap.Uint("tenant_id", actor.TenantID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}

	var leads []model.Lead
	result = database.GetDB().
		Scopes(policy.LeadScope(actor)).
		Where("leads.category_id = ?", category.ID).
		Find(&leads)
	if result.Error != nil {
		log.Error("Failed to retrieve category leads", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve category"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"category": category,
		"leads":    leads,
	})
}

// CreateCategory adds a new pipeline stage to the organizer's tenant.
func CreateCategory(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCategoryOperation("create")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	category := model.Category{
		Name:      req.Name,
		ProfileID: actor.TenantID,
		Converted: req.Converted || req.Name == convertedStageName,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if result := database.GetDB().Create(&category); result.Error != nil {
		log.Error("Failed to create category",
			zap.String("name", req.Name),
			zap.Uint("tenant_id", actor.TenantID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create category"})
	}

	log.Info("Category created",
		zap.Uint("id", category.ID),
		zap.String("name", category.Name),
		zap.Bool("converted", category.Converted),
		zap.Uint("tenant_id", category.ProfileID))
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory renames a stage or toggles its converted flag.
func UpdateCategory(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCategoryOperation("update")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid category ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid category ID"})
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var category model.Category
	result := database.GetDB().
		Scopes(policy.CategoryScope(actor)).
		Where("categories.id = ?", id).
		First(&category)
	if result.Error != nil {
		log.Error("Category not found or does not belong to tenant",
			zap.Uint64("category_id", id),
			zap.Uint("tenant_id", actor.TenantID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}

	if req.Name != "" {
		category.Name = req.Name
	}
	category.Converted = req.Converted || category.Name == convertedStageName

	if result := database.GetDB().Save(&category); result.Error != nil {
		log.Error("Failed to update category", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update category"})
	}

	log.Info("Category updated",
		zap.Uint("id", category.ID),
		zap.String("name", category.Name))
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a stage; leads in it become uncategorized.
func DeleteCategory(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCategoryOperation("delete")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid category ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid category ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	var category model.Category
	result := database.GetDB().
		Scopes(policy.CategoryScope(actor)).
		Where("categories.id = ?", id).
		First(&category)
	if result.Error != nil {
		log.Error("Category not found or does not belong to tenant",
			zap.Uint64("category_id", id),
			zap.Uint("tenant_id", actor.TenantID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if result := tx.Model(&model.Lead{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil); result.Error != nil {
			return result.Error
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		log.Error("Failed to delete category", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete category"})
	}

	log.Info("Category deleted", zap.Uint("id", category.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Category deleted"})
}
