package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"variants-service/internal/config"
	"variants-service/internal/middleware"
	"variants-service/internal/models"
	"variants-service/internal/repository"
)

type AttributesHandler struct {
	repo repository.VariantsRepositoryInterface
	cfg  *config.Config
}

func NewAttributesHandler(repo repository.VariantsRepositoryInterface, cfg *config.Config) *AttributesHandler {
	return &AttributesHandler{repo: repo, cfg: cfg}
}

// ListAttributes returns the tenant's attributes with their values
// @Summary List attributes
// @Tags attributes
// @Produce json
// @Success 200 {object} models.AttributeListResponse
// @Router /attributes [get]
func (h *AttributesHandler) ListAttributes(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	attributes, err := h.repo.ListAttributes(tenantID)
	if err != nil {
		respondInternalError(c, "FETCH_FAILED", "Failed to retrieve attributes")
		return
	}

	c.JSON(http.StatusOK, models.AttributeListResponse{
		Success: true,
		Data:    attributes,
	})
}

// GetAttribute returns a single attribute with its values
// @Summary Get an attribute
// @Tags attributes
// @Produce json
// @Param id path string true "Attribute ID"
// @Success 200 {object} models.AttributeResponse
// @Router /attributes/{id} [get]
func (h *AttributesHandler) GetAttribute(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	attributeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "INVALID_ATTRIBUTE_ID", "Attribute ID must be a valid UUID")
		return
	}

	attribute, err := h.repo.GetAttributeByID(tenantID, attributeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "ATTRIBUTE_NOT_FOUND", "Attribute not found")
			return
		}
		respondInternalError(c, "FETCH_FAILED", "Failed to retrieve attribute")
		return
	}

	c.JSON(http.StatusOK, models.AttributeResponse{
		Success: true,
		Data:    attribute,
	})
}

// CreateAttribute creates a new attribute
// @Summary Create an attribute
// @Tags attributes
// @Accept json
// @Produce json
// @Param request body models.CreateAttributeRequest true "Attribute payload"
// @Success 201 {object} models.AttributeResponse
// @Router /attributes [post]
func (h *AttributesHandler) CreateAttribute(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.CreateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "VALIDATION_ERROR", err.Error())
		return
	}

	existing, err := h.repo.ListAttributes(tenantID)
	if err != nil {
		respondInternalError(c, "FETCH_FAILED", "Failed to check attribute limit")
		return
	}
	if len(existing) >= h.cfg.MaxAttributesPerTenant {
		respondBadRequest(c, "ATTRIBUTE_LIMIT_EXCEEDED",
			"Maximum number of attributes reached ("+strconv.Itoa(h.cfg.MaxAttributesPerTenant)+")")
		return
	}

	attribute := &models.Attribute{
		Name:    req.Name,
		IconURL: req.IconURL,
	}
	if req.SortOrder != nil {
		attribute.SortOrder = *req.SortOrder
	}

	if err := h.repo.CreateAttribute(tenantID, attribute); err != nil {
		respondInternalError(c, "CREATION_FAILED", "Failed to create attribute")
		return
	}

	c.JSON(http.StatusCreated, models.AttributeResponse{
		Success: true,
		Data:    attribute,
		Message: stringPtr("Attribute created successfully"),
	})
}

// UpdateAttribute updates an attribute
// @Summary Update an attribute
// @Tags attributes
// @Accept json
// @Produce json
// @Param id path string true "Attribute ID"
// @Param request body models.UpdateAttributeRequest true "Attribute update payload"
// @Success 200 {object} models.AttributeResponse
// @Router /attributes/{id} [put]
func (h *AttributesHandler) UpdateAttribute(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	attributeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "INVALID_ATTRIBUTE_ID", "Attribute ID must be a valid UUID")
		return
	}

	var req models.UpdateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "VALIDATION_ERROR", err.Error())
		return
	}

	// Column map rather than a struct: sort_order may legitimately be reset
	// to 0, which a struct update would drop as a zero value.
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.IconURL != nil {
		updates["icon_url"] = *req.IconURL
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}

	if err := h.repo.UpdateAttribute(tenantID, attributeID, updates); err != nil {
		respondInternalError(c, "UPDATE_FAILED", "Failed to update attribute")
		return
	}

	attribute, err := h.repo.GetAttributeByID(tenantID, attributeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "ATTRIBUTE_NOT_FOUND", "Attribute not found")
			return
		}
		respondInternalError(c, "FETCH_FAILED", "Failed to retrieve updated attribute")
		return
	}

	c.JSON(http.StatusOK, models.AttributeResponse{
		Success: true,
		Data:    attribute,
		Message: stringPtr("Attribute updated successfully"),
	})
}

// DeleteAttribute soft deletes an attribute and its values
// @Summary Delete an attribute
// @Tags attributes
// @Produce json
// @Param id path string true "Attribute ID"
// @Success 200 {object} models.SuccessResponse
// @Router /attributes/{id} [delete]
func (h *AttributesHandler) DeleteAttribute(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	attributeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "INVALID_ATTRIBUTE_ID", "Attribute ID must be a valid UUID")
		return
	}

	if err := h.repo.DeleteAttribute(tenantID, attributeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "ATTRIBUTE_NOT_FOUND", "Attribute not found")
			return
		}
		respondInternalError(c, "DELETION_FAILED", "Failed to delete attribute")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Attribute deleted successfully"),
	})
}

// CreateAttributeValue adds a value to an attribute
// @Summary Add an attribute value
// @Tags attributes
// @Accept json
// @Produce json
// @Param id path string true "Attribute ID"
// @Param request body models.CreateAttributeValueRequest true "Value payload"
// @Success 201 {object} models.SuccessResponse
// @Router /attributes/{id}/values [post]
func (h *AttributesHandler) CreateAttributeValue(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	attributeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "INVALID_ATTRIBUTE_ID", "Attribute ID must be a valid UUID")
		return
	}

	var req models.CreateAttributeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "VALIDATION_ERROR", err.Error())
		return
	}

	// The attribute must exist before values can be attached.
	attribute, err := h.repo.GetAttributeByID(tenantID, attributeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "ATTRIBUTE_NOT_FOUND", "Attribute not found")
			return
		}
		respondInternalError(c, "FETCH_FAILED", "Failed to retrieve attribute")
		return
	}
	if len(attribute.Values) >= h.cfg.MaxValuesPerAttribute {
		respondBadRequest(c, "VALUE_LIMIT_EXCEEDED",
			"Maximum number of values per attribute reached ("+strconv.Itoa(h.cfg.MaxValuesPerAttribute)+")")
		return
	}

	value := &models.AttributeValue{
		AttributeID: attributeID,
		Label:       req.Label,
	}
	if req.SortOrder != nil {
		value.SortOrder = *req.SortOrder
	}

	if err := h.repo.CreateAttributeValue(tenantID, value); err != nil {
		respondInternalError(c, "CREATION_FAILED", "Failed to create attribute value")
		return
	}

	c.JSON(http.StatusCreated, models.SuccessResponse{
		Success: true,
		Data:    value,
		Message: stringPtr("Attribute value created successfully"),
	})
}

// UpdateAttributeValue updates an attribute value
// @Summary Update an attribute value
// @Tags attributes
// @Accept json
// @Produce json
// @Param id path string true "Attribute ID"
// @Param valueId path string true "Value ID"
// @Param request body models.UpdateAttributeValueRequest true "Value update payload"
// @Success 200 {object} models.SuccessResponse
// @Router /attributes/{id}/values/{valueId} [put]
func (h *AttributesHandler) UpdateAttributeValue(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	valueID, err := uuid.Parse(c.Param("valueId"))
	if err != nil {
		respondBadRequest(c, "INVALID_VALUE_ID", "Value ID must be a valid UUID")
		return
	}

	var req models.UpdateAttributeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "VALIDATION_ERROR", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Label != nil {
		updates["label"] = *req.Label
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}

	if err := h.repo.UpdateAttributeValue(tenantID, valueID, updates); err != nil {
		respondInternalError(c, "UPDATE_FAILED", "Failed to update attribute value")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Attribute value updated successfully"),
	})
}

// DeleteAttributeValue soft deletes an attribute value
// @Summary Delete an attribute value
// @Tags attributes
// @Produce json
// @Param id path string true "Attribute ID"
// @Param valueId path string true "Value ID"
// @Success 200 {object} models.SuccessResponse
// @Router /attributes/{id}/values/{valueId} [delete]
func (h *AttributesHandler) DeleteAttributeValue(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	valueID, err := uuid.Parse(c.Param("valueId"))
	if err != nil {
		respondBadRequest(c, "INVALID_VALUE_ID", "Value ID must be a valid UUID")
		return
	}

	if err := h.repo.DeleteAttributeValue(tenantID, valueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "VALUE_NOT_FOUND", "Attribute value not found")
			return
		}
		respondInternalError(c, "DELETION_FAILED", "Failed to delete attribute value")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Attribute value deleted successfully"),
	})
}
