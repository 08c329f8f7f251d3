package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"variants-service/internal/config"
	"variants-service/internal/events"
	"variants-service/internal/middleware"
	"variants-service/internal/models"
	"variants-service/internal/repository"
	"variants-service/internal/selection"
)

type VariantsHandler struct {
	repo            repository.VariantsRepositoryInterface
	eventsPublisher *events.Publisher
	logger          *logrus.Logger
	cfg             *config.Config
}

func NewVariantsHandler(repo repository.VariantsRepositoryInterface, eventsPublisher *events.Publisher, logger *logrus.Logger, cfg *config.Config) *VariantsHandler {
	return &VariantsHandler{
		repo:            repo,
		eventsPublisher: eventsPublisher,
		logger:          logger,
		cfg:             cfg,
	}
}

// HealthCheck returns service health status
// @Summary Health check
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "variants-service",
	})
}

// loadSession fetches the product's catalog and installs it into a fresh
// selection session. A fetch failure is not fatal: the session falls back to
// the neutral "no variants available" state (fallback to base price is the
// host's concern).
func (h *VariantsHandler) loadSession(c *gin.Context, tenantID string, productID uuid.UUID) *selection.Session {
	sess := selection.NewSession(nil)
	token := sess.StartLoad()

	catalog, err := h.repo.GetCatalog(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"tenantId":  tenantID,
			"productId": productID.String(),
		}).WithError(err).Warn("Failed to load variant catalog, rendering empty state")
		sess.FailLoad(token)
		return sess
	}

	sess.CompleteLoad(token, catalog)
	return sess
}

// GetVariantCatalog returns the variant catalog for a product together with
// the derived attribute index states
// @Summary Get storefront variant catalog
// @Tags storefront
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.VariantCatalogResponse
// @Router /storefront/products/{id}/variants [get]
func (h *VariantsHandler) GetVariantCatalog(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "INVALID_PRODUCT_ID", "Product ID must be a valid UUID")
		return
	}

	catalog, err := h.repo.GetCatalog(c.Request.Context(), tenantID, productID)
	if err != nil {
		// Not an error state for the storefront: render "no variants".
		h.logger.WithError(err).Warn("Failed to load variant catalog")
		c.JSON(http.StatusOK, models.VariantCatalogResponse{
			Success:    true,
			Data:       []models.CatalogVariant{},
			Attributes: []models.AttributeState{},
			Message:    stringPtr("No variants available"),
		})
		return
	}

	sess := selection.NewSession(nil)
	sess.CompleteLoad(sess.StartLoad(), catalog)

	c.JSON(http.StatusOK, models.VariantCatalogResponse{
		Success:    true,
		Data:       catalog,
		Attributes: sess.States(),
	})
}

// ResolveSelection replays the client's selection against the latest catalog
// snapshot and applies an optional clear and pick through the smart-switch
// resolver
// @Summary Resolve a variant selection
// @Tags storefront
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body models.ResolveSelectionRequest true "Current selection plus optional pick/clear"
// @Success 200 {object} models.ResolveSelectionResponse
// @Router /storefront/products/{id}/selection [post]
func (h *VariantsHandler) ResolveSelection(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "INVALID_PRODUCT_ID", "Product ID must be a valid UUID")
		return
	}

	var req models.ResolveSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "VALIDATION_ERROR", err.Error())
		return
	}

	sess := h.loadSession(c, tenantID, productID)

	// Stale entries referencing attributes or values not in the current
	// index are silently dropped by the session.
	if len(req.Selection) > 0 {
		sess.Restore(req.Selection)
	}
	if req.Clear != nil {
		sess.Clear(*req.Clear)
	}
	if req.Pick != nil {
		sess.Pick(req.Pick.AttributeID, req.Pick.ValueID)
	}

	match, attrNames, valueNames := sess.Resolve()

	c.JSON(http.StatusOK, models.ResolveSelectionResponse{
		Success:        true,
		Selection:      sess.Selection(),
		Attributes:     sess.States(),
		Match:          match,
		AttributeNames: attrNames,
		ValueNames:     valueNames,
	})
}

// ListVariants returns the variants of a product for the admin dashboard
// @Summary List product variants
// @Tags variants
// @Produce json
// @Param id path string true "Product ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.VariantListResponse
// @Router /products/{id}/variants [get]
func (h *VariantsHandler) ListVariants(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "INVALID_PRODUCT_ID", "Product ID must be a valid UUID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.cfg.DefaultPageSize)))
	if limit < 1 {
		limit = h.cfg.DefaultPageSize
	}
	if limit > h.cfg.MaxPageSize {
		limit = h.cfg.MaxPageSize
	}

	variants, err := h.repo.ListVariants(tenantID, productID)
	if err != nil {
		respondInternalError(c, "FETCH_FAILED", "Failed to retrieve variants")
		return
	}

	total := len(variants)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	totalPages := (total + limit - 1) / limit

	c.JSON(http.StatusOK, models.VariantListResponse{
		Success: true,
		Data:    variants[start:end],
		Pagination: &models.PaginationInfo{
			Page:        page,
			Limit:       limit,
			Total:       int64(total),
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrevious: page > 1,
		},
	})
}

// CreateVariant creates a new product variant
// @Summary Create a product variant
// @Tags variants
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body models.CreateVariantRequest true "Variant payload"
// @Success 201 {object} models.VariantResponse
// @Router /products/{id}/variants [post]
func (h *VariantsHandler) CreateVariant(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	actorID := c.GetString("user_id")

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "INVALID_PRODUCT_ID", "Product ID must be a valid UUID")
		return
	}

	var req models.CreateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "VALIDATION_ERROR", err.Error())
		return
	}

	variant := &models.ProductVariant{
		ProductID:    productID,
		SKU:          req.SKU,
		Price:        req.Price,
		ComparePrice: req.ComparePrice,
		IsAvailable:  true,
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			respondBadRequest(c, "VALIDATION_ERROR", "Quantity must be non-negative")
			return
		}
		variant.Quantity = *req.Quantity
	}
	if req.IsAvailable != nil {
		variant.IsAvailable = *req.IsAvailable
	}

	existing, err := h.repo.ListVariants(tenantID, productID)
	if err != nil {
		respondInternalError(c, "FETCH_FAILED", "Failed to check variant limit")
		return
	}
	if len(existing) >= h.cfg.MaxVariantsPerProduct {
		respondBadRequest(c, "VARIANT_LIMIT_EXCEEDED",
			"Maximum number of variants per product reached ("+strconv.Itoa(h.cfg.MaxVariantsPerProduct)+")")
		return
	}

	if len(req.Images) > 0 {
		images := make(models.JSONArray, len(req.Images))
		for i, img := range req.Images {
			images[i] = img
		}
		variant.Images = &images
	}

	if err := h.repo.CreateVariant(tenantID, variant, req.Options); err != nil {
		if errors.Is(err, repository.ErrDuplicateAttributeAssignment) {
			respondBadRequest(c, "DUPLICATE_ATTRIBUTE", "A variant can carry at most one value per attribute")
			return
		}
		respondInternalError(c, "CREATION_FAILED", "Failed to create variant")
		return
	}

	if h.eventsPublisher != nil {
		h.eventsPublisher.PublishVariantCreated(variant, tenantID, actorID)
	}

	c.JSON(http.StatusCreated, models.VariantResponse{
		Success: true,
		Data:    variant,
		Message: stringPtr("Variant created successfully"),
	})
}

// UpdateVariant updates a product variant
// @Summary Update a product variant
// @Tags variants
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param variantId path string true "Variant ID"
// @Param request body models.UpdateVariantRequest true "Variant update payload"
// @Success 200 {object} models.VariantResponse
// @Router /products/{id}/variants/{variantId} [put]
func (h *VariantsHandler) UpdateVariant(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	actorID := c.GetString("user_id")

	variantID, err := uuid.Parse(c.Param("variantId"))
	if err != nil {
		respondBadRequest(c, "INVALID_VARIANT_ID", "Variant ID must be a valid UUID")
		return
	}

	var req models.UpdateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "VALIDATION_ERROR", err.Error())
		return
	}

	// Column map rather than a struct: is_available=false is a legitimate
	// update and must not be dropped as a zero value.
	updates := map[string]interface{}{}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.ComparePrice != nil {
		updates["compare_price"] = *req.ComparePrice
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	if len(req.Images) > 0 {
		images := make(models.JSONArray, len(req.Images))
		for i, img := range req.Images {
			images[i] = img
		}
		updates["images"] = images
	}

	if err := h.repo.UpdateVariant(tenantID, variantID, updates, req.Options); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "VARIANT_NOT_FOUND", "Variant not found")
			return
		}
		if errors.Is(err, repository.ErrDuplicateAttributeAssignment) {
			respondBadRequest(c, "DUPLICATE_ATTRIBUTE", "A variant can carry at most one value per attribute")
			return
		}
		respondInternalError(c, "UPDATE_FAILED", "Failed to update variant")
		return
	}

	variant, err := h.repo.GetVariantByID(tenantID, variantID)
	if err != nil {
		respondInternalError(c, "FETCH_FAILED", "Failed to retrieve updated variant")
		return
	}

	if h.eventsPublisher != nil {
		h.eventsPublisher.PublishVariantUpdated(variant, tenantID, actorID)
	}

	c.JSON(http.StatusOK, models.VariantResponse{
		Success: true,
		Data:    variant,
		Message: stringPtr("Variant updated successfully"),
	})
}

// UpdateVariantInventory sets the stock quantity for a variant
// @Summary Update variant inventory
// @Tags variants
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param variantId path string true "Variant ID"
// @Param request body models.UpdateVariantInventoryRequest true "Inventory payload"
// @Success 200 {object} models.VariantResponse
// @Router /products/{id}/variants/{variantId}/inventory [put]
func (h *VariantsHandler) UpdateVariantInventory(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	actorID := c.GetString("user_id")

	variantID, err := uuid.Parse(c.Param("variantId"))
	if err != nil {
		respondBadRequest(c, "INVALID_VARIANT_ID", "Variant ID must be a valid UUID")
		return
	}

	var req models.UpdateVariantInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.repo.UpdateVariantInventory(tenantID, variantID, req.Quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "VARIANT_NOT_FOUND", "Variant not found")
			return
		}
		respondInternalError(c, "UPDATE_FAILED", "Failed to update variant inventory")
		return
	}

	variant, err := h.repo.GetVariantByID(tenantID, variantID)
	if err != nil {
		respondInternalError(c, "FETCH_FAILED", "Failed to retrieve updated variant")
		return
	}

	if h.eventsPublisher != nil {
		h.eventsPublisher.PublishInventoryChanged(variant, tenantID, actorID)
	}

	c.JSON(http.StatusOK, models.VariantResponse{
		Success: true,
		Data:    variant,
		Message: stringPtr("Inventory updated successfully"),
	})
}

// DeleteVariant soft deletes a product variant
// @Summary Delete a product variant
// @Tags variants
// @Produce json
// @Param id path string true "Product ID"
// @Param variantId path string true "Variant ID"
// @Success 200 {object} models.SuccessResponse
// @Router /products/{id}/variants/{variantId} [delete]
func (h *VariantsHandler) DeleteVariant(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	actorID := c.GetString("user_id")

	variantID, err := uuid.Parse(c.Param("variantId"))
	if err != nil {
		respondBadRequest(c, "INVALID_VARIANT_ID", "Variant ID must be a valid UUID")
		return
	}

	variant, err := h.repo.GetVariantByID(tenantID, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "VARIANT_NOT_FOUND", "Variant not found")
			return
		}
		respondInternalError(c, "FETCH_FAILED", "Failed to retrieve variant")
		return
	}

	if err := h.repo.DeleteVariant(tenantID, variantID); err != nil {
		respondInternalError(c, "DELETION_FAILED", "Failed to delete variant")
		return
	}

	if h.eventsPublisher != nil {
		h.eventsPublisher.PublishVariantDeleted(variant, tenantID, actorID)
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Variant deleted successfully"),
	})
}

// Response helpers

func respondBadRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error:   models.Error{Code: code, Message: message},
	})
}

func respondNotFound(c *gin.Context, code, message string) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Success: false,
		Error:   models.Error{Code: code, Message: message},
	})
}

func respondInternalError(c *gin.Context, code, message string) {
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error:   models.Error{Code: code, Message: message},
	})
}

func stringPtr(s string) *string {
	return &s
}
