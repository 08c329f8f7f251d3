package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"variants-service/internal/models"
)

// Cache TTL constants
const (
	CatalogCacheTTL   = 5 * time.Minute  // Storefront variant catalog per product
	AttributeCacheTTL = 30 * time.Minute // Attributes rarely change
)

var ErrDuplicateAttributeAssignment = errors.New("variant carries more than one value for the same attribute")

// VariantsRepositoryInterface abstracts persistence for handlers and tests.
type VariantsRepositoryInterface interface {
	GetCatalog(ctx context.Context, tenantID string, productID uuid.UUID) ([]models.CatalogVariant, error)

	ListVariants(tenantID string, productID uuid.UUID) ([]models.ProductVariant, error)
	GetVariantByID(tenantID string, variantID uuid.UUID) (*models.ProductVariant, error)
	CreateVariant(tenantID string, variant *models.ProductVariant, options []models.VariantOptionInput) error
	UpdateVariant(tenantID string, variantID uuid.UUID, updates map[string]interface{}, options []models.VariantOptionInput) error
	UpdateVariantInventory(tenantID string, variantID uuid.UUID, quantity int) error
	DeleteVariant(tenantID string, variantID uuid.UUID) error

	ListAttributes(tenantID string) ([]models.Attribute, error)
	GetAttributeByID(tenantID string, attributeID uuid.UUID) (*models.Attribute, error)
	CreateAttribute(tenantID string, attribute *models.Attribute) error
	UpdateAttribute(tenantID string, attributeID uuid.UUID, updates map[string]interface{}) error
	DeleteAttribute(tenantID string, attributeID uuid.UUID) error
	CreateAttributeValue(tenantID string, value *models.AttributeValue) error
	UpdateAttributeValue(tenantID string, valueID uuid.UUID, updates map[string]interface{}) error
	DeleteAttributeValue(tenantID string, valueID uuid.UUID) error
}

type VariantsRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

var _ VariantsRepositoryInterface = (*VariantsRepository)(nil)

func NewVariantsRepository(db *gorm.DB, redis *redis.Client) *VariantsRepository {
	return &VariantsRepository{
		db:    db,
		redis: redis,
	}
}

func catalogCacheKey(tenantID string, productID uuid.UUID) string {
	return fmt.Sprintf("variants:catalog:%s:%s", tenantID, productID.String())
}

// invalidateCatalogCache drops the cached catalog for one product.
func (r *VariantsRepository) invalidateCatalogCache(ctx context.Context, tenantID string, productID uuid.UUID) {
	if r.redis == nil {
		return
	}
	_ = r.redis.Del(ctx, catalogCacheKey(tenantID, productID)).Err()
}

// invalidateTenantCatalogCaches drops every cached catalog for a tenant.
// Attribute display data is denormalized into the catalog payload, so an
// attribute change touches all products.
func (r *VariantsRepository) invalidateTenantCatalogCaches(ctx context.Context, tenantID string) {
	if r.redis == nil {
		return
	}
	pattern := fmt.Sprintf("variants:catalog:%s:*", tenantID)
	iter := r.redis.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		_ = r.redis.Del(ctx, iter.Val()).Err()
	}
}

// Catalog read path

// GetCatalog returns the flattened variant catalog for a product: every
// variant with its (attribute, value) assignments joined to display data.
// Variants are ordered by (created_at, id) so that catalog order, and with it
// the smart-switch tie-break, is stable across fetches.
func (r *VariantsRepository) GetCatalog(ctx context.Context, tenantID string, productID uuid.UUID) ([]models.CatalogVariant, error) {
	cacheKey := catalogCacheKey(tenantID, productID)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var catalog []models.CatalogVariant
			if err := json.Unmarshal([]byte(val), &catalog); err == nil {
				return catalog, nil
			}
		}
	}

	var variants []models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Preload("Options").
		Order("created_at ASC, id ASC").
		Find(&variants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}

	attributes, err := r.ListAttributes(tenantID)
	if err != nil {
		return nil, err
	}

	catalog := buildCatalog(variants, attributes)

	if r.redis != nil {
		if data, err := json.Marshal(catalog); err == nil {
			r.redis.Set(ctx, cacheKey, data, CatalogCacheTTL)
		}
	}

	return catalog, nil
}

// buildCatalog flattens persisted variants into the DTOs the selection
// engine consumes, joining each option to its attribute/value display data.
// Options referencing attributes or values that have since been deleted are
// skipped rather than surfaced as broken assignments.
func buildCatalog(variants []models.ProductVariant, attributes []models.Attribute) []models.CatalogVariant {
	attrByID := make(map[string]*models.Attribute, len(attributes))
	valueByID := make(map[string]*models.AttributeValue)
	for i := range attributes {
		attrByID[attributes[i].ID.String()] = &attributes[i]
		for _, v := range attributes[i].Values {
			valueByID[v.ID.String()] = v
		}
	}

	catalog := make([]models.CatalogVariant, 0, len(variants))
	for i := range variants {
		v := &variants[i]
		cv := models.CatalogVariant{
			ID:           v.ID.String(),
			SKU:          v.SKU,
			Price:        v.Price,
			ComparePrice: v.ComparePrice,
			Quantity:     v.Quantity,
			IsAvailable:  v.IsAvailable,
			Options:      make([]models.CatalogOption, 0, len(v.Options)),
		}
		if v.Images != nil {
			for _, img := range *v.Images {
				if s, ok := img.(string); ok {
					cv.Images = append(cv.Images, s)
				}
			}
		}
		for _, opt := range v.Options {
			attr, ok := attrByID[opt.AttributeID.String()]
			if !ok {
				continue
			}
			value, ok := valueByID[opt.ValueID.String()]
			if !ok {
				continue
			}
			cv.Options = append(cv.Options, models.CatalogOption{
				AttributeID:    attr.ID.String(),
				AttributeName:  attr.Name,
				AttributeIcon:  attr.IconURL,
				AttributeOrder: attr.SortOrder,
				ValueID:        value.ID.String(),
				ValueLabel:     value.Label,
				ValueOrder:     value.SortOrder,
			})
		}
		catalog = append(catalog, cv)
	}
	return catalog
}

// Variant CRUD Operations

// ListVariants retrieves all variants of a product with their options.
func (r *VariantsRepository) ListVariants(tenantID string, productID uuid.UUID) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	err := r.db.
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Preload("Options").
		Order("created_at ASC, id ASC").
		Find(&variants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	return variants, nil
}

// GetVariantByID retrieves a single variant with its options.
func (r *VariantsRepository) GetVariantByID(tenantID string, variantID uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.
		Where("tenant_id = ? AND id = ?", tenantID, variantID).
		Preload("Options").
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// CreateVariant creates a variant together with its option assignments in one
// transaction. At most one value per attribute is accepted; the unique index
// on (variant_id, attribute_id) backs this up at the schema level.
func (r *VariantsRepository) CreateVariant(tenantID string, variant *models.ProductVariant, options []models.VariantOptionInput) error {
	if err := validateOptionInputs(options); err != nil {
		return err
	}

	variant.TenantID = tenantID
	variant.CreatedAt = time.Now()
	variant.UpdatedAt = time.Now()
	if variant.ID == uuid.Nil {
		variant.ID = uuid.New()
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(variant).Error; err != nil {
			return err
		}
		return createOptions(tx, variant.ID, options)
	})
	if err != nil {
		return fmt.Errorf("failed to create variant: %w", err)
	}

	r.invalidateCatalogCache(context.Background(), tenantID, variant.ProductID)
	return nil
}

// UpdateVariant updates variant fields and, when options are supplied,
// replaces the full assignment set. Updates is a column map, not a struct:
// gorm drops zero-valued struct fields, which would make is_available=false
// impossible to persist.
func (r *VariantsRepository) UpdateVariant(tenantID string, variantID uuid.UUID, updates map[string]interface{}, options []models.VariantOptionInput) error {
	if err := validateOptionInputs(options); err != nil {
		return err
	}

	existing, err := r.GetVariantByID(tenantID, variantID)
	if err != nil {
		return err
	}

	updates["updated_at"] = time.Now()
	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ProductVariant{}).
			Where("tenant_id = ? AND id = ?", tenantID, variantID).
			Updates(updates).Error; err != nil {
			return err
		}
		if options == nil {
			return nil
		}
		if err := tx.Where("variant_id = ?", variantID).Delete(&models.VariantOption{}).Error; err != nil {
			return err
		}
		return createOptions(tx, variantID, options)
	})
	if err != nil {
		return fmt.Errorf("failed to update variant: %w", err)
	}

	r.invalidateCatalogCache(context.Background(), tenantID, existing.ProductID)
	return nil
}

// UpdateVariantInventory sets the stock quantity for a variant.
func (r *VariantsRepository) UpdateVariantInventory(tenantID string, variantID uuid.UUID, quantity int) error {
	existing, err := r.GetVariantByID(tenantID, variantID)
	if err != nil {
		return err
	}

	err = r.db.Model(&models.ProductVariant{}).
		Where("tenant_id = ? AND id = ?", tenantID, variantID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update variant inventory: %w", err)
	}

	r.invalidateCatalogCache(context.Background(), tenantID, existing.ProductID)
	return nil
}

// DeleteVariant soft deletes a variant.
func (r *VariantsRepository) DeleteVariant(tenantID string, variantID uuid.UUID) error {
	existing, err := r.GetVariantByID(tenantID, variantID)
	if err != nil {
		return err
	}

	err = r.db.Where("tenant_id = ? AND id = ?", tenantID, variantID).
		Delete(&models.ProductVariant{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete variant: %w", err)
	}

	r.invalidateCatalogCache(context.Background(), tenantID, existing.ProductID)
	return nil
}

func validateOptionInputs(options []models.VariantOptionInput) error {
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		if seen[opt.AttributeID] {
			return ErrDuplicateAttributeAssignment
		}
		seen[opt.AttributeID] = true
	}
	return nil
}

func createOptions(tx *gorm.DB, variantID uuid.UUID, options []models.VariantOptionInput) error {
	for _, opt := range options {
		attrID, err := uuid.Parse(opt.AttributeID)
		if err != nil {
			return fmt.Errorf("invalid attribute id %q: %w", opt.AttributeID, err)
		}
		valueID, err := uuid.Parse(opt.ValueID)
		if err != nil {
			return fmt.Errorf("invalid value id %q: %w", opt.ValueID, err)
		}
		row := models.VariantOption{
			ID:          uuid.New(),
			VariantID:   variantID,
			AttributeID: attrID,
			ValueID:     valueID,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// Attribute CRUD Operations

// ListAttributes retrieves the tenant's attributes with their values, both in
// declared sort order.
func (r *VariantsRepository) ListAttributes(tenantID string) ([]models.Attribute, error) {
	var attributes []models.Attribute
	err := r.db.
		Where("tenant_id = ?", tenantID).
		Preload("Values", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Order("sort_order ASC, created_at ASC").
		Find(&attributes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attributes: %w", err)
	}
	return attributes, nil
}

// GetAttributeByID retrieves an attribute with its values.
func (r *VariantsRepository) GetAttributeByID(tenantID string, attributeID uuid.UUID) (*models.Attribute, error) {
	var attribute models.Attribute
	err := r.db.
		Where("tenant_id = ? AND id = ?", tenantID, attributeID).
		Preload("Values", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		First(&attribute).Error
	if err != nil {
		return nil, err
	}
	return &attribute, nil
}

// CreateAttribute creates a new attribute.
func (r *VariantsRepository) CreateAttribute(tenantID string, attribute *models.Attribute) error {
	attribute.TenantID = tenantID
	attribute.CreatedAt = time.Now()
	attribute.UpdatedAt = time.Now()
	if attribute.ID == uuid.Nil {
		attribute.ID = uuid.New()
	}
	if err := r.db.Create(attribute).Error; err != nil {
		return fmt.Errorf("failed to create attribute: %w", err)
	}
	return nil
}

// UpdateAttribute updates attribute fields and invalidates tenant catalogs.
// Updates is a column map so sort_order can be reset to 0.
func (r *VariantsRepository) UpdateAttribute(tenantID string, attributeID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	err := r.db.Model(&models.Attribute{}).
		Where("tenant_id = ? AND id = ?", tenantID, attributeID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update attribute: %w", err)
	}
	r.invalidateTenantCatalogCaches(context.Background(), tenantID)
	return nil
}

// DeleteAttribute soft deletes an attribute and its values, and removes the
// variant options referencing it so no variant keeps a dangling assignment.
func (r *VariantsRepository) DeleteAttribute(tenantID string, attributeID uuid.UUID) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		// Ownership check: variant_options has no tenant column, so the
		// cascade must not run for an attribute of another tenant.
		var attribute models.Attribute
		if err := tx.Where("tenant_id = ? AND id = ?", tenantID, attributeID).
			First(&attribute).Error; err != nil {
			return err
		}
		if err := tx.Where("attribute_id = ?", attributeID).
			Delete(&models.VariantOption{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND attribute_id = ?", tenantID, attributeID).
			Delete(&models.AttributeValue{}).Error; err != nil {
			return err
		}
		return tx.Where("tenant_id = ? AND id = ?", tenantID, attributeID).
			Delete(&models.Attribute{}).Error
	})
	if err != nil {
		return err
	}
	r.invalidateTenantCatalogCaches(context.Background(), tenantID)
	return nil
}

// CreateAttributeValue adds a value to an attribute.
func (r *VariantsRepository) CreateAttributeValue(tenantID string, value *models.AttributeValue) error {
	value.TenantID = tenantID
	value.CreatedAt = time.Now()
	value.UpdatedAt = time.Now()
	if value.ID == uuid.Nil {
		value.ID = uuid.New()
	}
	if err := r.db.Create(value).Error; err != nil {
		return fmt.Errorf("failed to create attribute value: %w", err)
	}
	r.invalidateTenantCatalogCaches(context.Background(), tenantID)
	return nil
}

// UpdateAttributeValue updates an attribute value. Updates is a column map so
// sort_order can be reset to 0.
func (r *VariantsRepository) UpdateAttributeValue(tenantID string, valueID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	err := r.db.Model(&models.AttributeValue{}).
		Where("tenant_id = ? AND id = ?", tenantID, valueID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update attribute value: %w", err)
	}
	r.invalidateTenantCatalogCaches(context.Background(), tenantID)
	return nil
}

// DeleteAttributeValue soft deletes an attribute value and removes the
// variant options referencing it. Leaving those options in place would let
// two variants collapse to the same catalog assignment set once the dangling
// reference is skipped, breaking the at-most-one-match guarantee.
func (r *VariantsRepository) DeleteAttributeValue(tenantID string, valueID uuid.UUID) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		// Ownership check before the cascade, same as DeleteAttribute.
		var value models.AttributeValue
		if err := tx.Where("tenant_id = ? AND id = ?", tenantID, valueID).
			First(&value).Error; err != nil {
			return err
		}
		if err := tx.Where("value_id = ?", valueID).
			Delete(&models.VariantOption{}).Error; err != nil {
			return err
		}
		return tx.Where("tenant_id = ? AND id = ?", tenantID, valueID).
			Delete(&models.AttributeValue{}).Error
	})
	if err != nil {
		return err
	}
	r.invalidateTenantCatalogCaches(context.Background(), tenantID)
	return nil
}
