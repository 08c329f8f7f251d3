package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONArray type for PostgreSQL JSONB (array)
type JSONArray []interface{}

func (j JSONArray) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONArray, 0)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// JSON type for PostgreSQL JSONB (object/map)
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// Attribute represents a product dimension of variation (e.g. Color, Size)
type Attribute struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string          `json:"tenantId" gorm:"not null;index:idx_attributes_tenant_id;index:idx_attributes_tenant_name,unique"`
	Name      string          `json:"name" gorm:"not null;index:idx_attributes_tenant_name,unique"`
	IconURL   *string         `json:"iconUrl,omitempty" gorm:"column:icon_url"`
	SortOrder int             `json:"sortOrder" gorm:"not null;default:0"`
	Values    []*AttributeValue `json:"values,omitempty" gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// AttributeValue represents one concrete option within an attribute (e.g. Red)
type AttributeValue struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AttributeID uuid.UUID       `json:"attributeId" gorm:"type:uuid;not null;index;index:idx_attribute_values_attr_label,unique"`
	TenantID    string          `json:"tenantId" gorm:"not null;index"`
	Label       string          `json:"label" gorm:"not null;index:idx_attribute_values_attr_label,unique"`
	SortOrder   int             `json:"sortOrder" gorm:"not null;default:0"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// ProductVariant represents one purchasable combination of attribute values.
// The variant set for a product is sparse: absent combinations do not exist,
// which is distinct from existing but unavailable/out of stock.
type ProductVariant struct {
	ID           uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID     string           `json:"tenantId" gorm:"not null;index:idx_variants_tenant_id;index:idx_variants_tenant_product"`
	ProductID    uuid.UUID        `json:"productId" gorm:"type:uuid;not null;index;index:idx_variants_tenant_product"`
	SKU          string           `json:"sku" gorm:"not null;unique"`
	Price        string           `json:"price" gorm:"not null"`
	ComparePrice *string          `json:"comparePrice,omitempty"`
	Quantity     int              `json:"quantity" gorm:"not null;default:0"`
	IsAvailable  bool             `json:"isAvailable" gorm:"not null;default:true"`
	Images       *JSONArray       `json:"images,omitempty" gorm:"type:jsonb"`
	Options      []*VariantOption `json:"options,omitempty" gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	DeletedAt    *gorm.DeletedAt  `json:"deletedAt,omitempty" gorm:"index"`
}

// VariantOption is one (attribute, value) assignment on a variant.
// The unique index on (variant_id, attribute_id) enforces at most one
// value per attribute per variant.
type VariantOption struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	VariantID   uuid.UUID `json:"variantId" gorm:"type:uuid;not null;index;index:idx_variant_options_variant_attr,unique"`
	AttributeID uuid.UUID `json:"attributeId" gorm:"type:uuid;not null;index;index:idx_variant_options_variant_attr,unique"`
	ValueID     uuid.UUID `json:"valueId" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName returns the table name for the Attribute model
func (Attribute) TableName() string {
	return "attributes"
}

// TableName returns the table name for the AttributeValue model
func (AttributeValue) TableName() string {
	return "attribute_values"
}

// TableName returns the table name for the ProductVariant model
func (ProductVariant) TableName() string {
	return "product_variants"
}

// TableName returns the table name for the VariantOption model
func (VariantOption) TableName() string {
	return "variant_options"
}

// ============================================================================
// Catalog DTOs - the read-only projection the selection engine works on
// ============================================================================

// CatalogOption is one (attribute, value) assignment with nested display data,
// as returned by the storefront variant query.
type CatalogOption struct {
	AttributeID    string  `json:"attributeId"`
	AttributeName  string  `json:"attributeName"`
	AttributeIcon  *string `json:"attributeIcon,omitempty"`
	AttributeOrder int     `json:"attributeOrder"`
	ValueID        string  `json:"valueId"`
	ValueLabel     string  `json:"valueLabel"`
	ValueOrder     int     `json:"valueOrder"`
}

// CatalogVariant is the flattened variant record consumed by the selection
// engine and the storefront API.
type CatalogVariant struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Price        string          `json:"price"`
	ComparePrice *string         `json:"comparePrice,omitempty"`
	Quantity     int             `json:"quantity"`
	IsAvailable  bool            `json:"isAvailable"`
	Images       []string        `json:"images,omitempty"`
	Options      []CatalogOption `json:"options"`
}

// InStock reports whether the variant can actually be purchased.
// The availability flag is independent of stock: a variant can be marked
// unavailable even with quantity on hand.
func (v *CatalogVariant) InStock() bool {
	return v.IsAvailable && v.Quantity > 0
}

// OptionValue returns the value ID the variant carries for an attribute,
// or "" when the variant has no assignment for it.
func (v *CatalogVariant) OptionValue(attributeID string) string {
	for i := range v.Options {
		if v.Options[i].AttributeID == attributeID {
			return v.Options[i].ValueID
		}
	}
	return ""
}

// ============================================================================
// Request / Response models
// ============================================================================

// CreateAttributeRequest represents a request to create an attribute
type CreateAttributeRequest struct {
	Name      string  `json:"name" binding:"required"`
	IconURL   *string `json:"iconUrl,omitempty"`
	SortOrder *int    `json:"sortOrder,omitempty"`
}

// UpdateAttributeRequest represents a request to update an attribute
type UpdateAttributeRequest struct {
	Name      *string `json:"name,omitempty"`
	IconURL   *string `json:"iconUrl,omitempty"`
	SortOrder *int    `json:"sortOrder,omitempty"`
}

// CreateAttributeValueRequest represents a request to add a value to an attribute
type CreateAttributeValueRequest struct {
	Label     string `json:"label" binding:"required"`
	SortOrder *int   `json:"sortOrder,omitempty"`
}

// UpdateAttributeValueRequest represents a request to update an attribute value
type UpdateAttributeValueRequest struct {
	Label     *string `json:"label,omitempty"`
	SortOrder *int    `json:"sortOrder,omitempty"`
}

// VariantOptionInput is one (attribute, value) assignment in a variant request
type VariantOptionInput struct {
	AttributeID string `json:"attributeId" binding:"required"`
	ValueID     string `json:"valueId" binding:"required"`
}

// CreateVariantRequest represents a request to create a product variant
type CreateVariantRequest struct {
	SKU          string               `json:"sku" binding:"required"`
	Price        string               `json:"price" binding:"required"`
	ComparePrice *string              `json:"comparePrice,omitempty"`
	Quantity     *int                 `json:"quantity,omitempty"`
	IsAvailable  *bool                `json:"isAvailable,omitempty"`
	Images       []string             `json:"images,omitempty"`
	Options      []VariantOptionInput `json:"options" binding:"required,min=1,dive"`
}

// UpdateVariantRequest represents a request to update a product variant
type UpdateVariantRequest struct {
	Price        *string              `json:"price,omitempty"`
	ComparePrice *string              `json:"comparePrice,omitempty"`
	IsAvailable  *bool                `json:"isAvailable,omitempty"`
	Images       []string             `json:"images,omitempty"`
	Options      []VariantOptionInput `json:"options,omitempty"`
}

// UpdateVariantInventoryRequest represents a stock adjustment for a variant
type UpdateVariantInventoryRequest struct {
	Quantity int     `json:"quantity" binding:"min=0"`
	Reason   *string `json:"reason,omitempty"`
}

// ResolveSelectionRequest is the storefront resolution request: the client's
// current selection plus an optional new pick or cleared attribute.
type ResolveSelectionRequest struct {
	Selection map[string]string `json:"selection,omitempty"` // attributeId -> valueId
	Pick      *SelectionPick    `json:"pick,omitempty"`
	Clear     *string           `json:"clear,omitempty"` // attributeId to clear
}

// SelectionPick is a single (attribute, value) choice
type SelectionPick struct {
	AttributeID string `json:"attributeId" binding:"required"`
	ValueID     string `json:"valueId" binding:"required"`
}

// ValueState is the render state of one attribute value under the
// current selection
type ValueState struct {
	ValueID    string `json:"valueId"`
	Label      string `json:"label"`
	Selected   bool   `json:"selected"`
	Selectable bool   `json:"selectable"`
	OutOfStock bool   `json:"outOfStock"`
}

// AttributeState groups the value states for one attribute
type AttributeState struct {
	AttributeID string       `json:"attributeId"`
	Name        string       `json:"name"`
	IconURL     *string      `json:"iconUrl,omitempty"`
	Values      []ValueState `json:"values"`
}

// ResolveSelectionResponse is the storefront resolution result
type ResolveSelectionResponse struct {
	Success        bool              `json:"success"`
	Selection      map[string]string `json:"selection"`
	Attributes     []AttributeState  `json:"attributes"`
	Match          *CatalogVariant   `json:"match"`
	AttributeNames string            `json:"attributeNames"`
	ValueNames     string            `json:"valueNames"`
}

// VariantCatalogResponse is the storefront catalog envelope
type VariantCatalogResponse struct {
	Success    bool             `json:"success"`
	Data       []CatalogVariant `json:"data"`
	Attributes []AttributeState `json:"attributes"`
	Message    *string          `json:"message,omitempty"`
}

// Response types
type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

type AttributeResponse struct {
	Success bool       `json:"success"`
	Data    *Attribute `json:"data"`
	Message *string    `json:"message,omitempty"`
}

type AttributeListResponse struct {
	Success bool        `json:"success"`
	Data    []Attribute `json:"data"`
}

type VariantResponse struct {
	Success bool            `json:"success"`
	Data    *ProductVariant `json:"data"`
	Message *string         `json:"message,omitempty"`
}

type VariantListResponse struct {
	Success    bool             `json:"success"`
	Data       []ProductVariant `json:"data"`
	Pagination *PaginationInfo  `json:"pagination,omitempty"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     Error  `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details *JSON  `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}
