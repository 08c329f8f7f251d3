package selection

import (
	"variants-service/internal/models"
)

// compatibleExcept reports whether the variant agrees with the selection on
// every attribute except the one under test.
func compatibleExcept(v *models.CatalogVariant, exceptAttrID string, sel Selection) bool {
	for attrID, valueID := range sel {
		if attrID == exceptAttrID {
			continue
		}
		if v.OptionValue(attrID) != valueID {
			return false
		}
	}
	return true
}

// IsSelectable reports whether choosing (attributeID, valueID) leads to at
// least one existing variant, given that every other already-pinned choice in
// the selection must be preserved. With an empty selection every pair that
// appears on any variant is selectable.
func IsSelectable(variants []models.CatalogVariant, attributeID, valueID string, sel Selection) bool {
	for i := range variants {
		v := &variants[i]
		if v.OptionValue(attributeID) != valueID {
			continue
		}
		if compatibleExcept(v, attributeID, sel) {
			return true
		}
	}
	return false
}

// IsOutOfStock reports whether every variant compatible with choosing
// (attributeID, valueID) under the current selection is depleted or flagged
// unavailable. When no compatible variant exists it reports false: an absent
// combination is not the same UI state as a depleted one.
func IsOutOfStock(variants []models.CatalogVariant, attributeID, valueID string, sel Selection) bool {
	found := false
	for i := range variants {
		v := &variants[i]
		if v.OptionValue(attributeID) != valueID {
			continue
		}
		if !compatibleExcept(v, attributeID, sel) {
			continue
		}
		if v.InStock() {
			return false
		}
		found = true
	}
	return found
}
