package selection

import (
	"strings"

	"variants-service/internal/models"
)

// ResolveMatch resolves the unique variant whose assignment set equals the
// selection exactly, attribute for attribute. It requires a full selection
// (one value per attribute in the index); a partial selection, an empty
// catalog, or a full combination with no backing variant all report no match
// with empty display strings. On success the display strings concatenate the
// attribute names and chosen value labels in attribute-index order.
//
// The catalog is authoritative and non-overlapping (no two variants of one
// product share an identical full assignment set), so at most one match can
// exist; that property is owned by the writer, not re-validated here.
func ResolveMatch(index []AttributeGroup, variants []models.CatalogVariant, sel Selection) (*models.CatalogVariant, string, string) {
	if len(index) == 0 {
		return nil, "", ""
	}

	attrNames := make([]string, 0, len(index))
	valueNames := make([]string, 0, len(index))
	for _, group := range index {
		valueID, ok := sel[group.Attribute.ID]
		if !ok {
			return nil, "", ""
		}
		label, ok := group.valueLabel(valueID)
		if !ok {
			return nil, "", ""
		}
		attrNames = append(attrNames, group.Attribute.Name)
		valueNames = append(valueNames, label)
	}

	for i := range variants {
		v := &variants[i]
		if len(v.Options) != len(sel) {
			continue
		}
		if matchesSelection(v, sel) {
			return v, strings.Join(attrNames, ", "), strings.Join(valueNames, ", ")
		}
	}

	return nil, "", ""
}
