// Package selection implements the product variant resolution engine used by
// the storefront variant picker: deriving the attribute index from a sparse
// variant catalog, deciding per-value selectability and stock state under a
// partial selection, smart-switching to the nearest compatible variant on a
// conflicting pick, and resolving the unique matching variant for a full
// selection.
package selection

import (
	"sort"

	"variants-service/internal/models"
)

// Selection maps attribute ID to the chosen value ID, at most one per
// attribute. It is session-local and rebuilt whenever the catalog reloads.
type Selection map[string]string

// Clone returns a copy of the selection.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// AttributeRef identifies an attribute with its display data.
type AttributeRef struct {
	ID        string
	Name      string
	IconURL   *string
	SortOrder int
}

// ValueRef identifies an attribute value with its display label.
type ValueRef struct {
	ID        string
	Label     string
	SortOrder int
}

// AttributeGroup is one attribute with the distinct values that appear on at
// least one variant in the catalog.
type AttributeGroup struct {
	Attribute AttributeRef
	Values    []ValueRef
}

// BuildIndex derives the ordered attribute index from the variant catalog.
// Attributes are included iff at least one variant carries a value for them,
// ordered by their declared sort key with ties broken by first-seen order.
// Values are de-duplicated by ID and ordered by their declared sort key;
// when the catalog query supplies no per-value ordering (all zero), this
// degrades to first-seen order in the variant list.
func BuildIndex(variants []models.CatalogVariant) []AttributeGroup {
	type attrEntry struct {
		ref       AttributeRef
		firstSeen int
		values    []ValueRef
		valueSeen map[string]int
	}

	byID := make(map[string]*attrEntry)
	var order []*attrEntry
	seen := 0

	for i := range variants {
		for _, opt := range variants[i].Options {
			entry, ok := byID[opt.AttributeID]
			if !ok {
				entry = &attrEntry{
					ref: AttributeRef{
						ID:        opt.AttributeID,
						Name:      opt.AttributeName,
						IconURL:   opt.AttributeIcon,
						SortOrder: opt.AttributeOrder,
					},
					firstSeen: seen,
					valueSeen: make(map[string]int),
				}
				seen++
				byID[opt.AttributeID] = entry
				order = append(order, entry)
			}
			if _, ok := entry.valueSeen[opt.ValueID]; !ok {
				entry.valueSeen[opt.ValueID] = len(entry.values)
				entry.values = append(entry.values, ValueRef{
					ID:        opt.ValueID,
					Label:     opt.ValueLabel,
					SortOrder: opt.ValueOrder,
				})
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].ref.SortOrder < order[j].ref.SortOrder
	})

	index := make([]AttributeGroup, 0, len(order))
	for _, entry := range order {
		values := entry.values
		sort.SliceStable(values, func(i, j int) bool {
			return values[i].SortOrder < values[j].SortOrder
		})
		index = append(index, AttributeGroup{Attribute: entry.ref, Values: values})
	}
	return index
}

// valueLabel looks up the display label for a value ID within a group.
func (g AttributeGroup) valueLabel(valueID string) (string, bool) {
	for _, v := range g.Values {
		if v.ID == valueID {
			return v.Label, true
		}
	}
	return "", false
}
