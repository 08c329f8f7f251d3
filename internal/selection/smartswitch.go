package selection

import (
	"variants-service/internal/models"
)

// matchesSelection reports whether the variant agrees with the selection on
// every attribute present in it. The variant may carry additional attributes.
func matchesSelection(v *models.CatalogVariant, sel Selection) bool {
	for attrID, valueID := range sel {
		if v.OptionValue(attrID) != valueID {
			return false
		}
	}
	return true
}

// ApplyPick merges a user's (attribute, value) pick into the selection.
//
// When the merged selection is still backed by at least one variant the merge
// is accepted as-is and no unrelated choice is dropped. When the pick
// conflicts with previously selected values, the selection snaps to the
// variant that carries the pick and preserves the most prior choices: every
// candidate carrying the pick is scored by how many of the other selected
// attributes it matches, the highest score wins, and ties resolve to the
// first candidate in catalog order. The winner's full assignment set replaces
// the selection, so the clicked value always wins and the rest adapts.
func ApplyPick(variants []models.CatalogVariant, sel Selection, attributeID, valueID string) Selection {
	merged := sel.Clone()
	merged[attributeID] = valueID

	for i := range variants {
		if matchesSelection(&variants[i], merged) {
			return merged
		}
	}

	// The pick conflicts with at least one pinned choice. Find the nearest
	// variant that carries the picked pair.
	var best *models.CatalogVariant
	bestScore := -1
	for i := range variants {
		v := &variants[i]
		if v.OptionValue(attributeID) != valueID {
			continue
		}
		score := 0
		for attrID, want := range sel {
			if attrID == attributeID {
				continue
			}
			if v.OptionValue(attrID) == want {
				score++
			}
		}
		if score > bestScore {
			best = v
			bestScore = score
		}
	}

	// Should not happen: the pick was only offered because it was selectable.
	// Collapse to just the clicked pair rather than guessing.
	if best == nil {
		return Selection{attributeID: valueID}
	}

	next := make(Selection, len(best.Options))
	for _, opt := range best.Options {
		next[opt.AttributeID] = opt.ValueID
	}
	return next
}
