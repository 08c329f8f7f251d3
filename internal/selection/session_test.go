package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"variants-service/internal/models"
)

func TestSessionLoadAndPickNotifiesHost(t *testing.T) {
	var gotMatch *models.CatalogVariant
	var gotAttrs, gotValues string
	calls := 0

	s := NewSession(func(match *models.CatalogVariant, attrNames, valueNames string) {
		gotMatch = match
		gotAttrs = attrNames
		gotValues = valueNames
		calls++
	})

	token := s.StartLoad()
	assert.True(t, s.CompleteLoad(token, sampleCatalog()))
	assert.Equal(t, 1, calls)
	assert.Nil(t, gotMatch)

	s.Pick("attr-color", "val-blue")
	s.Pick("attr-size", "val-s")

	assert.Equal(t, 3, calls)
	assert.NotNil(t, gotMatch)
	assert.Equal(t, "v-blue-s", gotMatch.ID)
	assert.Equal(t, "Color, Size", gotAttrs)
	assert.Equal(t, "Blue, S", gotValues)
}

func TestSessionSmartSwitchOnConflictingPick(t *testing.T) {
	s := NewSession(nil)
	s.CompleteLoad(s.StartLoad(), sampleCatalog())

	s.Pick("attr-color", "val-blue")
	s.Pick("attr-size", "val-m") // no Blue/M variant

	// Smart switch: the only M variant is Red/M.
	assert.Equal(t, Selection{"attr-color": "val-red", "attr-size": "val-m"}, s.Selection())
}

func TestSessionLastRequestWins(t *testing.T) {
	s := NewSession(nil)

	stale := s.StartLoad()
	fresh := s.StartLoad()

	assert.True(t, s.CompleteLoad(fresh, sampleCatalog()))
	s.Pick("attr-color", "val-blue")

	// The stale response arrives after a newer fetch completed: discarded.
	assert.False(t, s.CompleteLoad(stale, nil))
	assert.Equal(t, Selection{"attr-color": "val-blue"}, s.Selection())
	assert.Len(t, s.Index(), 2)
}

func TestSessionReloadInvalidatesSelection(t *testing.T) {
	s := NewSession(nil)
	s.CompleteLoad(s.StartLoad(), sampleCatalog())
	s.Pick("attr-color", "val-blue")

	// Product change: new catalog with different attributes. The previous
	// selection is discarded, never merged.
	next := []models.CatalogVariant{
		variant("v-cotton", 4, true, materialOpt("val-cotton", "Cotton")),
		variant("v-wool", 2, true, materialOpt("val-wool", "Wool")),
	}
	s.CompleteLoad(s.StartLoad(), next)

	sel := s.Selection()
	_, hasColor := sel["attr-color"]
	assert.False(t, hasColor)
}

func TestSessionAutoSelectsSoleValueAttribute(t *testing.T) {
	s := NewSession(nil)

	// Material only ever appears as Cotton: pre-selected. Size has two
	// values and stays open.
	catalog := []models.CatalogVariant{
		variant("v1", 1, true, materialOpt("val-cotton", "Cotton"), sizeOpt("val-s", "S")),
		variant("v2", 1, true, materialOpt("val-cotton", "Cotton"), sizeOpt("val-m", "M")),
	}
	s.CompleteLoad(s.StartLoad(), catalog)

	sel := s.Selection()
	assert.Equal(t, "val-cotton", sel["attr-material"])
	_, hasSize := sel["attr-size"]
	assert.False(t, hasSize)
}

func TestSessionAutoSelectDoesNotOverrideClearedValue(t *testing.T) {
	s := NewSession(nil)
	catalog := []models.CatalogVariant{
		variant("v1", 1, true, materialOpt("val-cotton", "Cotton"), sizeOpt("val-s", "S")),
		variant("v2", 1, true, materialOpt("val-cotton", "Cotton"), sizeOpt("val-m", "M")),
	}
	s.CompleteLoad(s.StartLoad(), catalog)
	assert.Equal(t, "val-cotton", s.Selection()["attr-material"])

	// User explicitly clears the auto-selected value; auto-select must not
	// fight the user within the same index generation.
	s.Clear("attr-material")
	s.Pick("attr-size", "val-s")

	_, hasMaterial := s.Selection()["attr-material"]
	assert.False(t, hasMaterial)
}

func TestSessionRestoreDropsStaleEntries(t *testing.T) {
	s := NewSession(nil)
	s.CompleteLoad(s.StartLoad(), sampleCatalog())

	// Echoed selection from a previous product mentions an attribute and a
	// value that no longer exist; both are silently dropped.
	s.Restore(map[string]string{
		"attr-color": "val-blue",
		"attr-fit":   "val-slim",
		"attr-size":  "val-xl",
	})

	assert.Equal(t, Selection{"attr-color": "val-blue"}, s.Selection())
}

func TestSessionPickIgnoresUnknownPairs(t *testing.T) {
	s := NewSession(nil)
	s.CompleteLoad(s.StartLoad(), sampleCatalog())

	assert.False(t, s.Pick("attr-fit", "val-slim"))
	assert.False(t, s.Pick("attr-color", "val-green"))
	assert.Empty(t, s.Selection())
}

func TestSessionFailLoadRendersNeutralState(t *testing.T) {
	notified := false
	s := NewSession(func(match *models.CatalogVariant, _, _ string) {
		notified = true
		assert.Nil(t, match)
	})

	token := s.StartLoad()
	assert.True(t, s.FailLoad(token))
	assert.True(t, s.Loaded())
	assert.Empty(t, s.Index())
	assert.Empty(t, s.States())
	assert.True(t, notified)
}

func TestSessionStatesReflectSelection(t *testing.T) {
	s := NewSession(nil)
	s.CompleteLoad(s.StartLoad(), sampleCatalog())
	s.Pick("attr-color", "val-blue")

	states := s.States()
	assert.Len(t, states, 2)

	var sizeState models.AttributeState
	for _, st := range states {
		if st.AttributeID == "attr-size" {
			sizeState = st
		}
	}

	for _, v := range sizeState.Values {
		switch v.ValueID {
		case "val-s":
			assert.True(t, v.Selectable)
			assert.False(t, v.OutOfStock)
		case "val-m":
			// No Blue/M variant: not selectable, and explicitly not
			// reported as out of stock.
			assert.False(t, v.Selectable)
			assert.False(t, v.OutOfStock)
		}
	}
}

func TestSessionNotLoadedBeforeFirstCompletion(t *testing.T) {
	s := NewSession(nil)
	assert.False(t, s.Loaded())
	s.StartLoad()
	assert.False(t, s.Loaded())
}
