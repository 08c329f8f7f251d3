package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"variants-service/internal/models"
)

func TestResolveMatchFullSelection(t *testing.T) {
	catalog := sampleCatalog()
	index := BuildIndex(catalog)

	match, attrNames, valueNames := ResolveMatch(index, catalog, Selection{
		"attr-color": "val-blue",
		"attr-size":  "val-s",
	})

	assert.NotNil(t, match)
	assert.Equal(t, "v-blue-s", match.ID)
	assert.Equal(t, "Color, Size", attrNames)
	assert.Equal(t, "Blue, S", valueNames)
}

func TestResolveMatchPartialSelectionReportsNoMatch(t *testing.T) {
	catalog := sampleCatalog()
	index := BuildIndex(catalog)

	match, attrNames, valueNames := ResolveMatch(index, catalog, Selection{"attr-color": "val-blue"})

	assert.Nil(t, match)
	assert.Empty(t, attrNames)
	assert.Empty(t, valueNames)
}

func TestResolveMatchFullSelectionWithoutBackingVariant(t *testing.T) {
	catalog := sampleCatalog()
	index := BuildIndex(catalog)

	// Blue/M is a full combination with no backing variant. Defensive path:
	// report no match, never an error.
	match, _, _ := ResolveMatch(index, catalog, Selection{
		"attr-color": "val-blue",
		"attr-size":  "val-m",
	})
	assert.Nil(t, match)
}

func TestResolveMatchEmptyCatalog(t *testing.T) {
	match, attrNames, valueNames := ResolveMatch(nil, nil, Selection{})
	assert.Nil(t, match)
	assert.Empty(t, attrNames)
	assert.Empty(t, valueNames)
}

func TestResolveMatchRequiresExactAssignmentSet(t *testing.T) {
	// The selection covers Color only, but the sole variant also carries
	// Size: the assignment sets differ, so it is not an exact match even
	// though the Color value agrees.
	catalog := []models.CatalogVariant{
		variant("v1", 1, true, colorOpt("val-red", "Red"), sizeOpt("val-s", "S")),
	}
	index := []AttributeGroup{
		{
			Attribute: AttributeRef{ID: "attr-color", Name: "Color"},
			Values:    []ValueRef{{ID: "val-red", Label: "Red"}},
		},
	}

	match, _, _ := ResolveMatch(index, catalog, Selection{"attr-color": "val-red"})
	assert.Nil(t, match)
}

func TestResolveMatchAtMostOne(t *testing.T) {
	catalog := sampleCatalog()
	index := BuildIndex(catalog)

	// Every full selection resolves to at most one variant.
	for _, colorVal := range []string{"val-red", "val-blue"} {
		for _, sizeVal := range []string{"val-s", "val-m"} {
			sel := Selection{"attr-color": colorVal, "attr-size": sizeVal}
			match, _, _ := ResolveMatch(index, catalog, sel)
			if match == nil {
				continue
			}
			for _, attrID := range []string{"attr-color", "attr-size"} {
				assert.Equal(t, sel[attrID], match.OptionValue(attrID))
			}
		}
	}
}

func TestResolveMatchDisplayStringsFollowIndexOrder(t *testing.T) {
	// Size declares a lower sort key than Color, so it leads both strings.
	catalog := []models.CatalogVariant{
		variant("v1", 1, true,
			models.CatalogOption{AttributeID: "attr-color", AttributeName: "Color", AttributeOrder: 5, ValueID: "val-red", ValueLabel: "Red"},
			models.CatalogOption{AttributeID: "attr-size", AttributeName: "Size", AttributeOrder: 1, ValueID: "val-s", ValueLabel: "S"},
		),
	}
	index := BuildIndex(catalog)

	match, attrNames, valueNames := ResolveMatch(index, catalog, Selection{
		"attr-color": "val-red",
		"attr-size":  "val-s",
	})

	assert.NotNil(t, match)
	assert.Equal(t, "Size, Color", attrNames)
	assert.Equal(t, "S, Red", valueNames)
}
