package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"variants-service/internal/models"
)

// Test fixture helpers shared by the selection package tests.

func colorOpt(valueID, label string) models.CatalogOption {
	return models.CatalogOption{
		AttributeID:    "attr-color",
		AttributeName:  "Color",
		AttributeOrder: 1,
		ValueID:        valueID,
		ValueLabel:     label,
	}
}

func sizeOpt(valueID, label string) models.CatalogOption {
	return models.CatalogOption{
		AttributeID:    "attr-size",
		AttributeName:  "Size",
		AttributeOrder: 2,
		ValueID:        valueID,
		ValueLabel:     label,
	}
}

func materialOpt(valueID, label string) models.CatalogOption {
	return models.CatalogOption{
		AttributeID:    "attr-material",
		AttributeName:  "Material",
		AttributeOrder: 3,
		ValueID:        valueID,
		ValueLabel:     label,
	}
}

func variant(id string, qty int, available bool, opts ...models.CatalogOption) models.CatalogVariant {
	return models.CatalogVariant{
		ID:          id,
		SKU:         "SKU-" + id,
		Price:       "19.99",
		Quantity:    qty,
		IsAvailable: available,
		Options:     opts,
	}
}

// The worked catalog from the variant picker design discussions:
// (Red,S,stock 2), (Red,M,stock 0), (Blue,S,stock 5). No Blue/M variant.
func sampleCatalog() []models.CatalogVariant {
	return []models.CatalogVariant{
		variant("v-red-s", 2, true, colorOpt("val-red", "Red"), sizeOpt("val-s", "S")),
		variant("v-red-m", 0, true, colorOpt("val-red", "Red"), sizeOpt("val-m", "M")),
		variant("v-blue-s", 5, true, colorOpt("val-blue", "Blue"), sizeOpt("val-s", "S")),
	}
}

func TestBuildIndexDerivesEveryPairExactlyOnce(t *testing.T) {
	index := BuildIndex(sampleCatalog())

	assert.Len(t, index, 2)
	assert.Equal(t, "Color", index[0].Attribute.Name)
	assert.Equal(t, "Size", index[1].Attribute.Name)

	colorIDs := []string{}
	for _, v := range index[0].Values {
		colorIDs = append(colorIDs, v.ID)
	}
	assert.Equal(t, []string{"val-red", "val-blue"}, colorIDs)

	sizeIDs := []string{}
	for _, v := range index[1].Values {
		sizeIDs = append(sizeIDs, v.ID)
	}
	assert.Equal(t, []string{"val-s", "val-m"}, sizeIDs)
}

func TestBuildIndexEmptyCatalog(t *testing.T) {
	assert.Empty(t, BuildIndex(nil))
	assert.Empty(t, BuildIndex([]models.CatalogVariant{}))
}

func TestBuildIndexAttributeOrderBySortKey(t *testing.T) {
	// Size declares a lower sort key than Color, so it leads even though
	// Color is seen first in the variant list.
	size := models.CatalogOption{AttributeID: "attr-size", AttributeName: "Size", AttributeOrder: 1, ValueID: "val-s", ValueLabel: "S"}
	color := models.CatalogOption{AttributeID: "attr-color", AttributeName: "Color", AttributeOrder: 5, ValueID: "val-red", ValueLabel: "Red"}

	index := BuildIndex([]models.CatalogVariant{
		variant("v1", 1, true, color, size),
	})

	assert.Equal(t, "Size", index[0].Attribute.Name)
	assert.Equal(t, "Color", index[1].Attribute.Name)
}

func TestBuildIndexAttributeOrderTieBreaksFirstSeen(t *testing.T) {
	a := models.CatalogOption{AttributeID: "attr-a", AttributeName: "A", AttributeOrder: 0, ValueID: "val-a1", ValueLabel: "a1"}
	b := models.CatalogOption{AttributeID: "attr-b", AttributeName: "B", AttributeOrder: 0, ValueID: "val-b1", ValueLabel: "b1"}

	index := BuildIndex([]models.CatalogVariant{
		variant("v1", 1, true, b, a),
		variant("v2", 1, true, a, b),
	})

	// Equal sort keys: stable input order decides. B appears first on v1.
	assert.Equal(t, "B", index[0].Attribute.Name)
	assert.Equal(t, "A", index[1].Attribute.Name)
}

func TestBuildIndexValueOrderBySortKeyWithFirstSeenFallback(t *testing.T) {
	sorted := BuildIndex([]models.CatalogVariant{
		variant("v1", 1, true, models.CatalogOption{AttributeID: "attr-size", AttributeName: "Size", ValueID: "val-l", ValueLabel: "L", ValueOrder: 3}),
		variant("v2", 1, true, models.CatalogOption{AttributeID: "attr-size", AttributeName: "Size", ValueID: "val-s", ValueLabel: "S", ValueOrder: 1}),
		variant("v3", 1, true, models.CatalogOption{AttributeID: "attr-size", AttributeName: "Size", ValueID: "val-m", ValueLabel: "M", ValueOrder: 2}),
	})
	labels := []string{}
	for _, v := range sorted[0].Values {
		labels = append(labels, v.Label)
	}
	assert.Equal(t, []string{"S", "M", "L"}, labels)

	// No per-value ordering supplied: first-seen order in the variant list.
	fallback := BuildIndex([]models.CatalogVariant{
		variant("v1", 1, true, models.CatalogOption{AttributeID: "attr-size", AttributeName: "Size", ValueID: "val-l", ValueLabel: "L"}),
		variant("v2", 1, true, models.CatalogOption{AttributeID: "attr-size", AttributeName: "Size", ValueID: "val-s", ValueLabel: "S"}),
	})
	labels = labels[:0]
	for _, v := range fallback[0].Values {
		labels = append(labels, v.Label)
	}
	assert.Equal(t, []string{"L", "S"}, labels)
}

func TestBuildIndexDeduplicatesValuesAcrossVariants(t *testing.T) {
	index := BuildIndex(sampleCatalog())

	// val-s appears on two variants but must show up once.
	count := 0
	for _, v := range index[1].Values {
		if v.ID == "val-s" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
