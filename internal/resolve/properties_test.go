// -- internal/resolve/properties_test.go --
package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimgrid/ifcpanel-cli/api/schemas"
	"github.com/bimgrid/ifcpanel-cli/internal/resolve"
)

func property(name string, nominal any) map[string]any {
	return map[string]any{
		"Name":         map[string]any{"value": name},
		"NominalValue": map[string]any{"value": nominal},
	}
}

func TestFormatPropertySets_SubRecordEncoding(t *testing.T) {
	t.Parallel()

	in := []schemas.RawRecord{{
		"type": schemas.KindPropertySet,
		"Name": map[string]any{"value": "Pset_WallCommon"},
		"HasProperties": []any{
			property("IsExternal", true),
			property("FireRating", "REI120"),
			property("ThermalTransmittance", 0.24),
		},
	}}

	got := resolve.FormatPropertySets(in)
	require.Contains(t, got, "Pset_WallCommon")
	assert.Equal(t, schemas.PropertySet{
		"IsExternal":           true,
		"FireRating":           "REI120",
		"ThermalTransmittance": 0.24,
	}, got["Pset_WallCommon"])
}

func TestFormatPropertySets_DirectFieldEncoding(t *testing.T) {
	t.Parallel()

	in := []schemas.RawRecord{{
		"type":         schemas.KindPropertySet,
		"Name":         map[string]any{"value": "Pset_Manufacturer"},
		"GlobalId":     map[string]any{"value": "1kTv$yNde5GfRQ"},
		"OwnerHistory": map[string]any{"expressID": 41.0},
		"Description":  map[string]any{"value": "vendor data"},
		"Manufacturer": map[string]any{"value": "Acme"},
		"ArticleNo":    "W-203",
		"Nested":       map[string]any{"Name": "not a scalar"},
	}}

	got := resolve.FormatPropertySets(in)
	require.Contains(t, got, "Pset_Manufacturer")
	set := got["Pset_Manufacturer"]
	assert.Equal(t, schemas.PropertySet{"Manufacturer": "Acme", "ArticleNo": "W-203"}, set)

	// The structural keys never surface as property names.
	for _, key := range []string{"Name", "type", "HasProperties", "GlobalId", "OwnerHistory", "Description"} {
		assert.NotContains(t, set, key)
	}
}

// Both encodings merge additively into one mapping; direct fields are
// processed after sub-records, so on a collision the direct field wins.
func TestFormatPropertySets_MergeIsAdditiveLastWins(t *testing.T) {
	t.Parallel()

	in := []schemas.RawRecord{{
		"type":          schemas.KindPropertySet,
		"Name":          map[string]any{"value": "Pset_DoorCommon"},
		"HasProperties": []any{property("Reference", "D-01"), property("IsExternal", false)},
		"Reference":     map[string]any{"value": "D-02"},
	}}

	got := resolve.FormatPropertySets(in)
	require.Contains(t, got, "Pset_DoorCommon")
	assert.Equal(t, "D-02", got["Pset_DoorCommon"]["Reference"])
	assert.Equal(t, false, got["Pset_DoorCommon"]["IsExternal"])
}

func TestFormatPropertySets_NameFallbacks(t *testing.T) {
	t.Parallel()

	in := []schemas.RawRecord{
		// No name: falls back to the kind tag.
		{"type": "IfcDoorLiningProperties", "LiningDepth": map[string]any{"value": 0.05}},
		// No name, no kind: falls back to the fixed placeholder.
		{"ShimThickness": 0.002},
	}

	got := resolve.FormatPropertySets(in)
	require.Contains(t, got, "IfcDoorLiningProperties")
	require.Contains(t, got, "PropertySet")
	assert.Equal(t, 0.05, got["IfcDoorLiningProperties"]["LiningDepth"])
	assert.Equal(t, 0.002, got["PropertySet"]["ShimThickness"])
}

// A record tagged as an element quantity never comes back from the property
// formatter, even when it also exposes plain scalar fields.
func TestFormatPropertySets_QuantityRecordExcluded(t *testing.T) {
	t.Parallel()

	in := []schemas.RawRecord{{
		"type":                schemas.KindElementQuantity,
		"Name":                map[string]any{"value": "Qto_WallBaseQuantities"},
		"MethodOfMeasurement": "BaseQuantities",
	}}

	assert.Empty(t, resolve.FormatPropertySets(in))
}

func TestFormatPropertySets_EmptySetOmitted(t *testing.T) {
	t.Parallel()

	in := []schemas.RawRecord{{
		"type":          schemas.KindPropertySet,
		"Name":          map[string]any{"value": "Pset_Empty"},
		"HasProperties": []any{},
	}}

	assert.Empty(t, resolve.FormatPropertySets(in))
}

// Two records sharing a set name contribute to the same merged mapping.
func TestFormatPropertySets_SameSetNameMerges(t *testing.T) {
	t.Parallel()

	in := []schemas.RawRecord{
		{
			"type":          schemas.KindPropertySet,
			"Name":          map[string]any{"value": "Pset_WallCommon"},
			"HasProperties": []any{property("IsExternal", true)},
		},
		{
			"type":          schemas.KindPropertySet,
			"Name":          map[string]any{"value": "Pset_WallCommon"},
			"HasProperties": []any{property("LoadBearing", true)},
		},
	}

	got := resolve.FormatPropertySets(in)
	require.Contains(t, got, "Pset_WallCommon")
	assert.Len(t, got["Pset_WallCommon"], 2)
}
