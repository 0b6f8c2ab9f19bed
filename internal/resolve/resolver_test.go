// -- internal/resolve/resolver_test.go --
package resolve_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bimgrid/ifcpanel-cli/api/schemas"
	"github.com/bimgrid/ifcpanel-cli/internal/resolve"
)

func wallBundle() schemas.RawRecord {
	return schemas.RawRecord{
		"type":           "IfcWallStandardCase",
		"expressID":      311.0,
		"Name":           map[string]any{"value": "Basic Wall:Interior:221"},
		"GlobalId":       map[string]any{"value": "2O2Fr$t4X7Zf8NOew3FLOH"},
		"PredefinedType": map[string]any{"value": "NOTDEFINED"},
		"Tag":            map[string]any{"value": "221"},
		"Description":    map[string]any{"value": "Partition wall"},
		"ObjectPlacement": map[string]any{"expressID": 92.0},
		"OverallHeight":   map[string]any{"value": 2.7},
		"IsDefinedBy": []any{
			map[string]any{
				"type":          schemas.KindPropertySet,
				"Name":          map[string]any{"value": "Pset_WallCommon"},
				"HasProperties": []any{property("IsExternal", false)},
			},
			map[string]any(quantitySet("Qto_WallBaseQuantities",
				quantity("IfcQuantityArea", "NetSideArea", map[string]any{"AreaValue": 12.5}))),
		},
		"IsTypedBy": []any{
			map[string]any{
				"type":         "IfcWallType",
				"Name":         map[string]any{"value": "Interior Partition"},
				"FireRating":   map[string]any{"value": "REI60"},
				"OwnerHistory": map[string]any{"expressID": 41.0},
				"HasPropertySets": []any{
					map[string]any{
						"type":          schemas.KindPropertySet,
						"Name":          map[string]any{"value": "Pset_WallTypeCommon"},
						"HasProperties": []any{property("AcousticRating", "52dB")},
					},
				},
			},
		},
		"ContainedInStructure": []any{
			map[string]any{
				"type":              "IfcRelContainedInSpatialStructure",
				"RelatingStructure": map[string]any{"Name": map[string]any{"value": "Level 2"}},
			},
		},
		"HasAssociations": []any{
			map[string]any{
				"type":             schemas.KindRelAssociatesMaterial,
				"RelatingMaterial": map[string]any{"Name": map[string]any{"value": "Gypsum Board"}},
			},
			// Wrong kind: never contributes a material.
			map[string]any{
				"type": "IfcRelAssociatesClassification",
				"Name": map[string]any{"value": "Uniclass EF_25_10"},
			},
		},
	}
}

func TestResolver_FullBundle(t *testing.T) {
	t.Parallel()

	r := resolve.New(zap.NewNop())
	vm := r.Resolve("model-a", 311, wallBundle())

	assert.Equal(t, "model-a", vm.ModelID)
	assert.Equal(t, int64(311), vm.LocalID)
	assert.Equal(t, "IfcWallStandardCase", vm.Type)
	assert.Equal(t, "Basic Wall:Interior:221", vm.Name)
	assert.Equal(t, "2O2Fr$t4X7Zf8NOew3FLOH", vm.GlobalID)
	assert.Equal(t, "NOTDEFINED", vm.PredefinedType)
	assert.Equal(t, "221", vm.Tag)

	require.NotNil(t, vm.Description)
	assert.Equal(t, "Partition wall", vm.Description.Description)

	require.NotNil(t, vm.TypeInfo)
	assert.Equal(t, "Interior Partition", vm.TypeInfo.Name)
	assert.Equal(t, "REI60", vm.TypeInfo.Properties["FireRating"])
	assert.Equal(t, "AcousticRating: 52dB", vm.TypeInfo.Properties["[Pset_WallTypeCommon]"])

	assert.Equal(t, "Level 2", vm.Location)
	assert.Equal(t, []string{"Gypsum Board"}, vm.Materials)

	// Residual scalar fields surface as direct attributes; placement, loader
	// plumbing, and relation sequences never do.
	if diff := cmp.Diff(map[string]any{"OverallHeight": 2.7}, vm.Attributes); diff != "" {
		t.Errorf("direct attributes mismatch (-want +got):\n%s", diff)
	}

	require.Contains(t, vm.PropertySets, "Pset_WallCommon")
	require.Contains(t, vm.QuantitySets, "Qto_WallBaseQuantities")
	assert.Equal(t, schemas.QuantityValue{Value: 12.5, Unit: "m²"},
		vm.QuantitySets["Qto_WallBaseQuantities"]["NetSideArea"])
}

// A bundle entirely empty of relations resolves to identity and direct
// attributes only, without failing.
func TestResolver_NoRelations(t *testing.T) {
	t.Parallel()

	r := resolve.New(nil)
	vm := r.Resolve("model-a", 7, schemas.RawRecord{
		"type":     "IfcDoor",
		"Name":     map[string]any{"value": "Door-7"},
		"GlobalId": map[string]any{"value": "0aF$gh"},
	})

	assert.Equal(t, "IfcDoor", vm.Type)
	assert.Equal(t, "Door-7", vm.Name)
	assert.Nil(t, vm.TypeInfo)
	assert.Empty(t, vm.Location)
	assert.Empty(t, vm.Materials)
	assert.Empty(t, vm.PropertySets)
	assert.Empty(t, vm.QuantitySets)
	assert.Nil(t, vm.Description, "descriptive block only present when a field is non-empty")
}

func TestResolver_EmptyBundleDegrades(t *testing.T) {
	t.Parallel()

	r := resolve.New(nil)
	vm := r.Resolve("model-a", 99, nil)

	assert.Equal(t, schemas.TypeUnknown, vm.Type)
	assert.Equal(t, int64(99), vm.LocalID)
	assert.Empty(t, vm.Name)
}

// Containment records that carry the name themselves (no RelatingStructure)
// still resolve; the first non-empty name wins.
func TestResolver_LocationFallbackShape(t *testing.T) {
	t.Parallel()

	r := resolve.New(nil)
	vm := r.Resolve("m", 1, schemas.RawRecord{
		"type": "IfcWindow",
		"ContainedInStructure": []any{
			map[string]any{"type": "IfcRelContainedInSpatialStructure"},
			map[string]any{"Name": map[string]any{"value": "Roof Level"}},
		},
	})

	assert.Equal(t, "Roof Level", vm.Location)
}

func TestResolver_MaterialOrderPreserved(t *testing.T) {
	t.Parallel()

	r := resolve.New(nil)
	vm := r.Resolve("m", 2, schemas.RawRecord{
		"type": "IfcSlab",
		"HasAssociations": []any{
			map[string]any{
				"type":             schemas.KindRelAssociatesMaterial,
				"RelatingMaterial": map[string]any{"Name": map[string]any{"value": "Concrete C30/37"}},
			},
			map[string]any{
				"type": schemas.KindRelAssociatesMaterial,
				"Name": map[string]any{"value": "Screed"},
			},
			// Empty names are skipped.
			map[string]any{
				"type":             schemas.KindRelAssociatesMaterial,
				"RelatingMaterial": map[string]any{"Name": map[string]any{"value": ""}},
			},
		},
	})

	assert.Equal(t, []string{"Concrete C30/37", "Screed"}, vm.Materials)
}
