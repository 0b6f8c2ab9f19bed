// -- internal/ifcmodel/registry_test.go --
package ifcmodel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimgrid/ifcpanel-cli/internal/ifcmodel"
)

func TestRegistry_RegisterGetUnregister(t *testing.T) {
	t.Parallel()

	reg := ifcmodel.NewRegistry(nil)
	require.NoError(t, reg.Register(&ifcmodel.Model{ID: "m1", Name: "Office"}))

	m, err := reg.Get("m1")
	require.NoError(t, err)
	assert.Equal(t, "Office", m.Name)

	_, err = reg.Get("missing")
	assert.ErrorIs(t, err, ifcmodel.ErrModelNotFound)

	reg.Unregister("m1")
	_, err = reg.Get("m1")
	assert.Error(t, err)
}

func TestRegistry_RejectsEmptyID(t *testing.T) {
	t.Parallel()

	reg := ifcmodel.NewRegistry(nil)
	assert.Error(t, reg.Register(&ifcmodel.Model{}))
	assert.Error(t, reg.Register(nil))
}

func TestRegistry_EachMaterialOrdered(t *testing.T) {
	t.Parallel()

	reg := ifcmodel.NewRegistry(nil)
	require.NoError(t, reg.Register(&ifcmodel.Model{
		ID:        "b",
		Materials: []*ifcmodel.Material{{ID: "m2"}},
	}))
	require.NoError(t, reg.Register(&ifcmodel.Model{
		ID:        "a",
		Materials: []*ifcmodel.Material{{ID: "m1"}},
	}))

	var visited []string
	reg.EachMaterial(func(modelID string, mat *ifcmodel.Material) {
		visited = append(visited, modelID+"/"+mat.ID)
	})
	assert.Equal(t, []string{"a/m1", "b/m2"}, visited)
}

func TestMaterial_ColorShapes(t *testing.T) {
	t.Parallel()

	solid := &ifcmodel.Material{Color: ifcmodel.NewColor(0x112233)}
	hex, ok := solid.ColorHex()
	require.True(t, ok)
	assert.Equal(t, uint32(0x112233), hex)

	lod := &ifcmodel.Material{LODColor: ifcmodel.NewColor(0x445566)}
	lod.SetColorHex(0xABCDEF)
	hex, ok = lod.ColorHex()
	require.True(t, ok)
	assert.Equal(t, uint32(0xABCDEF), hex)

	bare := &ifcmodel.Material{}
	_, ok = bare.ColorHex()
	assert.False(t, ok)
	bare.SetColorHex(0x123456) // nothing to write through, must not panic
}
