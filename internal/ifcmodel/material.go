// -- internal/ifcmodel/material.go --
package ifcmodel

import "fmt"

// Color is a 24-bit RGB color encoded as an integer, matching the renderer's
// hex encoding.
type Color struct {
	hex uint32
}

// NewColor builds a color from its integer hex encoding.
func NewColor(hex uint32) *Color {
	return &Color{hex: hex & 0xFFFFFF}
}

// Hex returns the integer encoding of the color.
func (c *Color) Hex() uint32 { return c.hex }

// SetHex replaces the color with the given integer encoding.
func (c *Color) SetHex(hex uint32) { c.hex = hex & 0xFFFFFF }

// String renders the color as a CSS-style hex literal.
func (c *Color) String() string { return fmt.Sprintf("#%06x", c.hex) }

// Material is the mutable visual state of one renderer material. Exactly one
// of Color and LODColor is set: plain mesh materials carry a solid Color,
// level-of-detail materials route their tint through LODColor. The two are
// distinguished structurally, not by a type flag.
type Material struct {
	// ID identifies the material within its model.
	ID string
	// CustomID is a user-assigned marker. A material carrying one opts out
	// of every bulk appearance change.
	CustomID string

	Transparent bool
	Opacity     float64

	Color    *Color
	LODColor *Color
}

// ColorHex reads the material's current color through whichever shape the
// material has. The second return is false when the material carries no
// color at all.
func (m *Material) ColorHex() (uint32, bool) {
	switch {
	case m.Color != nil:
		return m.Color.Hex(), true
	case m.LODColor != nil:
		return m.LODColor.Hex(), true
	default:
		return 0, false
	}
}

// SetColorHex writes the material's color through whichever shape it has.
func (m *Material) SetColorHex(hex uint32) {
	switch {
	case m.Color != nil:
		m.Color.SetHex(hex)
	case m.LODColor != nil:
		m.LODColor.SetHex(hex)
	}
}
