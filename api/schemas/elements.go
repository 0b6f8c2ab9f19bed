// -- api/schemas/elements.go --
package schemas

// QuantityValue is one resolved quantity: a numeric value plus its unit.
// Unit is drawn from the fixed unit table or is empty when no unit could be
// derived from the source record.
type QuantityValue struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// QuantitySet maps quantity name to its resolved value within one named set.
type QuantitySet map[string]QuantityValue

// PropertySet maps property name to its scalar value within one named set.
type PropertySet map[string]any

// DescriptionBlock carries the optional descriptive fields of an element.
// It is only present on a view model when at least one field is non-empty.
type DescriptionBlock struct {
	Description string `json:"description,omitempty"`
	LongName    string `json:"long_name,omitempty"`
}

// TypeBlock carries the resolved type definition of an element: the type
// label plus every type-level property, including nested type property-sets
// flattened under bracketed keys.
type TypeBlock struct {
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
}

// TypeUnknown is the class label of a degraded view model, used when the raw
// bundle for an element could not be fetched or resolved.
const TypeUnknown = "Unknown"

// ElementViewModel is the normalized, display-ready model of one element.
// It is constructed fresh on every selection change and never cached.
type ElementViewModel struct {
	ModelID        string `json:"model_id"`
	LocalID        int64  `json:"local_id"`
	GlobalID       string `json:"global_id,omitempty"`
	Type           string `json:"type"`
	Name           string `json:"name,omitempty"`
	PredefinedType string `json:"predefined_type,omitempty"`
	ObjectType     string `json:"object_type,omitempty"`
	Tag            string `json:"tag,omitempty"`

	Description *DescriptionBlock `json:"description,omitempty"`
	TypeInfo    *TypeBlock        `json:"type_info,omitempty"`

	// Location is the name of the first resolved spatial container.
	Location string `json:"location,omitempty"`
	// Materials lists associated material names in encounter order.
	Materials []string `json:"materials,omitempty"`

	// Attributes holds every remaining top-level scalar field that is not
	// part of the identity or descriptive blocks.
	Attributes map[string]any `json:"attributes,omitempty"`

	PropertySets map[string]PropertySet `json:"property_sets,omitempty"`
	QuantitySets map[string]QuantitySet `json:"quantity_sets,omitempty"`
}

// Selection maps a model ID to the local IDs selected within that model.
// An empty selection signals "clear panel".
type Selection map[string][]int64
