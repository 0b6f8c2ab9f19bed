// -- internal/resolve/properties.go --
package resolve

import "github.com/bimgrid/ifcpanel-cli/api/schemas"

const (
	// hasPropertiesKey is the sub-record sequence on a property-set record.
	hasPropertiesKey = "HasProperties"
	// nominalValueKey is the wrapped value member on a property sub-record.
	nominalValueKey = "NominalValue"
	// fallbackSetName labels a set whose record carries neither a usable
	// name nor a kind tag.
	fallbackSetName = "PropertySet"
)

// structuralKeys are the fields of a set record that describe the record
// itself rather than carrying property data. They never surface as property
// names.
var structuralKeys = map[string]struct{}{
	"Name":            {},
	schemas.KindKey:   {},
	hasPropertiesKey:  {},
	"GlobalId":        {},
	"OwnerHistory":    {},
	"Description":     {},
}

// FormatPropertySets walks a relation sequence and emits
// set name → property name → value for every record that is NOT an
// element-quantity record (the predicate mirrors FormatQuantitySets,
// inverted).
//
// Two encodings contribute to one set, merged additively in order: first the
// HasProperties sub-records (name → extracted NominalValue), then every
// remaining scalar-valued top-level field on the set record itself, excluding
// the structural keys. Direct fields are processed after sub-records, so on a
// name collision the direct field wins. A set with no surviving properties is
// omitted.
func FormatPropertySets(records []schemas.RawRecord) map[string]schemas.PropertySet {
	out := make(map[string]schemas.PropertySet)

	for _, rec := range records {
		if rec.Kind() == schemas.KindElementQuantity {
			continue
		}
		setName, ok := ExtractString(rec["Name"])
		if !ok {
			setName = rec.Kind()
		}
		if setName == "" {
			setName = fallbackSetName
		}

		// Records sharing a set name merge additively into one mapping.
		props := out[setName]
		if props == nil {
			props = make(schemas.PropertySet)
		}
		for _, sub := range rec.Records(hasPropertiesKey) {
			name, ok := ExtractString(sub["Name"])
			if !ok {
				continue
			}
			if v := Extract(sub[nominalValueKey]); v != nil {
				props[name] = v
			}
		}
		for key, raw := range rec {
			if _, structural := structuralKeys[key]; structural {
				continue
			}
			v := Extract(raw)
			if v == nil {
				continue
			}
			// Nested records and sequences are not flattened here.
			switch v.(type) {
			case map[string]any, schemas.RawRecord, []any, []schemas.RawRecord:
				continue
			}
			props[key] = v
		}

		if len(props) > 0 {
			out[setName] = props
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
