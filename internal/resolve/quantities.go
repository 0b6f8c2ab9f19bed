// -- internal/resolve/quantities.go --
package resolve

import (
	"strings"

	"github.com/bimgrid/ifcpanel-cli/api/schemas"
)

// quantitiesKey is the sub-record sequence on an element-quantity record.
const quantitiesKey = "Quantities"

// valueProbes are the six mutually exclusive value fields a quantity record
// may populate, probed in this order; the first one present wins. The table
// is data rather than branching so new measure kinds slot in trivially.
var valueProbes = []struct {
	Field string
	Unit  string
}{
	{"LengthValue", "m"},
	{"AreaValue", "m²"},
	{"VolumeValue", "m³"},
	{"WeightValue", "kg"},
	{"CountValue", "ud"},
	{"TimeValue", "s"},
}

// unitKeywords maps a suffix of a quantity's declared type name to its unit.
// Used only when none of the value probes matched; longer, more specific
// suffixes come first so "Volume" is not shadowed by shorter matches.
var unitKeywords = []struct {
	Suffix string
	Unit   string
}{
	{"Volume", "m³"},
	{"Area", "m²"},
	{"Perimeter", "m"},
	{"Length", "m"},
	{"Width", "m"},
	{"Height", "m"},
	{"Depth", "m"},
	{"Weight", "kg"},
	{"Mass", "kg"},
	{"Count", "ud"},
	{"Time", "s"},
}

// InferUnit derives a unit from a quantity's declared type name by suffix
// match against the keyword table. Returns "" when nothing matches.
func InferUnit(typeName string) string {
	for _, kw := range unitKeywords {
		if strings.HasSuffix(typeName, kw.Suffix) {
			return kw.Unit
		}
	}
	return ""
}

// FormatQuantitySets walks a relation sequence (typically the element's
// IsDefinedBy records), selects element-quantity records, and emits
// set name → quantity name → {value, unit}.
//
// A quantity with no resolvable numeric value is dropped outright; unit
// inference alone never synthesizes a value. A set that ends up with no
// surviving quantities is omitted from the result. Duplicate quantity names
// within one set resolve to the last occurrence.
func FormatQuantitySets(records []schemas.RawRecord) map[string]schemas.QuantitySet {
	out := make(map[string]schemas.QuantitySet)

	for _, rec := range records {
		if rec.Kind() != schemas.KindElementQuantity {
			continue
		}
		setName, ok := ExtractString(rec["Name"])
		if !ok {
			continue
		}
		quantities := rec.Records(quantitiesKey)
		if len(quantities) == 0 {
			continue
		}

		set := make(schemas.QuantitySet)
		for _, q := range quantities {
			name, ok := ExtractString(q["Name"])
			if !ok {
				continue
			}
			if qv, ok := resolveQuantityValue(q); ok {
				set[name] = qv
			}
		}
		if len(set) > 0 {
			out[setName] = set
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// resolveQuantityValue probes the value fields in fixed order. When none is
// populated the unit could still be inferred from the declared type name, but
// without a value there is nothing to report, so the quantity is dropped.
func resolveQuantityValue(q schemas.RawRecord) (schemas.QuantityValue, bool) {
	for _, probe := range valueProbes {
		if _, present := q[probe.Field]; !present {
			continue
		}
		if n, ok := ExtractNumber(q[probe.Field]); ok {
			return schemas.QuantityValue{Value: n, Unit: probe.Unit}, true
		}
	}
	// No value field. InferUnit(q.Kind()) could still name a unit, but a
	// unit-only quantity is meaningless in the panel.
	return schemas.QuantityValue{}, false
}
