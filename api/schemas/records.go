// -- api/schemas/records.go --
package schemas

// Raw loader output has no fixed shape. Every record is an open mapping of
// field name to attribute value, nested record, or sequence of records,
// tagged with a "type" discriminator when the loader knows the IFC class.

// RawRecord is one open record from a loader dump.
type RawRecord map[string]any

// Kind tags emitted by the loader for the record classes the resolver cares about.
const (
	KindElementQuantity       = "IfcElementQuantity"
	KindPropertySet           = "IfcPropertySet"
	KindRelAssociatesMaterial = "IfcRelAssociatesMaterial"
)

// Relation role keys present on a raw element bundle.
const (
	RelDefinedBy    = "IsDefinedBy"
	RelTypedBy      = "IsTypedBy"
	RelContainedIn  = "ContainedInStructure"
	RelAssociations = "HasAssociations"
)

// KindKey is the discriminator field on a RawRecord.
const KindKey = "type"

// Kind returns the record's kind tag, or "" when the record is untagged.
func (r RawRecord) Kind() string {
	if r == nil {
		return ""
	}
	if s, ok := r[KindKey].(string); ok {
		return s
	}
	return ""
}

// Record returns the named field as a nested record, or nil when the field is
// absent or not record shaped.
func (r RawRecord) Record(key string) RawRecord {
	switch v := r[key].(type) {
	case RawRecord:
		return v
	case map[string]any:
		return RawRecord(v)
	default:
		return nil
	}
}

// Records returns the named field as a sequence of records. Entries that are
// not record shaped are skipped; an absent or malformed field yields nil.
func (r RawRecord) Records(key string) []RawRecord {
	switch v := r[key].(type) {
	case []RawRecord:
		return v
	case []any:
		out := make([]RawRecord, 0, len(v))
		for _, item := range v {
			switch rec := item.(type) {
			case RawRecord:
				out = append(out, rec)
			case map[string]any:
				out = append(out, RawRecord(rec))
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return nil
	}
}
