// -- internal/resolve/resolver.go --
// Description: Turns one element's raw relational bundle into a normalized,
// display-ready view model. The bundle has no fixed shape: relations may be
// absent, malformed, or partially populated, and no case of missing data is
// a hard failure.

package resolve

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/bimgrid/ifcpanel-cli/api/schemas"
)

// identity and descriptive attributes read directly off the bundle.
const (
	attrName           = "Name"
	attrGlobalID       = "GlobalId"
	attrPredefinedType = "PredefinedType"
	attrObjectType     = "ObjectType"
	attrTag            = "Tag"
	attrDescription    = "Description"
	attrLongName       = "LongName"
)

// typePropertySetsKey is the nested property-set sequence on a type record.
const typePropertySetsKey = "HasPropertySets"

// typeStructuralKeys are the fields of a type record that never surface in
// the merged type-property mapping.
var typeStructuralKeys = map[string]struct{}{
	attrName:            {},
	schemas.KindKey:     {},
	attrGlobalID:        {},
	"OwnerHistory":      {},
	attrDescription:     {},
	typePropertySetsKey: {},
	"expressID":         {},
}

// directAttrExclusions are bundle fields that never surface as direct
// attributes: identity/descriptive fields handled elsewhere, the relation
// sequences, and loader plumbing.
var directAttrExclusions = map[string]struct{}{
	attrName:                {},
	attrGlobalID:            {},
	attrPredefinedType:      {},
	attrObjectType:          {},
	attrTag:                 {},
	attrDescription:         {},
	attrLongName:            {},
	schemas.KindKey:         {},
	schemas.RelDefinedBy:    {},
	schemas.RelTypedBy:      {},
	schemas.RelContainedIn:  {},
	schemas.RelAssociations: {},
	"ObjectPlacement":       {},
	"Representation":        {},
	"OwnerHistory":          {},
	"expressID":             {},
}

// Resolver assembles Element View Models from raw relational bundles.
type Resolver struct {
	log *zap.Logger
}

// New creates a Resolver. A nil logger falls back to a no-op logger.
func New(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{log: logger.Named("resolver")}
}

// Resolve builds the view model for one element. A nil or empty bundle
// yields a degraded view model carrying only the element identity and the
// Unknown type label; Resolve itself never fails.
func (r *Resolver) Resolve(modelID string, localID int64, bundle schemas.RawRecord) schemas.ElementViewModel {
	vm := schemas.ElementViewModel{
		ModelID: modelID,
		LocalID: localID,
		Type:    schemas.TypeUnknown,
	}
	if len(bundle) == 0 {
		return vm
	}

	if kind := bundle.Kind(); kind != "" {
		vm.Type = kind
	}
	if s, ok := ExtractString(bundle[attrName]); ok {
		vm.Name = s
	}
	if s, ok := ExtractString(bundle[attrGlobalID]); ok {
		vm.GlobalID = s
	}
	if s, ok := ExtractString(bundle[attrPredefinedType]); ok {
		vm.PredefinedType = s
	}
	if s, ok := ExtractString(bundle[attrObjectType]); ok {
		vm.ObjectType = s
	}
	if s, ok := ExtractString(bundle[attrTag]); ok {
		vm.Tag = s
	}

	desc, _ := ExtractString(bundle[attrDescription])
	long, _ := ExtractString(bundle[attrLongName])
	if desc != "" || long != "" {
		vm.Description = &schemas.DescriptionBlock{Description: desc, LongName: long}
	}

	vm.TypeInfo = resolveType(bundle.Records(schemas.RelTypedBy))
	vm.Location = resolveLocation(bundle.Records(schemas.RelContainedIn))
	vm.Materials = resolveMaterials(bundle.Records(schemas.RelAssociations))
	vm.Attributes = resolveDirectAttributes(bundle)

	definitions := bundle.Records(schemas.RelDefinedBy)
	vm.PropertySets = FormatPropertySets(definitions)
	vm.QuantitySets = FormatQuantitySets(definitions)

	return vm
}

// resolveType derives the type block from the type-definition relation.
// The first record's name becomes the type label; every record's
// non-structural scalar fields merge into the property mapping, later records
// overwriting earlier on collision. Nested type property-sets flatten into
// the same mapping under a bracketed key.
func resolveType(records []schemas.RawRecord) *schemas.TypeBlock {
	if len(records) == 0 {
		return nil
	}
	block := &schemas.TypeBlock{}
	props := make(map[string]any)

	for _, rec := range records {
		// Label from the first record carrying a non-empty name; a nameless
		// leading record does not blank the block.
		if block.Name == "" {
			if s, ok := ExtractString(rec["Name"]); ok {
				block.Name = s
			}
		}
		for key, raw := range rec {
			if _, structural := typeStructuralKeys[key]; structural {
				continue
			}
			if v := Extract(raw); v != nil {
				props[key] = v
			}
		}
		for _, pset := range rec.Records(typePropertySetsKey) {
			name, ok := ExtractString(pset["Name"])
			if !ok {
				continue
			}
			if joined := joinPropertySet(pset); joined != "" {
				props[fmt.Sprintf("[%s]", name)] = joined
			}
		}
	}

	if block.Name == "" && len(props) == 0 {
		return nil
	}
	if len(props) > 0 {
		block.Properties = props
	}
	return block
}

// joinPropertySet flattens one nested type property-set into a single
// delimited string value, with entries sorted by name for stable output.
func joinPropertySet(pset schemas.RawRecord) string {
	var entries []string
	for _, sub := range pset.Records(hasPropertiesKey) {
		name, ok := ExtractString(sub["Name"])
		if !ok {
			continue
		}
		if v := Extract(sub[nominalValueKey]); v != nil {
			entries = append(entries, fmt.Sprintf("%s: %v", name, v))
		}
	}
	sort.Strings(entries)
	return strings.Join(entries, "; ")
}

// resolveLocation walks the containment relation and returns the first
// non-empty spatial container name. Containment records either reference the
// structure record under RelatingStructure or carry the name themselves.
func resolveLocation(records []schemas.RawRecord) string {
	for _, rec := range records {
		if structure := rec.Record("RelatingStructure"); structure != nil {
			if s, ok := ExtractString(structure["Name"]); ok {
				return s
			}
			continue
		}
		if s, ok := ExtractString(rec["Name"]); ok {
			return s
		}
	}
	return ""
}

// resolveMaterials collects material names from the association relation,
// keeping only records tagged as material associations and preserving
// encounter order.
func resolveMaterials(records []schemas.RawRecord) []string {
	var names []string
	for _, rec := range records {
		if rec.Kind() != schemas.KindRelAssociatesMaterial {
			continue
		}
		if material := rec.Record("RelatingMaterial"); material != nil {
			if s, ok := ExtractString(material["Name"]); ok {
				names = append(names, s)
			}
			continue
		}
		if s, ok := ExtractString(rec["Name"]); ok {
			names = append(names, s)
		}
	}
	return names
}

// resolveDirectAttributes gathers every remaining scalar top-level field.
func resolveDirectAttributes(bundle schemas.RawRecord) map[string]any {
	attrs := make(map[string]any)
	for key, raw := range bundle {
		if _, excluded := directAttrExclusions[key]; excluded {
			continue
		}
		if v := Extract(raw); v != nil {
			attrs[key] = v
		}
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
