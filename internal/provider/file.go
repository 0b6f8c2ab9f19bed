// -- internal/provider/file.go --
// Description: Bundle provider backed by on-disk loader dumps. The external
// IFC loader exports one dump per model, either as JSON or as XML; both land
// in the same open RawRecord shape.

package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/bimgrid/ifcpanel-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonDump mirrors the loader's JSON dump layout.
type jsonDump struct {
	ModelID  string                       `json:"model_id"`
	Name     string                       `json:"name"`
	Elements map[string]schemas.RawRecord `json:"elements"`
}

// FileProvider serves raw bundles from loader dumps read at construction.
type FileProvider struct {
	models map[string]map[int64]schemas.RawRecord
	log    *zap.Logger
}

// NewFileProvider loads every dump file given. Dumps ending in .xml are
// parsed with etree; everything else is treated as JSON.
func NewFileProvider(paths []string, logger *zap.Logger) (*FileProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &FileProvider{
		models: make(map[string]map[int64]schemas.RawRecord),
		log:    logger.Named("fileprovider"),
	}
	for _, path := range paths {
		modelID, elements, err := loadDump(path)
		if err != nil {
			return nil, fmt.Errorf("loading dump %s: %w", path, err)
		}
		p.models[modelID] = elements
		p.log.Info("loader dump loaded",
			zap.String("model", modelID),
			zap.Int("elements", len(elements)))
	}
	return p, nil
}

// ModelIDs lists the models the provider can serve, for commands that
// operate on "everything in the dump".
func (p *FileProvider) ModelIDs() []string {
	ids := make([]string, 0, len(p.models))
	for id := range p.models {
		ids = append(ids, id)
	}
	return ids
}

// LocalIDs lists every element of one model.
func (p *FileProvider) LocalIDs(modelID string) []int64 {
	elements := p.models[modelID]
	ids := make([]int64, 0, len(elements))
	for id := range elements {
		ids = append(ids, id)
	}
	return ids
}

// FetchBundle returns the raw bundle for one element. An unknown model is an
// error; an unknown element within a known model yields a nil bundle, which
// downstream resolves to a degraded view model.
func (p *FileProvider) FetchBundle(_ context.Context, modelID string, localID int64) (schemas.RawRecord, error) {
	elements, ok := p.models[modelID]
	if !ok {
		return nil, fmt.Errorf("no dump loaded for model %q", modelID)
	}
	return elements[localID], nil
}

func loadDump(path string) (string, map[int64]schemas.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		return parseXMLDump(data)
	}
	return parseJSONDump(data)
}

func parseJSONDump(data []byte) (string, map[int64]schemas.RawRecord, error) {
	var dump jsonDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return "", nil, fmt.Errorf("parsing JSON dump: %w", err)
	}
	if dump.ModelID == "" {
		return "", nil, fmt.Errorf("JSON dump carries no model_id")
	}
	elements := make(map[int64]schemas.RawRecord, len(dump.Elements))
	for key, bundle := range dump.Elements {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("element key %q is not a local ID", key)
		}
		elements[id] = bundle
	}
	return dump.ModelID, elements, nil
}

// parseXMLDump reads the loader's XML dump layout:
//
//	<ifcDump model="model-a">
//	  <element id="311">
//	    <attr name="Name">Basic Wall</attr>
//	    <relation role="IsDefinedBy">
//	      <record type="IfcPropertySet">...</record>
//	    </relation>
//	  </element>
//	</ifcDump>
func parseXMLDump(data []byte) (string, map[int64]schemas.RawRecord, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return "", nil, fmt.Errorf("parsing XML dump: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return "", nil, fmt.Errorf("XML dump is empty")
	}
	modelID := root.SelectAttrValue("model", "")
	if modelID == "" {
		return "", nil, fmt.Errorf("XML dump carries no model attribute")
	}

	elements := make(map[int64]schemas.RawRecord)
	for _, el := range root.SelectElements("element") {
		id, err := strconv.ParseInt(el.SelectAttrValue("id", ""), 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("element id %q is not a local ID", el.SelectAttrValue("id", ""))
		}
		elements[id] = xmlRecord(el)
	}
	return modelID, elements, nil
}

// xmlRecord converts one XML element into an open RawRecord. <attr> children
// become wrapped scalars, <relation> and <list> children become record
// sequences, and nested <record> elements recurse.
func xmlRecord(el *etree.Element) schemas.RawRecord {
	rec := make(schemas.RawRecord)
	if kind := el.SelectAttrValue("type", ""); kind != "" {
		rec[schemas.KindKey] = kind
	}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "attr":
			name := child.SelectAttrValue("name", "")
			if name == "" {
				continue
			}
			rec[name] = map[string]any{"value": xmlScalar(child)}
		case "relation", "list":
			name := child.SelectAttrValue("role", child.SelectAttrValue("name", ""))
			if name == "" {
				continue
			}
			var records []any
			for _, sub := range child.SelectElements("record") {
				records = append(records, map[string]any(xmlRecord(sub)))
			}
			rec[name] = records
		case "record":
			name := child.SelectAttrValue("name", "")
			if name == "" {
				continue
			}
			rec[name] = map[string]any(xmlRecord(child))
		}
	}
	return rec
}

// xmlScalar coerces an <attr> element's text by its declared kind.
func xmlScalar(el *etree.Element) any {
	text := strings.TrimSpace(el.Text())
	switch el.SelectAttrValue("kind", "string") {
	case "number":
		if n, err := strconv.ParseFloat(text, 64); err == nil {
			return n
		}
		return nil
	case "bool":
		return text == "true"
	default:
		return text
	}
}
