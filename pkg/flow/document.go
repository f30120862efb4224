package flow

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/clbanning/mxj/v2"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flowlens/pkg/errors"
)

// RootElement is the name of a flow document's root element.
const RootElement = "Flow"

// Document is a raw decoded flow: the children of the root element keyed by
// field name. Values are strings, maps, or slices of either.
type Document map[string]any

// Label returns the flow's display label, or "" when absent. Non-string
// scalars, such as a YAML number, are printed as written.
func (d Document) Label() string {
	switch v := d["label"].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// DecodeXML decodes a flow metadata XML document. Attributes are kept with a
// "-" prefix and all leaf values are strings.
func DecodeXML(data []byte) (Document, error) {
	m, err := mxj.NewMapXml(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "invalid flow XML")
	}
	root, ok := m[RootElement]
	if !ok {
		return nil, errors.New(errors.ErrCodeParse, "missing <%s> root element", RootElement)
	}
	return asDocument(root), nil
}

// DecodeYAML decodes a YAML or JSON flow document. An optional top-level
// "Flow" key is unwrapped.
func DecodeYAML(data []byte) (Document, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "invalid flow document")
	}
	if m == nil {
		return nil, errors.New(errors.ErrCodeParse, "empty flow document")
	}
	if root, ok := m[RootElement]; ok && len(m) == 1 {
		return asDocument(root), nil
	}
	return Document(m), nil
}

// Decode picks a decoder from the file extension of name, falling back to
// sniffing the content when the extension is not recognised.
func Decode(name string, data []byte) (Document, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xml":
		return DecodeXML(data)
	case ".yaml", ".yml", ".json":
		return DecodeYAML(data)
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("<")) {
		return DecodeXML(data)
	}
	return DecodeYAML(data)
}

// asDocument converts the root element's value into a Document. An empty
// <Flow/> element decodes as a string and yields an empty document.
func asDocument(v any) Document {
	switch m := v.(type) {
	case map[string]any:
		return Document(m)
	case mxj.Map:
		return Document(m)
	}
	return Document{}
}
