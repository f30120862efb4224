package parser

import "github.com/matzehuels/flowlens/pkg/flow"

// Parse decodes, normalizes and builds the flow document stored in data.
// The name selects the decoder by extension (see [flow.Decode]).
func Parse(name string, data []byte) (*flow.Flow, error) {
	doc, err := flow.Decode(name, data)
	if err != nil {
		return nil, err
	}
	if err := Normalize(doc); err != nil {
		return nil, err
	}
	return Build(doc)
}
