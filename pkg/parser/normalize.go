package parser

import (
	"strings"

	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/flow"
)

// nestedLists names the fields inside elements of a variant that hold lists.
// Each entry is a path: the first key is promoted on every element, the
// following keys on every item of the previous level.
var nestedLists = map[flow.Kind][][]string{
	flow.KindDecision:          {{"rules", "conditions"}},
	flow.KindOrchestratedStage: {{"stageSteps"}},
	flow.KindStep:              {{"connectors"}},
}

// Normalize rewrites doc in place so that every element collection is a
// []any, then renames the start element. Absent collections stay absent.
// Normalizing a normalized document changes nothing.
func Normalize(doc flow.Document) error {
	start, ok := doc["start"].(map[string]any)
	if !ok {
		if isBlank(doc["start"]) {
			return errors.New(errors.ErrCodeStartNotDefined, "flow start is not defined")
		}
		return errors.New(errors.ErrCodeStartNotDefined, "flow start is not an element")
	}
	start["name"] = flow.StartName

	for _, k := range flow.Variants() {
		key := k.Collection()
		v, ok := doc[key]
		if !ok {
			continue
		}
		items := toList(v)
		doc[key] = items
		for _, path := range nestedLists[k] {
			for _, item := range items {
				promote(item, path)
			}
		}
	}
	return nil
}

// promote converts the field named by path[0] of v to a list and recurses
// into its items for the rest of the path.
func promote(v any, path []string) {
	m, ok := v.(map[string]any)
	if !ok || len(path) == 0 {
		return
	}
	field, ok := m[path[0]]
	if !ok {
		return
	}
	items := toList(field)
	m[path[0]] = items
	for _, item := range items {
		promote(item, path[1:])
	}
}

// toList lifts a single value into a one-element list. Blank values become
// an empty list.
func toList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out
	}
	if isBlank(v) {
		return []any{}
	}
	return []any{v}
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}
