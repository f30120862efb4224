package diff

import (
	"fmt"
	"reflect"

	"github.com/matzehuels/flowlens/pkg/flow"
)

// ignoredKey is skipped when comparing attribute trees.
const ignoredKey = "diffStatus"

// Equal reports whether two nodes have structurally equal attributes.
//
// Maps are compared key by key and lists element by element, in order. An
// absent key equals a key holding nil, "", an empty list or an empty map.
// Leaves are compared by their textual value so that a number decoded from
// YAML equals the same number decoded from XML.
func Equal(a, b *flow.Node) bool {
	return equalValue(a.Attributes, b.Attributes)
}

func equalValue(a, b any) bool {
	if isEmpty(a) || isEmpty(b) {
		return isEmpty(a) && isEmpty(b)
	}
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		return ok && equalMap(av, bv)
	case []any:
		bv, ok := b.([]any)
		return ok && equalList(av, bv)
	}
	switch b.(type) {
	case map[string]any, []any:
		return false
	}
	if reflect.DeepEqual(a, b) {
		return true
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func equalMap(a, b map[string]any) bool {
	for k, av := range a {
		if k == ignoredKey {
			continue
		}
		if !equalValue(av, b[k]) {
			return false
		}
	}
	for k, bv := range b {
		if k == ignoredKey {
			continue
		}
		if _, ok := a[k]; !ok && !isEmpty(bv) {
			return false
		}
	}
	return true
}

func equalList(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalValue(a[i], b[i]) {
			return false
		}
	}
	return true
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
