package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowlens/pkg/flow"
	"github.com/matzehuels/flowlens/pkg/parser"
)

const oldFlow = `
label: Onboarding
start:
  connector: {targetReference: Same}
assignments:
  - name: Same
    label: Same
    assignmentItems: [{assignToReference: x, operator: Assign}]
    connector: {targetReference: Changed}
screens:
  - name: Changed
    label: Welcome
    fields: [{name: greeting}]
    connector: {targetReference: Removed}
  - name: Removed
    label: Goodbye
    fields: []
`

const newFlow = `
label: Onboarding
start:
  connector: {targetReference: Same}
assignments:
  - name: Same
    label: Same
    assignmentItems: [{assignToReference: x, operator: Assign}]
    connector: {targetReference: Changed}
screens:
  - name: Changed
    label: Welcome back
    fields: [{name: greeting}]
    connector: {targetReference: Added}
  - name: Added
    label: Hello
    fields: []
`

func parse(t *testing.T, src string) *flow.Flow {
	t.Helper()
	f, err := parser.Parse("flow.yaml", []byte(src))
	require.NoError(t, err)
	return f
}

func TestCompare(t *testing.T) {
	old, cur := parse(t, oldFlow), parse(t, newFlow)

	s := Compare(old, cur)

	assert.Equal(t, Summary{
		Added:    []string{"Added"},
		Deleted:  []string{"Removed"},
		Modified: []string{"Changed"},
	}, s)
	assert.False(t, s.Empty())

	assert.Equal(t, flow.DiffModified, old.Index["Changed"].DiffStatus)
	assert.Equal(t, flow.DiffModified, cur.Index["Changed"].DiffStatus)
	assert.Equal(t, flow.DiffDeleted, old.Index["Removed"].DiffStatus)
	assert.Equal(t, flow.DiffAdded, cur.Index["Added"].DiffStatus)

	for _, name := range []string{"Same", flow.StartName, flow.EndName} {
		assert.Equal(t, flow.DiffNone, old.Index[name].DiffStatus, name)
		assert.Equal(t, flow.DiffNone, cur.Index[name].DiffStatus, name)
	}
}

func TestCompareIdentical(t *testing.T) {
	a, b := parse(t, oldFlow), parse(t, oldFlow)
	assert.True(t, Compare(a, b).Empty())
	for _, name := range a.Names() {
		assert.Equal(t, flow.DiffNone, a.Index[name].DiffStatus)
		assert.Equal(t, flow.DiffNone, b.Index[name].DiffStatus)
	}
}

func TestEqual(t *testing.T) {
	node := func(attrs map[string]any) *flow.Node { return &flow.Node{Attributes: attrs} }

	tests := []struct {
		name string
		a, b map[string]any
		want bool
	}{
		{
			name: "identical",
			a:    map[string]any{"name": "x", "label": "X"},
			b:    map[string]any{"name": "x", "label": "X"},
			want: true,
		},
		{
			name: "leaf differs",
			a:    map[string]any{"label": "X"},
			b:    map[string]any{"label": "Y"},
		},
		{
			name: "absent equals empty",
			a:    map[string]any{"name": "x"},
			b:    map[string]any{"name": "x", "description": "", "items": []any{}, "meta": map[string]any{}, "nil": nil},
			want: true,
		},
		{
			name: "absent differs from value",
			a:    map[string]any{"name": "x"},
			b:    map[string]any{"name": "x", "description": "d"},
		},
		{
			name: "diff status ignored",
			a:    map[string]any{"name": "x", "diffStatus": "ADDED"},
			b:    map[string]any{"name": "x"},
			want: true,
		},
		{
			name: "order is significant",
			a:    map[string]any{"items": []any{"a", "b"}},
			b:    map[string]any{"items": []any{"b", "a"}},
		},
		{
			name: "nested maps",
			a:    map[string]any{"connector": map[string]any{"targetReference": "A"}},
			b:    map[string]any{"connector": map[string]any{"targetReference": "B"}},
		},
		{
			name: "textual leaves",
			a:    map[string]any{"locationX": "176", "isGoTo": "true"},
			b:    map[string]any{"locationX": 176, "isGoTo": true},
			want: true,
		},
		{
			name: "list versus map",
			a:    map[string]any{"rules": []any{map[string]any{"name": "r"}}},
			b:    map[string]any{"rules": map[string]any{"name": "r"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(node(tt.a), node(tt.b)))
			assert.Equal(t, tt.want, Equal(node(tt.b), node(tt.a)), "symmetric")
		})
	}
}
