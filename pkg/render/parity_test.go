package render_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowlens/pkg/diff"
	"github.com/matzehuels/flowlens/pkg/flow"
	"github.com/matzehuels/flowlens/pkg/parser"
	"github.com/matzehuels/flowlens/pkg/render"
	"github.com/matzehuels/flowlens/pkg/render/graphviz"
	"github.com/matzehuels/flowlens/pkg/render/mermaid"
	"github.com/matzehuels/flowlens/pkg/render/plantuml"
)

const everyVariant = `
label: Every Variant
start:
  connector: {targetReference: apex}
apexPluginCalls:
  - {name: apex, label: Apex, apexClass: C, connector: {targetReference: assign}}
assignments:
  - {name: assign, label: Assign, assignmentItems: [], connector: {targetReference: coll}}
collectionProcessors:
  - {name: coll, label: Coll, collectionProcessorType: SortCollectionProcessor, connector: {targetReference: choose}}
decisions:
  - name: choose
    label: Choose
    defaultConnector: {targetReference: each}
    defaultConnectorLabel: Default
    rules:
      - name: r1
        label: R1
        conditions: [{leftValueReference: a, operator: EqualTo, rightValue: {stringValue: b}}]
        connector: {targetReference: stage}
loops:
  - {name: each, label: Each, nextValueConnector: {targetReference: create}, noMoreValuesConnector: {targetReference: stage}}
orchestratedStages:
  - name: stage
    label: Stage
    connector: {targetReference: create}
    stageSteps: [{name: s1, label: Step One, actionName: a1, actionType: stepBackground}]
recordCreates:
  - {name: create, label: Create, inputReference: r, connector: {targetReference: del}, faultConnector: {targetReference: rollback}}
recordDeletes:
  - {name: del, label: Del, inputReference: r, connector: {targetReference: find}}
recordLookups:
  - {name: find, label: Find, filters: [], connector: {targetReference: rollback}}
recordRollbacks:
  - {name: rollback, label: Rollback, connector: {targetReference: update}}
recordUpdates:
  - {name: update, label: Update, inputReference: r, connector: {targetReference: screen}}
screens:
  - {name: screen, label: Screen, fields: [], connector: {targetReference: step}}
steps:
  - {name: step, label: Step, connectors: [{targetReference: sub}]}
subflows:
  - {name: sub, label: Sub, flowName: Other, connector: {targetReference: xform}}
transforms:
  - {name: xform, label: Xform, dataType: String, connector: {targetReference: pause}}
waits:
  - {name: pause, label: Pause, waitEvents: [], defaultConnector: {targetReference: act}}
actionCalls:
  - {name: act, label: Act, actionName: send, connector: {targetReference: END}}
`

func TestBackendParity(t *testing.T) {
	backends := map[string]render.Backend{
		"graphviz": graphviz.New(),
		"plantuml": plantuml.New(),
		"mermaid":  mermaid.New(),
	}

	f, err := parser.Parse("every.yaml", []byte(everyVariant))
	require.NoError(t, err)
	require.Equal(t, 17, f.NodeCount())

	for name, b := range backends {
		t.Run(name, func(t *testing.T) {
			out := render.Generate(f, b)
			for _, k := range flow.Variants() {
				for _, n := range f.Nodes(k) {
					assert.Equal(t, 1, countNodes(out, b, n), "node %s", n.Name)
				}
			}
			for _, tr := range f.Transitions {
				assert.Contains(t, out, b.Transition(tr))
			}
			assert.Contains(t, out, b.Node(render.ToDiagramNode(f.Index["stage"])))
		})
	}
}

// countNodes counts how often the rendered block of n appears in out.
func countNodes(out string, b render.Backend, n *flow.Node) int {
	return strings.Count(out, b.Node(render.ToDiagramNode(n)))
}

func TestBackendsShowDiff(t *testing.T) {
	old, err := parser.Parse("old.yaml", []byte("label: L\nstart: {connector: {targetReference: a}}\nscreens: [{name: a, label: A, fields: []}]\n"))
	require.NoError(t, err)
	cur, err := parser.Parse("new.yaml", []byte("label: L\nstart: {connector: {targetReference: a}}\nscreens: [{name: a, label: A2, fields: []}]\n"))
	require.NoError(t, err)
	diff.Compare(old, cur)

	assert.Contains(t, render.Generate(cur, graphviz.New()), "<B>Δ</B>")
	assert.Contains(t, render.Generate(cur, plantuml.New()), "<&transfer{scale=2}>")
	assert.Contains(t, render.Generate(cur, mermaid.New()), "class a modified")
}
