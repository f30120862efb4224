package parser

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/flow"
)

// Build indexes the elements of a normalized document and derives the flow's
// transitions by breadth-first traversal from the start element.
//
// Elements are indexed in a fixed order: the synthetic END node, the start
// element, then every variant collection in [flow.Variants] order. When two
// elements share a name the later one wins.
func Build(doc flow.Document) (*flow.Flow, error) {
	startAttrs, ok := doc["start"].(map[string]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeStartNotDefined, "flow start is not defined")
	}

	g := newGraph()
	g.add(flow.NewEndNode())

	start, err := decodeNode(startAttrs, flow.KindStart)
	if err != nil {
		return nil, err
	}
	start.Name = flow.StartName
	g.add(start)

	f := &flow.Flow{Label: doc.Label(), Start: start}
	for _, k := range flow.Variants() {
		items, _ := doc[k.Collection()].([]any)
		if len(items) == 0 {
			continue
		}
		nodes := make([]*flow.Node, 0, len(items))
		for i, item := range items {
			attrs, ok := item.(map[string]any)
			if !ok {
				return nil, errors.New(errors.ErrCodeParse, "%s[%d] is not an element", k.Collection(), i)
			}
			n, err := decodeNode(attrs, k)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
			g.add(n)
		}
		f.SetNodes(k, nodes)
	}

	transitions, err := g.traverse(flow.StartName)
	if err != nil {
		return nil, err
	}
	f.Transitions = transitions
	f.Index = g.index()
	return f, nil
}

// graph is an index-addressed arena of nodes. Slot numbers are stable for
// the lifetime of the graph so traversal can track visits in a []bool.
type graph struct {
	nodes []*flow.Node
	slots map[string]int
}

func newGraph() *graph {
	return &graph{slots: make(map[string]int)}
}

// add inserts n, replacing any node already stored under the same name.
func (g *graph) add(n *flow.Node) {
	if i, ok := g.slots[n.Name]; ok {
		g.nodes[i] = n
		return
	}
	g.slots[n.Name] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

func (g *graph) index() map[string]*flow.Node {
	m := make(map[string]*flow.Node, len(g.nodes))
	for name, i := range g.slots {
		m[name] = g.nodes[i]
	}
	return m
}

// traverse walks the graph breadth-first from the named node. Each node's
// transitions are emitted once, on its first visit, in discovery order.
func (g *graph) traverse(from string) ([]flow.Transition, error) {
	root, ok := g.slots[from]
	if !ok {
		return nil, errors.New(errors.ErrCodeStartNotDefined, "flow start is not defined")
	}

	var out []flow.Transition
	visited := make([]bool, len(g.nodes))
	queue := []int{root}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		if visited[i] {
			continue
		}
		visited[i] = true

		ts, err := g.transitionsFor(g.nodes[i])
		if err != nil {
			return nil, err
		}
		for _, t := range ts {
			queue = append(queue, g.slots[t.To])
		}
		out = append(out, ts...)
	}
	return out, nil
}

// edges accumulates the transitions of one node, stopping at the first
// connector that does not resolve.
type edges struct {
	g    *graph
	from string
	out  []flow.Transition
	err  error
}

func (e *edges) add(c *flow.Connector, fault bool, label string) {
	if c == nil || e.err != nil {
		return
	}
	i, ok := e.g.slots[c.TargetReference]
	if !ok {
		e.err = errors.New(errors.ErrCodeUnresolvedTarget, "could not find connected node for %s", c.TargetReference)
		return
	}
	e.out = append(e.out, flow.Transition{
		From:  e.from,
		To:    e.g.nodes[i].Name,
		Fault: fault,
		Label: label,
	})
}

func (e *edges) addAll(cs []flow.Connector) {
	for i := range cs {
		e.add(&cs[i], false, "")
	}
}

// transitionsFor extracts a node's outgoing transitions according to its
// connector shape.
func (g *graph) transitionsFor(n *flow.Node) ([]flow.Transition, error) {
	e := &edges{g: g, from: n.Name}
	switch n.Shape {
	case flow.ShapeFaultable:
		e.addAll(n.Connector)
		e.add(n.FaultConnector, true, flow.FaultLabel)
	case flow.ShapeStep:
		e.addAll(n.Connectors)
	case flow.ShapeDecision:
		e.add(n.DefaultConnector, false, n.DefaultConnectorLabel)
		for _, r := range n.Rules {
			e.add(r.Connector, false, r.Label)
		}
	case flow.ShapeWait:
		e.add(n.DefaultConnector, false, n.DefaultConnectorLabel)
		e.add(n.FaultConnector, true, flow.FaultLabel)
	case flow.ShapeLoop:
		e.add(n.NextValueConnector, false, flow.LoopNextLabel)
		e.add(n.NoMoreValuesConnector, false, flow.LoopDoneLabel)
	case flow.ShapeGeneric:
		e.addAll(n.Connector)
	}
	return e.out, e.err
}

// decodeNode builds a typed node from an element's attributes. The attribute
// map is kept on the node as the element's full structural payload.
func decodeNode(attrs map[string]any, kind flow.Kind) (*flow.Node, error) {
	n := &flow.Node{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       documentHook,
		WeaklyTypedInput: true,
		Result:           n,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create decoder")
	}
	if err := dec.Decode(attrs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "invalid %s element", kind)
	}
	n.Kind = kind
	n.Shape = flow.Classify(attrs)
	n.Attributes = attrs
	return n, nil
}

// documentHook adapts raw document values to typed fields. Empty XML
// elements decode as blank strings and must not become connectors, and
// booleans keep their textual form when stored in string fields.
func documentHook(from, to reflect.Type, data any) (any, error) {
	switch v := data.(type) {
	case bool:
		if to.Kind() == reflect.String {
			return strconv.FormatBool(v), nil
		}
	case string:
		if strings.TrimSpace(v) != "" {
			return data, nil
		}
		switch to.Kind() {
		case reflect.Ptr:
			return nil, nil
		case reflect.Slice:
			return []any{}, nil
		case reflect.Struct, reflect.Map:
			return map[string]any{}, nil
		}
	}
	return data, nil
}
