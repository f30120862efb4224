package flow

import "sort"

const (
	// StartName is the canonical name given to the flow's start element.
	StartName = "FLOW_START"

	// EndName is the name of the synthetic terminal node.
	EndName = "END"

	// endLabel is used for the terminal node's label, subtype and description.
	endLabel = "End"

	// FaultLabel labels transitions that follow a fault connector.
	FaultLabel = "Fault"

	// LoopNextLabel labels a loop's per-item transition.
	LoopNextLabel = "for each"

	// LoopDoneLabel labels a loop's exit transition.
	LoopDoneLabel = "after all"

	// StepBackground is the stage step action type rendered with a
	// background-step icon.
	StepBackground = "stepBackground"
)

// DiffStatus tags a node with the result of comparing two versions of a flow.
// The zero value means the node was not affected.
type DiffStatus string

const (
	DiffNone     DiffStatus = ""
	DiffAdded    DiffStatus = "ADDED"
	DiffDeleted  DiffStatus = "DELETED"
	DiffModified DiffStatus = "MODIFIED"
)

// Connector references another node by name.
type Connector struct {
	TargetReference string `mapstructure:"targetReference" json:"targetReference"`
	IsGoTo          bool   `mapstructure:"isGoTo" json:"isGoTo,omitempty"`
}

// ElementValue is a literal value or a reference used on the right-hand side
// of a condition. Values are kept in their textual document form.
type ElementValue struct {
	StringValue             string `mapstructure:"stringValue"`
	SObjectValue            string `mapstructure:"sobjectValue"`
	ApexValue               string `mapstructure:"apexValue"`
	ElementReference        string `mapstructure:"elementReference"`
	FormulaExpression       string `mapstructure:"formulaExpression"`
	SetupReference          string `mapstructure:"setupReference"`
	TransformValueReference string `mapstructure:"transformValueReference"`
	FormulaDataType         string `mapstructure:"formulaDataType"`
	DateValue               string `mapstructure:"dateValue"`
	DateTimeValue           string `mapstructure:"dateTimeValue"`
	NumberValue             string `mapstructure:"numberValue"`
	BooleanValue            string `mapstructure:"booleanValue"`
}

// Condition compares a reference against a value.
type Condition struct {
	LeftValueReference string       `mapstructure:"leftValueReference"`
	Operator           string       `mapstructure:"operator"`
	RightValue         ElementValue `mapstructure:"rightValue"`
}

// Rule is one outcome of a decision.
type Rule struct {
	Name           string      `mapstructure:"name"`
	Label          string      `mapstructure:"label"`
	ConditionLogic string      `mapstructure:"conditionLogic"`
	Conditions     []Condition `mapstructure:"conditions"`
	Connector      *Connector  `mapstructure:"connector"`
}

// StageStep is one step of an orchestrated stage.
type StageStep struct {
	Name       string `mapstructure:"name"`
	Label      string `mapstructure:"label"`
	ActionName string `mapstructure:"actionName"`
	ActionType string `mapstructure:"actionType"`
}

// Node is one element of a flow.
//
// The typed fields hold what the graph builder and the renderers need. The
// complete normalised element, including fields flowlens does not model, is
// kept in Attributes and is what the diff engine compares.
type Node struct {
	Name           string  `mapstructure:"name"`
	Description    string  `mapstructure:"description"`
	Label          string  `mapstructure:"label"`
	ElementSubtype string  `mapstructure:"elementSubtype"`
	LocationX      float64 `mapstructure:"locationX"`
	LocationY      float64 `mapstructure:"locationY"`

	// Connector is a single connector for most variants and a list for a
	// few generic ones, so it is always decoded as a slice.
	Connector             []Connector `mapstructure:"connector"`
	FaultConnector        *Connector  `mapstructure:"faultConnector"`
	DefaultConnector      *Connector  `mapstructure:"defaultConnector"`
	DefaultConnectorLabel string      `mapstructure:"defaultConnectorLabel"`
	NextValueConnector    *Connector  `mapstructure:"nextValueConnector"`
	NoMoreValuesConnector *Connector  `mapstructure:"noMoreValuesConnector"`
	Connectors            []Connector `mapstructure:"connectors"`
	Rules                 []Rule      `mapstructure:"rules"`
	StageSteps            []StageStep `mapstructure:"stageSteps"`

	Kind       Kind           `mapstructure:"-"`
	Shape      Shape          `mapstructure:"-"`
	DiffStatus DiffStatus     `mapstructure:"-"`
	Attributes map[string]any `mapstructure:"-"`
}

// NewEndNode returns the synthetic terminal node.
func NewEndNode() *Node {
	return &Node{
		Name:           EndName,
		Label:          endLabel,
		ElementSubtype: endLabel,
		Description:    endLabel,
		Kind:           KindEnd,
		Shape:          ShapeNone,
		Attributes: map[string]any{
			"name":           EndName,
			"label":          endLabel,
			"elementSubtype": endLabel,
			"description":    endLabel,
			"locationX":      "0",
			"locationY":      "0",
		},
	}
}

// Transition is a directed edge derived from a connector.
type Transition struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Fault bool   `json:"fault"`
	Label string `json:"label,omitempty"`
}

// Flow is a built flow graph.
//
// A Flow is owned by the parse that produced it. Only DiffStatus fields are
// mutated after construction, and only by the diff engine.
type Flow struct {
	// Label is the flow's display label.
	Label string

	// Start is the start element, renamed to StartName.
	Start *Node

	// Index maps node names to nodes, including StartName and EndName.
	Index map[string]*Node

	// Transitions lists derived edges in breadth-first discovery order.
	Transitions []Transition

	collections [variantCount][]*Node
}

// Nodes returns the nodes of variant k in document order.
// It returns nil for Start, End and Unknown.
func (f *Flow) Nodes(k Kind) []*Node {
	i := k.variantIndex()
	if i < 0 {
		return nil
	}
	return f.collections[i]
}

// SetNodes replaces the nodes of variant k. It is used by the graph builder.
func (f *Flow) SetNodes(k Kind, nodes []*Node) {
	if i := k.variantIndex(); i >= 0 {
		f.collections[i] = nodes
	}
}

// Lookup returns the node with the given name.
func (f *Flow) Lookup(name string) (*Node, bool) {
	n, ok := f.Index[name]
	return n, ok
}

// Names returns all indexed node names in sorted order.
func (f *Flow) Names() []string {
	names := make([]string, 0, len(f.Index))
	for name := range f.Index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NodeCount returns the number of variant nodes (start and end excluded).
func (f *Flow) NodeCount() int {
	n := 0
	for _, c := range f.collections {
		n += len(c)
	}
	return n
}
