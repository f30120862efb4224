package render

import (
	"strings"

	"github.com/matzehuels/flowlens/pkg/flow"
)

// Skin is the colour scheme of a node.
type Skin int

const (
	SkinNone Skin = iota
	SkinPink
	SkinOrange
	SkinNavy
	SkinBlue
)

// Name returns the skin's stereotype name, or "" for SkinNone.
func (s Skin) Name() string {
	switch s {
	case SkinPink:
		return "Pink"
	case SkinOrange:
		return "Orange"
	case SkinNavy:
		return "Navy"
	case SkinBlue:
		return "Blue"
	}
	return ""
}

// Hex returns the skin's background colour, or "" for SkinNone.
func (s Skin) Hex() string {
	switch s {
	case SkinPink:
		return "#F9548A"
	case SkinOrange:
		return "#DD7A00"
	case SkinNavy:
		return "#344568"
	case SkinBlue:
		return "#1B96FF"
	}
	return ""
}

// Skins lists the coloured skins in declaration order.
func Skins() []Skin {
	return []Skin{SkinPink, SkinOrange, SkinNavy, SkinBlue}
}

// Icon is a symbolic node icon. Each backend maps icons to its own glyphs.
type Icon int

const (
	IconNone Icon = iota
	IconAssignment
	IconCode
	IconCreateRecord
	IconDecision
	IconDelete
	IconLoop
	IconLookup
	IconRight
	IconScreen
	IconStageStep
	IconStageStepBackground
	IconUpdate
	IconWait
)

// InnerNode is a nested item of a composite node: a decision rule or a stage
// step.
type InnerNode struct {
	ID      string
	Type    string
	Label   string
	Content []string
	Icon    Icon
}

// DiagramNode is the backend-neutral form of one flow node.
type DiagramNode struct {
	ID         string
	Label      string
	Type       string
	Color      Skin
	Icon       Icon
	DiffStatus flow.DiffStatus
	InnerNodes []InnerNode
}

// Backend emits the syntax of one diagram language.
type Backend interface {
	Header(label string) string
	Node(n DiagramNode) string
	Transition(t flow.Transition) string
	Footer() string
}

// lineSep joins the parts of a generated document.
const lineSep = "\n"

// Generate renders f with b.
func Generate(f *flow.Flow, b Backend) string {
	parts := []string{b.Header(f.Label)}
	for _, k := range flow.Variants() {
		nodes := f.Nodes(k)
		if len(nodes) == 0 {
			continue
		}
		blocks := make([]string, len(nodes))
		for i, n := range nodes {
			blocks[i] = b.Node(ToDiagramNode(n))
		}
		parts = append(parts, strings.Join(blocks, lineSep))
	}
	if len(f.Transitions) > 0 {
		lines := make([]string, len(f.Transitions))
		for i, t := range f.Transitions {
			lines[i] = b.Transition(t)
		}
		parts = append(parts, strings.Join(lines, lineSep))
	}
	parts = append(parts, b.Footer())

	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, lineSep)
}
