// Package plantuml renders flows as PlantUML state diagrams.
//
// Nodes become states stereotyped with their skin, composite nodes nest their
// inner nodes as sub-states, and the start node is drawn as the initial
// pseudo-state [*].
package plantuml

import (
	"fmt"
	"strings"

	"github.com/matzehuels/flowlens/pkg/flow"
	"github.com/matzehuels/flowlens/pkg/render"
)

var icons = map[render.Icon]string{
	render.IconAssignment:          " <&menu>",
	render.IconCode:                " <&code>",
	render.IconCreateRecord:        " <&medical-cross>",
	render.IconDecision:            " <&fork>",
	render.IconDelete:              " <&trash>",
	render.IconLoop:                " <&loop>",
	render.IconLookup:              " <&magnifying-glass>",
	render.IconRight:               " <&chevron-right>",
	render.IconScreen:              " <&browser>",
	render.IconStageStep:           " <&pencil>",
	render.IconStageStepBackground: " <&justify-center>",
	render.IconUpdate:              " <&pencil>",
	render.IconWait:                " <&clock>",
}

var diffMarks = map[flow.DiffStatus]string{
	flow.DiffAdded:    "**<&plus{scale=2}>** ",
	flow.DiffDeleted:  "**<&minus{scale=2}>** ",
	flow.DiffModified: "**<&transfer{scale=2}>** ",
}

// Backend emits PlantUML.
type Backend struct{}

// New returns a PlantUML backend.
func New() *Backend { return &Backend{} }

func (*Backend) Header(label string) string {
	var b strings.Builder
	b.WriteString("skinparam State {\n")
	for i, s := range render.Skins() {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  BackgroundColor<<%s>> %s\n", s.Name(), s.Hex())
		fmt.Fprintf(&b, "  FontColor<<%s>> white\n", s.Name())
	}
	b.WriteString("}\n\ntitle ")
	b.WriteString(label)
	return b.String()
}

func (*Backend) Node(n render.DiagramNode) string {
	head := state(diffMarks[n.DiffStatus], n.Type, n.Icon, n.Label, nil, n.ID, n.Color)
	if len(n.InnerNodes) == 0 {
		return head
	}
	lines := make([]string, 0, len(n.InnerNodes)+2)
	lines = append(lines, head+" {")
	for _, in := range n.InnerNodes {
		lines = append(lines, state("", in.Type, in.Icon, in.Label, in.Content, in.ID, render.SkinNavy))
	}
	lines = append(lines, "}")
	return strings.Join(lines, "\n")
}

func (*Backend) Transition(t flow.Transition) string {
	from := t.From
	if from == flow.StartName {
		from = "[*]"
	}
	arrow := "-->"
	if t.Fault {
		arrow = "-[#red,dashed]->"
	}
	var label string
	if t.Label != "" {
		label = " : " + t.Label
	}
	return fmt.Sprintf("%s %s %s%s", from, arrow, t.To, label)
}

func (*Backend) Footer() string { return "" }

// state formats one state declaration. The \n sequences are PlantUML line
// breaks inside the quoted description.
func state(prefix, typ string, icon render.Icon, label string, content []string, id string, skin render.Skin) string {
	desc := fmt.Sprintf(`%s**%s**%s \n %s`, prefix, typ, icons[icon], escape(label))
	for _, line := range content {
		desc += ` \n ` + escape(line)
	}
	out := fmt.Sprintf(`state "%s" as %s`, desc, id)
	if name := skin.Name(); name != "" {
		out += " <<" + name + ">>"
	}
	return out
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, "'")
}
