// Package mermaid renders flows as Mermaid flowcharts.
package mermaid

import (
	"fmt"
	"strings"

	"github.com/matzehuels/flowlens/pkg/flow"
	"github.com/matzehuels/flowlens/pkg/render"
)

var icons = map[render.Icon]string{
	render.IconScreen:              " 🖥️",
	render.IconRight:               " ➡️",
	render.IconCode:                " ⚡",
	render.IconDecision:            " 🔷",
	render.IconDelete:              " 🗑️",
	render.IconStageStep:           " 🔃",
	render.IconStageStepBackground: " 🔃",
	render.IconLoop:                " 🔄",
	render.IconLookup:              " 🔍",
	render.IconCreateRecord:        " ➕",
	render.IconAssignment:          " ⬅️",
	render.IconUpdate:              " ✏️",
	render.IconWait:                " ⏲️",
}

var diffClasses = map[flow.DiffStatus]struct{ class, mark string }{
	flow.DiffAdded:    {"added", "+ "},
	flow.DiffDeleted:  {"deleted", "- "},
	flow.DiffModified: {"modified", "Δ "},
}

// Backend emits Mermaid flowchart syntax.
type Backend struct{}

// New returns a Mermaid backend.
func New() *Backend { return &Backend{} }

func (*Backend) Header(label string) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	if label != "" {
		fmt.Fprintf(&b, "    %%%% %s\n", label)
	}
	for _, s := range render.Skins() {
		fmt.Fprintf(&b, "    classDef %s fill:%s,stroke:%s,color:#fff\n", className(s), s.Hex(), s.Hex())
	}
	b.WriteString("    classDef added stroke:green,stroke-width:4px\n")
	b.WriteString("    classDef deleted stroke:red,stroke-width:4px,stroke-dasharray:5 5\n")
	b.WriteString("    classDef modified stroke:#DD7A00,stroke-width:4px\n")
	fmt.Fprintf(&b, "    %s((\"Start\"))", safeID(flow.StartName))
	return b.String()
}

func (*Backend) Node(n render.DiagramNode) string {
	id := safeID(n.ID)
	d, changed := diffClasses[n.DiffStatus]

	var b strings.Builder
	fmt.Fprintf(&b, "    %s[\"%s<b>%s</b>%s<br/>%s\"]", id, d.mark, n.Type, icons[n.Icon], escape(n.Label))

	if len(n.InnerNodes) > 0 {
		group := id + "_inner"
		fmt.Fprintf(&b, "\n    subgraph %s[\"%s: %s\"]", group, escape(n.Label), n.Type)
		for _, in := range n.InnerNodes {
			lines := []string{fmt.Sprintf("<b>%s</b>%s", in.Type, icons[in.Icon]), escape(in.Label)}
			for _, c := range in.Content {
				lines = append(lines, escape(c))
			}
			fmt.Fprintf(&b, "\n        %s[\"%s\"]", safeID(in.ID), strings.Join(lines, "<br/>"))
		}
		b.WriteString("\n    end")
		fmt.Fprintf(&b, "\n    %s -.- %s", id, group)
	}

	if n.Color != render.SkinNone {
		fmt.Fprintf(&b, "\n    class %s %s", id, className(n.Color))
	}
	if changed {
		fmt.Fprintf(&b, "\n    class %s %s", id, d.class)
	}
	return b.String()
}

func (*Backend) Transition(t flow.Transition) string {
	arrow := "-->"
	if t.Fault {
		arrow = "-.->"
	}
	if t.Label != "" {
		arrow += fmt.Sprintf("|\"%s\"|", escape(t.Label))
	}
	return fmt.Sprintf("    %s %s %s", safeID(t.From), arrow, safeID(t.To))
}

func (*Backend) Footer() string { return "" }

func className(s render.Skin) string {
	return strings.ToLower(s.Name())
}

// safeID maps every rune outside [A-Za-z0-9_] to an underscore, so names
// from YAML or JSON flows stay valid Mermaid identifiers.
func safeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, id)
}

var labelEscaper = strings.NewReplacer(`"`, "#quot;", "<", "#lt;", ">", "#gt;")

func escape(s string) string {
	return labelEscaper.Replace(s)
}
