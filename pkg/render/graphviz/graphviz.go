package graphviz

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

var diffMarks = map[flow.DiffStatus]struct{ color, mark string }{
	flow.DiffAdded:    {"green", "+"},
	flow.DiffDeleted:  {"red", "-"},
	flow.DiffModified: {"#DD7A00", "Δ"},
}

const (
	tableBegin = "<\n<TABLE CELLSPACING=\"0\" CELLPADDING=\"0\">"
	tableEnd   = "</TABLE>\n>"
)

// Backend emits DOT.
type Backend struct{}

// New returns a DOT backend.
func New() *Backend { return &Backend{} }

func (*Backend) Header(label string) string {
	return fmt.Sprintf("digraph {\nlabel=<<B>%s</B>>\ntitle = \"%s\";\nlabelloc = \"t\";\nnode [shape=box, style=filled]",
		escape(label), escape(label))
}

func (*Backend) Node(n render.DiagramNode) string {
	var inner string
	if len(n.InnerNodes) > 0 {
		rows := make([]string, len(n.InnerNodes))
		for i, in := range n.InnerNodes {
			rows[i] = innerRow(n, in)
		}
		inner = "\n" + strings.Join(rows, "\n") + "\n"
	}

	fontColor := "white"
	if n.Color == render.SkinNone {
		fontColor = "black"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [\n", n.ID)
	fmt.Fprintf(&b, "  label=%s\n%s%s\n%s\n", tableBegin, tableHeader(n), inner, tableEnd)
	fmt.Fprintf(&b, "  color=\"%s\"\n", n.Color.Hex())
	fmt.Fprintf(&b, "  fontcolor=\"%s\"\n", fontColor)
	b.WriteString("];")
	return b.String()
}

func (*Backend) Transition(t flow.Transition) string {
	color, style := "black", ""
	if t.Fault {
		color, style = "red", "dashed"
	}
	return fmt.Sprintf("%s -> %s [label=\"%s\" color=\"%s\" style=\"%s\"]", t.From, t.To, escape(t.Label), color, style)
}

func (*Backend) Footer() string { return "}" }

func tableHeader(n render.DiagramNode) string {
	return fmt.Sprintf("  <TR>%s\n    <TD>\n      <B>%s%s</B>\n    </TD>\n  </TR>\n  <TR>\n    <TD%s><U>%s</U></TD>\n  </TR>",
		diffCell(n.DiffStatus), n.Type, icons[n.Icon], colSpan(n), escape(n.Label))
}

func innerRow(parent render.DiagramNode, in render.InnerNode) string {
	var content strings.Builder
	for _, line := range in.Content {
		line = escape(line)
		if strings.HasPrefix(line, render.LogicPrefix) {
			line = "<I>" + line + "</I>"
		}
		content.WriteString(`<BR ALIGN="LEFT"/>` + line)
	}
	return fmt.Sprintf("  <TR>\n    <TD%s BORDER=\"1\" COLOR=\"white\" ALIGN=\"LEFT\" CELLPADDING=\"6\">\n      <B>%s</B>\n      %s\n    </TD>\n  </TR>",
		colSpan(parent), escape(in.Label), content.String())
}

func diffCell(s flow.DiffStatus) string {
	d, ok := diffMarks[s]
	if !ok {
		return ""
	}
	return fmt.Sprintf(`<TD BGCOLOR="WHITE" WIDTH="20"><FONT COLOR="%s"><B>%s</B></FONT></TD>`, d.color, d.mark)
}

func colSpan(n render.DiagramNode) string {
	if n.DiffStatus != flow.DiffNone {
		return ` COLSPAN="2"`
	}
	return ""
}

var escaper = strings.NewReplacer(`"`, "'", "&", "&amp;", "<", "&lt;", ">", "&gt;")

// escape makes s safe inside an HTML-like label or a quoted attribute.
func escape(s string) string {
	return escaper.Replace(s)
}
