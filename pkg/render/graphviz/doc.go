// Package graphviz renders flows as Graphviz DOT digraphs.
//
// # Overview
//
// Every node becomes a box whose label is an HTML table: a header row with
// the node type and icon (plus a diff marker cell when the node changed), a
// row with the underlined node label, and one row per inner node. Fault
// transitions are drawn red and dashed.
//
//	dot := render.Generate(f, graphviz.New())
//	svg, err := graphviz.RenderSVG(ctx, dot)
//
// # Rasterisation
//
// [RenderSVG] and [RenderPNG] lay out and draw DOT source in-process with
// [github.com/goccy/go-graphviz]; no dot binary is required.
package graphviz
