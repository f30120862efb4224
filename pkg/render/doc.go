// Package render turns built flows into text diagrams.
//
// # Overview
//
// Rendering is split in two halves. This package walks a [flow.Flow] in a
// fixed order and converts every node into a backend-neutral [DiagramNode].
// A [Backend] then turns headers, nodes and transitions into the syntax of a
// concrete diagram language. The walk order and the node-type-to-visual
// mapping live here only, so adding a backend never changes either.
//
// Concrete backends live in subpackages:
//
//   - [graphviz]: DOT digraphs with HTML table labels, plus in-process SVG
//     and PNG rasterisation
//   - [plantuml]: state diagrams with nested sub-states
//   - [mermaid]: flowcharts with subgraphs
//
// # Usage
//
//	f, err := parser.Parse(path, data)
//	text := render.Generate(f, graphviz.New())
//
// # Document Layout
//
// [Generate] emits the header, then one block per variant collection in
// [flow.Variants] order (one node per element), then one line per
// transition, then the footer. Empty parts are dropped and the rest are
// joined with newlines.
//
// [graphviz]: github.com/matzehuels/flowlens/pkg/render/graphviz
// [plantuml]: github.com/matzehuels/flowlens/pkg/render/plantuml
// [mermaid]: github.com/matzehuels/flowlens/pkg/render/mermaid
package render
