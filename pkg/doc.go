// Package pkg provides the core libraries of flowlens.
//
// # Overview
//
// Flowlens turns flow definition documents into text diagrams and, when two
// revisions of a flow are given, marks what changed between them. The pkg
// directory is organized into these areas:
//
//  1. [flow], [parser] - Data model, document decoding, normalisation and the
//     transition graph builder
//  2. [diff] - Node-level comparison of two flows
//  3. [render] - Backend-independent diagram generation with Graphviz,
//     PlantUML and Mermaid backends
//  4. [pipeline] - Orchestration (read → parse → diff → render)
//  5. [source], [io], [storage], [cache] - Inputs, outputs and caching
//  6. [errors], [observability], [buildinfo] - Shared infrastructure
//
// # Architecture
//
// The typical data flow through flowlens:
//
//	Flow document (XML, YAML or JSON)
//	         ↓
//	    [flow] package (decode into a raw document)
//	         ↓
//	    [parser] package (normalise, then build the transition graph)
//	         ↓
//	    [diff] package (tag added, deleted and modified nodes)
//	         ↓
//	    [render] package (diagram text, optional SVG/PNG)
//
// # Quick Start
//
// Render a single flow with PlantUML:
//
//	import (
//	    "github.com/matzehuels/flowlens/pkg/parser"
//	    "github.com/matzehuels/flowlens/pkg/render"
//	    "github.com/matzehuels/flowlens/pkg/render/plantuml"
//	)
//
//	f, err := parser.Parse("Order.flow-meta.xml", data)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(render.Generate(f, plantuml.New()))
//
// Compare two revisions:
//
//	oldFlow, _ := parser.Parse(name, oldData)
//	newFlow, _ := parser.Parse(name, newData)
//	summary := diff.Compare(oldFlow, newFlow)
//	fmt.Println(render.Generate(newFlow, plantuml.New()))
//
// For batches of files, git revision ranges and caching use [pipeline.Runner].
package pkg
