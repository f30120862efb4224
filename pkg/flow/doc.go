// Package flow defines the data model shared by every stage of flowlens.
//
// # Overview
//
// A flow is a declarative workflow definition: a start element, a set of
// typed elements (decisions, loops, record operations, screens, ...) and
// connectors that point from one element to the next. flowlens turns such a
// document into a graph of [Node] values and derived [Transition] edges,
// optionally annotates two versions of the same graph with a [DiffStatus],
// and renders the result as text diagrams.
//
// # Raw Documents
//
// A [Document] is the raw decoded form of a flow file as produced by
// [DecodeXML] or [DecodeYAML]. In the XML form a collection holding exactly one
// element is indistinguishable from a scalar, so a Document must be
// normalised (see package parser) before it is built into a [Flow].
//
// # Variants and Shapes
//
// Every element belongs to one of the variant collections listed by
// [Variants], in a fixed order that is used for indexing and rendering. The
// source format carries no explicit type tag on elements; instead each
// variant has a distinguishing set of fields. [Classify] maps an element's
// fields to the [Shape] of its outgoing connectors once, at build time, using
// a fixed priority order so ambiguous field sets always classify the same way.
//
// # Synthetic Nodes
//
// Two nodes never appear under those names in a document: the start element
// is renamed to [StartName] and a terminal node named [EndName] is added to
// the index so connectors may target it.
package flow
