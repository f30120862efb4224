// Package parser turns raw flow documents into [flow.Flow] graphs.
//
// Parsing happens in three steps:
//
//  1. Decode: bytes to a [flow.Document] (see [flow.Decode]).
//  2. [Normalize]: promote every collection that may hold a single element to
//     an ordered list and rename the start element to [flow.StartName].
//  3. [Build]: index every element by name and derive the transition list by
//     breadth-first traversal from the start element.
//
// [Parse] runs all three. Structural problems (a missing start element or a
// connector naming an unknown element) are reported with the
// START_NOT_DEFINED and UNRESOLVED_TARGET error codes; they are never
// retryable.
package parser
