// Package io writes pipeline results to disk and reads them back.
//
// # JSON Format
//
// The result file is an array with one entry per processed flow file, in
// input order:
//
//	[
//	  {
//	    "path": "force-app/main/default/flows/Example.flow-meta.xml",
//	    "difference": {
//	      "old": "digraph { ... }",
//	      "new": "digraph { ... }"
//	    }
//	  }
//	]
//
// "old" is omitted when the flow has no previous version. Diagram text is
// written verbatim: HTML characters are not escaped, so the file can be fed
// straight to the diagram tools.
//
// # Export
//
// Use [ExportResults] to write <dir>/<name>.json, or [WriteResults] to write
// to any io.Writer. [ExportArtifacts] writes SVG or PNG renderings next to
// the JSON file.
//
// # Import
//
// Use [ImportResults] to read a result file back, for example to browse it
// in the terminal UI:
//
//	records, err := io.ImportResults("out/flows.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
package io
