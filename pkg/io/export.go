package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/matzehuels/flowlens/pkg/pipeline"
)

// Extension is the suffix of result files.
const Extension = ".json"

// Record is one entry of a result file.
type Record struct {
	Path       string              `json:"path"`
	Difference pipeline.Difference `json:"difference"`
}

// Records converts pipeline output to result file entries.
func Records(diagrams []pipeline.FileDiagrams) []Record {
	out := make([]Record, len(diagrams))
	for i, d := range diagrams {
		out[i] = Record{Path: d.Path, Difference: d.Difference}
	}
	return out
}

// WriteResults encodes diagrams as an indented JSON array and writes it to w.
func WriteResults(w io.Writer, diagrams []pipeline.FileDiagrams) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Records(diagrams)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportResults writes diagrams to <dir>/<name>.json and returns the path.
// This is a convenience wrapper around [WriteResults] for file-based output.
func ExportResults(dir, name string, diagrams []pipeline.FileDiagrams) (string, error) {
	path := filepath.Join(dir, name+Extension)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteResults(f, diagrams); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// ArtifactName returns the file name of an artifact:
// <name>_<sanitised path>_<side>.<format>.
func ArtifactName(name, path string, a pipeline.Artifact) string {
	return fmt.Sprintf("%s_%s_%s.%s", name, unsafeChars.ReplaceAllString(path, "_"), a.Side, a.Format)
}

// ExportArtifacts writes every artifact of diagrams into dir and returns the
// written paths in order.
func ExportArtifacts(dir, name string, diagrams []pipeline.FileDiagrams) ([]string, error) {
	var paths []string
	for _, d := range diagrams {
		for _, a := range d.Artifacts {
			path := filepath.Join(dir, ArtifactName(name, d.Path, a))
			if err := os.WriteFile(path, a.Data, 0o644); err != nil {
				return paths, fmt.Errorf("write %s: %w", path, err)
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}
