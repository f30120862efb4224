// Package pipeline turns flow files into diagrams.
//
// This package implements the read → parse → diff → render pipeline shared
// by the CLI and the HTTP API. Each flow file is processed independently:
//
//  1. Read: load the new version, and the old one when comparing revisions
//  2. Parse: normalize each document and build its transition graph
//  3. Diff: tag added, deleted and modified nodes on both graphs
//  4. Render: generate diagram text with the selected backend, plus optional
//     SVG or PNG artifacts for Graphviz
//
// A failure in one file is logged and recorded; the batch continues.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    DiagramTool:     "plantuml",
//	    GitDiffFromHash: "HEAD~1",
//	    GitDiffToHash:   "HEAD",
//	    OutputDirectory: ".",
//	    OutputFileName:  "flows",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range result.Diagrams {
//	    fmt.Println(d.Path, d.Difference.New)
//	}
package pipeline

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/flowlens/pkg/cache"
	"github.com/matzehuels/flowlens/pkg/diff"
	"github.com/matzehuels/flowlens/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// Diagram tools.
const (
	ToolGraphviz = "graphviz"
	ToolPlantUML = "plantuml"
	ToolMermaid  = "mermaid"
)

// DefaultTool is the diagram tool used when none is given.
const DefaultTool = ToolGraphviz

// Tools lists the supported diagram tools in display order.
var Tools = []string{ToolGraphviz, ToolPlantUML, ToolMermaid}

// Output formats. Text is the diagram source and is always produced; SVG and
// PNG are rasterised from Graphviz DOT.
const (
	FormatText = "text"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// DefaultWorkers bounds how many files are processed at once.
const DefaultWorkers = 4

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	DiagramTool     string   `json:"diagram_tool,omitempty" validate:"oneof=graphviz plantuml mermaid"`
	FilePaths       []string `json:"file_paths,omitempty"`
	GitRepo         string   `json:"git_repo,omitempty"`
	GitDiffFromHash string   `json:"git_diff_from_hash,omitempty"`
	GitDiffToHash   string   `json:"git_diff_to_hash,omitempty"`
	OutputDirectory string   `json:"output_directory" validate:"required"`
	OutputFileName  string   `json:"output_file_name" validate:"required"`
	Formats         []string `json:"formats,omitempty" validate:"dive,oneof=text svg png"`
	Workers         int      `json:"workers,omitempty" validate:"gte=0,lte=64"`
	Refresh         bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" validate:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Comparing reports whether the run compares two git revisions.
func (o *Options) Comparing() bool {
	return o.GitDiffFromHash != "" && o.GitDiffToHash != ""
}

// Artifacts returns the requested formats other than text.
func (o *Options) Artifacts() []string {
	var out []string
	for _, f := range o.Formats {
		if f != FormatText {
			out = append(out, f)
		}
	}
	return out
}

// SetDefaults fills in unset values.
func (o *Options) SetDefaults() {
	o.DiagramTool = strings.ToLower(o.DiagramTool)
	if o.DiagramTool == "" {
		o.DiagramTool = DefaultTool
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatText}
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateAndSetDefaults applies defaults and checks every option, reporting
// all problems together as an [errors.ValidationError].
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validate reports problems in a fixed order: tool, file paths, output
// directory, output name, source selection, formats, workers.
func (o *Options) validate() error {
	failed := map[string]string{}
	if err := validate.Struct(o); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return errors.Wrap(errors.ErrCodeInternal, err, "validate options")
		}
		for _, fe := range fieldErrs {
			if _, seen := failed[fe.StructField()]; !seen {
				failed[fe.StructField()] = fe.Tag()
			}
		}
	}

	var v errors.ValidationError
	if _, ok := failed["DiagramTool"]; ok {
		v.Add("Unsupported diagram tool: %s. Valid options are: %s", o.DiagramTool, strings.Join(Tools, ", "))
	}
	for _, p := range o.FilePaths {
		if _, err := os.Stat(o.resolve(p)); err != nil {
			v.Add("filePath does not exist: %s", p)
		}
	}
	if _, ok := failed["OutputDirectory"]; ok {
		v.Add("outputDirectory is required")
	} else if info, err := os.Stat(o.OutputDirectory); err != nil || !info.IsDir() {
		v.Add("outputDirectory does not exist: %s", o.OutputDirectory)
	}
	if _, ok := failed["OutputFileName"]; ok {
		v.Add("outputFileName is required")
	} else if err := errors.ValidateOutputFileName(o.OutputFileName); err != nil {
		v.Add("%s", errors.UserMessage(err))
	}

	hasPaths := len(o.FilePaths) > 0
	if !hasPaths && !o.Comparing() {
		v.Add("Either filePath or (gitDiffFrom and gitDiffToHash) must be specified")
	}
	if hasPaths && (o.GitDiffFromHash != "" || o.GitDiffToHash != "") {
		v.Add("filePath and (gitDiffFrom and gitDiffToHash) are mutually exclusive")
	}
	if (o.GitDiffFromHash == "") != (o.GitDiffToHash == "") {
		v.Add("gitDiffFromHash and gitDiffToHash must be specified together")
	}
	for _, rev := range []string{o.GitDiffFromHash, o.GitDiffToHash} {
		if rev != "" {
			if err := errors.ValidateGitRevision(rev); err != nil {
				v.Add("%s", errors.UserMessage(err))
			}
		}
	}

	if _, ok := failed["Formats"]; ok {
		v.Add("Unsupported format in %s. Valid options are: text, svg, png", strings.Join(o.Formats, ", "))
	} else if len(o.Artifacts()) > 0 && o.DiagramTool != ToolGraphviz {
		v.Add("Formats %s require the graphviz diagram tool", strings.Join(o.Artifacts(), ", "))
	}
	if _, ok := failed["Workers"]; ok {
		v.Add("workers must be between 1 and 64: %d", o.Workers)
	}
	return v.ErrOrNil()
}

// resolve returns the working-tree location of a configured file path.
func (o *Options) resolve(path string) string {
	if o.GitRepo != "" && !filepath.IsAbs(path) {
		return filepath.Join(o.GitRepo, path)
	}
	return path
}

// =============================================================================
// Results
// =============================================================================

// Difference holds the diagram text of both sides of a flow. Old is nil when
// the flow has no previous version.
type Difference struct {
	Old *string `json:"old,omitempty"`
	New string  `json:"new"`
}

// Artifact is a rasterised diagram.
type Artifact struct {
	Side   cache.Side
	Format string
	Data   []byte
}

// FileDiagrams is the outcome for one successfully processed flow file.
type FileDiagrams struct {
	Path       string
	Label      string
	Difference Difference
	Artifacts  []Artifact
	Summary    diff.Summary

	Nodes       int
	Transitions int

	cacheHits int
}

// FileFailure records a file that could not be processed.
type FileFailure struct {
	Path string
	Err  error
}

// Result contains the outputs of a pipeline run. Diagrams and Failures
// follow the order of the input files.
type Result struct {
	RunID    string
	Tool     string
	Diagrams []FileDiagrams
	Failures []FileFailure
	Stats    Stats
}

// Stats contains run statistics.
type Stats struct {
	Files       int
	Failed      int
	Nodes       int
	Transitions int
	CacheHits   int
	Duration    time.Duration
}
