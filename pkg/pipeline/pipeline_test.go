package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/flowlens/pkg/cache"
	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/source"
)

const sampleFlow = `<?xml version="1.0" encoding="UTF-8"?>
<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <label>Sample Flow</label>
    <recordLookups>
        <name>Get_Account</name>
        <label>Get Account</label>
        <connector>
            <targetReference>Undo</targetReference>
        </connector>
        <filters>
            <field>Id</field>
            <operator>EqualTo</operator>
        </filters>
    </recordLookups>
    <recordRollbacks>
        <name>Undo</name>
        <label>Undo</label>
        <connector>
            <targetReference>Show</targetReference>
        </connector>
    </recordRollbacks>
    <screens>
        <name>Show</name>
        <label>Show</label>
    </screens>
    <start>
        <connector>
            <targetReference>Get_Account</targetReference>
        </connector>
    </start>
</Flow>`

// changedFlow drops the rollback and retargets the lookup.
const changedFlow = `<?xml version="1.0" encoding="UTF-8"?>
<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <label>Sample Flow</label>
    <recordLookups>
        <name>Get_Account</name>
        <label>Get Account</label>
        <connector>
            <targetReference>Show</targetReference>
        </connector>
        <filters>
            <field>Id</field>
            <operator>EqualTo</operator>
        </filters>
    </recordLookups>
    <screens>
        <name>Show</name>
        <label>Show</label>
    </screens>
    <start>
        <connector>
            <targetReference>Get_Account</targetReference>
        </connector>
    </start>
</Flow>`

const danglingFlow = `<Flow>
    <label>Broken</label>
    <start>
        <connector>
            <targetReference>Missing_Node</targetReference>
        </connector>
    </start>
</Flow>`

func writeFlows(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

type fakeGit map[string]string

func (f fakeGit) Run(_ context.Context, args ...string) ([]byte, error) {
	key := strings.Join(args, " ")
	if out, ok := f[key]; ok {
		return []byte(out), nil
	}
	return nil, fmt.Errorf("fatal: path not found: %s", key)
}

func TestValidateTool(t *testing.T) {
	tests := []struct {
		tool    string
		wantErr bool
	}{
		{"graphviz", false},
		{"plantuml", false},
		{"mermaid", false},
		{"GRAPHVIZ", true}, // case-sensitive
		{"d2", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateTool(tt.tool)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateTool(%q) error = %v, wantErr %v", tt.tool, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats(ToolGraphviz, []string{"text", "svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats(ToolPlantUML, []string{"svg"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("svg with plantuml should fail with INVALID_FORMAT, got %v", err)
	}
	if err := ValidateFormats(ToolGraphviz, []string{"pdf"}); err == nil {
		t.Error("Unknown format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(ToolMermaid, nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsValidation(t *testing.T) {
	dir := writeFlows(t, map[string]string{"a.flow-meta.xml": sampleFlow})
	file := filepath.Join(dir, "a.flow-meta.xml")

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "valid file paths",
			opts: Options{FilePaths: []string{file}, OutputDirectory: dir, OutputFileName: "out"},
		},
		{
			name: "valid git range",
			opts: Options{DiagramTool: "PlantUML", GitDiffFromHash: "HEAD~1", GitDiffToHash: "HEAD", OutputDirectory: dir, OutputFileName: "out_1"},
		},
		{
			name: "everything missing",
			opts: Options{},
			want: []string{
				"outputDirectory is required",
				"outputFileName is required",
				"Either filePath or (gitDiffFrom and gitDiffToHash) must be specified",
			},
		},
		{
			name: "bad values",
			opts: Options{
				DiagramTool:     "d2",
				FilePaths:       []string{filepath.Join(dir, "missing.xml")},
				OutputDirectory: filepath.Join(dir, "nope"),
				OutputFileName:  "bad-name",
			},
			want: []string{
				"Unsupported diagram tool: d2. Valid options are: graphviz, plantuml, mermaid",
				"filePath does not exist: " + filepath.Join(dir, "missing.xml"),
				"outputDirectory does not exist: " + filepath.Join(dir, "nope"),
				"outputFileName must be alphanumeric with underscores: bad-name",
			},
		},
		{
			name: "paths and hashes",
			opts: Options{FilePaths: []string{file}, GitDiffFromHash: "abc", OutputDirectory: dir, OutputFileName: "out"},
			want: []string{
				"filePath and (gitDiffFrom and gitDiffToHash) are mutually exclusive",
				"gitDiffFromHash and gitDiffToHash must be specified together",
			},
		},
		{
			name: "raster formats need graphviz",
			opts: Options{DiagramTool: "mermaid", FilePaths: []string{file}, OutputDirectory: dir, OutputFileName: "out", Formats: []string{"svg"}},
			want: []string{"Formats svg require the graphviz diagram tool"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if len(tt.want) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *errors.ValidationError
			if e, ok := err.(*errors.ValidationError); ok {
				verr = e
			} else {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
			if got := strings.Join(verr.Problems, "\n"); got != strings.Join(tt.want, "\n") {
				t.Errorf("problems =\n%s\nwant\n%s", got, strings.Join(tt.want, "\n"))
			}
			if !strings.HasPrefix(err.Error(), "The following errors were encountered:\n- ") {
				t.Errorf("unexpected message header: %s", err.Error())
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{DiagramTool: "Mermaid"}
	opts.SetDefaults()
	if opts.DiagramTool != ToolMermaid {
		t.Errorf("DiagramTool = %q, want %q", opts.DiagramTool, ToolMermaid)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatText {
		t.Errorf("Formats = %v, want [text]", opts.Formats)
	}
	if opts.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", opts.Workers, DefaultWorkers)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}
}

func TestExecuteLocalFiles(t *testing.T) {
	dir := writeFlows(t, map[string]string{
		"a.flow-meta.xml": sampleFlow,
		"b.flow-meta.xml": danglingFlow,
		"c.flow-meta.xml": changedFlow,
	})

	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		DiagramTool:     ToolMermaid,
		GitRepo:         dir,
		FilePaths:       []string{"a.flow-meta.xml", "b.flow-meta.xml", "c.flow-meta.xml"},
		OutputDirectory: dir,
		OutputFileName:  "out",
		Workers:         3,
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if res.RunID == "" {
		t.Error("RunID should be set")
	}
	if len(res.Diagrams) != 2 {
		t.Fatalf("got %d diagrams, want 2", len(res.Diagrams))
	}
	if res.Diagrams[0].Path != "a.flow-meta.xml" || res.Diagrams[1].Path != "c.flow-meta.xml" {
		t.Errorf("diagrams out of input order: %s, %s", res.Diagrams[0].Path, res.Diagrams[1].Path)
	}
	if res.Diagrams[0].Difference.Old != nil {
		t.Error("local files have no old side")
	}
	for _, line := range []string{"    FLOW_START --> Get_Account", "    Get_Account --> Undo", "    Undo --> Show"} {
		if !strings.Contains(res.Diagrams[0].Difference.New, line) {
			t.Errorf("diagram missing %q:\n%s", line, res.Diagrams[0].Difference.New)
		}
	}

	if len(res.Failures) != 1 || res.Failures[0].Path != "b.flow-meta.xml" {
		t.Fatalf("failures = %+v, want b.flow-meta.xml", res.Failures)
	}
	if !errors.Is(res.Failures[0].Err, errors.ErrCodeUnresolvedTarget) {
		t.Errorf("failure should be UNRESOLVED_TARGET: %v", res.Failures[0].Err)
	}
	if !strings.Contains(res.Failures[0].Err.Error(), "Missing_Node") {
		t.Errorf("failure should name the missing target: %v", res.Failures[0].Err)
	}

	if res.Stats.Files != 3 || res.Stats.Failed != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.Stats.Nodes != 5 || res.Stats.Transitions != 5 {
		t.Errorf("stats nodes/transitions = %d/%d, want 5/5", res.Stats.Nodes, res.Stats.Transitions)
	}
}

func TestExecuteGitRange(t *testing.T) {
	dir := t.TempDir()
	git := fakeGit{
		"--version":                                   "git version 2.43.0",
		"rev-parse --is-inside-work-tree":             "true",
		"diff --diff-filter=AMRC --name-only abc def": "flows/Sample.flow-meta.xml\nflows/New.flow-meta.xml\nREADME.md\n",
		"show abc:flows/Sample.flow-meta.xml":         sampleFlow,
		"show def:flows/Sample.flow-meta.xml":         changedFlow,
		"show def:flows/New.flow-meta.xml":            sampleFlow,
	}

	r := NewRunner(nil, nil, nil)
	r.GitRunner = git
	res, err := r.Execute(context.Background(), Options{
		DiagramTool:     ToolPlantUML,
		GitDiffFromHash: "abc",
		GitDiffToHash:   "def",
		OutputDirectory: dir,
		OutputFileName:  "out",
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(res.Diagrams) != 2 || len(res.Failures) != 0 {
		t.Fatalf("diagrams=%d failures=%+v", len(res.Diagrams), res.Failures)
	}

	changed := res.Diagrams[0]
	if changed.Difference.Old == nil {
		t.Fatal("changed flow should have an old diagram")
	}
	if got := changed.Summary.Deleted; len(got) != 1 || got[0] != "Undo" {
		t.Errorf("Deleted = %v, want [Undo]", got)
	}
	if got := changed.Summary.Modified; len(got) != 1 || got[0] != "Get_Account" {
		t.Errorf("Modified = %v, want [Get_Account]", got)
	}
	if !strings.Contains(*changed.Difference.Old, "<&minus{scale=2}>") {
		t.Error("old diagram should mark the deleted node")
	}
	if !strings.Contains(changed.Difference.New, "<&transfer{scale=2}>") {
		t.Error("new diagram should mark the modified node")
	}

	added := res.Diagrams[1]
	if added.Difference.Old != nil {
		t.Error("flow missing at the old revision should have no old diagram")
	}
	if !added.Summary.Empty() {
		t.Errorf("new flow should have an empty summary, got %+v", added.Summary)
	}
}

func TestExecuteGitFailure(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	r.GitRunner = fakeGit{}
	_, err := r.Execute(context.Background(), Options{
		GitDiffFromHash: "abc",
		GitDiffToHash:   "def",
		OutputDirectory: t.TempDir(),
		OutputFileName:  "out",
	})
	if !errors.Is(err, errors.ErrCodeGit) {
		t.Fatalf("expected GIT_ERROR, got %v", err)
	}
	if errors.UserMessage(err) != "Git is not installed on this machine." {
		t.Errorf("unexpected message: %s", errors.UserMessage(err))
	}
}

func TestRenderUsesCache(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	d := source.Difference{Old: []byte(sampleFlow), New: []byte(changedFlow)}
	ro := RenderOptions{Tool: ToolGraphviz}

	first, err := r.Render(ctx, "a.xml", d, ro)
	if err != nil {
		t.Fatal(err)
	}
	if first.cacheHits != 0 {
		t.Errorf("first render should miss, got %d hits", first.cacheHits)
	}

	second, err := r.Render(ctx, "a.xml", d, ro)
	if err != nil {
		t.Fatal(err)
	}
	if second.cacheHits != 2 {
		t.Errorf("second render should hit both sides, got %d hits", second.cacheHits)
	}
	if second.Difference.New != first.Difference.New || *second.Difference.Old != *first.Difference.Old {
		t.Error("cached diagrams differ from rendered ones")
	}

	ro.Refresh = true
	third, err := r.Render(ctx, "a.xml", d, ro)
	if err != nil {
		t.Fatal(err)
	}
	if third.cacheHits != 0 {
		t.Errorf("refresh should bypass the cache, got %d hits", third.cacheHits)
	}
}

func TestRenderRejectsBadTool(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Render(context.Background(), "a.xml", source.Difference{New: []byte(sampleFlow)}, RenderOptions{Tool: "d2"})
	if !errors.Is(err, errors.ErrCodeInvalidTool) {
		t.Errorf("expected INVALID_TOOL, got %v", err)
	}
}
