package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/flowlens/pkg/cache"
	"github.com/matzehuels/flowlens/pkg/diff"
	"github.com/matzehuels/flowlens/pkg/flow"
	"github.com/matzehuels/flowlens/pkg/observability"
	"github.com/matzehuels/flowlens/pkg/parser"
	"github.com/matzehuels/flowlens/pkg/render"
	"github.com/matzehuels/flowlens/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching and logging behave the same.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// GitRunner overrides how git is invoked. Nil runs the git binary.
	GitRunner source.CommandRunner
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute resolves the flow files selected by opts and processes each one.
// Per-file failures are logged and returned in Result.Failures; only invalid
// options and failed change detection abort the run.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &Result{RunID: uuid.NewString(), Tool: opts.DiagramTool}
	logger := opts.Logger.With("run_id", result.RunID)

	reader, paths, err := r.sources(ctx, opts, logger)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		logger.Warn("no flow files to process")
	}

	type outcome struct {
		diagrams *FileDiagrams
		err      error
	}
	outcomes := make([]outcome, len(paths))

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i, path := range paths {
		g.Go(func() error {
			d, err := r.processFile(ctx, reader, path, opts)
			outcomes[i] = outcome{d, err}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, o := range outcomes {
		result.Stats.Files++
		if o.err != nil {
			logger.Errorf("unable to process file: %s | %v", paths[i], o.err)
			result.Failures = append(result.Failures, FileFailure{Path: paths[i], Err: o.err})
			result.Stats.Failed++
			continue
		}
		result.Diagrams = append(result.Diagrams, *o.diagrams)
		result.Stats.Nodes += o.diagrams.Nodes
		result.Stats.Transitions += o.diagrams.Transitions
		result.Stats.CacheHits += o.diagrams.cacheHits
	}
	result.Stats.Duration = time.Since(start)

	logger.Info("processed flows",
		"files", result.Stats.Files,
		"failed", result.Stats.Failed,
		"duration", result.Stats.Duration)
	return result, nil
}

// sources picks the reader for opts and lists the files to process.
func (r *Runner) sources(ctx context.Context, opts Options, logger *log.Logger) (source.Reader, []string, error) {
	if !opts.Comparing() {
		return source.Local{Root: opts.GitRepo}, opts.FilePaths, nil
	}

	git := &source.Git{
		Repo:   opts.GitRepo,
		From:   opts.GitDiffFromHash,
		To:     opts.GitDiffToHash,
		Runner: r.GitRunner,
		Logger: logger,
		Cache:  r.Cache,
		Keyer:  r.keyer(),
	}
	paths, err := git.ChangedFlows(ctx)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("detected changed flows", "files", len(paths), "from", opts.GitDiffFromHash, "to", opts.GitDiffToHash)
	return git, paths, nil
}

func (r *Runner) processFile(ctx context.Context, reader source.Reader, path string, opts Options) (d *FileDiagrams, err error) {
	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnFileStart(ctx, path)
	defer func() { hooks.OnFileComplete(ctx, path, time.Since(start), err) }()

	diffs, err := reader.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	d, err = r.Render(ctx, path, diffs, RenderOptions{
		Tool:    opts.DiagramTool,
		Formats: opts.Artifacts(),
		Refresh: opts.Refresh,
	})
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("rendered flow",
		"path", path,
		"nodes", d.Nodes,
		"transitions", d.Transitions,
		"duration", time.Since(start))
	return d, nil
}

// RenderOptions selects what [Runner.Render] produces.
type RenderOptions struct {
	Tool    string
	Formats []string // Artifact formats besides text.
	Refresh bool     // Skip cache reads.
}

// Render parses both sides of d, compares them when an old side exists and
// renders the diagrams. name is used to pick the document decoder and is
// reported as the result path.
func (r *Runner) Render(ctx context.Context, name string, d source.Difference, ro RenderOptions) (*FileDiagrams, error) {
	backend, err := NewBackend(ro.Tool)
	if err != nil {
		return nil, err
	}
	if err := ValidateFormats(ro.Tool, ro.Formats); err != nil {
		return nil, err
	}

	newFlow, err := r.parse(ctx, name, d.New)
	if err != nil {
		return nil, err
	}
	out := &FileDiagrams{
		Path:        name,
		Label:       newFlow.Label,
		Nodes:       newFlow.NodeCount(),
		Transitions: len(newFlow.Transitions),
	}

	var old []byte
	var oldFlow *flow.Flow
	if d.HasOld() {
		old = d.Old
		if oldFlow, err = r.parse(ctx, name, d.Old); err != nil {
			return nil, err
		}
		out.Summary = diff.Compare(oldFlow, newFlow)
		observability.Pipeline().OnDiffComplete(ctx, name,
			len(out.Summary.Added), len(out.Summary.Deleted), len(out.Summary.Modified))
	}

	hash := cache.ContentHash(old, d.New)
	sides := []struct {
		side cache.Side
		f    *flow.Flow
	}{{cache.SideOld, oldFlow}, {cache.SideNew, newFlow}}

	for _, s := range sides {
		if s.f == nil {
			continue
		}
		text := r.diagram(ctx, hash, s.side, ro, func() string { return render.Generate(s.f, backend) }, out)
		if s.side == cache.SideOld {
			out.Difference.Old = &text
		} else {
			out.Difference.New = text
		}

		for _, format := range ro.Formats {
			if format == FormatText {
				continue
			}
			data, err := r.artifact(ctx, hash, s.side, format, text, ro, out)
			if err != nil {
				return nil, err
			}
			out.Artifacts = append(out.Artifacts, Artifact{Side: s.side, Format: format, Data: data})
		}
	}
	return out, nil
}

func (r *Runner) parse(ctx context.Context, name string, data []byte) (*flow.Flow, error) {
	start := time.Now()
	f, err := parser.Parse(name, data)
	nodes, transitions := 0, 0
	if f != nil {
		nodes, transitions = f.NodeCount(), len(f.Transitions)
	}
	observability.Pipeline().OnParseComplete(ctx, name, nodes, transitions, time.Since(start), err)
	return f, err
}

// diagram returns the cached diagram text for one side or generates and
// caches it.
func (r *Runner) diagram(ctx context.Context, hash string, side cache.Side, ro RenderOptions, gen func() string, out *FileDiagrams) string {
	key := r.keyer().DiagramKey(hash, cache.DiagramKeyOpts{Tool: ro.Tool, Format: FormatText, Side: side})
	if data, ok := r.lookup(ctx, key, ro.Refresh); ok {
		out.cacheHits++
		return string(data)
	}

	start := time.Now()
	text := gen()
	observability.Pipeline().OnRenderComplete(ctx, ro.Tool, FormatText, time.Since(start), nil)
	r.store(ctx, key, []byte(text))
	return text
}

// artifact returns a cached rasterised diagram or draws and caches it.
func (r *Runner) artifact(ctx context.Context, hash string, side cache.Side, format, dot string, ro RenderOptions, out *FileDiagrams) ([]byte, error) {
	key := r.keyer().DiagramKey(hash, cache.DiagramKeyOpts{Tool: ro.Tool, Format: format, Side: side})
	if data, ok := r.lookup(ctx, key, ro.Refresh); ok {
		out.cacheHits++
		return data, nil
	}

	start := time.Now()
	data, err := rasterise(ctx, dot, format)
	observability.Pipeline().OnRenderComplete(ctx, ro.Tool, format, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, data)
	return data, nil
}

func (r *Runner) lookup(ctx context.Context, key string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	if r.Cache == nil {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.logger().Debug("cache read failed", "err", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, "diagram")
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, "diagram")
	return nil, false
}

func (r *Runner) store(ctx context.Context, key string, data []byte) {
	if r.Cache == nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.DiagramTTL); err != nil {
		r.logger().Debug("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "diagram", len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) keyer() cache.Keyer {
	if r.Keyer != nil {
		return r.Keyer
	}
	return cache.NewDefaultKeyer()
}

func (r *Runner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
