package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlens/pkg/io"
	"github.com/matzehuels/flowlens/pkg/observability"
	"github.com/matzehuels/flowlens/pkg/pipeline"
	"github.com/matzehuels/flowlens/pkg/storage"
)

// storeTimeout bounds connecting to and writing the result store.
const storeTimeout = 30 * time.Second

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	configPath    string
	tool          string
	filePaths     []string
	gitRepo       string
	from          string
	to            string
	outputDir     string
	outputName    string
	formats       string
	workers       int
	refresh       bool
	cache         cacheOpts
	mongoURI      string
	mongoDatabase string
	metricsFile   string
	interactive   bool
}

// pipelineOptions converts the flags into pipeline options.
func (o renderOpts) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		DiagramTool:     o.tool,
		FilePaths:       o.filePaths,
		GitRepo:         o.gitRepo,
		GitDiffFromHash: o.from,
		GitDiffToHash:   o.to,
		OutputDirectory: o.outputDir,
		OutputFileName:  o.outputName,
		Formats:         parseFormats(o.formats),
		Workers:         o.workers,
		Refresh:         o.refresh,
	}
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render flow files as diagrams",
		Long: `Render flow files as Graphviz, PlantUML or Mermaid diagrams.

Flows are selected either explicitly with --file-path, or by comparing two git
revisions with --from and --to. When comparing, both versions of every changed
flow are rendered and added, deleted and modified elements are highlighted.

Results are written to <output-directory>/<output-file-name>.json.`,
		Example: `  # Render one flow with PlantUML
  flowlens render -d plantuml -f flows/Order.flow-meta.xml -o out -n order

  # Render every flow changed in the last commit, plus SVGs
  flowlens render --from HEAD~1 --to HEAD --format text,svg -o out -n changes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			cfg.apply(&opts, cmd.Flags().Changed)
			return c.runRender(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.tool, "diagram-tool", "d", "", "diagram tool: graphviz (default), plantuml, mermaid")
	f.StringArrayVarP(&opts.filePaths, "file-path", "f", nil, "flow file to render (repeatable)")
	f.StringVarP(&opts.gitRepo, "git-repo", "r", "", "path to the git repository")
	f.StringVar(&opts.from, "from", "", "git revision to diff from")
	f.StringVar(&opts.to, "to", "", "git revision to diff to")
	f.StringVarP(&opts.outputDir, "output-directory", "o", "", "directory for the results file")
	f.StringVarP(&opts.outputName, "output-file-name", "n", "", "results file name, without extension")
	f.StringVar(&opts.formats, "format", "", "output format(s): text (default), svg, png (comma-separated)")
	f.IntVar(&opts.workers, "workers", 0, "files processed concurrently (default 4)")
	f.BoolVar(&opts.cache.disabled, "no-cache", false, "disable caching")
	f.BoolVar(&opts.refresh, "refresh", false, "ignore cached diagrams")
	f.StringVar(&opts.cache.redisAddr, "redis-addr", "", "use the Redis server at this address as cache")
	f.StringVar(&opts.mongoURI, "mongo-uri", "", "also store results in this MongoDB")
	f.StringVar(&opts.mongoDatabase, "mongo-database", storage.DefaultDatabase, "MongoDB database for results")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "browse the results when done")
	f.StringVar(&opts.configPath, "config", "", "config file (default "+defaultConfigFile+")")

	return cmd
}

// runRender runs the pipeline and writes its results.
func (c *CLI) runRender(ctx context.Context, opts renderOpts) error {
	ctx = withLogger(ctx, c.Logger)

	defer observability.Reset()
	var metrics *observability.Metrics
	if opts.metricsFile != "" {
		metrics = observability.NewMetrics()
		observability.SetPipelineHooks(metrics)
		observability.SetCacheHooks(metrics)
	}

	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := opts.pipelineOptions()
	popts.Logger = c.Logger

	spinner := newSpinner(ctx, os.Stderr, "Rendering flows...")
	observability.SetPipelineHooks(&progressHooks{
		PipelineHooks: observability.Pipeline(),
		spinner:       spinner,
		total:         len(popts.FilePaths),
	})
	spinner.Start()

	result, err := runner.Execute(ctx, popts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeResults(ctx, popts, result)
	if err != nil {
		return err
	}
	if opts.mongoURI != "" {
		if err := saveRun(ctx, opts.mongoURI, opts.mongoDatabase, result); err != nil {
			return err
		}
	}
	if metrics != nil {
		if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
			return fmt.Errorf("write metrics %s: %w", opts.metricsFile, err)
		}
	}

	printResult(result, paths)
	if opts.interactive && len(result.Diagrams) > 0 {
		return browse(io.Records(result.Diagrams))
	}
	if len(result.Diagrams) > 0 {
		printNewline()
		printNextStep("Browse", appName+" view "+paths[0])
	}
	return nil
}

// writeResults writes the JSON results file and any rasterised artifacts.
// The results file comes first in the returned paths.
func writeResults(ctx context.Context, opts pipeline.Options, result *pipeline.Result) ([]string, error) {
	prog := newProgress(loggerFromContext(ctx))

	path, err := io.ExportResults(opts.OutputDirectory, opts.OutputFileName, result.Diagrams)
	if err != nil {
		return nil, fmt.Errorf("write results: %w", err)
	}
	artifacts, err := io.ExportArtifacts(opts.OutputDirectory, opts.OutputFileName, result.Diagrams)
	if err != nil {
		return nil, fmt.Errorf("write artifacts: %w", err)
	}

	prog.done("Wrote %d file(s)", 1+len(artifacts))
	return append([]string{path}, artifacts...), nil
}

// saveRun stores result in MongoDB.
func saveRun(ctx context.Context, uri, database string, result *pipeline.Result) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	store, err := storage.NewMongoStore(ctx, uri, database)
	if err != nil {
		return err
	}
	defer store.Close(context.WithoutCancel(ctx))

	if err := store.SaveRun(ctx, result); err != nil {
		return err
	}
	loggerFromContext(ctx).Debug("stored run", "run_id", result.RunID, "documents", len(result.Diagrams))
	return nil
}

// printResult summarises a run on stdout.
func printResult(result *pipeline.Result, paths []string) {
	printSuccess("Rendered %d of %d flow(s) with %s", len(result.Diagrams), result.Stats.Files, result.Tool)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.Nodes, result.Stats.Transitions, result.Stats.CacheHits > 0)
	for _, d := range result.Diagrams {
		if !d.Summary.Empty() {
			printChanges(d.Path, len(d.Summary.Added), len(d.Summary.Deleted), len(d.Summary.Modified))
		}
	}
	for _, f := range result.Failures {
		printWarning("%s: %v", f.Path, f.Err)
	}
}

// browse opens the interactive result browser.
func browse(records []io.Record) error {
	_, err := tea.NewProgram(NewResultListModel(records), tea.WithAltScreen()).Run()
	return err
}
