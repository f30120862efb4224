package source

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowlens/pkg/cache"
	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/observability"
)

// FlowFileExtension is the suffix of flow metadata files in a repository.
const FlowFileExtension = ".flow-meta.xml"

// diffFilter keeps added, modified, renamed and copied files.
const diffFilter = "AMRC"

// Git error messages.
const (
	msgGitNotInstalled = "Git is not installed on this machine."
	msgNotInRepo       = "Not in a git repo."
)

// CommandRunner runs git with the given arguments and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// ExecRunner runs the git binary found on PATH.
type ExecRunner struct{}

// Run implements [CommandRunner].
func (ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(errBuf.String()); msg != "" {
			return nil, fmt.Errorf("%v: %s", err, msg)
		}
		return nil, err
	}
	return out.Bytes(), nil
}

// commitHash matches a full object name. Only immutable revisions are cached.
var commitHash = regexp.MustCompile(`^[0-9a-f]{40}([0-9a-f]{24})?$`)

// Git reads flows at two revisions of a repository.
type Git struct {
	Repo string // Repository directory; empty means the working directory.
	From string // Revision of the old side.
	To   string // Revision of the new side.

	Runner CommandRunner // Defaults to ExecRunner.
	Logger *log.Logger   // Optional.

	// Cache stores file contents read at full commit hashes.
	Cache cache.Cache
	Keyer cache.Keyer
}

// ChangedFlows lists the flow files that were added, modified, renamed or
// copied between From and To, in git's output order.
func (g *Git) ChangedFlows(ctx context.Context) ([]string, error) {
	if _, err := g.run(ctx, "--version"); err != nil {
		return nil, errors.Wrap(errors.ErrCodeGit, err, msgGitNotInstalled)
	}
	if _, err := g.run(ctx, "rev-parse", "--is-inside-work-tree"); err != nil {
		return nil, errors.Wrap(errors.ErrCodeGit, err, msgNotInRepo)
	}
	out, err := g.run(ctx, "diff", "--diff-filter="+diffFilter, "--name-only", g.From, g.To)
	if err != nil {
		return nil, errors.New(errors.ErrCodeGit, "Git diff command failed: %v", err)
	}

	var paths []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" && strings.HasSuffix(strings.ToLower(line), FlowFileExtension) {
			paths = append(paths, line)
		}
	}
	return paths, nil
}

// Read implements [Reader]. A file missing at From is treated as a new flow.
func (g *Git) Read(ctx context.Context, path string) (Difference, error) {
	var d Difference
	old, err := g.Show(ctx, g.From, path)
	if err != nil {
		g.logger().Infof("previous version of flow not found: %s, so it will be treated as a new flow", path)
	} else {
		d.Old = old
	}

	d.New, err = g.Show(ctx, g.To, path)
	if err != nil {
		return Difference{}, err
	}
	return d, nil
}

// Show returns the content of path at revision rev.
func (g *Git) Show(ctx context.Context, rev, path string) ([]byte, error) {
	var key string
	if g.Cache != nil && commitHash.MatchString(rev) {
		key = g.keyer().SourceKey(g.Repo, rev, path)
		if data, hit, err := g.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "source")
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "source")
	}

	data, err := g.run(ctx, "show", rev+":"+path)
	if err != nil {
		return nil, errors.New(errors.ErrCodeGit, "Unable to get file content for %s: %v", path, err)
	}

	if key != "" {
		if err := g.Cache.Set(ctx, key, data, cache.SourceTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "source", len(data))
		}
	}
	return data, nil
}

func (g *Git) run(ctx context.Context, args ...string) ([]byte, error) {
	if g.Repo != "" {
		args = append([]string{"-C", g.Repo}, args...)
	}
	r := g.Runner
	if r == nil {
		r = ExecRunner{}
	}
	return r.Run(ctx, args...)
}

func (g *Git) keyer() cache.Keyer {
	if g.Keyer != nil {
		return g.Keyer
	}
	return cache.NewDefaultKeyer()
}

func (g *Git) logger() *log.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return log.Default()
}

var _ Reader = (*Git)(nil)
