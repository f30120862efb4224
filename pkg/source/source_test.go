package source

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowlens/pkg/cache"
	"github.com/matzehuels/flowlens/pkg/errors"
)

// fakeRunner answers git invocations from a table keyed by the joined
// argument list.
type fakeRunner struct {
	out   map[string]string
	fail  map[string]error
	calls []string
}

func (f *fakeRunner) Run(_ context.Context, args ...string) ([]byte, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if err, ok := f.fail[key]; ok {
		return nil, err
	}
	if out, ok := f.out[key]; ok {
		return []byte(out), nil
	}
	return nil, fmt.Errorf("unexpected git call: %s", key)
}

func healthyRunner() *fakeRunner {
	return &fakeRunner{
		out: map[string]string{
			"-C repo --version":                       "git version 2.43.0\n",
			"-C repo rev-parse --is-inside-work-tree": "true\n",
		},
		fail: map[string]error{},
	}
}

func TestLocalRead(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.flow-meta.xml"), []byte("<Flow/>"), 0o644))

	d, err := Local{Root: dir}.Read(context.Background(), "a.flow-meta.xml")
	require.NoError(t, err)
	assert.Equal(t, "<Flow/>", string(d.New))
	assert.False(t, d.HasOld())
}

func TestLocalReadRejectsUnsupportedExtension(t *testing.T) {
	_, err := Local{}.Read(context.Background(), "notes.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestLocalReadMissingFile(t *testing.T) {
	_, err := Local{Root: t.TempDir()}.Read(context.Background(), "missing.xml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestSupported(t *testing.T) {
	for path, want := range map[string]bool{
		"a.flow-meta.xml": true,
		"a.YAML":          true,
		"a.yml":           true,
		"a.json":          true,
		"a.txt":           false,
		"flow":            false,
	} {
		assert.Equal(t, want, Supported(path), path)
	}
}

func TestChangedFlows(t *testing.T) {
	r := healthyRunner()
	r.out["-C repo diff --diff-filter=AMRC --name-only abc def"] = strings.Join([]string{
		"force-app/flows/One.flow-meta.xml",
		"README.md",
		"force-app/flows/Two.FLOW-META.XML",
		"force-app/classes/Foo.cls",
		"",
	}, "\n")

	g := &Git{Repo: "repo", From: "abc", To: "def", Runner: r}
	paths, err := g.ChangedFlows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"force-app/flows/One.flow-meta.xml",
		"force-app/flows/Two.FLOW-META.XML",
	}, paths)
}

func TestChangedFlowsErrors(t *testing.T) {
	tests := []struct {
		name string
		fail string
		want string
	}{
		{"git missing", "-C repo --version", "Git is not installed on this machine."},
		{"not a repo", "-C repo rev-parse --is-inside-work-tree", "Not in a git repo."},
		{"diff fails", "-C repo diff --diff-filter=AMRC --name-only abc def", "Git diff command failed: bad revision"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := healthyRunner()
			r.fail[tt.fail] = fmt.Errorf("bad revision")

			_, err := (&Git{Repo: "repo", From: "abc", To: "def", Runner: r}).ChangedFlows(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeGit))
			assert.Equal(t, tt.want, errors.UserMessage(err))
		})
	}
}

func TestGitRead(t *testing.T) {
	r := &fakeRunner{out: map[string]string{
		"show abc:flows/A.flow-meta.xml": "old",
		"show def:flows/A.flow-meta.xml": "new",
	}}
	g := &Git{From: "abc", To: "def", Runner: r}

	d, err := g.Read(context.Background(), "flows/A.flow-meta.xml")
	require.NoError(t, err)
	assert.Equal(t, "old", string(d.Old))
	assert.Equal(t, "new", string(d.New))
	assert.True(t, d.HasOld())
}

func TestGitReadNewFlow(t *testing.T) {
	var buf bytes.Buffer
	r := &fakeRunner{
		out:  map[string]string{"show def:flows/B.flow-meta.xml": "new"},
		fail: map[string]error{"show abc:flows/B.flow-meta.xml": fmt.Errorf("exists on disk, but not in 'abc'")},
	}
	g := &Git{From: "abc", To: "def", Runner: r, Logger: log.New(&buf)}

	d, err := g.Read(context.Background(), "flows/B.flow-meta.xml")
	require.NoError(t, err)
	assert.Nil(t, d.Old)
	assert.Equal(t, "new", string(d.New))
	assert.Contains(t, buf.String(), "previous version of flow not found: flows/B.flow-meta.xml, so it will be treated as a new flow")
}

func TestGitReadMissingNewVersion(t *testing.T) {
	r := &fakeRunner{out: map[string]string{"show abc:x.flow-meta.xml": "old"}}
	g := &Git{From: "abc", To: "def", Runner: r, Logger: log.New(&bytes.Buffer{})}

	_, err := g.Read(context.Background(), "x.flow-meta.xml")
	require.Error(t, err)
	assert.Contains(t, errors.UserMessage(err), "Unable to get file content for x.flow-meta.xml: ")
}

func TestGitShowCachesCommitHashes(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	sha := strings.Repeat("a", 40)
	r := &fakeRunner{out: map[string]string{
		"show " + sha + ":f.xml": "pinned",
		"show HEAD:f.xml":        "moving",
	}}
	g := &Git{Runner: r, Cache: c}

	for range 2 {
		data, err := g.Show(ctx, sha, "f.xml")
		require.NoError(t, err)
		assert.Equal(t, "pinned", string(data))
	}
	for range 2 {
		_, err := g.Show(ctx, "HEAD", "f.xml")
		require.NoError(t, err)
	}
	assert.Equal(t, []string{
		"show " + sha + ":f.xml",
		"show HEAD:f.xml",
		"show HEAD:f.xml",
	}, r.calls)
}
