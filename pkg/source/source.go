// Package source reads flow documents for the pipeline.
//
// A [Reader] returns both sides of a comparison for one path. [Local] reads
// the working tree and has no previous version; [Git] reads two revisions
// of a repository and also detects which flows changed between them.
package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/flowlens/pkg/errors"
)

// Difference holds the raw documents of one flow. Old is nil when there is
// no previous version to compare against.
type Difference struct {
	Old []byte
	New []byte
}

// HasOld reports whether a previous version is present. An empty previous
// document counts as absent.
func (d Difference) HasOld() bool { return len(d.Old) > 0 }

// Reader loads the old and new versions of a flow file.
type Reader interface {
	Read(ctx context.Context, path string) (Difference, error)
}

// supportedExts lists the document formats the parser can decode.
var supportedExts = map[string]bool{
	".xml":  true,
	".yaml": true,
	".yml":  true,
	".json": true,
}

// Supported reports whether path has an extension the parser can decode.
func Supported(path string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(path))]
}

// Local reads flows from the file system. Relative paths resolve against
// Root when it is set.
type Local struct {
	Root string
}

// Read implements [Reader]. The returned difference never has an old side.
func (l Local) Read(ctx context.Context, path string) (Difference, error) {
	if err := ctx.Err(); err != nil {
		return Difference{}, err
	}
	if !Supported(path) {
		return Difference{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported flow file extension: %s", path)
	}

	full := path
	if l.Root != "" && !filepath.IsAbs(path) {
		full = filepath.Join(l.Root, path)
	}
	data, err := os.ReadFile(full)
	if os.IsNotExist(err) {
		return Difference{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "flow file not found: %s", full)
	}
	if err != nil {
		return Difference{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", full)
	}
	return Difference{New: data}, nil
}

var _ Reader = Local{}
