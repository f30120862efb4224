// Package storage persists pipeline results for later inspection.
//
// Each processed flow file of a run becomes one [Document]. The MongoDB
// implementation backs the --mongo-uri flag of the render command, so CI
// jobs can keep a history of the diagrams they produced.
package storage

import (
	"context"
	"time"

	"github.com/matzehuels/flowlens/pkg/diff"
	"github.com/matzehuels/flowlens/pkg/pipeline"
)

// Document is the stored form of one file's diagrams.
type Document struct {
	RunID     string       `bson:"run_id" json:"run_id"`
	Path      string       `bson:"path" json:"path"`
	Label     string       `bson:"label,omitempty" json:"label,omitempty"`
	Old       *string      `bson:"old,omitempty" json:"old,omitempty"`
	New       string       `bson:"new" json:"new"`
	Tool      string       `bson:"tool" json:"tool"`
	Summary   diff.Summary `bson:"summary" json:"summary"`
	CreatedAt time.Time    `bson:"created_at" json:"created_at"`
}

// Store saves and loads run results.
type Store interface {
	// SaveRun stores one document per diagram of res.
	SaveRun(ctx context.Context, res *pipeline.Result) error

	// Run returns the documents of a run in the order they were saved.
	Run(ctx context.Context, runID string) ([]Document, error)

	// Close releases the store's connection.
	Close(ctx context.Context) error
}

// Documents converts a pipeline result into stored documents stamped with
// createdAt.
func Documents(res *pipeline.Result, createdAt time.Time) []Document {
	docs := make([]Document, len(res.Diagrams))
	for i, d := range res.Diagrams {
		docs[i] = Document{
			RunID:     res.RunID,
			Path:      d.Path,
			Label:     d.Label,
			Old:       d.Difference.Old,
			New:       d.Difference.New,
			Tool:      res.Tool,
			Summary:   d.Summary,
			CreatedAt: createdAt.UTC(),
		}
	}
	return docs
}
