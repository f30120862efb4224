package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/matzehuels/flowlens/pkg/diff"
	"github.com/matzehuels/flowlens/pkg/pipeline"
)

func sampleResult() *pipeline.Result {
	old := "digraph { old }"
	return &pipeline.Result{
		RunID: "run-1",
		Tool:  "graphviz",
		Diagrams: []pipeline.FileDiagrams{
			{
				Path:       "flows/A.flow-meta.xml",
				Label:      "A",
				Difference: pipeline.Difference{Old: &old, New: "digraph { new }"},
				Summary:    diff.Summary{Modified: []string{"Get_Account"}},
			},
			{
				Path:       "flows/B.flow-meta.xml",
				Difference: pipeline.Difference{New: "digraph { b }"},
			},
		},
	}
}

func TestDocuments(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	docs := Documents(sampleResult(), at)

	require.Len(t, docs, 2)
	assert.Equal(t, "run-1", docs[0].RunID)
	assert.Equal(t, "graphviz", docs[0].Tool)
	assert.Equal(t, "digraph { old }", *docs[0].Old)
	assert.Equal(t, []string{"Get_Account"}, docs[0].Summary.Modified)
	assert.Nil(t, docs[1].Old)
	assert.Equal(t, time.UTC, docs[1].CreatedAt.Location())
	assert.True(t, docs[1].CreatedAt.Equal(at))
}

func TestDocumentBSON(t *testing.T) {
	raw, err := bson.Marshal(Documents(sampleResult(), time.Unix(0, 0))[1])
	require.NoError(t, err)

	_, err = bson.Raw(raw).LookupErr("old")
	assert.Error(t, err, "absent old side should be omitted")
	assert.Equal(t, "flows/B.flow-meta.xml", bson.Raw(raw).Lookup("path").StringValue())
	assert.Equal(t, "run-1", bson.Raw(raw).Lookup("run_id").StringValue())
}

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("save run", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		s := NewMongoStoreFromCollection(mt.Coll)

		require.NoError(mt, s.SaveRun(context.Background(), sampleResult()))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "insert", evt.CommandName)
		docs, err := evt.Command.Lookup("documents").Array().Values()
		require.NoError(mt, err)
		assert.Len(mt, docs, 2)
	})

	mt.Run("empty run writes nothing", func(mt *mtest.T) {
		s := NewMongoStoreFromCollection(mt.Coll)
		require.NoError(mt, s.SaveRun(context.Background(), &pipeline.Result{RunID: "empty"}))
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("load run", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "run_id", Value: "run-1"},
			{Key: "path", Value: "flows/A.flow-meta.xml"},
			{Key: "new", Value: "digraph { new }"},
			{Key: "tool", Value: "graphviz"},
		})
		last := mtest.CreateCursorResponse(0, ns, mtest.NextBatch)
		mt.AddMockResponses(first, last)

		docs, err := NewMongoStoreFromCollection(mt.Coll).Run(context.Background(), "run-1")
		require.NoError(mt, err)
		require.Len(mt, docs, 1)
		assert.Equal(mt, "flows/A.flow-meta.xml", docs[0].Path)
		assert.Nil(mt, docs[0].Old)
	})
}
