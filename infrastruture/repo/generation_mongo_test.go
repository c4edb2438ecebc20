package repo

import (
	"context"
	"testing"

	"github.com/beka-birhanu/vinom-evolve/evolution"
	"github.com/beka-birhanu/vinom-evolve/service/i"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestGenerationRepoMongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	id := uuid.New()

	mt.Run("save upserts by simulation, run and generation", func(mt *mtest.T) {
		repo := &GenerationRepo{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Save(ctx, &i.GenerationRecord{
			SimulationID: id,
			Run:          2,
			Rows:         5,
			Cols:         7,
			Stats:        evolution.GenerationStats{Generation: 4, Size: 10},
		})
		require.NoError(mt, err)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "update", evt.CommandName)
		update := evt.Command.Lookup("updates", "0")
		assert.Equal(mt, id.String(), update.Document().Lookup("q", "simulationId").StringValue())
		assert.Equal(mt, int32(2), update.Document().Lookup("q", "run").Int32())
		assert.Equal(mt, int32(4), update.Document().Lookup("q", "stats.generation").Int32())
		assert.True(mt, update.Document().Lookup("upsert").Boolean())
		assert.Equal(mt, int32(5), update.Document().Lookup("u", "rows").Int32())
	})

	mt.Run("save reports server errors", func(mt *mtest.T) {
		repo := &GenerationRepo{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad value",
			Name:    "BadValue",
		}))

		err := repo.Save(ctx, &i.GenerationRecord{SimulationID: id, Run: 1})
		assert.Error(mt, err)
		assert.Error(mt, repo.Save(ctx, nil))
	})

	mt.Run("by simulation filters and sorts by run then generation", func(mt *mtest.T) {
		repo := &GenerationRepo{collection: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		doc := func(run, generation int) bson.D {
			return bson.D{
				{Key: "simulationId", Value: id.String()},
				{Key: "run", Value: run},
				{Key: "rows", Value: 5},
				{Key: "cols", Value: 5},
				{Key: "stats", Value: bson.D{{Key: "generation", Value: generation}}},
			}
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, doc(1, 1), doc(1, 2), doc(2, 1)))

		records, err := repo.BySimulation(ctx, id)
		require.NoError(mt, err)
		require.Len(mt, records, 3)
		assert.Equal(mt, id, records[0].SimulationID)
		assert.Equal(mt, 1, records[1].Run)
		assert.Equal(mt, 2, records[1].Stats.Generation)
		assert.Equal(mt, 2, records[2].Run)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "find", evt.CommandName)
		assert.Equal(mt, id.String(), evt.Command.Lookup("filter", "simulationId").StringValue())
		sortKeys, err := evt.Command.Lookup("sort").Document().Elements()
		require.NoError(mt, err)
		require.Len(mt, sortKeys, 2)
		assert.Equal(mt, "run", sortKeys[0].Key())
		assert.Equal(mt, "stats.generation", sortKeys[1].Key())
	})

	mt.Run("by simulation rejects corrupt ids", func(mt *mtest.T) {
		repo := &GenerationRepo{collection: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "simulationId", Value: "broken"}}))

		_, err := repo.BySimulation(ctx, id)
		assert.Error(mt, err)
	})

	mt.Run("unique index covers run", func(mt *mtest.T) {
		repo := &GenerationRepo{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, repo.EnsureIndexes(ctx))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "createIndexes", evt.CommandName)
		index := evt.Command.Lookup("indexes", "0").Document()
		keys, err := index.Lookup("key").Document().Elements()
		require.NoError(mt, err)
		require.Len(mt, keys, 3)
		assert.Equal(mt, "simulationId", keys[0].Key())
		assert.Equal(mt, "run", keys[1].Key())
		assert.Equal(mt, "stats.generation", keys[2].Key())
		assert.True(mt, index.Lookup("unique").Boolean())
	})
}
