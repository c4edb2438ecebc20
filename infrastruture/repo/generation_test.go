package repo

import (
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-evolve/evolution"
	"github.com/beka-birhanu/vinom-evolve/service/i"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestGenerationDocument(t *testing.T) {
	record := &i.GenerationRecord{
		SimulationID: uuid.New(),
		Run:          3,
		Rows:         21,
		Cols:         31,
		MutationRate: 0.001,
		Stats: evolution.GenerationStats{
			Generation:     4,
			Size:           100,
			Arrived:        2,
			MaxFitness:     0.5,
			AverageFitness: 0.25,
			BestDistance:   4,
			PoolSize:       900,
		},
	}
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	b, err := bson.Marshal(toDocument(record, now))
	require.NoError(t, err)
	raw := bson.Raw(b)

	assert.Equal(t, record.SimulationID.String(), raw.Lookup("simulationId").StringValue())
	assert.Equal(t, int32(3), raw.Lookup("run").Int32())
	assert.Equal(t, int32(4), raw.Lookup("stats", "generation").Int32())

	var doc generationDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	back, err := doc.record()
	require.NoError(t, err)
	assert.Equal(t, record, back)
	assert.True(t, now.Equal(doc.CreatedAt))
}

func TestGenerationDocumentBadID(t *testing.T) {
	_, err := generationDocument{SimulationID: "not-a-uuid"}.record()
	assert.Error(t, err)
}
