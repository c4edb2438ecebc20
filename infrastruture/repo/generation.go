package repo

import (
	"context"
	"errors"
	"time"

	"github.com/beka-birhanu/vinom-evolve/evolution"
	"github.com/beka-birhanu/vinom-evolve/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// generationDocument is the stored shape of a GenerationRecord.
type generationDocument struct {
	SimulationID string                    `bson:"simulationId"`
	Run          int                       `bson:"run"`
	Rows         int                       `bson:"rows"`
	Cols         int                       `bson:"cols"`
	MutationRate float64                   `bson:"mutationRate"`
	Stats        evolution.GenerationStats `bson:"stats"`
	CreatedAt    time.Time                 `bson:"createdAt"`
}

func toDocument(r *i.GenerationRecord, now time.Time) generationDocument {
	return generationDocument{
		SimulationID: r.SimulationID.String(),
		Run:          r.Run,
		Rows:         r.Rows,
		Cols:         r.Cols,
		MutationRate: r.MutationRate,
		Stats:        r.Stats,
		CreatedAt:    now,
	}
}

func (d generationDocument) record() (*i.GenerationRecord, error) {
	id, err := uuid.Parse(d.SimulationID)
	if err != nil {
		return nil, err
	}
	return &i.GenerationRecord{
		SimulationID: id,
		Run:          d.Run,
		Rows:         d.Rows,
		Cols:         d.Cols,
		MutationRate: d.MutationRate,
		Stats:        d.Stats,
	}, nil
}

// GenerationRepo handles the persistence of generation history.
type GenerationRepo struct {
	collection *mongo.Collection
}

var _ i.GenerationRepo = (*GenerationRepo)(nil)

// NewGenerationRepo creates a GenerationRepo on the given database and collection.
func NewGenerationRepo(client *mongo.Client, dbName, collectionName string) *GenerationRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &GenerationRepo{
		collection: collection,
	}
}

// EnsureIndexes creates the index used by BySimulation.
func (g *GenerationRepo) EnsureIndexes(ctx context.Context) error {
	_, err := g.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "simulationId", Value: 1},
			{Key: "run", Value: 1},
			{Key: "stats.generation", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Save inserts or replaces the record of one generation of one run of a simulation.
func (g *GenerationRepo) Save(ctx context.Context, r *i.GenerationRecord) error {
	if r == nil {
		return errors.New("nil generation record")
	}

	doc := toDocument(r, time.Now().UTC())
	filter := bson.D{
		{Key: "simulationId", Value: doc.SimulationID},
		{Key: "run", Value: doc.Run},
		{Key: "stats.generation", Value: doc.Stats.Generation},
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := g.collection.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return errors.New("unexpected error: " + err.Error())
	}
	return nil
}

// BySimulation returns the recorded generations of a simulation ordered by run, then generation.
func (g *GenerationRepo) BySimulation(ctx context.Context, id uuid.UUID) ([]*i.GenerationRecord, error) {
	filter := bson.M{"simulationId": id.String()}
	opts := options.Find().SetSort(bson.D{{Key: "run", Value: 1}, {Key: "stats.generation", Value: 1}})

	cursor, err := g.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.New("unexpected error: " + err.Error())
	}
	defer cursor.Close(ctx)

	var docs []generationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.New("unexpected error: " + err.Error())
	}

	records := make([]*i.GenerationRecord, 0, len(docs))
	for _, d := range docs {
		r, err := d.record()
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
