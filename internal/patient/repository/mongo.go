package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/itakarlapalli/subcentre/internal/patient"
)

const patientsCounter = "patients"

// MongoRepo implements a MongoDB-backed Record Store. Records carry a numeric
// "id" field (unique index); ids come from a per-collection counter document
// incremented with $inc, so they keep increasing after deletes. Every write
// touches a single document, which MongoDB applies atomically.
type MongoRepo struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

// NewMongoRepo uses col for records and a sibling "counters" collection for
// id assignment.
func NewMongoRepo(ctx context.Context, col *mongo.Collection) (*MongoRepo, error) {
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}
	if _, err := col.Indexes().CreateOne(ctx, idxModel); err != nil {
		return nil, fmt.Errorf("mongo index: %w", err)
	}
	return &MongoRepo{col: col, counters: col.Database().Collection("counters")}, nil
}

func (m *MongoRepo) nextID(ctx context.Context) (int64, error) {
	var c struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := m.counters.FindOneAndUpdate(ctx, bson.M{"_id": patientsCounter}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("next patient id: %w", err)
	}
	return c.Seq, nil
}

func (m *MongoRepo) Create(ctx context.Context, f patient.Fields) (*patient.Patient, error) {
	id, err := m.nextID(ctx)
	if err != nil {
		return nil, err
	}
	p := &patient.Patient{ID: id, CreatedAt: now()}
	f.Apply(p)
	p.UpdatedAt = p.CreatedAt
	if _, err := m.col.InsertOne(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (m *MongoRepo) List(ctx context.Context) ([]*patient.Patient, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "id", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*patient.Patient{}
	for cur.Next(ctx) {
		var p patient.Patient
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, cur.Err()
}

func (m *MongoRepo) Update(ctx context.Context, id int64, f patient.Fields) (*patient.Patient, error) {
	set := bson.M{"name": f.Name, "age": f.Age, "village": f.Village, "updatedAt": now()}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p patient.Patient
	err := m.col.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (m *MongoRepo) Delete(ctx context.Context, id int64) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) Ping(ctx context.Context) error {
	return m.col.Database().Client().Ping(ctx, nil)
}

// Close is a no-op; the client is owned by the caller.
func (m *MongoRepo) Close() error { return nil }
