// mongosink.go provides an optional MongoDB-backed audit.Sink, wiring
// go.mongodb.org/mongo-driver/v2 (the teacher's own dependency) as an
// alternative to the default JSONL file sink. Satisfies the same Sink
// interface so the hash-chain invariant (I6) is verified identically
// regardless of backend.
package audit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoSink appends Records to a capped-or-plain Mongo collection, ordered
// by insertion, using a monotonically increasing sequence field to recover
// the chain head without relying on Mongo's natural ordering.
type MongoSink struct {
	collection *mongo.Collection
}

var _ Sink = (*MongoSink)(nil)

type mongoRecord struct {
	Record  `bson:",inline"`
	Seq     int64     `bson:"seq"`
	StoredAt time.Time `bson:"stored_at"`
}

// NewMongoSink wraps an existing collection handle.
func NewMongoSink(collection *mongo.Collection) *MongoSink {
	return &MongoSink{collection: collection}
}

// Append inserts one chained record with the next sequence number.
func (s *MongoSink) Append(r Record) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seq, err := s.nextSeq(ctx)
	if err != nil {
		return fmt.Errorf("audit: mongosink: computing next sequence: %w", err)
	}

	_, err = s.collection.InsertOne(ctx, mongoRecord{Record: r, Seq: seq, StoredAt: time.Now()})
	if err != nil {
		return fmt.Errorf("audit: mongosink: inserting record: %w", err)
	}
	return nil
}

// LastIntegrityHash returns the integrity_hash of the highest-seq record.
func (s *MongoSink) LastIntegrityHash() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}})
	var rec mongoRecord
	err := s.collection.FindOne(ctx, bson.D{}, opts).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return GenesisHash, nil
	}
	if err != nil {
		return "", fmt.Errorf("audit: mongosink: reading chain head: %w", err)
	}
	return rec.IntegrityHash, nil
}

func (s *MongoSink) nextSeq(ctx context.Context) (int64, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}})
	var rec mongoRecord
	err := s.collection.FindOne(ctx, bson.D{}, opts).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.Seq + 1, nil
}
