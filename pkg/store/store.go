// Package store persists analysis records for the HTTP API.
//
// A [Record] pairs a report with the hash of the graph it was computed from
// and an opaque UUID that clients use to fetch it again. [MemoryStore] keeps
// records in process memory; [MongoStore] keeps them in a MongoDB collection.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/waitgraph/pkg/deadlock"
)

// ErrNotFound is returned by Get when no record has the given ID.
var ErrNotFound = errors.New("record not found")

// Record is one stored analysis.
type Record struct {
	ID        string           `json:"id" bson:"_id"`
	CreatedAt time.Time        `json:"createdAt" bson:"created_at"`
	GraphHash string           `json:"graphHash" bson:"graph_hash"`
	Report    *deadlock.Report `json:"report" bson:"report"`
}

// NewRecord creates a record with a fresh random ID.
func NewRecord(graphHash string, rep *deadlock.Report, now time.Time) Record {
	return Record{
		ID:        uuid.NewString(),
		CreatedAt: now.UTC(),
		GraphHash: graphHash,
		Report:    rep,
	}
}

// Store saves and loads analysis records. Implementations are safe for
// concurrent use.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
	Close(ctx context.Context) error
}
