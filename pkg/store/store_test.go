package store

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/waitgraph/pkg/deadlock"
)

func sampleReport() *deadlock.Report {
	return &deadlock.Report{
		IsDeadlocked:          true,
		DeadlockedProcessIDs:  []string{"P1", "P2"},
		DeadlockedResourceIDs: []string{"RX", "RY"},
		Cycles:                [][]string{{"P1", "RY", "P2", "RX"}},
		SafeSequence:          []string{},
		Log: []deadlock.LogEntry{
			{Message: "Deadlock detected! Processes [P1, P2] are stuck.", Severity: deadlock.SeverityError, Timestamp: 1735787045000},
		},
	}
}

func TestNewRecord(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	rec := NewRecord("abc", sampleReport(), now)

	_, err := uuid.Parse(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "abc", rec.GraphHash)
	assert.Equal(t, time.UTC, rec.CreatedAt.Location())
	assert.True(t, rec.CreatedAt.Equal(now))

	other := NewRecord("abc", sampleReport(), now)
	assert.NotEqual(t, rec.ID, other.ID)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)
	defer s.Close(ctx)

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	rec := NewRecord("h", sampleReport(), time.Now())
	require.NoError(t, s.Put(ctx, rec))

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStoreConcurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	var wg sync.WaitGroup
	ids := make([]string, 50)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := NewRecord("h", sampleReport(), time.Now())
			ids[i] = rec.ID
			assert.NoError(t, s.Put(ctx, rec))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, len(ids), s.Len())
	for _, id := range ids {
		_, err := s.Get(ctx, id)
		assert.NoError(t, err)
	}
}

func TestMemoryStoreEvictsOldest(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)

	recs := make([]Record, 3)
	for i := range recs {
		recs[i] = NewRecord("h", sampleReport(), time.Now())
		require.NoError(t, s.Put(ctx, recs[i]))
	}

	assert.Equal(t, 2, s.Len())
	_, err := s.Get(ctx, recs[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
	for _, rec := range recs[1:] {
		_, err := s.Get(ctx, rec.ID)
		assert.NoError(t, err)
	}
}

func TestMemoryStoreReplaceKeepsAge(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)

	first := NewRecord("h1", sampleReport(), time.Now())
	second := NewRecord("h2", sampleReport(), time.Now())
	require.NoError(t, s.Put(ctx, first))
	require.NoError(t, s.Put(ctx, second))

	first.GraphHash = "h1-updated"
	require.NoError(t, s.Put(ctx, first))
	assert.Equal(t, 2, s.Len())

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "h1-updated", got.GraphHash)

	// first is still the oldest entry.
	require.NoError(t, s.Put(ctx, NewRecord("h3", sampleReport(), time.Now())))
	_, err = s.Get(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewMemoryStoreDefaultLimit(t *testing.T) {
	assert.Equal(t, DefaultMaxRecords, NewMemoryStore(-1).limit)
}

func TestRecordBSONFieldNames(t *testing.T) {
	rec := NewRecord("abc", sampleReport(), time.Now())
	data, err := bson.Marshal(rec)
	require.NoError(t, err)
	doc := bson.Raw(data)

	for _, key := range []string{"_id", "created_at", "graph_hash", "report"} {
		_, err := doc.LookupErr(key)
		assert.NoError(t, err, key)
	}
	for _, path := range [][]string{
		{"report", "is_deadlocked"},
		{"report", "deadlocked_process_ids"},
		{"report", "deadlocked_resource_ids"},
		{"report", "cycles"},
		{"report", "safe_sequence"},
		{"report", "log"},
	} {
		_, err := doc.LookupErr(path...)
		assert.NoError(t, err, path)
	}

	entry, err := doc.LookupErr("report", "log", "0")
	require.NoError(t, err)
	for _, key := range []string{"message", "severity", "timestamp"} {
		_, err := entry.Document().LookupErr(key)
		assert.NoError(t, err, key)
	}

	var back Record
	require.NoError(t, bson.Unmarshal(data, &back))
	assert.True(t, back.Report.IsDeadlocked)
	assert.Equal(t, rec.Report.Cycles, back.Report.Cycles)
	assert.Equal(t, rec.Report.Log, back.Report.Log)
}

// Set WAITGRAPH_TEST_MONGO=mongodb://localhost:27017 to run against a live server.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("WAITGRAPH_TEST_MONGO")
	if uri == "" {
		t.Skip("WAITGRAPH_TEST_MONGO not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "waitgraph_test", Collection: "analyses"})
	require.NoError(t, err)
	defer s.Close(ctx)

	_, err = s.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	rec := NewRecord("h", sampleReport(), time.Now().Truncate(time.Millisecond))
	require.NoError(t, s.Put(ctx, rec))

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.GraphHash, got.GraphHash)
	assert.Equal(t, rec.Report, got.Report)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
}
