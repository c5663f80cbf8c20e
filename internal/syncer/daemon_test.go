package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"netpulse/internal/search"
)

// fakeSource serves records from a slice and tracks which ids were marked.
type fakeSource struct {
	name    string
	records []Record

	mu       sync.Mutex
	synced   map[string]bool
	fetchErr error
	markErr  error
}

func newFakeSource(name string, records ...Record) *fakeSource {
	return &fakeSource{name: name, records: records, synced: map[string]bool{}}
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) FetchUnsynced(ctx context.Context, limit int) ([]Record, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, rec := range s.records {
		if s.synced[rec.ID] {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeSource) MarkSynced(ctx context.Context, ids []string) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.synced[id] = true
	}
	return nil
}

func (s *fakeSource) syncedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.synced)
}

// fakeIndexer accepts every document unless reject reports otherwise.
type fakeIndexer struct {
	mu      sync.Mutex
	indexed map[string][]string
	reject  func(docID string) bool
	err     error
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{indexed: map[string][]string{}}
}

func (f *fakeIndexer) BulkIndex(ctx context.Context, index string, docs []search.Document) (*search.BulkResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	result := &search.BulkResult{}
	for _, doc := range docs {
		if f.reject != nil && f.reject(doc.ID) {
			result.Failed = append(result.Failed, search.BulkFailure{ID: doc.ID, Status: 400, Reason: "rejected"})
			continue
		}
		f.indexed[index] = append(f.indexed[index], doc.ID)
		result.Succeeded = append(result.Succeeded, doc.ID)
	}
	return result, nil
}

func testDaemon(indexer Indexer, batchSize int, sources ...Source) *Daemon {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(indexer, sources, "netpulse", batchSize, logger)
}

func recordAt(id string, ts time.Time) Record {
	return Record{ID: id, Timestamp: ts, Body: []byte(`{"id":"` + id + `"}`)}
}

func TestSweep_DrainsSource(t *testing.T) {
	ts := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	var records []Record
	for i := 0; i < 5; i++ {
		records = append(records, recordAt(fmt.Sprintf("row-%d", i), ts))
	}
	src := newFakeSource("alerts", records...)
	indexer := newFakeIndexer()
	d := testDaemon(indexer, 2, src)

	if err := d.Sweep(context.Background(), src); err != nil {
		t.Fatalf("Sweep error: %v", err)
	}
	if src.syncedCount() != 5 {
		t.Errorf("synced %d rows, want 5", src.syncedCount())
	}

	// Deterministic ids under the source's daily index.
	docs := indexer.indexed["netpulse-alerts-2026.08.29"]
	if len(docs) != 5 {
		t.Fatalf("indexed %d docs, want 5: %v", len(docs), indexer.indexed)
	}
	if docs[0] != "alerts:row-0" {
		t.Errorf("doc id = %q, want alerts:row-0", docs[0])
	}
}

func TestSweep_GroupsByDay(t *testing.T) {
	src := newFakeSource("alerts",
		recordAt("row-1", time.Date(2026, 8, 28, 23, 59, 0, 0, time.UTC)),
		recordAt("row-2", time.Date(2026, 8, 29, 0, 1, 0, 0, time.UTC)),
	)
	indexer := newFakeIndexer()
	d := testDaemon(indexer, 10, src)

	if err := d.Sweep(context.Background(), src); err != nil {
		t.Fatalf("Sweep error: %v", err)
	}
	if len(indexer.indexed["netpulse-alerts-2026.08.28"]) != 1 {
		t.Errorf("2026.08.28 index = %v", indexer.indexed)
	}
	if len(indexer.indexed["netpulse-alerts-2026.08.29"]) != 1 {
		t.Errorf("2026.08.29 index = %v", indexer.indexed)
	}
}

func TestSweep_PartialFailure(t *testing.T) {
	ts := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	var records []Record
	for i := 0; i < 10; i++ {
		records = append(records, recordAt(fmt.Sprintf("row-%d", i), ts))
	}
	src := newFakeSource("alerts", records...)
	indexer := newFakeIndexer()
	indexer.reject = func(docID string) bool {
		return docID == "alerts:row-3" || docID == "alerts:row-7"
	}
	d := testDaemon(indexer, 20, src)

	if err := d.Sweep(context.Background(), src); err != nil {
		t.Fatalf("Sweep error: %v", err)
	}
	if src.syncedCount() != 8 {
		t.Errorf("synced %d rows, want 8", src.syncedCount())
	}
	src.mu.Lock()
	defer src.mu.Unlock()
	if src.synced["row-3"] || src.synced["row-7"] {
		t.Error("rejected rows must stay unsynced")
	}
}

func TestSweep_AllRejectedAborts(t *testing.T) {
	ts := time.Now().UTC()
	src := newFakeSource("alerts", recordAt("row-1", ts), recordAt("row-2", ts))
	indexer := newFakeIndexer()
	indexer.reject = func(string) bool { return true }
	d := testDaemon(indexer, 1, src)

	err := d.Sweep(context.Background(), src)
	if err == nil {
		t.Fatal("expected error when the index rejects the whole batch")
	}
	if src.syncedCount() != 0 {
		t.Errorf("synced %d rows, want 0", src.syncedCount())
	}
}

func TestSweep_MarkSyncedFailureKeepsRows(t *testing.T) {
	src := newFakeSource("alerts", recordAt("row-1", time.Now().UTC()))
	src.markErr = errors.New("connection reset")
	d := testDaemon(newFakeIndexer(), 10, src)

	if err := d.Sweep(context.Background(), src); err == nil {
		t.Fatal("expected error when marking synced fails")
	}
	if src.syncedCount() != 0 {
		t.Error("rows must stay unsynced when marking fails")
	}
}

func TestSweep_SkipsWhileRunning(t *testing.T) {
	src := newFakeSource("alerts", recordAt("row-1", time.Now().UTC()))
	d := testDaemon(newFakeIndexer(), 10, src)

	d.locks[src.Name()].Lock()
	defer d.locks[src.Name()].Unlock()

	if err := d.Sweep(context.Background(), src); err != nil {
		t.Fatalf("Sweep while locked = %v, want nil skip", err)
	}
	if src.syncedCount() != 0 {
		t.Error("skipped sweep must not touch the source")
	}
}

func TestSweepAll_SourcesFailIndependently(t *testing.T) {
	broken := newFakeSource("alerts")
	broken.fetchErr = errors.New("connection refused")
	healthy := newFakeSource("service-logs", recordAt("row-1", time.Now().UTC()))
	d := testDaemon(newFakeIndexer(), 10, broken, healthy)

	err := d.SweepAll(context.Background())
	if err == nil {
		t.Fatal("expected first source's error to surface")
	}
	if healthy.syncedCount() != 1 {
		t.Error("healthy source should still be swept")
	}
}

func TestIndexName_ZeroTimestamp(t *testing.T) {
	d := testDaemon(newFakeIndexer(), 10)
	name := d.indexName("alerts", time.Time{})
	want := fmt.Sprintf("netpulse-alerts-%s", time.Now().UTC().Format("2006.01.02"))
	if name != want {
		t.Errorf("indexName = %q, want %q", name, want)
	}
}
