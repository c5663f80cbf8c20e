// Package syncer drains unsynced rows from the primary store into the
// secondary search index. Delivery is at least once: rows are flagged
// synced only after the index acknowledges them, and document ids are
// deterministic so re-delivery overwrites rather than duplicates.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"netpulse/internal/metrics"
	"netpulse/internal/search"
)

// Record is one unsynced row presented by a source.
type Record struct {
	ID        string
	Timestamp time.Time
	Body      []byte
}

// Source is a typed stream of unsynced rows. Each repository that feeds
// the index is wrapped in one.
type Source interface {
	// Name identifies the source in index names and document ids.
	Name() string
	FetchUnsynced(ctx context.Context, limit int) ([]Record, error)
	MarkSynced(ctx context.Context, ids []string) error
}

// Indexer is the slice of the search client the daemon needs.
type Indexer interface {
	BulkIndex(ctx context.Context, index string, docs []search.Document) (*search.BulkResult, error)
}

// Daemon runs periodic sweeps that push unsynced rows into the index.
type Daemon struct {
	indexer     Indexer
	sources     []Source
	indexPrefix string
	batchSize   int
	logger      *slog.Logger

	// one lock per source so a slow sweep never stacks on itself
	locks map[string]*sync.Mutex
}

// New creates a sync daemon over the given sources.
func New(indexer Indexer, sources []Source, indexPrefix string, batchSize int, logger *slog.Logger) *Daemon {
	locks := make(map[string]*sync.Mutex, len(sources))
	for _, src := range sources {
		locks[src.Name()] = &sync.Mutex{}
	}
	return &Daemon{
		indexer:     indexer,
		sources:     sources,
		indexPrefix: indexPrefix,
		batchSize:   batchSize,
		logger:      logger,
		locks:       locks,
	}
}

// SweepAll runs one sweep over every source. Sources fail independently;
// the first error is returned after all sources have been attempted.
func (d *Daemon) SweepAll(ctx context.Context) error {
	var firstErr error
	for _, src := range d.sources {
		if err := d.Sweep(ctx, src); err != nil {
			d.logger.Error("sync sweep failed",
				"source", src.Name(),
				"error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Sweep drains one source, batch by batch, until no unsynced rows remain.
// If a sweep for the same source is already running it returns immediately;
// the rows will be picked up by the next sweep.
func (d *Daemon) Sweep(ctx context.Context, src Source) error {
	lock := d.locks[src.Name()]
	if !lock.TryLock() {
		d.logger.Debug("sync sweep already running, skipping", "source", src.Name())
		return nil
	}
	defer lock.Unlock()

	for {
		records, err := src.FetchUnsynced(ctx, d.batchSize)
		if err != nil {
			return fmt.Errorf("failed to fetch unsynced %s rows: %w", src.Name(), err)
		}
		if len(records) == 0 {
			return nil
		}

		synced, err := d.pushBatch(ctx, src, records)
		if err != nil {
			return err
		}
		if synced == 0 {
			// Everything in the batch was rejected. Stop instead of
			// refetching the same rows in a tight loop.
			return fmt.Errorf("no %s rows accepted by index", src.Name())
		}
		if len(records) < d.batchSize {
			return nil
		}
	}
}

// pushBatch indexes one batch and marks the accepted rows synced. Rows can
// span index dates, so the batch is grouped by target index first.
func (d *Daemon) pushBatch(ctx context.Context, src Source, records []Record) (int, error) {
	byIndex := make(map[string][]search.Document)
	for _, rec := range records {
		index := d.indexName(src.Name(), rec.Timestamp)
		byIndex[index] = append(byIndex[index], search.Document{
			ID:   docID(src.Name(), rec.ID),
			Body: rec.Body,
		})
	}

	var syncedIDs []string
	for index, docs := range byIndex {
		result, err := d.indexer.BulkIndex(ctx, index, docs)
		if err != nil {
			return 0, fmt.Errorf("failed to index %s batch: %w", src.Name(), err)
		}
		for _, id := range result.Succeeded {
			syncedIDs = append(syncedIDs, stripDocID(src.Name(), id))
		}
		for _, f := range result.Failed {
			metrics.SyncFailures.WithLabelValues(src.Name()).Inc()
			d.logger.Warn("index rejected document",
				"source", src.Name(),
				"index", index,
				"doc_id", f.ID,
				"status", f.Status,
				"reason", f.Reason)
		}
	}

	if len(syncedIDs) > 0 {
		if err := src.MarkSynced(ctx, syncedIDs); err != nil {
			// The documents are already in the index. The rows stay
			// unsynced and will be re-indexed under the same ids.
			return 0, fmt.Errorf("failed to mark %s rows synced: %w", src.Name(), err)
		}
		metrics.SyncedRecords.WithLabelValues(src.Name()).Add(float64(len(syncedIDs)))
	}

	d.logger.Info("sync batch complete",
		"source", src.Name(),
		"fetched", len(records),
		"synced", len(syncedIDs))
	return len(syncedIDs), nil
}

// indexName builds the daily index for a source, e.g. netpulse-alerts-2026.08.29.
func (d *Daemon) indexName(source string, ts time.Time) string {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return fmt.Sprintf("%s-%s-%s", d.indexPrefix, source, ts.UTC().Format("2006.01.02"))
}

// docID builds a deterministic document id so redelivery is idempotent.
func docID(source, id string) string {
	return source + ":" + id
}

// stripDocID recovers the row id from a document id.
func stripDocID(source, docID string) string {
	prefix := source + ":"
	if len(docID) > len(prefix) && docID[:len(prefix)] == prefix {
		return docID[len(prefix):]
	}
	return docID
}
