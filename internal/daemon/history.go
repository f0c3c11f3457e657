package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/entrystack/internal/core"
	"github.com/jmylchreest/entrystack/internal/model"
	"github.com/jmylchreest/entrystack/internal/store"
)

// historyBuffer is how many finished records may wait for the journal.
const historyBuffer = 256

// HistoryWriter appends finished records to a journal off the UI thread.
type HistoryWriter struct {
	logger  *slog.Logger
	journal store.Journal

	records chan model.HistoryRecord
	wg      sync.WaitGroup

	mu      sync.Mutex
	running bool
	stopped bool
}

// NewHistoryWriter creates a writer for journal.
func NewHistoryWriter(journal store.Journal, logger *slog.Logger) *HistoryWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryWriter{
		logger:  logger,
		journal: journal,
		records: make(chan model.HistoryRecord, historyBuffer),
	}
}

// Trim rewrites the journal keeping only the newest maxEntries records.
// Zero keeps everything.
func (w *HistoryWriter) Trim(maxEntries int) error {
	if maxEntries <= 0 {
		return nil
	}
	records, err := w.journal.Load()
	if err != nil {
		return err
	}
	kept, removed := core.Prune(records, maxEntries, 0, time.Now())
	if len(removed) == 0 {
		return nil
	}
	w.logger.Info("trimming history journal", "removed", len(removed), "kept", len(kept))
	return w.journal.Rewrite(kept)
}

// Start begins draining records into the journal until ctx ends or Stop is
// called.
func (w *HistoryWriter) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.stopped {
		return
	}
	w.running = true

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				w.mu.Lock()
				w.running = false
				w.mu.Unlock()
				w.drain()
				return
			case rec, ok := <-w.records:
				if !ok {
					return
				}
				w.write(rec)
			}
		}
	}()
}

// Record queues a finished record. It never blocks; records are dropped with
// a warning when the journal falls behind or the writer is stopped.
func (w *HistoryWriter) Record(rec Record) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	select {
	case w.records <- rec.History():
	default:
		w.logger.Warn("history journal behind, record dropped", "entry_id", rec.EntryID)
	}
}

// Stop flushes queued records and waits for the writer to finish. A stopped
// writer cannot be started again.
func (w *HistoryWriter) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.running = false
	w.mu.Unlock()

	close(w.records)
	w.wg.Wait()
}

func (w *HistoryWriter) drain() {
	for {
		select {
		case rec, ok := <-w.records:
			if !ok {
				return
			}
			w.write(rec)
		default:
			return
		}
	}
}

func (w *HistoryWriter) write(rec model.HistoryRecord) {
	if err := w.journal.Append(rec); err != nil {
		w.logger.Warn("failed to append history record", "entry_id", rec.EntryID, "error", err)
	}
}
