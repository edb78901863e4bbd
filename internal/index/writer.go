package index

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/contentgrid/content-search/internal/acl"
	"github.com/contentgrid/content-search/internal/events"
	"github.com/contentgrid/content-search/internal/store"
	"github.com/contentgrid/content-search/internal/store/model"
	"github.com/contentgrid/content-search/pkg/metrics"
	"go.uber.org/zap"
)

type Result int

const (
	Committed Result = iota
	Deferred
	Dropped
)

func (r Result) String() string {
	switch r {
	case Committed:
		return "committed"
	case Deferred:
		return "deferred"
	case Dropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Writer applies change events to the search index. The commit protocol
// is resolve-then-lock: the ACL is resolved against the repository
// before the per-item lock is taken, so a slow membership lookup never
// blocks writes to other items sharing the stripe.
type Writer struct {
	store    store.Store
	resolver *acl.Resolver
	tracker  *Tracker
	locks    *stripedLocks
	producer *events.EventProducer
}

type WriterOption func(w *Writer)

// WithEventProducer makes the writer emit indexed/ingest-failure
// notifications through the given producer.
func WithEventProducer(producer *events.EventProducer) WriterOption {
	return func(w *Writer) {
		w.producer = producer
	}
}

func NewWriter(s store.Store, resolver *acl.Resolver, tracker *Tracker, opts ...WriterOption) *Writer {
	w := &Writer{
		store:    s,
		resolver: resolver,
		tracker:  tracker,
		locks:    newStripedLocks(64),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Tracker returns the watermark tracker fed by this writer.
func (w *Writer) Tracker() *Tracker {
	return w.tracker
}

// Apply commits a single change event. Committed means the index
// reflects the event (or the event was a stale no-op); Deferred means a
// dependency was unavailable and the event may be retried; Dropped means
// the event is malformed or targets an unknown/tombstoned item and must
// not be retried.
func (w *Writer) Apply(ctx context.Context, ev events.ChangeEvent) (Result, error) {
	if !ev.Valid() {
		metrics.IncreaseEventsDroppedMetric("malformed")
		zap.S().Named("index_writer").Warnw("dropping malformed change event",
			"item_id", ev.ItemID, "type", ev.Type, "sequence", ev.Sequence)
		return Dropped, nil
	}

	if ev.Type == events.EventTypeDeleted {
		return w.applyDelete(ctx, ev)
	}
	return w.applyUpsert(ctx, ev)
}

func (w *Writer) applyUpsert(ctx context.Context, ev events.ChangeEvent) (Result, error) {
	existing, err := w.store.Index().Get(ctx, ev.ItemID)
	if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		return Deferred, err
	}

	if existing == nil && ev.Type != events.EventTypeCreated {
		metrics.IncreaseEventsDroppedMetric("unknown_item")
		zap.S().Named("index_writer").Warnw("dropping event for unknown item",
			"item_id", ev.ItemID, "type", ev.Type, "sequence", ev.Sequence)
		return Dropped, nil
	}
	if existing != nil && existing.Deleted {
		metrics.IncreaseEventsDroppedMetric("tombstoned_item")
		zap.S().Named("index_writer").Warnw("dropping event for tombstoned item",
			"item_id", ev.ItemID, "type", ev.Type, "sequence", ev.Sequence)
		return Dropped, nil
	}

	doc := w.mergeEvent(ev, existing)

	// resolve before taking the lock; lookups may block on the repository
	principals, err := w.resolver.Resolve(ctx, doc.ID, doc.OwnerID, doc.SiteID)
	if err != nil {
		return Deferred, err
	}
	terms := Tokenize(doc.Body)

	lock := w.locks.stripe(ev.ItemID)
	lock.Lock()
	applied, err := w.commitUpsert(ctx, doc, terms, principals)
	lock.Unlock()

	if err != nil {
		if errors.Is(err, store.ErrTombstoned) {
			metrics.IncreaseEventsDroppedMetric("tombstoned_item")
			zap.S().Named("index_writer").Warnw("dropping event for tombstoned item",
				"item_id", ev.ItemID, "type", ev.Type, "sequence", ev.Sequence)
			return Dropped, nil
		}
		return Deferred, err
	}

	w.committed(ctx, ev, applied, false)
	return Committed, nil
}

func (w *Writer) applyDelete(ctx context.Context, ev events.ChangeEvent) (Result, error) {
	lock := w.locks.stripe(ev.ItemID)
	lock.Lock()
	applied, err := w.commitTombstone(ctx, ev.ItemID, ev.Sequence)
	lock.Unlock()

	if err != nil {
		return Deferred, err
	}

	w.committed(ctx, ev, applied, true)
	return Committed, nil
}

// commitUpsert runs the store upsert inside a transaction context, so
// the document row and its postings land or roll back as one unit.
func (w *Writer) commitUpsert(ctx context.Context, doc model.Document, terms []string, principals []string) (bool, error) {
	txCtx, err := w.store.NewTransactionContext(ctx)
	if err != nil {
		return false, err
	}

	applied, err := w.store.Index().Upsert(txCtx, doc, terms, principals)
	if err != nil {
		_, _ = store.Rollback(txCtx)
		return false, err
	}

	if _, err := store.Commit(txCtx); err != nil {
		return false, err
	}
	return applied, nil
}

func (w *Writer) commitTombstone(ctx context.Context, id string, sequence int64) (bool, error) {
	txCtx, err := w.store.NewTransactionContext(ctx)
	if err != nil {
		return false, err
	}

	applied, err := w.store.Index().Tombstone(txCtx, id, sequence)
	if err != nil {
		_, _ = store.Rollback(txCtx)
		return false, err
	}

	if _, err := store.Commit(txCtx); err != nil {
		return false, err
	}
	return applied, nil
}

// mergeEvent builds the next document snapshot from the event and the
// committed entry. Update-class events carrying null fields keep the
// indexed value: permission-changed and moved events have no body, and
// an update without a site keeps the item where it is.
func (w *Writer) mergeEvent(ev events.ChangeEvent, existing *model.Document) model.Document {
	doc := model.Document{
		ID:       ev.ItemID,
		Name:     ev.Name,
		IsFile:   ev.IsFile,
		OwnerID:  ev.OwnerID,
		SiteID:   ev.SiteID,
		Sequence: ev.Sequence,
	}

	if ev.BodyText != nil {
		doc.Body = *ev.BodyText
	} else if existing != nil {
		doc.Body = existing.Body
	}

	if existing != nil {
		if doc.Name == "" {
			doc.Name = existing.Name
		}
		if doc.OwnerID == "" {
			doc.OwnerID = existing.OwnerID
		}
		if ev.Type != events.EventTypeCreated && ev.Type != events.EventTypeMoved && doc.SiteID == nil {
			doc.SiteID = existing.SiteID
		}
		if ev.Type != events.EventTypeCreated {
			doc.IsFile = existing.IsFile
		}
	}

	return doc
}

func (w *Writer) committed(ctx context.Context, ev events.ChangeEvent, applied bool, deleted bool) {
	w.tracker.Commit(ev.ItemID, ev.Sequence)
	metrics.IncreaseEventsIngestedMetric(string(ev.Type))

	if count, err := w.store.Index().Count(ctx); err == nil {
		metrics.UpdateDocumentsIndexedMetric(int(count))
	}

	if !applied || w.producer == nil {
		return
	}

	data, err := json.Marshal(events.IndexedEvent{ItemID: ev.ItemID, Sequence: ev.Sequence, Deleted: deleted})
	if err != nil {
		return
	}
	if err := w.producer.Write(ctx, events.IndexedMessageKind, bytes.NewReader(data)); err != nil {
		zap.S().Named("index_writer").Warnw("failed to emit indexed event", "error", err, "item_id", ev.ItemID)
	}
}

// ReportFailure emits the permanent ingestion failure notification for an
// event that exhausted its retry budget.
func (w *Writer) ReportFailure(ctx context.Context, ev events.ChangeEvent, reason string) {
	metrics.IncreaseIngestFailuresMetric("retry_budget_exhausted")

	if w.producer == nil {
		return
	}
	data, err := json.Marshal(events.IngestFailureEvent{ItemID: ev.ItemID, Sequence: ev.Sequence, Reason: reason})
	if err != nil {
		return
	}
	if err := w.producer.Write(ctx, events.IngestFailureMessageKind, bytes.NewReader(data)); err != nil {
		zap.S().Named("index_writer").Warnw("failed to emit ingest failure event", "error", err, "item_id", ev.ItemID)
	}
}
