package service

import (
	"context"
	"time"

	"github.com/contentgrid/content-search/internal/index"
	"github.com/contentgrid/content-search/internal/store"
	"github.com/contentgrid/content-search/internal/store/model"
	"go.uber.org/zap"
)

const defaultConsistencyTimeout = 5 * time.Second

// ConsistencyForm asks the query to wait until a previously ingested
// change is visible before running.
type ConsistencyForm struct {
	ItemID   string
	Sequence int64
	Timeout  time.Duration
}

type SearchForm struct {
	Query       string
	Principal   string
	Consistency *ConsistencyForm
}

type SearchService struct {
	store   store.Store
	tracker *index.Tracker
}

func NewSearchService(store store.Store, tracker *index.Tracker) *SearchService {
	return &SearchService{store: store, tracker: tracker}
}

// Search returns the live documents matching every term of the query
// that the requesting principal is allowed to see. Results come back
// newest first.
func (s *SearchService) Search(ctx context.Context, form SearchForm) ([]model.Document, error) {
	if form.Principal == "" {
		return nil, NewErrInvalidPrincipal()
	}

	terms := index.Tokenize(form.Query)
	if len(terms) == 0 {
		return nil, NewErrInvalidSearchQuery("query has no searchable terms")
	}

	if form.Consistency != nil {
		if form.Consistency.ItemID == "" || form.Consistency.Sequence <= 0 {
			return nil, NewErrInvalidConsistency("itemId and a positive sequence are required")
		}
		timeout := form.Consistency.Timeout
		if timeout <= 0 {
			timeout = defaultConsistencyTimeout
		}
		if !s.tracker.WaitUntilVisible(ctx, form.Consistency.ItemID, form.Consistency.Sequence, timeout) {
			zap.S().Named("search_service").Warnw("consistency wait expired, searching anyway",
				"item_id", form.Consistency.ItemID, "sequence", form.Consistency.Sequence)
		}
	}

	filter := store.NewSearchQueryFilter().ByTerms(terms).ByPrincipal(form.Principal)
	opts := store.NewSearchQueryOptions().WithSortOrder(store.SortBySequence)

	return s.store.Index().Search(ctx, filter, opts)
}

// IndexStatus reports whether the given change is visible to queries,
// waiting up to timeout for it to become so, along with the item's
// current watermark.
func (s *SearchService) IndexStatus(ctx context.Context, itemID string, sequence int64, timeout time.Duration) (bool, int64) {
	visible := true
	if sequence > 0 && timeout > 0 {
		visible = s.tracker.WaitUntilVisible(ctx, itemID, sequence, timeout)
	} else if sequence > 0 {
		visible = s.tracker.Watermark(itemID) >= sequence
	}
	return visible, s.tracker.Watermark(itemID)
}
