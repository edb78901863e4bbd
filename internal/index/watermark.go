package index

import (
	"context"
	"sync"
	"time"
)

const watermarkPollInterval = 10 * time.Millisecond

// Tracker records the highest committed sequence per item id. Callers
// that just mutated content wait on it instead of sleep-and-retry
// polling of the search API.
type Tracker struct {
	mu    sync.RWMutex
	marks map[string]int64
}

func NewTracker() *Tracker {
	return &Tracker{marks: make(map[string]int64)}
}

// Commit advances the item's watermark. Watermarks never move backwards;
// committing a lower sequence is a no-op.
func (t *Tracker) Commit(itemID string, sequence int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if sequence > t.marks[itemID] {
		t.marks[itemID] = sequence
	}
}

// Watermark returns the highest sequence committed for the item, zero if
// nothing is committed yet.
func (t *Tracker) Watermark(itemID string) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.marks[itemID]
}

// WaitUntilVisible polls the item's watermark until it reaches sequence,
// the timeout expires or ctx is cancelled. A false return is a normal
// outcome the caller must handle, not an error.
func (t *Tracker) WaitUntilVisible(ctx context.Context, itemID string, sequence int64, timeout time.Duration) bool {
	if t.Watermark(itemID) >= sequence {
		return true
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(watermarkPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if t.Watermark(itemID) >= sequence {
				return true
			}
		case <-deadline.C:
			return false
		case <-ctx.Done():
			return false
		}
	}
}
