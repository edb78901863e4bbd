package index_test

import (
	"context"
	"testing"
	"time"

	"github.com/contentgrid/content-search/internal/index"
	"github.com/stretchr/testify/assert"
)

func TestWatermarkNeverMovesBackwards(t *testing.T) {
	tracker := index.NewTracker()

	tracker.Commit("item-1", 5)
	tracker.Commit("item-1", 3)

	assert.Equal(t, int64(5), tracker.Watermark("item-1"))
	assert.Equal(t, int64(0), tracker.Watermark("item-2"))
}

func TestWaitUntilVisibleReturnsImmediately(t *testing.T) {
	tracker := index.NewTracker()
	tracker.Commit("item-1", 5)

	assert.True(t, tracker.WaitUntilVisible(context.Background(), "item-1", 5, time.Second))
	assert.True(t, tracker.WaitUntilVisible(context.Background(), "item-1", 3, time.Second))
}

func TestWaitUntilVisibleTimesOut(t *testing.T) {
	tracker := index.NewTracker()

	start := time.Now()
	visible := tracker.WaitUntilVisible(context.Background(), "item-1", 1, 50*time.Millisecond)

	assert.False(t, visible)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestWaitUntilVisibleObservesConcurrentCommit(t *testing.T) {
	tracker := index.NewTracker()

	go func() {
		time.Sleep(30 * time.Millisecond)
		tracker.Commit("item-1", 2)
	}()

	assert.True(t, tracker.WaitUntilVisible(context.Background(), "item-1", 2, 2*time.Second))
}

func TestWaitUntilVisibleHonorsCancellation(t *testing.T) {
	tracker := index.NewTracker()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	assert.False(t, tracker.WaitUntilVisible(ctx, "item-1", 1, 5*time.Second))
}
