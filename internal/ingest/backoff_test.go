package ingest_test

import (
	"testing"
	"time"

	"github.com/contentgrid/content-search/internal/ingest"
	"github.com/stretchr/testify/assert"
)

func TestBackoffDoublesPerAttempt(t *testing.T) {
	base := 100 * time.Millisecond

	assert.Equal(t, 100*time.Millisecond, ingest.Backoff(base, 1))
	assert.Equal(t, 200*time.Millisecond, ingest.Backoff(base, 2))
	assert.Equal(t, 400*time.Millisecond, ingest.Backoff(base, 3))
}

func TestBackoffIsCapped(t *testing.T) {
	assert.Equal(t, 10*time.Second, ingest.Backoff(time.Second, 20))
}

func TestBackoffDefaults(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, ingest.Backoff(0, 1))
	assert.Equal(t, 100*time.Millisecond, ingest.Backoff(100*time.Millisecond, 0))
}
