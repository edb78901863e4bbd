package index

import (
	"hash/fnv"
	"sync"
)

// stripedLocks serializes writes per item id while distinct ids proceed
// concurrently, keyed by item id hash. Two ids may share a stripe; that
// only narrows concurrency, never correctness.
type stripedLocks struct {
	stripes []sync.Mutex
}

func newStripedLocks(n int) *stripedLocks {
	if n <= 0 {
		n = 64
	}
	return &stripedLocks{stripes: make([]sync.Mutex, n)}
}

func (l *stripedLocks) stripe(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &l.stripes[h.Sum32()%uint32(len(l.stripes))]
}
