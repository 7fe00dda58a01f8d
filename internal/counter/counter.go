package counter

import "sync"

type Entry[K comparable] struct {
	Key   K
	Count int
}

// Counter is a frequency map safe for concurrent use.
type Counter[K comparable] struct {
	mu     sync.Mutex
	counts map[K]int
	total  int
}

func New[K comparable]() *Counter[K] {
	return &Counter[K]{counts: make(map[K]int)}
}

func (c *Counter[K]) Increment(key K) {
	c.Add(key, 1)
}

// Add is n Increments of key under a single lock acquisition.
func (c *Counter[K]) Add(key K, n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	c.counts[key] += n
	c.total += n
	c.mu.Unlock()
}

// Snapshot copies the current counts. Order is unspecified.
func (c *Counter[K]) Snapshot() []Entry[K] {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry[K], 0, len(c.counts))
	for k, v := range c.counts {
		out = append(out, Entry[K]{Key: k, Count: v})
	}
	return out
}

func (c *Counter[K]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.counts)
}

func (c *Counter[K]) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}
