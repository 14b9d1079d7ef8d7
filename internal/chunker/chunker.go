// Package chunker buffers items pushed one at a time and releases them in
// fixed-size chunks, such as ids sized for the live source's batch lookups.
package chunker

import (
	"fmt"
)

// DefaultThreshold is the fill ratio at which the oldest chunk counts as
// near-full and may be dispatched before it is literally full.
const DefaultThreshold = 0.9

// Queue is a FIFO of items shifted out in chunks of at most Size items.
// It is not safe for concurrent use; it expects a single producer.
type Queue[T any] struct {
	size      int
	threshold float64
	// chunks always holds at least one (possibly empty) chunk.
	chunks [][]T
}

// New returns a Queue releasing chunks of size items. threshold must be in
// (0, 1]; pass DefaultThreshold for the usual behavior.
func New[T any](size int, threshold float64) (*Queue[T], error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be > 0, got %d", size)
	}
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("chunk threshold must be in (0, 1], got %g", threshold)
	}
	return &Queue[T]{
		size:      size,
		threshold: threshold,
		chunks:    [][]T{make([]T, 0, size)},
	}, nil
}

// Size returns the maximum chunk length.
func (q *Queue[T]) Size() int { return q.size }

// Push appends item to the newest chunk, opening a new chunk when it is full.
func (q *Queue[T]) Push(item T) {
	last := len(q.chunks) - 1
	if len(q.chunks[last]) < q.size {
		q.chunks[last] = append(q.chunks[last], item)
		return
	}
	next := make([]T, 0, q.size)
	q.chunks = append(q.chunks, append(next, item))
}

// HasNearFullChunk reports whether the oldest chunk has reached the
// dispatch threshold.
func (q *Queue[T]) HasNearFullChunk() bool {
	return float64(len(q.chunks[0])) >= float64(q.size)*q.threshold
}

// IsEmpty reports whether no items are pending.
func (q *Queue[T]) IsEmpty() bool {
	return len(q.chunks[0]) == 0
}

// Pending returns the number of items waiting in the queue.
func (q *Queue[T]) Pending() int {
	n := 0
	for _, c := range q.chunks {
		n += len(c)
	}
	return n
}

// DrainChunk removes and returns the oldest chunk. The queue keeps an empty
// chunk when the last one is drained.
func (q *Queue[T]) DrainChunk() []T {
	first := q.chunks[0]
	q.chunks = q.chunks[1:]
	if len(q.chunks) == 0 {
		q.chunks = append(q.chunks, make([]T, 0, q.size))
	}
	return first
}
