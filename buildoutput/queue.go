package buildoutput

import (
	"context"
	"sync"
)

// queueItem is either a line or the end-of-stream marker.
type queueItem struct {
	line string
	eos  bool
}

// lineQueue is an unbounded FIFO between the assembler and the dispatcher.
// put never blocks; take blocks until an item arrives or ctx is done.
// It supports any number of producers and a single consumer.
type lineQueue struct {
	mu    sync.Mutex
	items []queueItem
	ready chan struct{}
}

func newLineQueue() *lineQueue {
	return &lineQueue{ready: make(chan struct{}, 1)}
}

func (q *lineQueue) put(item queueItem) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *lineQueue) take(ctx context.Context) (queueItem, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items[0] = queueItem{}
			q.items = q.items[1:]
			if len(q.items) == 0 {
				q.items = nil
			}
			q.mu.Unlock()
			return item, nil
		}
		q.mu.Unlock()

		select {
		case <-q.ready:
		case <-ctx.Done():
			return queueItem{}, ctx.Err()
		}
	}
}

func (q *lineQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
