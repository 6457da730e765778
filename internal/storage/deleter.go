package storage

import (
	"context"
	"log"
	"time"
)

// Deleter removes replaced or orphaned image objects asynchronously so
// request handlers never block on object-storage latency. Deletions are
// best-effort; a lost delete leaves an unreferenced blob, never a broken
// record.
type Deleter struct {
	store   ObjectStore
	keyChan chan string
}

// NewDeleter creates a deleter and starts its worker.
func NewDeleter(store ObjectStore) *Deleter {
	d := &Deleter{
		store:   store,
		keyChan: make(chan string, 100),
	}
	go d.worker(context.Background())
	return d
}

// Enqueue schedules an object for deletion. Falls back to a synchronous
// delete when the queue is full.
func (d *Deleter) Enqueue(ctx context.Context, key string) {
	if key == "" {
		return
	}
	select {
	case d.keyChan <- key:
	default:
		if err := d.store.Remove(ctx, key); err != nil {
			log.Printf("image delete failed for %s: %v", key, err)
		}
	}
}

// worker drains the queue, flushing pending deletes in small batches.
func (d *Deleter) worker(ctx context.Context) {
	batch := make([]string, 0, 10)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	flush := func() {
		for _, key := range batch {
			if err := d.store.Remove(ctx, key); err != nil {
				log.Printf("image delete failed for %s: %v", key, err)
			}
		}
		batch = batch[:0]
	}

	for {
		select {
		case key, ok := <-d.keyChan:
			if !ok {
				flush()
				return
			}
			batch = append(batch, key)
			if len(batch) >= 10 {
				flush()
			}
		case <-ticker.C:
			if len(batch) > 0 {
				flush()
			}
		case <-ctx.Done():
			return
		}
	}
}
