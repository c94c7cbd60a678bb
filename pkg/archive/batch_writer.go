package archive

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// WriteFunc performs database writes inside a transaction.
type WriteFunc func(ctx context.Context, tx *sql.Tx) error

// BatchWriter buffers writes and commits them in batches, one transaction per
// batch, from a single committer goroutine. Batches commit in submission order.
type BatchWriter struct {
	mu     sync.Mutex
	buf    []WriteFunc
	size   int
	closed bool

	commitCh chan []WriteFunc
	done     chan struct{}
	db       *sql.DB

	// OnError is called from the committer for every failed batch.
	OnError func(error)

	errMu   sync.Mutex
	lastErr error
	batches int
}

// NewBatchWriter creates a writer that commits every size submissions. A nil
// db runs the callbacks with a nil transaction.
func NewBatchWriter(db *sql.DB, size int) *BatchWriter {
	if size <= 0 {
		size = 100
	}
	bw := &BatchWriter{
		buf:      make([]WriteFunc, 0, size),
		size:     size,
		commitCh: make(chan []WriteFunc, 2),
		done:     make(chan struct{}),
		db:       db,
	}
	go bw.committer()
	return bw
}

// Submit enqueues a write. It blocks while two full batches are waiting to commit.
func (bw *BatchWriter) Submit(w WriteFunc) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.buf = append(bw.buf, w)
	if len(bw.buf) >= bw.size {
		bw.flushLocked()
	}
	return nil
}

// flushLocked assumes bw.mu is held.
func (bw *BatchWriter) flushLocked() {
	if len(bw.buf) == 0 {
		return
	}
	batch := bw.buf
	bw.buf = make([]WriteFunc, 0, bw.size)
	bw.commitCh <- batch
}

func (bw *BatchWriter) committer() {
	defer close(bw.done)
	for batch := range bw.commitCh {
		err := bw.executeBatch(batch)
		bw.errMu.Lock()
		bw.batches++
		if err != nil && bw.lastErr == nil {
			bw.lastErr = err
		}
		bw.errMu.Unlock()
		if err != nil && bw.OnError != nil {
			bw.OnError(err)
		}
	}
}

func (bw *BatchWriter) executeBatch(batch []WriteFunc) error {
	ctx := context.Background()
	if bw.db == nil {
		for _, w := range batch {
			if err := w(ctx, nil); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := bw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	for _, w := range batch {
		if err := w(ctx, tx); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch (%d items): %w", len(batch), err)
	}
	return nil
}

// Batches returns the number of batches executed so far.
func (bw *BatchWriter) Batches() int {
	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.batches
}

// Close flushes the remaining writes, waits for them to commit and returns
// the first error any batch produced.
func (bw *BatchWriter) Close() error {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return ErrBatchWriterClosed
	}
	bw.closed = true
	bw.flushLocked()
	bw.mu.Unlock()

	close(bw.commitCh)
	<-bw.done

	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.lastErr
}

var ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}

type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }
