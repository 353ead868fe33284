package telemetry

import (
	"context"
	"sync"

	"github.com/creatorpulse/creator-backend/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// Worker persists call-log rows asynchronously. The durable log is
// best-effort: a full buffer drops the row, a failed insert is logged and
// swallowed, and neither ever reaches the caller that triggered the call.
type Worker struct {
	db       *gorm.DB
	tasks    chan models.APICallLog
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopped  chan struct{}
}

// NewWorker creates a call-log worker with the specified pool size.
func NewWorker(db *gorm.DB, poolSize, bufferSize int) *Worker {
	w := &Worker{
		db:      db,
		tasks:   make(chan models.APICallLog, bufferSize),
		stopped: make(chan struct{}),
	}

	for range poolSize {
		w.wg.Add(1)
		go w.run()
	}

	return w
}

// Submit queues a call-log row for persistence. Never blocks.
func (w *Worker) Submit(entry models.APICallLog) {
	select {
	case <-w.stopped:
		fiberlog.Warnf("call-log worker stopped, dropping entry for %s", entry.Host)
		return
	case w.tasks <- entry:
	default:
		// Buffer full, drop the entry rather than stall a caller.
		fiberlog.Warnf("call-log buffer full, dropping entry for %s", entry.Host)
	}
}

func (w *Worker) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopped:
			return
		case entry := <-w.tasks:
			if err := w.db.WithContext(context.Background()).Create(&entry).Error; err != nil {
				fiberlog.Errorf("failed to persist call-log entry: %v", err)
			}
		}
	}
}

// Stop gracefully stops the worker pool.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopped)
		w.wg.Wait()
	})
}
