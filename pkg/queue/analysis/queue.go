package analysis

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"insights/pkg/queue"
	"insights/pkg/schema"
	"insights/pkg/utils"
)

// Processor is the work each queued URL goes through.
type Processor interface {
	Process(ctx context.Context, url string) (schema.Analysis, error)
}

type Queue struct {
	ctx     context.Context
	cancel  context.CancelFunc
	proc    Processor
	workers int
	items   chan *Item

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

type Item struct {
	URL    string
	Result chan queue.Result
}

var _ queue.Queue = (*Queue)(nil)

// New creates a queue holding up to size pending URLs served by workers goroutines.
// Work runs under ctx; stopping the queue cancels it.
func New(ctx context.Context, proc Processor, workers, size int) *Queue {
	ctx, cancel := context.WithCancel(ctx)
	return &Queue{
		ctx:     ctx,
		cancel:  cancel,
		proc:    proc,
		workers: max(workers, 1),
		items:   make(chan *Item, max(size, 1)),
	}
}

func (q *Queue) Start() {
	for i := range q.workers {
		q.wg.Add(1)
		go q.processLoop(i)
	}
}

// Stop cancels in-flight work and waits for workers to exit. Items still
// pending receive queue.ErrStopped.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()

	for {
		select {
		case item := <-q.items:
			item.Result <- queue.Result{Err: queue.ErrStopped}
		default:
			return
		}
	}
}

func (q *Queue) Add(url string) (<-chan queue.Result, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.stopped {
		return nil, queue.ErrStopped
	}

	item := &Item{URL: url, Result: make(chan queue.Result, 1)}
	select {
	case q.items <- item:
		log.Debug("queued product", "url", utils.LimitStr(url, 80), "pending", q.Pending())
		return item.Result, nil
	default:
		return nil, queue.ErrFull
	}
}

// Pending reports how many URLs are waiting for a worker.
func (q *Queue) Pending() int {
	return len(q.items)
}

func (q *Queue) processLoop(worker int) {
	defer q.wg.Done()
	log.Debug("analysis worker started", "worker", worker)
	for {
		select {
		case <-q.ctx.Done():
			log.Debug("analysis worker stopped", "worker", worker)
			return
		case item := <-q.items:
			if q.ctx.Err() != nil {
				item.Result <- queue.Result{Err: queue.ErrStopped}
				continue
			}
			q.processItem(item)
		}
	}
}

func (q *Queue) processItem(item *Item) {
	log.Info("analysing product", "url", utils.LimitStr(item.URL, 80))

	a, err := q.proc.Process(q.ctx, item.URL)
	if err != nil {
		log.Warn("analysis failed", "url", utils.LimitStr(item.URL, 80), "error", err)
	}
	item.Result <- queue.Result{Analysis: a, Err: err}
}
