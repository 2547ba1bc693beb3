package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/larder/internal/models"
)

// Outcome is the result of one asynchronous import.
type Outcome struct {
	Request Request
	Result  *models.ImportResult
	Err     error
}

// ImportAsync runs req on its own goroutine. The channel delivers exactly one
// Outcome and is then closed.
func (i *Importer) ImportAsync(ctx context.Context, req Request) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		res, err := i.Import(ctx, req)
		ch <- Outcome{Request: req, Result: res, Err: err}
	}()
	return ch
}

// Pool imports queued requests on a fixed number of workers. Imports share
// nothing but the store, so workers never coordinate beyond the queue.
type Pool struct {
	importer *Importer
	jobs     chan Request
	onDone   func(Outcome)
	wg       sync.WaitGroup
	once     sync.Once
	logger   *zap.Logger
}

// NewPool starts workers goroutines that run until Close or ctx is done.
// onDone is called from the worker goroutine for every finished request.
func NewPool(ctx context.Context, importer *Importer, workers int, onDone func(Outcome)) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		importer: importer,
		jobs:     make(chan Request, workers),
		onDone:   onDone,
		logger:   importer.logger,
	}
	p.wg.Add(workers)
	for n := 0; n < workers; n++ {
		go p.work(ctx)
	}
	return p
}

func (p *Pool) work(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-p.jobs:
			if !ok {
				return
			}
			res, err := p.importer.Import(ctx, req)
			if err != nil {
				p.logger.Debug("Pooled import failed", zap.String("path", req.Path), zap.Error(err))
			}
			if p.onDone != nil {
				p.onDone(Outcome{Request: req, Result: res, Err: err})
			}
		}
	}
}

// Submit queues req, blocking while every worker is busy. It fails only when
// ctx is done first.
func (p *Pool) Submit(ctx context.Context, req Request) error {
	select {
	case p.jobs <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting requests and waits for queued ones to finish.
// Submit must not be called after Close.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.jobs) })
	p.wg.Wait()
}

// ImportAll imports every request with up to workers running at once and
// returns the outcomes in request order.
func (i *Importer) ImportAll(ctx context.Context, reqs []Request, workers int) []Outcome {
	if workers < 1 {
		workers = 1
	}
	out := make([]Outcome, len(reqs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for n, req := range reqs {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			out[n] = Outcome{Request: req, Err: ctx.Err()}
			continue
		}
		wg.Add(1)
		go func(n int, req Request) {
			defer wg.Done()
			defer func() { <-sem }()
			res, err := i.Import(ctx, req)
			out[n] = Outcome{Request: req, Result: res, Err: err}
		}(n, req)
	}
	wg.Wait()
	return out
}
