// Package worker drains the message queue and runs the pipeline for each
// acknowledged message, detached from the webhook request.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/matchbot/internal/domain/model"
	"github.com/okian/matchbot/pkg/logger"
	"github.com/okian/matchbot/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	defaultRunTimeout       = 5 * time.Minute
)

// Message abstracts what workers read off the queue.
type Message = model.InboundMessage

// Processor handles one message end to end. Errors are logged; the
// processor owns any user-facing reply.
type Processor interface {
	Process(ctx context.Context, m Message) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, m Message) error

// Process implements Processor.
func (f ProcessorFunc) Process(ctx context.Context, m Message) error { //nolint:gocritic // hugeParam
	return f(ctx, m)
}

// Queue defines how workers receive messages.
type Queue interface {
	Dequeue() <-chan Message
}

// InMemoryWorker processes messages one at a time.
type InMemoryWorker struct {
	queue     Queue
	processor Processor
	name      string
	timeout   time.Duration

	done   chan struct{}
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, processor Processor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		processor: processor,
		name:      "worker",
		timeout:   defaultRunTimeout,
		done:      make(chan struct{}),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run processes messages until the queue channel is closed and drained or
// ctx is cancelled.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	messages := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-messages:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, m); err != nil {
				w.logger.Error(ctx, "error processing message",
					logger.String("message_sid", m.MessageSID), logger.Error(err))
			}
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

// process runs one message under its own deadline and converts a panic into
// an error so one bad message cannot take the pool down.
func (w *InMemoryWorker) process(ctx context.Context, m Message) (err error) { //nolint:gocritic // hugeParam
	start := time.Now()
	metrics.WorkerBusy(1)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			metrics.RecordWorkerError()
		}
		metrics.WorkerBusy(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if m.Acked != nil {
		select {
		case <-m.Acked:
		case <-runCtx.Done():
			return fmt.Errorf("waiting for ack: %w", runCtx.Err())
		}
	}
	return w.processor.Process(runCtx, m)
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	mu     sync.Mutex
	cancel context.CancelFunc

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one uses
// twice the number of CPUs.
func NewPool(workerCount int, queue Queue, processor Processor, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Nop(),
	}
	tmp := &InMemoryWorker{logger: pool.logger}
	for _, opt := range opts {
		opt(tmp)
	}
	pool.logger = tmp.logger.Named("worker-pool")

	for i := 0; i < workerCount; i++ {
		wopts := append(append([]Option{}, opts...), WithName("worker-"+strconv.Itoa(i)))
		pool.workers[i] = NewInMemoryWorker(queue, processor, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size is the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start launches all workers. Processing contexts derive from ctx and are
// cancelled only when Shutdown gives up waiting.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	for _, w := range p.workers {
		go w.Run(runCtx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue, lets workers drain what is buffered and waits
// for them. When ctx expires first, in-flight runs are cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel == nil {
		return nil
	}
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("shutdown timed out: %w", ctx.Err())
		}
	}
	p.logger.Info(ctx, "worker pool stopped")
	return nil
}
