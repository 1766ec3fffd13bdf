// Package service owns the webhook intake: it deduplicates deliveries,
// buffers them in a bounded queue and runs the matching pipeline on a
// worker pool, detached from the HTTP request that brought them in.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	eventqueue "github.com/okian/matchbot/internal/adapters/mq/queue"
	workerpool "github.com/okian/matchbot/internal/adapters/mq/worker"
	repository "github.com/okian/matchbot/internal/adapters/repository"
	"github.com/okian/matchbot/internal/domain/dedupe"
	"github.com/okian/matchbot/internal/domain/model"
	"github.com/okian/matchbot/pkg/logger"
	"github.com/okian/matchbot/pkg/metrics"
)

// Admission is the intake decision for one delivery.
type Admission int

const (
	// Accepted means the message was queued for processing.
	Accepted Admission = iota
	// Duplicate means the MessageSid was already seen; nothing was queued.
	Duplicate
	// Busy means the queue is full; the sender should try again later.
	Busy
)

// String implements fmt.Stringer.
func (a Admission) String() string {
	switch a {
	case Accepted:
		return "accepted"
	case Duplicate:
		return "duplicate"
	case Busy:
		return "busy"
	default:
		return "unknown"
	}
}

// ErrNotStarted is returned by Enqueue before Start or after Stop.
var ErrNotStarted = errors.New("service not started")

// Service runs inbound WhatsApp messages through a Processor.
type Service struct {
	mu sync.RWMutex

	processor  workerpool.Processor
	deduper    dedupe.Deduper
	eventQueue *eventqueue.InMemoryQueue
	workerPool *workerpool.Pool
	runs       repository.RunLog

	workerCount    int
	queueSize      int
	dedupeSize     int
	processTimeout time.Duration

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of buffered messages.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the in-memory deduplication ring. Ignored
// when WithDeduper is used.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithDeduper replaces the in-memory deduper, e.g. with a shared Redis one.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Service) {
		if d != nil {
			s.deduper = d
		}
	}
}

// WithProcessTimeout bounds one pipeline run.
func WithProcessTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.processTimeout = d
		}
	}
}

// WithRunLog exposes run counts through Stats.
func WithRunLog(r repository.RunLog) Option {
	return func(s *Service) {
		if r != nil {
			s.runs = r
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service that hands every accepted message to processor.
func New(processor workerpool.Processor, opts ...Option) *Service {
	s := &Service{
		processor:      processor,
		workerCount:    runtime.NumCPU() * 2,
		queueSize:      1000,
		dedupeSize:     10_000,
		processTimeout: 5 * time.Minute,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.processor == nil {
		return fmt.Errorf("%w: no processor", ErrNotStarted)
	}

	if s.deduper == nil {
		s.deduper = dedupe.NewInMemory(dedupe.WithMaxSize(s.dedupeSize))
	}
	s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.processor,
		workerpool.WithLogger(s.logger),
		workerpool.WithTimeout(s.processTimeout),
	)
	// Runs outlive the caller's context; only Stop's deadline cancels them.
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "intake service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop closes the queue and waits for buffered messages to finish until ctx
// expires.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping intake service...")
	s.started = false
	if err := s.workerPool.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info(ctx, "intake service stopped")
	return nil
}

// Enqueue admits one delivery. A MessageSid that was already seen is
// reported as Duplicate; a full queue as Busy, and the MessageSid is
// forgotten so the retry is admitted. Deliveries without a MessageSid skip
// deduplication. A failing deduper does not block intake.
func (s *Service) Enqueue(ctx context.Context, m model.InboundMessage) (Admission, error) { //nolint:gocritic // hugeParam
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return Busy, ErrNotStarted
	}

	if m.MessageSID != "" {
		seen, err := s.deduper.SeenAndRecord(ctx, m.MessageSID)
		switch {
		case err != nil:
			s.logger.Warn(ctx, "dedupe unavailable, admitting message",
				logger.String("message_sid", m.MessageSID),
				logger.Error(err))
		case seen:
			metrics.RecordWebhookDuplicate()
			s.logger.Debug(ctx, "duplicate delivery skipped",
				logger.String("message_sid", m.MessageSID))
			return Duplicate, nil
		}
	}

	if err := s.eventQueue.Enqueue(ctx, m); err != nil {
		s.forget(ctx, m.MessageSID)
		if errors.Is(err, eventqueue.ErrFull) {
			s.logger.Warn(ctx, "queue full, asking sender to retry",
				logger.String("message_sid", m.MessageSID))
			return Busy, nil
		}
		return Busy, fmt.Errorf("enqueue %s: %w", m.MessageSID, err)
	}
	s.logger.Debug(ctx, "message queued",
		logger.String("message_sid", m.MessageSID),
		logger.Int("queue_length", s.eventQueue.Len()))
	return Accepted, nil
}

func (s *Service) forget(ctx context.Context, sid string) {
	if sid == "" {
		return
	}
	if err := s.deduper.Forget(ctx, sid); err != nil {
		s.logger.Warn(ctx, "failed to forget message id",
			logger.String("message_sid", sid),
			logger.Error(err))
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}
	if s.eventQueue != nil {
		stats["queueLength"] = s.eventQueue.Len()
	}
	if d, ok := s.deduper.(interface{ Size() int }); ok {
		stats["dedupeSize"] = d.Size()
	}
	if s.runs != nil {
		if n, err := s.runs.Count(ctx); err == nil {
			stats["runs"] = n
		}
	}
	return stats
}
