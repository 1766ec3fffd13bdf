package repository

import (
	"context"
	"sync"

	"github.com/okian/matchbot/internal/domain/model"
)

const defaultCapacity = 1000

// MemoryLog is a bounded in-process RunLog.
type MemoryLog struct {
	mu       sync.RWMutex
	capacity int
	order    []string // oldest first
	runs     map[string]model.Run
}

var _ RunLog = (*MemoryLog)(nil)

// NewMemoryLog creates an empty MemoryLog.
func NewMemoryLog(opts ...Option) *MemoryLog {
	s := &MemoryLog{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	s.runs = make(map[string]model.Run, s.capacity)
	return s
}

// Record implements RunLog.
func (s *MemoryLog) Record(ctx context.Context, run model.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.ID]; ok {
		s.runs[run.ID] = run
		return nil
	}
	if len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.runs, oldest)
	}
	s.order = append(s.order, run.ID)
	s.runs[run.ID] = run
	return nil
}

// Get implements RunLog.
func (s *MemoryLog) Get(_ context.Context, id string) (model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return model.Run{}, ErrNotFound
	}
	return run, nil
}

// Recent implements RunLog.
func (s *MemoryLog) Recent(_ context.Context, n int) ([]model.Run, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.order) {
		n = len(s.order)
	}
	out := make([]model.Run, 0, n)
	for i := len(s.order) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.runs[s.order[i]])
	}
	return out, nil
}

// Count implements RunLog.
func (s *MemoryLog) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs), nil
}
