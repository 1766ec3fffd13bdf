package repository

// Option applies a configuration option to the MemoryLog.
type Option func(*MemoryLog)

// WithCapacity bounds how many runs are kept; the oldest are dropped first.
func WithCapacity(n int) Option {
	return func(s *MemoryLog) {
		if n > 0 {
			s.capacity = n
		}
	}
}
