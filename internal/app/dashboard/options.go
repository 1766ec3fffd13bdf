package dashboard

import "github.com/okian/matchbot/pkg/logger"

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithConcurrency caps the number of profiles fetched or rejected at once.
// Without it the fan-out is bounded only by the page size.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}
