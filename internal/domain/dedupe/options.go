package dedupe

const defaultMaxSize = 10_000

// Option applies a configuration option to InMemory.
type Option func(*InMemory)

// WithMaxSize sets how many ids are remembered. Values below 1 are ignored.
func WithMaxSize(maxSize int) Option {
	return func(d *InMemory) {
		if maxSize > 0 {
			d.maxSize = maxSize
		}
	}
}
