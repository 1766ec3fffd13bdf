package pipeline

// Result is the outcome of one enrichment call: either the value, or the
// fallback together with the error that forced it.
type Result[T any] struct {
	Value T
	Err   error
}

// Degraded reports whether the fallback was used.
func (r Result[T]) Degraded() bool {
	return r.Err != nil
}

// resultOf keeps v when err is nil and substitutes fallback otherwise.
func resultOf[T any](v T, err error, fallback T) Result[T] {
	if err != nil {
		return Result[T]{Value: fallback, Err: err}
	}
	return Result[T]{Value: v}
}
