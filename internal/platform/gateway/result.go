package gateway

// LoadResult is the outcome of a bulk read: either the loaded records or the
// reason the load failed. An empty successful result and a failed one are
// distinct states; check OK before treating Records as authoritative.
type LoadResult[T any] struct {
	records []T
	err     error
}

// Loaded wraps a successful bulk read.
func Loaded[T any](records []T) LoadResult[T] {
	return LoadResult[T]{records: records}
}

// Failed wraps a failed bulk read.
func Failed[T any](err error) LoadResult[T] {
	return LoadResult[T]{err: err}
}

// OK reports whether the load succeeded.
func (r LoadResult[T]) OK() bool { return r.err == nil }

// Err returns the load failure, or nil.
func (r LoadResult[T]) Err() error { return r.err }

// Records returns the loaded records; it is empty (never nil) on failure.
func (r LoadResult[T]) Records() []T {
	if r.records == nil {
		return []T{}
	}
	return r.records
}
