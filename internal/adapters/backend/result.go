package backend

// Result is the outcome of one backend call: either a value or an error.
type Result[T any] struct {
	Value T
	Err   error
}

func ok[T any](v T) Result[T] { return Result[T]{Value: v} }

func fail[T any](err error) Result[T] { return Result[T]{Err: err} }

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Unwrap returns the value and error in Go's usual order.
func (r Result[T]) Unwrap() (T, error) { return r.Value, r.Err }
