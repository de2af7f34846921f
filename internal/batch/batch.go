// Package batch provides a small combinator for fire-and-continue loops:
// apply an operation to every item, keep going on failure, and report both
// halves explicitly instead of accumulating ad-hoc error slices.
package batch

// Failure pairs an item with the error it produced.
type Failure[T any] struct {
	Item T
	Err  error
}

// Result partitions processed items into successes and failures.
type Result[T any] struct {
	Succeeded []T
	Failed    []Failure[T]
}

// Ok reports whether every item succeeded.
func (r Result[T]) Ok() bool { return len(r.Failed) == 0 }

// Errors returns the failure messages in processing order.
func (r Result[T]) Errors() []string {
	if len(r.Failed) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		out = append(out, f.Err.Error())
	}
	return out
}

// Map applies fn to every item in order. A failing item is recorded and the
// loop continues; one item's failure never blocks its siblings.
func Map[T any](items []T, fn func(T) error) Result[T] {
	var res Result[T]
	for _, it := range items {
		if err := fn(it); err != nil {
			res.Failed = append(res.Failed, Failure[T]{Item: it, Err: err})
			continue
		}
		res.Succeeded = append(res.Succeeded, it)
	}
	return res
}
