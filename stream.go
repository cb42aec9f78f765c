package mzident

// Stream is a finite, single-pass sequence of entities. It is consumed
// exactly once: after the last item has been pulled, every further pull
// reports exhaustion, and re-consuming an exhausted stream yields nothing
// (it is not an error). Streams are never restartable.
//
// The zero Stream is empty.
type Stream[T any] struct {
	pull func() (T, bool)
}

// StreamOf returns a Stream over the given items. It normalises the
// "single item or ordered sequence" shapes a caller may hold: no arguments
// make an empty stream, one argument a one-item stream, a slice expands with
// StreamOf(items...).
func StreamOf[T any](items ...T) Stream[T] {
	i := 0
	return Stream[T]{pull: func() (T, bool) {
		if i >= len(items) {
			var zero T
			return zero, false
		}
		v := items[i]
		i++
		return v, true
	}}
}

// StreamFunc adapts a pull function into a Stream. pull must return false
// once exhausted and keep returning false afterwards.
func StreamFunc[T any](pull func() (T, bool)) Stream[T] {
	return Stream[T]{pull: pull}
}

// Next pulls the next item. ok is false once the stream is exhausted.
func (s Stream[T]) Next() (v T, ok bool) {
	if s.pull == nil {
		return v, false
	}
	return s.pull()
}

// Each applies fn to every remaining item in order, consuming the stream.
// It stops at, and returns, the first error.
func (s Stream[T]) Each(fn func(T) error) error {
	for {
		v, ok := s.Next()
		if !ok {
			return nil
		}
		if err := fn(v); err != nil {
			return err
		}
	}
}
