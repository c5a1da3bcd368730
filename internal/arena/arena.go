// Package arena provides fixed-capacity buffers that are allocated once
// and refilled every frame.
//
// A Buffer never grows. Callers check Remaining (or Fits) before appending
// and flush when the buffer is close to full; appending past the capacity
// panics, since it means a capacity check was skipped.
package arena

// Buffer is a fixed-capacity slice with a write cursor.
// It is not safe for concurrent use.
type Buffer[T any] struct {
	data []T
	n    int
}

// New allocates a buffer holding up to capacity elements.
func New[T any](capacity int) *Buffer[T] {
	return &Buffer[T]{data: make([]T, capacity)}
}

// Len returns the number of elements written since the last Reset.
func (b *Buffer[T]) Len() int { return b.n }

// Cap returns the fixed capacity.
func (b *Buffer[T]) Cap() int { return len(b.data) }

// Remaining returns the number of free slots.
func (b *Buffer[T]) Remaining() int { return len(b.data) - b.n }

// Fits reports whether n more elements can be written.
func (b *Buffer[T]) Fits(n int) bool { return b.n+n <= len(b.data) }

// Append writes v at the cursor and advances it.
func (b *Buffer[T]) Append(v T) {
	b.data[b.n] = v
	b.n++
}

// AppendN writes all of vs.
func (b *Buffer[T]) AppendN(vs ...T) {
	copy(b.data[b.n:b.n+len(vs)], vs)
	b.n += len(vs)
}

// Next advances the cursor by one and returns the new slot for in-place
// initialization. The slot keeps whatever it held in a previous frame.
func (b *Buffer[T]) Next() *T {
	p := &b.data[b.n]
	b.n++
	return p
}

// At returns a pointer to the i-th written element.
func (b *Buffer[T]) At(i int) *T { return &b.data[:b.n][i] }

// Last returns a pointer to the most recently written element, or nil.
func (b *Buffer[T]) Last() *T {
	if b.n == 0 {
		return nil
	}
	return &b.data[b.n-1]
}

// Truncate moves the cursor back to n. It is a no-op if n >= Len.
func (b *Buffer[T]) Truncate(n int) {
	if n < b.n && n >= 0 {
		b.n = n
	}
}

// Slice returns the written elements. The slice aliases the buffer and is
// only valid until the next Reset.
func (b *Buffer[T]) Slice() []T { return b.data[:b.n] }

// Reset moves the cursor to the start. Memory is kept.
func (b *Buffer[T]) Reset() { b.n = 0 }
