// Package arena provides monotonic, typed allocation for the long-lived
// objects that make up an elaborated design: symbols, constant values,
// interned strings and types. Everything allocated from an Arena lives for
// the lifetime of the owning Compilation and is never individually freed;
// the whole arena is dropped at once when the Compilation itself is.
package arena

import "sync"

// Arena is a typed bump allocator. Unlike a single untyped byte arena, one
// Arena[T] is instantiated per consumer kind (symbols, constant values,
// generic class bodies, ...), mirroring the per-kind allocator methods
// (allocConstant, allocSymbolMap, allocPointerMap, allocGenericClass) a
// production elaboration engine exposes on its top-level compilation state.
//
// Chunked slices are used instead of one contiguous append so that pointers
// returned by Alloc remain stable even as the arena grows; a plain
// append-growing slice would invalidate earlier addresses on reallocation.
type Arena[T any] struct {
	mu         sync.Mutex
	chunks     [][]T
	chunkSize  int
	count      int
}

// defaultChunkSize is chosen so that even large elaborations (thousands of
// symbols per module) rarely need more than a handful of chunks.
const defaultChunkSize = 4096

// New constructs an empty arena for values of type T.
func New[T any]() *Arena[T] {
	return &Arena[T]{chunkSize: defaultChunkSize}
}

// Alloc reserves space for one T, initializes it with the zero value, and
// returns a stable pointer to it. The pointer remains valid for the lifetime
// of the arena.
func (a *Arena[T]) Alloc() *T {
	a.mu.Lock()
	defer a.mu.Unlock()
	//
	last := len(a.chunks) - 1
	if last < 0 || len(a.chunks[last]) == cap(a.chunks[last]) {
		a.chunks = append(a.chunks, make([]T, 0, a.chunkSize))
		last++
	}
	//
	chunk := a.chunks[last]
	chunk = chunk[:len(chunk)+1]
	a.chunks[last] = chunk
	a.count++
	//
	return &chunk[len(chunk)-1]
}

// AllocValue reserves space for one T initialized to the given value and
// returns a stable pointer to the copy.
func (a *Arena[T]) AllocValue(val T) *T {
	p := a.Alloc()
	*p = val
	//
	return p
}

// Len returns the number of values allocated from this arena so far.
func (a *Arena[T]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	//
	return a.count
}

// StringInterner deduplicates string views observed from syntax so that
// structurally-identical identifiers and vector-type spellings share
// backing storage. Interning never copies the string bytes it is given; the
// core never copies strings observed from syntax, it only reduces distinct
// backing arrays.
type StringInterner struct {
	mu     sync.Mutex
	values map[string]string
}

// NewStringInterner constructs an empty interner.
func NewStringInterner() *StringInterner {
	return &StringInterner{values: make(map[string]string)}
}

// Intern returns the canonical representative for s, registering s as the
// representative if this is the first time it has been observed.
func (i *StringInterner) Intern(s string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	//
	if canon, ok := i.values[s]; ok {
		return canon
	}
	//
	i.values[s] = s
	return s
}
