package compile

import (
	"encoding/json"
	"fmt"
)

// Interner assigns dense indices to structurally distinct values in the order
// they are first seen. Two values are the same when their JSON encodings are
// equal; encoding/json sorts map keys and follows pointers, so the key is a
// deep canonical form.
type Interner[T any] struct {
	index  map[string]int
	values []T
}

// NewInterner creates an empty interner.
func NewInterner[T any]() *Interner[T] {
	return &Interner[T]{index: make(map[string]int)}
}

// Intern returns the index of v, adding it if no equal value exists yet.
func (in *Interner[T]) Intern(v T) (int, error) {
	key, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("interning %T: %w", v, err)
	}
	if i, ok := in.index[string(key)]; ok {
		return i, nil
	}
	i := len(in.values)
	in.index[string(key)] = i
	in.values = append(in.values, v)
	return i, nil
}

// Len returns the number of distinct values.
func (in *Interner[T]) Len() int {
	return len(in.values)
}

// Values returns the distinct values in index order, or nil when empty.
func (in *Interner[T]) Values() []T {
	if len(in.values) == 0 {
		return nil
	}
	return in.values
}
