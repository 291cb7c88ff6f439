package testutil

import (
	"context"
	"errors"
	"sync"
)

// ErrSimulated is returned by MockSource when configured to fail.
var ErrSimulated = errors.New("simulated error")

// MockSource is a scripted pull source used to observe how operators drive
// their inputs. It satisfies seq.Source without importing it.
type MockSource[T any] struct {
	mu         sync.Mutex
	values     []T
	pos        int
	pulls      int
	errorOnNth int
	err        error
	resurrect  bool
}

// NewMockSource creates a MockSource yielding values in order.
func NewMockSource[T any](values ...T) *MockSource[T] {
	return &MockSource[T]{values: values}
}

// Next yields the next scripted value.
func (m *MockSource[T]) Next(ctx context.Context) (T, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	m.pulls++

	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	if m.err != nil {
		return zero, false, m.err
	}
	if m.errorOnNth > 0 && m.pulls == m.errorOnNth {
		return zero, false, ErrSimulated
	}
	if m.pos >= len(m.values) {
		if m.resurrect {
			// Misbehaving source: keeps producing after reporting exhaustion.
			m.resurrect = false
			m.values = append(m.values, zero)
		}
		return zero, false, nil
	}

	v := m.values[m.pos]
	m.pos++
	return v, true, nil
}

// Pulls returns the number of Next calls.
func (m *MockSource[T]) Pulls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pulls
}

// SetErrorOnNth configures the source to fail on the nth pull only.
// The failing pull does not consume a value.
func (m *MockSource[T]) SetErrorOnNth(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorOnNth = n
}

// SetAlwaysError configures the source to always return the given error.
func (m *MockSource[T]) SetAlwaysError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetResurrect makes the source yield one more value after its first
// exhaustion, violating the pull contract on purpose.
func (m *MockSource[T]) SetResurrect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resurrect = true
}
