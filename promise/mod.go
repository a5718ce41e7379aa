// Package promise provides a single-resolution future. A promise settles
// exactly once, either with a value or with an error; settling it a second
// time is a programming error surfaced to the caller, never silently
// tolerated.
package promise

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadySettled is returned by Resolve and Reject when the promise has
// already been settled.
var ErrAlreadySettled = errors.New("promise already settled")

// State describes the observable state of a promise.
type State byte

const (
	// Pending means the promise has not settled yet.
	Pending State = iota
	// Resolved means the promise settled with a value.
	Resolved
	// Rejected means the promise settled with an error.
	Rejected
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Promise is a single-resolution future holding a T.
type Promise[T any] struct {
	mu    sync.Mutex
	done  chan struct{}
	state State
	value T
	err   error
}

// New returns a pending promise.
func New[T any]() *Promise[T] {
	return &Promise[T]{
		done: make(chan struct{}),
	}
}

// Resolve settles the promise with a value. It returns ErrAlreadySettled if
// the promise is not pending.
func (p *Promise[T]) Resolve(value T) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Pending {
		return ErrAlreadySettled
	}
	p.state = Resolved
	p.value = value
	close(p.done)
	return nil
}

// Reject settles the promise with an error. It returns ErrAlreadySettled if
// the promise is not pending.
func (p *Promise[T]) Reject(err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Pending {
		return ErrAlreadySettled
	}
	p.state = Rejected
	p.err = err
	close(p.done)
	return nil
}

// State returns the current state of the promise.
func (p *Promise[T]) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// Done returns a channel closed when the promise settles.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Await blocks until the promise settles or the context is cancelled. It
// returns the resolved value, the rejection error, or the context error.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Rejected {
		var zero T
		return zero, p.err
	}
	return p.value, nil
}
