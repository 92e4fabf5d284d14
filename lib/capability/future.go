// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"context"
	"fmt"
)

// Future is an in-flight delegated call. Create one with [Go]. A Future
// settles exactly once, with either a value or an error.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go starts call on its own goroutine and returns its Future. A panic
// inside call settles the Future with an error instead of crashing the
// process.
func Go[T any](ctx context.Context, call func(context.Context) (T, error)) *Future[T] {
	future := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(future.done)
		defer func() {
			if recovered := recover(); recovered != nil {
				future.err = fmt.Errorf("delegated call panicked: %v", recovered)
			}
		}()
		future.value, future.err = call(ctx)
	}()
	return future
}

// Done is closed when the Future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the Future settles or ctx is done. The call itself
// keeps running after ctx ends only if it ignores its own context.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
