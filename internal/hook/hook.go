// Package hook provides ordered handler lists used as extension points.
//
// A Waterfall feeds each handler the previous handler's output. A Bail tries
// handlers in turn until one produces a defined result. Handlers always run in
// the order they were tapped. Handler names are only used for diagnostics.
package hook

import (
	"context"
	"fmt"
)

// WaterfallFunc transforms value, given a fixed context c.
type WaterfallFunc[T, C any] func(ctx context.Context, value T, c C) (T, error)

// Waterfall is an ordered handler chain. The zero value is ready to use.
type Waterfall[T, C any] struct {
	names    []string
	handlers []WaterfallFunc[T, C]
}

// Tap appends a handler to the chain.
func (w *Waterfall[T, C]) Tap(name string, fn WaterfallFunc[T, C]) {
	w.names = append(w.names, name)
	w.handlers = append(w.handlers, fn)
}

// Call runs the handlers in order, starting from seed, and returns the last
// handler's output. With no handlers, seed is returned. The first handler
// error stops the chain.
func (w *Waterfall[T, C]) Call(ctx context.Context, seed T, c C) (T, error) {
	value := seed
	for i, fn := range w.handlers {
		next, err := fn(ctx, value, c)
		if err != nil {
			var zero T
			return zero, fmt.Errorf("%s: %w", w.names[i], err)
		}
		value = next
	}
	return value, nil
}

// Len returns the number of tapped handlers.
func (w *Waterfall[T, C]) Len() int {
	return len(w.handlers)
}

// Names returns handler names in call order.
func (w *Waterfall[T, C]) Names() []string {
	names := make([]string, len(w.names))
	copy(names, w.names)
	return names
}

// BailFunc inspects a and either returns a defined result (ok == true) or
// defers to later handlers (ok == false).
type BailFunc[A, R any] func(a A) (result R, ok bool, err error)

// Bail is a short-circuiting handler chain. The zero value is ready to use.
type Bail[A, R any] struct {
	names    []string
	handlers []BailFunc[A, R]
}

// Tap appends a handler to the chain.
func (b *Bail[A, R]) Tap(name string, fn BailFunc[A, R]) {
	b.names = append(b.names, name)
	b.handlers = append(b.handlers, fn)
}

// Call returns the result of the first handler that defines one. ok is false
// when every handler deferred, and the caller decides the default.
func (b *Bail[A, R]) Call(a A) (result R, ok bool, err error) {
	for _, fn := range b.handlers {
		result, ok, err = fn(a)
		if err != nil || ok {
			return result, ok, err
		}
	}
	var zero R
	return zero, false, nil
}

// Len returns the number of tapped handlers.
func (b *Bail[A, R]) Len() int {
	return len(b.handlers)
}

// Names returns handler names in call order.
func (b *Bail[A, R]) Names() []string {
	names := make([]string, len(b.names))
	copy(names, b.names)
	return names
}
