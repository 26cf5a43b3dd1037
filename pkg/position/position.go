// Package position models a one-shot device position request. A Provider
// either resolves to a Position or fails with an *Error carrying a Code.
package position

import (
	"context"
	"errors"
	"fmt"
	"time"

	"statefinder/internal/models"
)

// Options mirrors the knobs of a platform position request.
type Options struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}

// DefaultOptions favours a quick coarse fix; state-level lookups need nothing better.
var DefaultOptions = Options{
	EnableHighAccuracy: false,
	Timeout:            15 * time.Second,
	MaximumAge:         60 * time.Second,
}

type Position struct {
	Coords    models.Coordinates
	Accuracy  float64
	Timestamp time.Time
}

// Provider acquires the current device position.
type Provider interface {
	CurrentPosition(ctx context.Context, opts Options) (Position, error)
}

// Func adapts a plain function to a Provider.
type Func func(ctx context.Context, opts Options) (Position, error)

func (f Func) CurrentPosition(ctx context.Context, opts Options) (Position, error) {
	return f(ctx, opts)
}

type Code int

const (
	Other Code = iota
	PermissionDenied
	PositionUnavailable
	Timeout
)

func (c Code) String() string {
	switch c {
	case PermissionDenied:
		return "permission-denied"
	case PositionUnavailable:
		return "position-unavailable"
	case Timeout:
		return "timeout"
	default:
		return "other"
	}
}

// Error is the failure result of a position request.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("position %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("position %s", e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf classifies err. Deadline errors count as Timeout; anything that is
// not an *Error is Other.
func CodeOf(err error) Code {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	return Other
}

// Acquire requests a position from p, bounding the wait by opts.Timeout.
// Every failure comes back as an *Error.
func Acquire(ctx context.Context, p Provider, opts Options) (Position, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	type result struct {
		pos Position
		err error
	}
	done := make(chan result, 1)
	go func() {
		pos, err := p.CurrentPosition(ctx, opts)
		done <- result{pos, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return Position{}, &Error{Code: CodeOf(res.err), Err: res.err}
		}
		return res.pos, nil
	case <-ctx.Done():
		return Position{}, &Error{Code: CodeOf(ctx.Err()), Err: ctx.Err()}
	}
}
