package position

import (
	"context"
	"errors"
	"sync"
	"time"

	"statefinder/internal/models"
)

var ErrDenied = errors.New("user denied geolocation")

// Static always reports the same coordinates.
type Static struct {
	Coords   models.Coordinates
	Accuracy float64
	Now      func() time.Time
}

func (s Static) CurrentPosition(ctx context.Context, _ Options) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return Position{Coords: s.Coords, Accuracy: s.Accuracy, Timestamp: now()}, nil
}

// Denied models a user refusing the permission prompt.
type Denied struct{}

func (Denied) CurrentPosition(context.Context, Options) (Position, error) {
	return Position{}, &Error{Code: PermissionDenied, Err: ErrDenied}
}

// Unavailable models a device that cannot produce a fix.
type Unavailable struct{}

func (Unavailable) CurrentPosition(context.Context, Options) (Position, error) {
	return Position{}, &Error{Code: PositionUnavailable}
}

// Cached reuses the last position while it is younger than Options.MaximumAge.
type Cached struct {
	Provider Provider
	Now      func() time.Time

	mu   sync.Mutex
	last *Position
}

func NewCached(p Provider) *Cached {
	return &Cached{Provider: p, Now: time.Now}
}

func (c *Cached) CurrentPosition(ctx context.Context, opts Options) (Position, error) {
	c.mu.Lock()
	if c.last != nil && opts.MaximumAge > 0 && c.now().Sub(c.last.Timestamp) <= opts.MaximumAge {
		pos := *c.last
		c.mu.Unlock()
		return pos, nil
	}
	c.mu.Unlock()

	pos, err := c.Provider.CurrentPosition(ctx, opts)
	if err != nil {
		return Position{}, err
	}
	if pos.Timestamp.IsZero() {
		pos.Timestamp = c.now()
	}

	c.mu.Lock()
	c.last = &pos
	c.mu.Unlock()
	return pos, nil
}

func (c *Cached) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
