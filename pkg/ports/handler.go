package ports

import (
	"context"
	"time"
)

// Handler is the pluggable session-storage interface driven by a web session framework.
type Handler interface {
	Open(ctx context.Context, savePath, name string) error
	Close(ctx context.Context) error
	Read(ctx context.Context, sessionID string) (string, error)
	Write(ctx context.Context, sessionID, data string) error
	Destroy(ctx context.Context, sessionID string) error
	GC(ctx context.Context, maxAge time.Duration) (int64, error)
}

// Clock returns the current Unix time in seconds.
type Clock func() int64

// RandomSource returns a uniform value in (0, 1].
type RandomSource func() float64

// SystemClock reads the wall clock.
func SystemClock() int64 {
	return time.Now().Unix()
}

// FixedClock returns a Clock that always reports t.
func FixedClock(t int64) Clock {
	return func() int64 { return t }
}
