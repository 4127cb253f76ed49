package eventstream

import (
	"context"
	"time"
)

// Tick pushes mk(t) into s every interval until ctx ends or the stream is
// closed. A non-positive interval disables ticking.
func Tick[T any](ctx context.Context, s *Stream[T], interval time.Duration, mk func(time.Time) T) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !s.Push(mk(now)) {
				return
			}
		}
	}
}
