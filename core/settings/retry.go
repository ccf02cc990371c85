package settings

import (
	"context"
	"net/url"
	"time"
)

type retrying struct {
	next     Prober
	attempts int
	backoff  time.Duration
}

// Retry wraps p so that transport and status failures are retried up to attempts times in total,
// sleeping backoff between tries. Decode and validation failures are returned immediately.
// attempts below 2 returns p unchanged.
func Retry(p Prober, attempts int, backoff time.Duration) Prober {
	if attempts < 2 {
		return p
	}
	return &retrying{next: p, attempts: attempts, backoff: backoff}
}

func (r *retrying) Fetch(ctx context.Context, base *url.URL) (*Settings, error) {
	var lastErr error
	for i := 0; i < r.attempts; i++ {
		if i > 0 {
			timer := time.NewTimer(r.backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, lastErr
			case <-timer.C:
			}
		}

		s, err := r.next.Fetch(ctx, base)
		if err == nil {
			return s, nil
		}
		lastErr = err
		if !IsKind(err, KindTransport) && !IsKind(err, KindStatus) {
			return nil, err
		}
	}
	return nil, lastErr
}
