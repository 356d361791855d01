package ratelimit

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Discord rate-limit response headers.
const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderResetAfter = "X-RateLimit-Reset-After"
	HeaderBucket     = "X-RateLimit-Bucket"
	HeaderGlobal     = "X-RateLimit-Global"
	HeaderScope      = "X-RateLimit-Scope"
	HeaderRetryAfter = "Retry-After"
)

// maxHeaderDelay bounds any delay Discord advertises.
const maxHeaderDelay = time.Hour

// BucketState is the lifecycle position of a bucket.
type BucketState int

const (
	BucketUnknown BucketState = iota
	BucketTracked
	BucketLocked
)

func (s BucketState) String() string {
	switch s {
	case BucketTracked:
		return "tracked"
	case BucketLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// bucket is one (route, major) accounting unit. Every field except slot is
// guarded by Throttle.mu.
type bucket struct {
	key   string
	route string
	major string

	// slot is held for the lifetime of one outbound call.
	slot chan struct{}

	hash        string
	known       bool
	limit       int
	remaining   int
	resetAt     time.Time
	lockedUntil time.Time
	lastUsed    time.Time
	refs        int
}

func newBucket(key, route, major string) *bucket {
	return &bucket{
		key:   key,
		route: route,
		major: major,
		slot:  make(chan struct{}, 1),
	}
}

func (b *bucket) acquire(ctx context.Context) error {
	select {
	case b.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *bucket) releaseSlot() {
	<-b.slot
}

// state reports the bucket's position at now.
func (b *bucket) state(now time.Time) BucketState {
	if now.Before(b.lockedUntil) {
		return BucketLocked
	}
	if !b.known {
		return BucketUnknown
	}
	if b.remaining <= 0 && now.Before(b.resetAt) {
		return BucketLocked
	}
	return BucketTracked
}

// waitFor returns how long a call must wait before it may run on this bucket.
// An expired window is refilled to the advertised limit.
func (b *bucket) waitFor(now time.Time) time.Duration {
	if now.Before(b.lockedUntil) {
		return b.lockedUntil.Sub(now)
	}
	if !b.known {
		return 0
	}
	if b.remaining > 0 {
		return 0
	}
	if now.Before(b.resetAt) {
		return b.resetAt.Sub(now)
	}
	b.remaining = b.limit
	return 0
}

// update applies response headers. Missing headers leave the local estimate alone.
func (b *bucket) update(h http.Header, now time.Time) {
	if h == nil {
		return
	}
	if v := h.Get(HeaderBucket); v != "" {
		b.hash = v
	}
	if v, ok := parseInt(h.Get(HeaderLimit)); ok {
		b.limit = v
		b.known = true
	}
	if v, ok := parseInt(h.Get(HeaderRemaining)); ok {
		b.remaining = v
		b.known = true
	}
	if d, ok := parseSeconds(h.Get(HeaderResetAfter)); ok {
		b.resetAt = now.Add(d)
	}
}

// tooManyRequests is the JSON body Discord returns with a 429.
type tooManyRequests struct {
	Message    string  `json:"message"`
	RetryAfter float64 `json:"retry_after"`
	Global     bool    `json:"global"`
}

// parseTooManyRequests extracts the retry delay and global flag from a 429.
// The body is read but not closed.
func parseTooManyRequests(resp *http.Response) (time.Duration, bool) {
	var body tooManyRequests
	if resp.Body != nil {
		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if err == nil && len(data) > 0 {
			_ = json.Unmarshal(data, &body)
		}
	}

	global := body.Global || strings.EqualFold(resp.Header.Get(HeaderGlobal), "true")

	var delay time.Duration
	if body.RetryAfter > 0 {
		delay = secondsToDuration(body.RetryAfter)
	}
	if d, ok := parseSeconds(resp.Header.Get(HeaderRetryAfter)); ok && d > delay {
		delay = d
	}
	if delay == 0 {
		if d, ok := parseSeconds(resp.Header.Get(HeaderResetAfter)); ok {
			delay = d
		}
	}
	return delay, global
}

func parseInt(v string) (int, bool) {
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseSeconds(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return secondsToDuration(f), true
}

// secondsToDuration converts a header or body delay, capped at maxHeaderDelay.
func secondsToDuration(f float64) time.Duration {
	if f*float64(time.Second) >= float64(maxHeaderDelay) {
		return maxHeaderDelay
	}
	return time.Duration(f * float64(time.Second))
}
