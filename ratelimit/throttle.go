package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultGlobalRPS     = 50
	DefaultMaxRetries    = 5
	DefaultBackoffStep   = 250 * time.Millisecond
	DefaultServerBackoff = 500 * time.Millisecond
	DefaultGrace         = time.Minute

	maxServerBackoff = 30 * time.Second
)

// Operation performs one outbound call. It may be invoked again on retry.
type Operation func(ctx context.Context) (*http.Response, error)

// Options configures a Throttle. Zero values fall back to the defaults above.
type Options struct {
	// GlobalRPS caps requests per second across every bucket. Negative disables the cap.
	GlobalRPS     float64
	MaxRetries    int
	BackoffStep   time.Duration
	ServerBackoff time.Duration
	// Grace is how long an idle bucket is kept past its reset time.
	Grace  time.Duration
	Logger *slog.Logger
}

// Throttle mediates outbound Discord API calls against per-bucket and global budgets.
type Throttle struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	globalUntil time.Time

	limiter       *rate.Limiter
	maxRetries    int
	backoffStep   time.Duration
	serverBackoff time.Duration
	grace         time.Duration

	stats  Stats
	logger *slog.Logger
}

// New creates a Throttle.
func New(opts Options) *Throttle {
	if opts.GlobalRPS == 0 {
		opts.GlobalRPS = DefaultGlobalRPS
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.BackoffStep <= 0 {
		opts.BackoffStep = DefaultBackoffStep
	}
	if opts.ServerBackoff <= 0 {
		opts.ServerBackoff = DefaultServerBackoff
	}
	if opts.Grace <= 0 {
		opts.Grace = DefaultGrace
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	t := &Throttle{
		buckets:       make(map[string]*bucket),
		maxRetries:    opts.MaxRetries,
		backoffStep:   opts.BackoffStep,
		serverBackoff: opts.ServerBackoff,
		grace:         opts.Grace,
		logger:        opts.Logger.With("logger", "ratelimit"),
	}
	if opts.GlobalRPS > 0 {
		burst := int(opts.GlobalRPS)
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(opts.GlobalRPS), burst)
	}
	return t
}

// MaxRetries returns the retry ceiling.
func (t *Throttle) MaxRetries() int { return t.maxRetries }

// Execute runs op once both the global budget and the (route, resourceKey)
// bucket have capacity, retrying on 429 and 502/503/504 up to the retry ceiling.
// Any other response is returned to the caller as is.
func (t *Throttle) Execute(ctx context.Context, route, resourceKey string, op Operation) (*http.Response, error) {
	t.stats.call()

	b := t.ref(route, resourceKey)
	defer t.unref(b)

	for attempt := 1; ; attempt++ {
		resp, err := t.attempt(ctx, b, op)
		if err != nil {
			t.stats.fail()
			return nil, err
		}

		var wait time.Duration
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			t.stats.throttle()
			delay, global := parseTooManyRequests(resp)
			t.lockAfter429(b, delay, global)
			wait = delay + time.Duration(attempt)*t.backoffStep
			t.logger.Warn("rate limited",
				"route", route,
				"major", resourceKey,
				"retry_after", delay,
				"global", global,
				"attempt", attempt,
			)
		case isTransient(resp.StatusCode):
			wait = t.serverDelay(attempt)
			t.logger.Warn("transient server error",
				"route", route,
				"major", resourceKey,
				"status", resp.StatusCode,
				"attempt", attempt,
			)
		default:
			return resp, nil
		}

		drain(resp)
		if attempt > t.maxRetries {
			t.stats.fail()
			return nil, &RetryError{
				Route:      route,
				Major:      resourceKey,
				Attempts:   attempt,
				LastStatus: resp.StatusCode,
			}
		}

		t.stats.retry()
		if err := sleep(ctx, wait); err != nil {
			t.stats.fail()
			return nil, err
		}
	}
}

// attempt waits for capacity, holds the bucket slot and performs one call.
func (t *Throttle) attempt(ctx context.Context, b *bucket, op Operation) (*http.Response, error) {
	if err := t.waitGlobalLock(ctx); err != nil {
		return nil, err
	}
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if err := b.acquire(ctx); err != nil {
		return nil, err
	}
	defer b.releaseSlot()

	if err := t.waitBucket(ctx, b); err != nil {
		return nil, err
	}
	// A global lock may have been engaged while this call queued on the bucket.
	if err := t.waitGlobalLock(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := op(ctx)
	t.stats.observe(time.Since(start))
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	b.update(resp.Header, time.Now())
	b.lastUsed = time.Now()
	t.mu.Unlock()

	return resp, nil
}

// waitGlobalLock blocks while a global 429 lock is engaged.
func (t *Throttle) waitGlobalLock(ctx context.Context) error {
	for {
		t.mu.Lock()
		wait := time.Until(t.globalUntil)
		t.mu.Unlock()
		if wait <= 0 {
			return nil
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// waitBucket blocks until the bucket has a request left, then spends it.
func (t *Throttle) waitBucket(ctx context.Context, b *bucket) error {
	for {
		t.mu.Lock()
		wait := b.waitFor(time.Now())
		if wait <= 0 {
			if b.known && b.remaining > 0 {
				b.remaining--
			}
			t.mu.Unlock()
			return nil
		}
		t.mu.Unlock()

		t.logger.Debug("bucket exhausted, waiting", "route", b.route, "major", b.major, "wait", wait)
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func (t *Throttle) lockAfter429(b *bucket, delay time.Duration, global bool) {
	until := time.Now().Add(delay)

	t.mu.Lock()
	defer t.mu.Unlock()

	if global {
		if until.After(t.globalUntil) {
			t.globalUntil = until
		}
		return
	}
	if until.After(b.lockedUntil) {
		b.lockedUntil = until
	}
}

func (t *Throttle) serverDelay(attempt int) time.Duration {
	d := t.serverBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxServerBackoff {
			return maxServerBackoff
		}
	}
	return d
}

func (t *Throttle) ref(route, major string) *bucket {
	key := route + "|" + major

	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.buckets[key]
	if !ok {
		b = newBucket(key, route, major)
		t.buckets[key] = b
	}
	b.refs++
	b.lastUsed = time.Now()
	return b
}

func (t *Throttle) unref(b *bucket) {
	t.mu.Lock()
	b.refs--
	t.mu.Unlock()
}

// Sweep evicts buckets that have been idle past their reset time plus the grace
// window. Locked or referenced buckets are kept. It returns the number evicted.
func (t *Throttle) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	evicted := 0
	for key, b := range t.buckets {
		if b.refs > 0 || b.state(now) == BucketLocked {
			continue
		}
		idleSince := b.lastUsed
		if b.resetAt.After(idleSince) {
			idleSince = b.resetAt
		}
		if b.lockedUntil.After(idleSince) {
			idleSince = b.lockedUntil
		}
		if now.Sub(idleSince) > t.grace {
			delete(t.buckets, key)
			evicted++
		}
	}
	return evicted
}

// BucketInfo describes one tracked bucket.
type BucketInfo struct {
	Route     string
	Major     string
	Hash      string
	State     BucketState
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Bucket reports the current view of a bucket, if it is tracked.
func (t *Throttle) Bucket(route, major string) (BucketInfo, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.buckets[route+"|"+major]
	if !ok {
		return BucketInfo{}, false
	}
	return BucketInfo{
		Route:     b.route,
		Major:     b.major,
		Hash:      b.hash,
		State:     b.state(time.Now()),
		Limit:     b.limit,
		Remaining: b.remaining,
		ResetAt:   b.resetAt,
	}, true
}

// Snapshot returns the counters plus the current bucket table size.
func (t *Throttle) Snapshot() Snapshot {
	snap := t.stats.snapshot()
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	snap.Buckets = len(t.buckets)
	for _, b := range t.buckets {
		if b.state(now) == BucketLocked {
			snap.LockedBuckets++
		}
	}
	if t.globalUntil.After(now) {
		snap.GlobalUntil = t.globalUntil
	}
	return snap
}

func isTransient(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
