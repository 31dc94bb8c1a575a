package web

// limiter.go holds the two request limiters.
//
// rateLimiter caps requests per client address in fixed windows. Its cleanup
// goroutine runs until Stop is called. exportLimiter is a semaphore that
// bounds concurrent CSV exports; callers wait up to maxWait for a slot.

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/JonMunkholm/worlddash/internal/web/middleware"
)

// ErrRateLimited is returned when a client has used its window.
var ErrRateLimited = errors.New("rate limit exceeded")

// ErrExportBusy is returned when no export slot frees up in time.
var ErrExportBusy = errors.New("export rate limit: too many concurrent exports")

type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration
	now      func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter allows rate requests per window for each client.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go rl.cleanup(window)
	return rl
}

func (rl *rateLimiter) cleanup(every time.Duration) {
	defer close(rl.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// sweep drops visitors idle for two windows.
func (rl *rateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastReset) > rl.window*2 {
			delete(rl.visitors, ip)
		}
	}
}

// Stop ends the cleanup goroutine and waits for it. Safe to call twice.
func (rl *rateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
	<-rl.done
}

// allow consumes a token for ip.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[ip]
	if !ok || now.Sub(v.lastReset) > rl.window {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: now}
		return true
	}
	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	retry := strconv.Itoa(int(s.limiter.window.Seconds()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if addr, ok := middleware.ClientAddr(r.RemoteAddr); ok {
			key = addr.String()
		}
		if !s.limiter.allow(key) {
			w.Header().Set("Retry-After", retry)
			s.respondError(w, r, ErrRateLimited, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type exportLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
}

func newExportLimiter(concurrent int, maxWait time.Duration) *exportLimiter {
	if concurrent <= 0 {
		concurrent = 1
	}
	return &exportLimiter{slots: make(chan struct{}, concurrent), maxWait: maxWait}
}

// acquire waits for a slot. The caller must call release after a nil
// return.
func (l *exportLimiter) acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		return nil
	default:
	}
	if l.maxWait <= 0 {
		return ErrExportBusy
	}

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()
	select {
	case l.slots <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrExportBusy
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *exportLimiter) release() { <-l.slots }

// available returns the number of free slots.
func (l *exportLimiter) available() int { return cap(l.slots) - len(l.slots) }
