package middleware

import (
	"net/http"
	"sync"
	"time"

	"sprockets/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// windowEntry tracks request counts per IP within a fixed window.
type windowEntry struct {
	count     int
	windowEnd time.Time
}

// windowLimiter allows limit requests per IP per window.
type windowLimiter struct {
	name   string
	limit  int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*windowEntry
}

func newWindowLimiter(name string, limit int, window time.Duration) *windowLimiter {
	l := &windowLimiter{name: name, limit: limit, window: window, entries: make(map[string]*windowEntry)}
	registryMu.Lock()
	registry[name] = l
	registryMu.Unlock()
	return l
}

// allow counts one request from ip and reports whether it is within the limit,
// together with the end of the current window.
func (l *windowLimiter) allow(ip string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[ip]
	if !ok {
		entry = &windowEntry{}
		l.entries[ip] = entry
	}
	if now.After(entry.windowEnd) {
		entry.count = 0
		entry.windowEnd = now.Add(l.window)
	}
	entry.count++
	return entry.count <= l.limit, entry.windowEnd
}

func (l *windowLimiter) purge(now time.Time) (purged, remaining int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, entry := range l.entries {
		if now.After(entry.windowEnd) {
			delete(l.entries, ip)
			purged++
		}
	}
	return purged, len(l.entries)
}

func (l *windowLimiter) handler(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", windowEnd.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// ── Login rate limiter ────────────────────────────────────────────────────────

// LoginRateLimiter limits login attempts to perMinute per IP.
func LoginRateLimiter(perMinute int) gin.HandlerFunc {
	return newWindowLimiter("login", perMinute, time.Minute).
		handler("Too many login attempts. Try again in a minute.")
}

// ── General API rate limiter ──────────────────────────────────────────────────

// RateLimiter returns a general-purpose fixed-window rate limiter.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newWindowLimiter("api", limit, window).
		handler("Too many requests. Try again shortly.")
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Periodically removes expired entries from every limiter so IPs that never
// return do not accumulate.

const purgeInterval = 5 * time.Minute

// registry holds the live limiter per name. Building a limiter again under
// the same name replaces the old one, so rebuilt routers do not pile up
// limiters the purge loop keeps alive.
var (
	registry   = make(map[string]*windowLimiter)
	registryMu sync.Mutex
)

func init() {
	go purgeExpiredEntries()
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		registryMu.Lock()
		limiters := make([]*windowLimiter, 0, len(registry))
		for _, l := range registry {
			limiters = append(limiters, l)
		}
		registryMu.Unlock()

		for _, l := range limiters {
			if purged, remaining := l.purge(now); purged > 0 {
				log.Debug().
					Str("limiter", l.name).
					Int("entries_purged", purged).
					Int("entries_remaining", remaining).
					Msg("rate limiter entries purged")
			}
		}
	}
}
