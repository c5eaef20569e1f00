package api

import (
	"net/http"
	"sync"
	"time"
)

// Throttle counts request bursts per (ip, url, device-title) tuple. The
// first request for a key opens a window with attempt 1; requests inside the
// window increment the counter and are rejected once it exceeds the ceiling;
// a gap longer than the window resets the counter to 1.
type Throttle struct {
	mu       sync.Mutex
	sessions map[string]*throttleSession
	window   time.Duration
	ceiling  int
	cleanup  time.Time
	now      func() time.Time
}

type throttleSession struct {
	attempts int
	issuedAt time.Time
}

func NewThrottle(window time.Duration, ceiling int) *Throttle {
	return &Throttle{
		sessions: make(map[string]*throttleSession),
		window:   window,
		ceiling:  ceiling,
		cleanup:  time.Now(),
		now:      time.Now,
	}
}

func (t *Throttle) Allow(ip, url, deviceTitle string) bool {
	key := ip + "|" + url + "|" + deviceTitle

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	if now.Sub(t.cleanup) > time.Minute {
		for k, s := range t.sessions {
			if now.Sub(s.issuedAt) > t.window {
				delete(t.sessions, k)
			}
		}
		t.cleanup = now
	}

	session, exists := t.sessions[key]
	if !exists {
		t.sessions[key] = &throttleSession{attempts: 1, issuedAt: now}
		return true
	}

	if now.Sub(session.issuedAt) > t.window {
		session.attempts = 1
		session.issuedAt = now
		return true
	}

	session.attempts++
	return session.attempts <= t.ceiling
}

// ThrottleMiddleware guards the abuse-prone endpoints (login, registration,
// confirmation, resend, recovery).
func ThrottleMiddleware(throttle *Throttle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !throttle.Allow(clientIP(r), r.URL.Path, r.UserAgent()) {
				tooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
