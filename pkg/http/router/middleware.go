package router

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// recoverPanic converts a panicking handler into a 500 response instead
// of crashing the whole server, the way the teacher wraps every request
// with a top-level recover.
func (api *API) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				api.log.Error("panic recovered", zap.Any("error", err), zap.ByteString("stack", debug.Stack()))
				writeError(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RealIP trusts X-Forwarded-For/X-Real-IP ahead of RemoteAddr so logs
// and rate limiting key on the client's actual address behind a proxy.
func RealIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := r.Header.Get("X-Real-IP"); ip != "" {
			r.RemoteAddr = ip
		} else if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
			r.RemoteAddr = ip
		}
		next.ServeHTTP(w, r)
	})
}

// Heartbeat answers path with a bare 200 OK without touching the rest
// of the chain, for load-balancer liveness checks.
func Heartbeat(path string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && r.URL.Path == "/"+path {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Logger records one structured line per request: method, path, status
// is not captured (httprouter doesn't expose it without a wrapping
// ResponseWriter), so this logs request shape and latency, matching the
// level of detail the teacher's own access log carries.
func Logger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote", r.RemoteAddr),
				zap.Duration("latency", time.Since(start)),
			)
		})
	}
}

// Labels tags the request context with a request ID header for log
// correlation across the API and websocket listeners.
func Labels(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", fmt.Sprintf("%d", time.Now().UnixNano()))
		next.ServeHTTP(w, r)
	})
}

// EnforceJSONHandler rejects POST requests whose declared Content-Type
// is something other than application/json, since every journeys.go
// endpoint that takes a body expects JSON; a POST with no Content-Type
// header is let through.
func EnforceJSONHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.Header.Get("Content-Type") != "" &&
			r.Header.Get("Content-Type") != "application/json" {
			writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limiterStore keys a token-bucket rate limiter per client address, the
// same per-IP shape golang.org/x/time/rate's own docs recommend.
type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

var limiters = &limiterStore{limiters: make(map[string]*rate.Limiter)}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Limit(10), 20)
		s.limiters[key] = l
	}
	return l
}

// Limit enforces a per-client request rate, applied only when the
// server is started with useRateLimit (spec.md has no rate-limiting
// requirement of its own; this guards the query endpoints the same way
// the teacher guards its routing endpoints).
func Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiters.get(r.RemoteAddr).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
