package server

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"net/http"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// healthPath is exempt from authentication so liveness checks never need credentials.
const healthPath = "/api/health"

func newRequestID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("%x", b)
}

// RequestIDMiddleware propagates the client's X-Request-ID, minting one when
// the header is absent, and stores it on the context for handler logging.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = newRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request ID stored by RequestIDMiddleware,
// or "" when none is set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// APIKeyMiddleware rejects requests whose X-API-Key header does not match
// apiKey. An empty apiKey disables authentication entirely. Only the exact
// health route is exempt; lookalike paths still authenticate.
func APIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if apiKey == "" {
			return next
		}
		want := []byte(apiKey)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			exempt := r.Method == http.MethodGet && r.URL.Path == healthPath
			if !exempt {
				got := []byte(r.Header.Get("X-API-Key"))
				if subtle.ConstantTimeCompare(got, want) != 1 {
					w.WriteHeader(http.StatusUnauthorized)
					fmt.Fprintln(w, `{"error":"unauthorized"}`)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MaxBodyMiddleware caps request bodies at maxBytes.
func MaxBodyMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
