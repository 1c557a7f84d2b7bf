package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/pratofeito/marmita-orders/internal/accounts"
	"github.com/pratofeito/marmita-orders/internal/apperr"
	log "github.com/sirupsen/logrus"
)

const HeaderSessionID = "X-Session-Id"

type ctxKey int

const (
	principalKey ctxKey = iota
	sessionKey
)

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.WithFields(log.Fields{
			"request_id":  middleware.GetReqID(r.Context()),
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("http request")
	})
}

// loadSession resolves the X-Session-Id header into a principal. Unknown or
// expired sessions are treated as anonymous.
func (s *Server) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderSessionID)
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}
		p, err := s.Sessions.Get(r.Context(), id)
		if errors.Is(err, apperr.ErrUnauthenticated) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), principalKey, p)
		ctx = context.WithValue(ctx, sessionKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := principalFrom(r.Context()); !ok {
			writeError(w, r, apperr.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requireCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, _ := principalFrom(r.Context()); !p.IsCustomer() {
			writeError(w, r, apperr.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func principalFrom(ctx context.Context) (accounts.Principal, bool) {
	p, ok := ctx.Value(principalKey).(accounts.Principal)
	return p, ok
}

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey).(string)
	return id
}
