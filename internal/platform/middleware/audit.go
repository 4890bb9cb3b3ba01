package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mssola/useragent"

	"mobywatel/internal/audit"
	id "mobywatel/pkg/domain"
)

// Audit records every endpoint access in the audit log: method, path, status,
// the acting account when authenticated, and the caller's browser and OS.
// RequireAuth runs below this middleware, so the actor is read back through a
// holder planted in the context rather than from the outer request.
func Audit(recorder *audit.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			holder := &actorHolder{}
			r = r.WithContext(context.WithValue(r.Context(), contextKeyActor{}, holder))

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			entry := audit.Entry{
				Description: describeAccess(r, rec.status),
				Method:      r.Method,
				Path:        r.URL.Path,
				Status:      rec.status,
				UserAgent:   summarizeUserAgent(r.UserAgent()),
			}
			if holder.accountID != "" {
				if actor, err := id.ParseUserID(holder.accountID); err == nil {
					entry.ActorID = &actor
				}
			}
			recorder.Record(r.Context(), entry)
		})
	}
}

func describeAccess(r *http.Request, status int) string {
	return fmt.Sprintf("%s %s -> %d", r.Method, r.URL.Path, status)
}

// summarizeUserAgent reduces the raw User-Agent header to browser and OS.
func summarizeUserAgent(raw string) string {
	if raw == "" {
		return "unknown"
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return raw
	}
	return fmt.Sprintf("%s %s on %s", name, version, ua.OS())
}
