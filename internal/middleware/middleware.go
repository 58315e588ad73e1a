package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gogofit/backend/internal/apperr"
	"github.com/gogofit/backend/internal/httputil"
	"github.com/gogofit/backend/internal/utils"
)

type SessionFetcher interface {
	FindSessionByToken(ctx context.Context, token string) (utils.SessionData, error)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	return token, token != ""
}

// SessionMiddleware resolves the bearer token into a caller. Requests
// without a live token are rejected with 401.
func SessionMiddleware(fetcher SessionFetcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httputil.WriteError(w, r, apperr.Unauthenticated("Unauthenticated."))
				return
			}

			session, err := fetcher.FindSessionByToken(r.Context(), token)
			if errors.Is(err, utils.ErrSessionExpired) {
				httputil.WriteError(w, r, apperr.Unauthenticated("Session expired"))
				return
			}
			if err != nil {
				httputil.WriteError(w, r, apperr.Unauthenticated("Unauthenticated."))
				return
			}

			ctx := utils.WithCaller(r.Context(), utils.Caller{UserID: session.UserID, TokenID: session.TokenID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CORS echoes the origin back when it is on the allow-list.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if _, ok := allowed[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods",
					"GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers",
					"Content-Type, Authorization, Accept-Language")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
