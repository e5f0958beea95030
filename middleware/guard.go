package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/taskcore/taskcore"
)

type identityContextKey struct{}

// IdentityFromContext returns the authenticated user injected by
// [Guard], if any.
func IdentityFromContext(ctx context.Context) (*taskcore.User, bool) {
	user, ok := ctx.Value(identityContextKey{}).(*taskcore.User)
	return user, ok
}

// Guard returns middleware that requires a valid bearer access token on
// every wrapped request. On success the resolved identity is placed in
// the request context; every failure is a plain 401.
func Guard(engine *taskcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := engine.Authenticate(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
