package middleware

import (
	"net/http"

	"github.com/mcoot/scorekeeper/internal/api/apierr"
)

// StoreStatus reports whether the backing store is reachable
type StoreStatus interface {
	StoreConnected() bool
}

// RequireStore answers 503 while the store is unreachable
func RequireStore(status StoreStatus) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !status.StoreConnected() {
				apierr.WriteError(w, apierr.NewStoreUnavailableError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
