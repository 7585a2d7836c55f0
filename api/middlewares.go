package api

import (
	"net/http"
	"strings"

	"github.com/Crowley723/site-monitor/auth"
	"github.com/Crowley723/site-monitor/providers"
)

// RequireToken wraps a handler requiring a valid admin bearer token
func RequireToken(handler providers.AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appCtx := providers.GetAppContext(r)
		if appCtx == nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		if appCtx.Issuer == nil {
			appCtx.SetJSONError(http.StatusServiceUnavailable, "Authentication is not configured")
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			appCtx.SetJSONError(http.StatusUnauthorized, "Bearer token required")
			return
		}

		claims, err := appCtx.Issuer.Validate(token)
		if err != nil {
			appCtx.Logger.Debug("rejected token", "path", r.URL.Path, "err", err)
			if auth.IsExpired(err) {
				appCtx.SetJSONError(http.StatusUnauthorized, "Token expired")
				return
			}
			appCtx.SetJSONError(http.StatusUnauthorized, "Invalid token")
			return
		}

		appCtx.Claims = claims
		handler(appCtx)
	}
}
