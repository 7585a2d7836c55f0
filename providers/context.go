package providers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Crowley723/site-monitor/alert"
	"github.com/Crowley723/site-monitor/auth"
	"github.com/Crowley723/site-monitor/config"
	"github.com/Crowley723/site-monitor/monitor"
	"github.com/Crowley723/site-monitor/probe"
)

type AppContext struct {
	context.Context
	Config      *config.Config
	Logger      *slog.Logger
	Monitor     *monitor.Monitor
	Notifier    *alert.Notifier
	Issuer      *auth.Issuer
	Credentials auth.Credentials
	Certs       *probe.CertInspector
	Request     *http.Request
	Response    http.ResponseWriter

	// Claims is set by the token middleware for authenticated requests.
	Claims *auth.Claims
}

type contextKey string

const appContextKey contextKey = "appContext"

type AppHandler func(*AppContext)

// AppContextMiddleware injects a per-request copy of baseCtx into the request context.
func AppContextMiddleware(baseCtx *AppContext) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestCtx := &AppContext{
				Context:     r.Context(),
				Config:      baseCtx.Config,
				Logger:      baseCtx.Logger,
				Monitor:     baseCtx.Monitor,
				Notifier:    baseCtx.Notifier,
				Issuer:      baseCtx.Issuer,
				Credentials: baseCtx.Credentials,
				Certs:       baseCtx.Certs,
				Request:     r,
				Response:    w,
			}
			ctx := context.WithValue(r.Context(), appContextKey, requestCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Wrap converts an AppHandler to http.HandlerFunc
func Wrap(handler AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appCtx := GetAppContext(r)
		if appCtx == nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		handler(appCtx)
	}
}

func NewAppContext(ctx context.Context, cfg *config.Config, logger *slog.Logger) *AppContext {
	return &AppContext{
		Context: ctx,
		Config:  cfg,
		Logger:  logger,
		Credentials: auth.Credentials{
			Username:     cfg.Auth.Username,
			PasswordHash: cfg.Auth.PasswordHash,
		},
	}
}

// GetAppContext retrieves AppContext from request
func GetAppContext(r *http.Request) *AppContext {
	if ctx, ok := r.Context().Value(appContextKey).(*AppContext); ok {
		return ctx
	}
	return nil
}

func (ctx *AppContext) WriteJSON(status int, data interface{}) {
	ctx.Response.Header().Set("Content-Type", "application/json")
	ctx.Response.WriteHeader(status)
	if err := json.NewEncoder(ctx.Response).Encode(data); err != nil {
		ctx.Logger.Error("failed to encode json", "err", err)
	}
}

// ReadJSON decodes the request body into v, rejecting unknown fields.
func (ctx *AppContext) ReadJSON(v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(ctx.Response, ctx.Request.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (ctx *AppContext) SetJSONError(status int, message string) {
	ctx.WriteJSON(status, map[string]string{
		"error": message,
	})
}

func (ctx *AppContext) SetJSONStatus(status int, message string) {
	ctx.WriteJSON(status, map[string]string{
		"status": message,
	})
}

func (ctx *AppContext) NoContent() {
	ctx.Response.WriteHeader(http.StatusNoContent)
}
