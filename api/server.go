package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Crowley723/site-monitor/providers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(appCtx *providers.AppContext, hub *Hub) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(appCtx))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCtx.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(providers.AppContextMiddleware(appCtx))

	r.Get("/health", providers.Wrap(handleHealthGET))
	r.Get("/.well-known/jwks.json", providers.Wrap(handleJWKSGET))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", providers.Wrap(handleLoginPOST))

		r.Get("/sites", providers.Wrap(handleSitesGET))
		r.Post("/sites", RequireToken(handleSitePOST))
		r.Route("/sites/{id}", func(r chi.Router) {
			r.Get("/", providers.Wrap(handleSiteGET))
			r.Delete("/", RequireToken(handleSiteDELETE))
			r.Post("/check", RequireToken(handleSiteCheckPOST))
			r.Get("/certificate", providers.Wrap(handleSiteCertificateGET))
		})

		r.Get("/settings/email", providers.Wrap(handleEmailSettingsGET))
		r.Put("/settings/email", RequireToken(handleEmailSettingsPUT))

		if hub != nil {
			r.Get("/ws", hub.HandleConnect)
		}
	})

	return r
}

// requestLogger logs each request through the app logger.
func requestLogger(appCtx *providers.AppContext) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			appCtx.Logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}

// StartServer serves the API until appCtx is cancelled, then shuts down
// gracefully within server.shutdown_timeout.
func StartServer(appCtx *providers.AppContext, hub *Hub) error {
	address := fmt.Sprintf(":%d", appCtx.Config.Server.Port)

	server := &http.Server{
		Addr:              address,
		Handler:           NewRouter(appCtx, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	appCtx.Logger.Info("Listening on address", "addr", address)

	done := make(chan error, 1)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			done <- err
			return
		}
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-appCtx.Done():
	}

	appCtx.Logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appCtx.Config.Server.ShutdownTimeoutDuration())
	defer cancel()

	if hub != nil {
		hub.Close()
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		appCtx.Logger.Error("graceful shutdown failed", "err", err)
		return err
	}

	return <-done
}
