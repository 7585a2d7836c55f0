package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Crowley723/site-monitor/alert"
	"github.com/Crowley723/site-monitor/auth"
	"github.com/Crowley723/site-monitor/config"
	"github.com/Crowley723/site-monitor/monitor"
	"github.com/Crowley723/site-monitor/providers"
	"github.com/go-chi/chi/v5"
)

func handleHealthGET(ctx *providers.AppContext) {
	ctx.WriteJSON(http.StatusOK, HealthResponse{Status: "ok", Sites: len(ctx.Monitor.Sites())})
}

func handleSitesGET(ctx *providers.AppContext) {
	ctx.WriteJSON(http.StatusOK, newSiteResponses(ctx.Monitor.Sites()))
}

func handleSiteGET(ctx *providers.AppContext) {
	id, ok := siteID(ctx)
	if !ok {
		return
	}

	site, found := ctx.Monitor.Site(id)
	if !found {
		ctx.SetJSONError(http.StatusNotFound, "Site not found")
		return
	}

	ctx.WriteJSON(http.StatusOK, newSiteResponse(site))
}

func handleSitePOST(ctx *providers.AppContext) {
	var req CreateSiteRequest
	if err := ctx.ReadJSON(&req); err != nil {
		ctx.SetJSONError(http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.URL = strings.TrimSpace(req.URL)

	if req.Name == "" {
		ctx.SetJSONError(http.StatusBadRequest, "Site name is required")
		return
	}

	if !config.IsPrintableName(req.Name) {
		ctx.SetJSONError(http.StatusBadRequest, "Site name must not contain control characters")
		return
	}

	if !config.IsAbsoluteURL(req.URL) {
		ctx.SetJSONError(http.StatusBadRequest, "Site URL must be an absolute URL")
		return
	}

	if req.CheckIntervalMinutes < 0 {
		ctx.SetJSONError(http.StatusBadRequest, "Check interval must not be negative")
		return
	}

	if req.CheckIntervalMinutes > config.MaxCheckInterval.Minutes() {
		ctx.SetJSONError(http.StatusBadRequest, fmt.Sprintf("Check interval must not exceed %g minutes", config.MaxCheckInterval.Minutes()))
		return
	}

	interval := ctx.Config.Monitor.CheckInterval("")
	if req.CheckIntervalMinutes > 0 {
		interval = time.Duration(req.CheckIntervalMinutes * float64(time.Minute))
	}

	site := ctx.Monitor.AddSite(req.Name, req.URL, interval)

	ctx.Logger.Info("site created via api", "site_id", site.ID, "site", site.Name, "by", ctx.Claims.Subject)
	ctx.WriteJSON(http.StatusCreated, newSiteResponse(site))
}

// handleSiteDELETE is idempotent: removing an unknown site reports
// removed=false rather than an error.
func handleSiteDELETE(ctx *providers.AppContext) {
	id, ok := siteID(ctx)
	if !ok {
		return
	}

	removed := ctx.Monitor.RemoveSite(id)
	ctx.WriteJSON(http.StatusOK, RemoveSiteResponse{ID: id, Removed: removed})
}

func handleSiteCheckPOST(ctx *providers.AppContext) {
	id, ok := siteID(ctx)
	if !ok {
		return
	}

	switch ctx.Monitor.CheckNow(id) {
	case monitor.RunNotFound:
		ctx.SetJSONError(http.StatusNotFound, "Site not found")
	case monitor.RunMerged:
		ctx.SetJSONStatus(http.StatusAccepted, "check already running")
	default:
		ctx.SetJSONStatus(http.StatusAccepted, "check scheduled")
	}
}

func handleSiteCertificateGET(ctx *providers.AppContext) {
	id, ok := siteID(ctx)
	if !ok {
		return
	}

	site, found := ctx.Monitor.Site(id)
	if !found {
		ctx.SetJSONError(http.StatusNotFound, "Site not found")
		return
	}

	info, err := ctx.Certs.Inspect(ctx, site.URL)
	if err != nil {
		ctx.Logger.Warn("certificate inspection failed", "site_id", site.ID, "url", site.URL, "err", err)
		ctx.SetJSONError(http.StatusBadGateway, "Could not retrieve certificate")
		return
	}

	ctx.WriteJSON(http.StatusOK, info)
}

func handleEmailSettingsGET(ctx *providers.AppContext) {
	ctx.WriteJSON(http.StatusOK, ctx.Notifier.EmailSettings())
}

func handleEmailSettingsPUT(ctx *providers.AppContext) {
	var update alert.EmailSettingsUpdate
	if err := ctx.ReadJSON(&update); err != nil {
		ctx.SetJSONError(http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := ctx.Notifier.UpdateEmailSettings(update)
	if err != nil {
		if errors.Is(err, alert.ErrInvalidSettings) {
			ctx.SetJSONError(http.StatusBadRequest, err.Error())
			return
		}
		ctx.Logger.Error("failed to update email settings", "err", err)
		ctx.SetJSONError(http.StatusInternalServerError, "Internal server error")
		return
	}

	ctx.WriteJSON(http.StatusOK, settings)
}

func handleLoginPOST(ctx *providers.AppContext) {
	if ctx.Issuer == nil {
		ctx.SetJSONError(http.StatusServiceUnavailable, "Authentication is not configured")
		return
	}

	var req LoginRequest
	if err := ctx.ReadJSON(&req); err != nil {
		ctx.SetJSONError(http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := ctx.Credentials.Check(req.Username, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			ctx.Logger.Warn("failed login", "username", req.Username, "remote", ctx.Request.RemoteAddr)
			ctx.SetJSONError(http.StatusUnauthorized, "Invalid username or password")
			return
		}
		ctx.SetJSONError(http.StatusInternalServerError, "Internal server error")
		return
	}

	token, expiresAt, err := ctx.Issuer.Issue(req.Username)
	if err != nil {
		ctx.Logger.Error("failed to issue token", "err", err)
		ctx.SetJSONError(http.StatusInternalServerError, "Internal server error")
		return
	}

	ctx.WriteJSON(http.StatusOK, LoginResponse{Token: token, ExpiresAt: expiresAt})
}

func handleJWKSGET(ctx *providers.AppContext) {
	if ctx.Issuer == nil {
		ctx.SetJSONError(http.StatusServiceUnavailable, "Authentication is not configured")
		return
	}

	ctx.Response.Header().Set("Cache-Control", "public, max-age=3600")
	ctx.WriteJSON(http.StatusOK, ctx.Issuer.JWKS())
}

// siteID parses the {id} URL parameter, writing a 400 when it is malformed.
func siteID(ctx *providers.AppContext) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(ctx.Request, "id"))
	if err != nil || id <= 0 {
		ctx.SetJSONError(http.StatusBadRequest, "Invalid site id")
		return 0, false
	}
	return id, true
}
