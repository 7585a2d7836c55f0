package api

import (
	"time"

	"github.com/Crowley723/site-monitor/sites"
)

// SiteResponse adds the operator-facing cadence to the site record.
type SiteResponse struct {
	sites.Site
	CheckIntervalMinutes float64 `json:"checkInterval"`
}

func newSiteResponse(site sites.Site) SiteResponse {
	return SiteResponse{Site: site, CheckIntervalMinutes: site.CheckIntervalMinutes()}
}

func newSiteResponses(list []sites.Site) []SiteResponse {
	out := make([]SiteResponse, 0, len(list))
	for _, site := range list {
		out = append(out, newSiteResponse(site))
	}
	return out
}

type CreateSiteRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	// CheckIntervalMinutes is optional; zero uses the configured default.
	CheckIntervalMinutes float64 `json:"checkInterval,omitempty"`
}

type RemoveSiteResponse struct {
	ID      int  `json:"id"`
	Removed bool `json:"removed"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Sites  int    `json:"sites"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
