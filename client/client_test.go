package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Crowley723/site-monitor/api"
	"github.com/Crowley723/site-monitor/sites"
)

func TestListSites(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sites" || r.Method != http.MethodGet {
			t.Errorf("Expected GET /api/sites, got %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode([]api.SiteResponse{
			{Site: sites.Site{ID: 1, Name: "X", Status: sites.StatusUp}, CheckIntervalMinutes: 5},
		})
	}))
	defer srv.Close()

	list, err := New(srv.URL+"/", "").ListSites()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(list) != 1 || list[0].Name != "X" || list[0].CheckIntervalMinutes != 5 {
		t.Errorf("Expected one site X, got %+v", list)
	}
}

func TestAddSiteSendsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Bearer token required"})
			return
		}

		var req api.CreateSiteRequest
		json.NewDecoder(r.Body).Decode(&req)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(api.SiteResponse{
			Site:                 sites.Site{ID: 3, Name: req.Name, URL: req.URL, Status: sites.StatusPending},
			CheckIntervalMinutes: req.CheckIntervalMinutes,
		})
	}))
	defer srv.Close()

	site, err := New(srv.URL, "secret").AddSite("X", "https://x.test", 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if site.ID != 3 || site.CheckIntervalMinutes != 2 {
		t.Errorf("Expected site 3 every 2 minutes, got %+v", site)
	}

	_, err = New(srv.URL, "").AddSite("X", "https://x.test", 0)
	if err == nil || !strings.Contains(err.Error(), "Bearer token required") {
		t.Errorf("Expected API error message, got %v", err)
	}
}

func TestCheckSiteReturnsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/sites/2/check" {
			t.Errorf("Expected POST /api/sites/2/check, got %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"status": "check already running"})
	}))
	defer srv.Close()

	status, err := New(srv.URL, "t").CheckSite(2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if status != "check already running" {
		t.Errorf("Expected check already running, got %q", status)
	}
}

func TestRemoveSite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/sites/4" {
			t.Errorf("Expected DELETE /api/sites/4, got %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(api.RemoveSiteResponse{ID: 4, Removed: false})
	}))
	defer srv.Close()

	removed, err := New(srv.URL, "t").RemoveSite(4)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if removed {
		t.Errorf("Expected removed=false")
	}
}

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.LoginResponse{Token: "issued"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	if _, err := c.Login("admin", "pw"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if c.Token != "issued" {
		t.Errorf("Expected token to be kept, got %q", c.Token)
	}
}

func TestErrorWithoutJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Health()
	if err == nil || err.Error() != "HTTP 500: boom" {
		t.Errorf("Expected raw body in error, got %v", err)
	}
}
