package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Crowley723/site-monitor/alert"
	"github.com/Crowley723/site-monitor/api"
	"github.com/Crowley723/site-monitor/probe"
)

// Client talks to a running site monitor over its HTTP API.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) Health() (*api.HealthResponse, error) {
	var h api.HealthResponse
	if err := c.do(http.MethodGet, "/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) ListSites() ([]api.SiteResponse, error) {
	var list []api.SiteResponse
	if err := c.do(http.MethodGet, "/api/sites", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetSite(id int) (*api.SiteResponse, error) {
	var site api.SiteResponse
	if err := c.do(http.MethodGet, sitePath(id, ""), nil, &site); err != nil {
		return nil, err
	}
	return &site, nil
}

func (c *Client) AddSite(name, url string, intervalMinutes float64) (*api.SiteResponse, error) {
	req := api.CreateSiteRequest{Name: name, URL: url, CheckIntervalMinutes: intervalMinutes}
	var site api.SiteResponse
	if err := c.do(http.MethodPost, "/api/sites", req, &site); err != nil {
		return nil, err
	}
	return &site, nil
}

// RemoveSite reports whether the site existed.
func (c *Client) RemoveSite(id int) (bool, error) {
	var result api.RemoveSiteResponse
	if err := c.do(http.MethodDelete, sitePath(id, ""), nil, &result); err != nil {
		return false, err
	}
	return result.Removed, nil
}

// CheckSite requests an immediate check and returns the server's status
// message ("check scheduled" or "check already running").
func (c *Client) CheckSite(id int) (string, error) {
	var resp map[string]string
	if err := c.do(http.MethodPost, sitePath(id, "/check"), nil, &resp); err != nil {
		return "", err
	}
	return resp["status"], nil
}

func (c *Client) Certificate(id int) (*probe.CertificateInfo, error) {
	var info probe.CertificateInfo
	if err := c.do(http.MethodGet, sitePath(id, "/certificate"), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) EmailSettings() (*alert.EmailSettings, error) {
	var settings alert.EmailSettings
	if err := c.do(http.MethodGet, "/api/settings/email", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (c *Client) UpdateEmailSettings(update alert.EmailSettingsUpdate) (*alert.EmailSettings, error) {
	var settings alert.EmailSettings
	if err := c.do(http.MethodPut, "/api/settings/email", update, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Login exchanges admin credentials for a token and keeps it for later calls.
func (c *Client) Login(username, password string) (*api.LoginResponse, error) {
	var login api.LoginResponse
	if err := c.do(http.MethodPost, "/api/login", api.LoginRequest{Username: username, Password: password}, &login); err != nil {
		return nil, err
	}
	c.Token = login.Token
	return &login, nil
}

func (c *Client) do(method, path string, body, v any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// decodeError prefers the API's {"error": "..."} message over the raw body.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)

	var apiErr struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
}

func sitePath(id int, suffix string) string {
	return "/api/sites/" + strconv.Itoa(id) + suffix
}
