package alert

import (
	"context"
	"time"
)

type EventType string

const (
	EventSitesChanged EventType = "sites.changed"
	EventSiteDown     EventType = "site.down"
	EventEmailSent    EventType = "email.sent"
	EventEmailFailed  EventType = "email.failed"
)

// Event is what observers (the websocket hub, tests) receive. Only site and
// email events carry site details; sites.changed is a bare refresh signal.
type Event struct {
	ID      string    `json:"id"`
	Type    EventType `json:"type"`
	SiteID  int       `json:"siteId,omitempty"`
	Site    string    `json:"site,omitempty"`
	URL     string    `json:"url,omitempty"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

type EmailSettings struct {
	Enabled                  bool    `json:"enabled"`
	Recipient                string  `json:"recipient"`
	NotificationDelayMinutes float64 `json:"notificationDelay"`
}

// DefaultEmailSettings matches a fresh process: disabled, no recipient, 30
// minutes between emails for the same site.
var DefaultEmailSettings = EmailSettings{
	Enabled:                  false,
	Recipient:                "",
	NotificationDelayMinutes: 30,
}

// EmailSettingsUpdate is a partial update; nil fields are left unchanged.
type EmailSettingsUpdate struct {
	Enabled                  *bool    `json:"enabled,omitempty"`
	Recipient                *string  `json:"recipient,omitempty"`
	NotificationDelayMinutes *float64 `json:"notificationDelay,omitempty"`
}

func (s EmailSettings) window() time.Duration {
	return time.Duration(s.NotificationDelayMinutes * float64(time.Minute))
}

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

type SenderFunc func(ctx context.Context, recipient, subject, body string) error

func (f SenderFunc) Send(ctx context.Context, recipient, subject, body string) error {
	return f(ctx, recipient, subject, body)
}
