package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/Crowley723/site-monitor/sites"
	"github.com/google/uuid"
)

const downtimeQueueSize = 64

var ErrInvalidSettings = errors.New("invalid email settings")

type downtimeJob struct {
	siteID int
	gen    uint64
	name   string
	url    string
}

type observer struct {
	id uint64
	fn func(Event)
}

// Notifier fans registry changes out to observers and delivers throttled
// downtime emails from a background worker, so a slow or failing send never
// reaches the probe pipeline.
type Notifier struct {
	logger      *slog.Logger
	sender      Sender
	throttle    *Throttle
	sendTimeout time.Duration
	hostname    string
	now         func() time.Time

	settingsMu sync.RWMutex
	settings   EmailSettings

	observersMu sync.Mutex
	observers   []observer
	nextID      uint64

	queue chan downtimeJob
}

func NewNotifier(sender Sender, settings EmailSettings, sendTimeout time.Duration, logger *slog.Logger) *Notifier {
	return &Notifier{
		logger:      logger,
		sender:      sender,
		throttle:    NewThrottle(),
		sendTimeout: sendTimeout,
		hostname:    reporterHostname(logger),
		now:         time.Now,
		settings:    settings,
		queue:       make(chan downtimeJob, downtimeQueueSize),
	}
}

// Run drains the downtime queue until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) {
	n.logger.Info("starting notification worker")
	for {
		select {
		case <-ctx.Done():
			n.logger.Info("notification worker stopped")
			return
		case job := <-n.queue:
			n.notify(ctx, job)
		}
	}
}

// Subscribe registers a refresh callback run after every registry mutation.
// The returned function removes it and is safe to call more than once.
func (n *Notifier) Subscribe(fn func()) func() {
	return n.Watch(func(evt Event) {
		if evt.Type == EventSitesChanged {
			fn()
		}
	})
}

// Watch registers a callback for every event.
func (n *Notifier) Watch(fn func(Event)) func() {
	n.observersMu.Lock()
	n.nextID++
	id := n.nextID
	n.observers = append(n.observers, observer{id: id, fn: fn})
	n.observersMu.Unlock()

	return func() {
		n.observersMu.Lock()
		defer n.observersMu.Unlock()
		for i, o := range n.observers {
			if o.id == id {
				n.observers = append(n.observers[:i:i], n.observers[i+1:]...)
				return
			}
		}
	}
}

// Publish implements sites.Publisher.
func (n *Notifier) Publish() {
	n.emit(Event{Type: EventSitesChanged})
}

// SiteDown raises the UI alert for a down-transition and queues the email.
// It never blocks: when the queue is full the email is dropped and logged.
func (n *Notifier) SiteDown(site sites.Site) {
	n.emit(Event{
		Type:    EventSiteDown,
		SiteID:  site.ID,
		Site:    site.Name,
		URL:     site.URL,
		Message: fmt.Sprintf("%s is not responding after multiple attempts.", site.URL),
	})

	select {
	case n.queue <- downtimeJob{siteID: site.ID, gen: n.throttle.Generation(site.ID), name: site.Name, url: site.URL}:
	default:
		n.logger.Warn("downtime queue full, dropping email", "site_id", site.ID, "site", site.Name)
	}
}

// Forget drops throttle state for a removed site. Downtime emails already
// queued for it are discarded when the worker reaches them.
func (n *Notifier) Forget(siteID int) {
	n.throttle.Forget(siteID)
}

// NotifyDowntime sends a downtime email for the site unless emails are
// disabled, no recipient is configured, or one was delivered within the
// notification delay. Returns whether an email was delivered.
func (n *Notifier) NotifyDowntime(ctx context.Context, siteID int, name, url string) bool {
	return n.notify(ctx, downtimeJob{siteID: siteID, gen: n.throttle.Generation(siteID), name: name, url: url})
}

func (n *Notifier) notify(ctx context.Context, job downtimeJob) bool {
	siteID, name, url := job.siteID, job.name, job.url
	settings := n.EmailSettings()

	if n.throttle.Generation(siteID) != job.gen {
		n.logger.Debug("site removed, dropping downtime email", "site_id", siteID, "site", name)
		return false
	}

	if !settings.Enabled || settings.Recipient == "" {
		n.logger.Debug("email notifications are disabled or no recipient configured", "site_id", siteID)
		return false
	}

	now := n.now()
	if allowed, elapsed := n.throttle.Allow(siteID, settings.window(), now); !allowed {
		n.logger.Info("not sending downtime email, already notified recently",
			"site_id", siteID,
			"site", name,
			"minutes_ago", fmt.Sprintf("%.1f", elapsed.Minutes()))
		return false
	}

	sendCtx := ctx
	if n.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, n.sendTimeout)
		defer cancel()
	}

	subject := fmt.Sprintf("Site Down: %s", name)
	body := downtimeBody(name, url, n.hostname, now)

	n.logger.Info("sending downtime email", "site_id", siteID, "site", name, "recipient", settings.Recipient)

	if err := n.sender.Send(sendCtx, settings.Recipient, subject, body); err != nil {
		n.logger.Error("failed to send downtime email", "site_id", siteID, "site", name, "err", err)
		n.emit(Event{
			Type:    EventEmailFailed,
			SiteID:  siteID,
			Site:    name,
			URL:     url,
			Message: fmt.Sprintf("Could not send alert for %s", name),
		})
		return false
	}

	if !n.throttle.Record(siteID, job.gen, now) {
		n.logger.Debug("site removed during send, not recording", "site_id", siteID)
	}
	n.emit(Event{
		Type:    EventEmailSent,
		SiteID:  siteID,
		Site:    name,
		URL:     url,
		Message: fmt.Sprintf("Alert sent to %s for %s", settings.Recipient, name),
	})
	return true
}

func (n *Notifier) EmailSettings() EmailSettings {
	n.settingsMu.RLock()
	defer n.settingsMu.RUnlock()
	return n.settings
}

// UpdateEmailSettings merges update into the current settings.
func (n *Notifier) UpdateEmailSettings(update EmailSettingsUpdate) (EmailSettings, error) {
	if update.NotificationDelayMinutes != nil && *update.NotificationDelayMinutes < 0 {
		return n.EmailSettings(), fmt.Errorf("%w: notification delay must not be negative", ErrInvalidSettings)
	}

	n.settingsMu.Lock()
	defer n.settingsMu.Unlock()

	if update.Enabled != nil {
		n.settings.Enabled = *update.Enabled
	}
	if update.Recipient != nil {
		n.settings.Recipient = *update.Recipient
	}
	if update.NotificationDelayMinutes != nil {
		n.settings.NotificationDelayMinutes = *update.NotificationDelayMinutes
	}

	n.logger.Info("email settings updated",
		"enabled", n.settings.Enabled,
		"recipient", n.settings.Recipient,
		"notification_delay_minutes", n.settings.NotificationDelayMinutes)

	return n.settings, nil
}

// emit calls observers in registration order on a snapshot of the list, so
// callbacks may subscribe or unsubscribe. A panicking observer is logged and
// skipped.
func (n *Notifier) emit(evt Event) {
	evt.ID = uuid.NewString()
	evt.Time = n.now()

	n.observersMu.Lock()
	snapshot := make([]observer, len(n.observers))
	copy(snapshot, n.observers)
	n.observersMu.Unlock()

	for _, o := range snapshot {
		n.call(o, evt)
	}
}

func (n *Notifier) call(o observer, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("observer panicked", "event", evt.Type, "panic", r)
		}
	}()
	o.fn(evt)
}

func downtimeBody(name, url, host string, at time.Time) string {
	return fmt.Sprintf(
		"%s (%s) is DOWN.\n\nThe site did not respond after multiple consecutive checks.\nDetected at %s by %s.\n",
		name, url, at.Format(time.RFC1123), host)
}

// reporterHostname prefers $HOSTNAME so containers report their service name.
func reporterHostname(logger *slog.Logger) string {
	if hostname := os.Getenv("HOSTNAME"); hostname != "" {
		return hostname
	}

	hostname, err := os.Hostname()
	if err != nil {
		logger.Warn("error getting hostname", "err", err)
		return "unknown"
	}
	return hostname
}
