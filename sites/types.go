package sites

import "time"

type Status string

const (
	StatusPending Status = "pending"
	StatusUp      Status = "up"
	StatusDown    Status = "down"
)

// InitialCheckedLabel is shown until the first probe completes.
const InitialCheckedLabel = "Just now"

type Site struct {
	ID                  int           `json:"id"`
	Name                string        `json:"name"`
	URL                 string        `json:"url"`
	Status              Status        `json:"status"`
	ResponseTimeMs      int64         `json:"responseTime"`
	UptimePercentage    float64       `json:"uptimePercentage"`
	LastCheckedLabel    string        `json:"lastCheckedLabel"`
	LastChecked         time.Time     `json:"lastChecked"`
	ConsecutiveFailures int           `json:"consecutiveFailures"`
	CheckInterval       time.Duration `json:"-"`
}

// CheckIntervalMinutes reports the cadence the way operators configure it.
func (s Site) CheckIntervalMinutes() float64 {
	return s.CheckInterval.Minutes()
}

// Publisher receives a signal after every registry mutation.
type Publisher interface {
	Publish()
}
