package notifications

import "time"

// Webhook is an HTTP endpoint receiving a JSON document for every failed run.
type Webhook struct {
	URL      string
	Username string
	Password string
}

// Enabled reports whether a webhook URL is configured.
func (w Webhook) Enabled() bool {
	return w.URL != ""
}

// SnapshotFailure is the payload posted when a run fails.
type SnapshotFailure struct {
	Service      string    `json:"service"`
	Provider     string    `json:"provider"`
	Disk         string    `json:"disk"`
	Zone         string    `json:"zone"`
	SnapshotName string    `json:"snapshot_name,omitempty"`
	Status       int       `json:"status"`
	Message      string    `json:"message"`
	RunID        string    `json:"run_id"`
	Timestamp    time.Time `json:"timestamp"`
}
