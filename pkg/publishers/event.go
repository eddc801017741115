package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-connection/pkg/lifecycle"
)

// Event represents the payload published downstream.
type Event struct {
	App         string          `json:"app"`
	Lifecycle   lifecycle.Event `json:"event"`
	PublishedAt time.Time       `json:"published_at"`
}

// NewEvent wraps a lifecycle event for publishing.
func NewEvent(app string, evt lifecycle.Event) Event {
	return Event{
		App:         app,
		Lifecycle:   evt,
		PublishedAt: time.Now().UTC(),
	}
}

// attributes are the routing attributes attached to queue/topic messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"kind":         string(e.Lifecycle.Kind),
		"source":       string(e.Lifecycle.Source),
		"execution_id": e.Lifecycle.ExecutionID,
	}
}
