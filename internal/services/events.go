package services

import (
	"context"
	"time"

	"github.com/shankarium/plm/internal/logging"
)

// EventKind names a committed workflow transition
type EventKind string

const (
	EventBriefCreated     EventKind = "brief_created"
	EventBriefSubmitted   EventKind = "brief_submitted"
	EventConceptCreated   EventKind = "concept_created"
	EventConceptFinalized EventKind = "concept_finalized"
)

// Event describes a transition after it has been committed
type Event struct {
	Kind      EventKind `json:"kind"`
	BriefID   int64     `json:"brief_id,omitempty"`
	ConceptID int64     `json:"concept_id,omitempty"`
	SalesID   int64     `json:"sales_id,omitempty"`
	Actor     string    `json:"actor"`
	At        time.Time `json:"at"`
}

// Publisher receives workflow events
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Fanout delivers each event to every sink in order. Sink failures are logged and
// never reach the caller.
type Fanout struct {
	sinks []Publisher
}

// NewFanout creates a fan-out over the given sinks; nil sinks are skipped
func NewFanout(sinks ...Publisher) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Publish implements Publisher
func (f *Fanout) Publish(ctx context.Context, ev Event) error {
	if f == nil {
		return nil
	}
	for _, s := range f.sinks {
		if err := s.Publish(ctx, ev); err != nil {
			logging.LogKV("warn", "event delivery failed", map[string]interface{}{
				"kind":       string(ev.Kind),
				"brief_id":   ev.BriefID,
				"concept_id": ev.ConceptID,
				"sink":       sinkName(s),
				"error":      err.Error(),
			})
		}
	}
	return nil
}

// Len returns the number of configured sinks
func (f *Fanout) Len() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}

func sinkName(p Publisher) string {
	switch p.(type) {
	case *EmailService:
		return "ses"
	case *TopicService:
		return "sns"
	case *MetricsService:
		return "cloudwatch"
	default:
		return "custom"
	}
}
