package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// DecisionEvent is published after every durable workflow decision so
// downstream consumers (notifications, dashboards) can react.
type DecisionEvent struct {
	Kind       string    `json:"kind"`
	RequestID  uint      `json:"request_id"`
	SubjectID  uint      `json:"subject_id"`
	Status     string    `json:"status"`
	ReviewerID uint      `json:"reviewer_id"`
	DecidedAt  time.Time `json:"decided_at"`
}

// DecisionPublisher fans decision events out to interested consumers.
// Publishing is best effort; a failed publish never rolls back a decision.
type DecisionPublisher interface {
	PublishDecision(ctx context.Context, event DecisionEvent)
}

type natsDecisionPublisher struct {
	conn        *nats.Conn
	subjectBase string
	logger      zerolog.Logger
}

// NewNATSDecisionPublisher constructs a publisher over a NATS connection.
// A nil connection yields a no-op publisher so tests and single-node
// deployments need no broker.
func NewNATSDecisionPublisher(conn *nats.Conn, subjectBase string, logger zerolog.Logger) DecisionPublisher {
	base := strings.TrimSuffix(strings.TrimSpace(subjectBase), ".")
	if base == "" {
		base = "maestro.workflow"
	}

	return &natsDecisionPublisher{
		conn:        conn,
		subjectBase: base,
		logger:      logger.With().Str("component", "decision_publisher").Logger(),
	}
}

func (p *natsDecisionPublisher) PublishDecision(ctx context.Context, event DecisionEvent) {
	if p.conn == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("kind", event.Kind).Msg("failed to encode decision event")
		return
	}

	subject := p.subjectBase + "." + event.Kind + ".decided"
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish decision event")
	}
}
