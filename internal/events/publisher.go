package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/domain"
)

const subjectProxyActions = "jirani.proxyactions"

// TransitionEvent is the wire payload published after every successful
// proxy action state change.
type TransitionEvent struct {
	ActionID   string    `json:"actionId"`
	ActionType string    `json:"actionType"`
	Status     string    `json:"status"`
	Transition string    `json:"transition"`
	Actor      string    `json:"actor,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher fans proxy action transitions out over NATS. Publishing is
// best-effort; failures are logged and never fail the transition.
type Publisher struct {
	conn *nats.Conn
}

func NewPublisher(natsURL string) (*Publisher, error) {
	conn, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	slog.Info("Connected to NATS", "url", natsURL)
	return &Publisher{conn: conn}, nil
}

func (p *Publisher) PublishTransition(a *domain.ProxyAction, transition string, actor *primitive.ObjectID) {
	evt := TransitionEvent{
		ActionID:   a.ID.Hex(),
		ActionType: string(a.ActionType),
		Status:     string(a.Status),
		Transition: transition,
		At:         a.UpdatedAt,
	}
	if actor != nil {
		evt.Actor = actor.Hex()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		slog.Error("Failed to marshal transition event", "action_id", evt.ActionID, "error", err)
		return
	}
	if err := p.conn.Publish(subjectProxyActions, data); err != nil {
		slog.Error("Failed to publish transition event", "action_id", evt.ActionID, "error", err)
	}
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
		slog.Info("Disconnected from NATS")
	}
}

func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}
