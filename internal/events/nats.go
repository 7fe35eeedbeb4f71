package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const subjectPrefix = "tixy.events."

// NewNATS constructs a thin NATS-based publisher.
func NewNATS(nc *nats.Conn) Publisher {
	return &natsPublisher{nc: nc}
}

type natsPublisher struct {
	nc *nats.Conn
}

func (p *natsPublisher) Publish(_ context.Context, ev Event) error {
	if ev.Type == "" {
		return errors.New("event type required")
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.nc.Publish(subjectPrefix+string(ev.Type), body)
}

func (p *natsPublisher) Close() {
	p.nc.Close()
}
