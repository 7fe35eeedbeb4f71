package events

import "context"

// NoOpPublisher drops every event. Used when no broker is configured.
type NoOpPublisher struct{}

func NewNoOpPublisher() *NoOpPublisher { return &NoOpPublisher{} }

func (p *NoOpPublisher) Publish(context.Context, Event) error { return nil }

func (p *NoOpPublisher) Close() {}
