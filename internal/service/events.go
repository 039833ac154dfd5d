package service

import "go-bom-graph/internal/ws"

// EventPublisher receives committed mutations for the live change feed.
type EventPublisher interface {
	Publish(event ws.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(ws.Event) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
