package events

import (
	"context"
	"log/slog"
	"sync"
)

// Memory collects events in-process. Used by tests and as the fallback when
// no Kafka brokers are configured.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Publish(_ context.Context, ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *Memory) Close() {}

// Events returns a snapshot of everything published so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// OfType filters the snapshot by event type.
func (m *Memory) OfType(eventType string) []Event {
	var out []Event
	for _, ev := range m.Events() {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

// Log writes events to the logger; the default publisher when Kafka is not
// configured so local development still shows the stream.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Publish(ctx context.Context, ev Event) {
	l.logger.InfoContext(ctx, "registration event",
		"type", ev.Type,
		"company_id", ev.CompanyID,
		"request_id", ev.RequestID,
	)
}

func (l *Log) Close() {}
