// Package events publishes store mutations to an optional sink.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amonks/cadence/internal/logging"
	"github.com/segmentio/kafka-go"
)

// Event types.
const (
	TaskCreated    = "task.created"
	TaskCompleted  = "task.completed"
	TaskReopened   = "task.reopened"
	TaskDeleted    = "task.deleted"
	TaskReordered  = "task.reordered"
	TaskTimeAdded  = "task.time_added"
	TimerStarted   = "timer.started"
	TimerPaused    = "timer.paused"
	TimerReset     = "timer.reset"
	ReviewAdded    = "review.added"
	ReviewUpdated  = "review.updated"
	ReviewDeleted  = "review.deleted"
	ReviewReviewed = "review.reviewed"
)

// Event describes one successful mutation.
type Event struct {
	Type      string    `json:"type"`
	EntityID  string    `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// Publisher receives events. Publish must not block on the network and must
// not fail the mutation that produced the event.
type Publisher interface {
	Publish(event Event)
	Close() error
}

// OrDiscard returns publisher, or Discard when it is nil.
func OrDiscard(publisher Publisher) Publisher {
	if publisher == nil {
		return Discard{}
	}
	return publisher
}

// Discard drops every event.
type Discard struct{}

// Publish implements Publisher.
func (Discard) Publish(Event) {}

// Close implements Publisher.
func (Discard) Close() error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements Publisher.
func (r *Recorder) Publish(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Close implements Publisher.
func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the type of every published event, in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, event := range r.events {
		types[i] = event.Type
	}
	return types
}

// KafkaPublisher writes events to a Kafka topic, keyed by entity id.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaPublisher returns a publisher for a comma-separated broker list.
func NewKafkaPublisher(brokers, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	var addrs []string
	for _, broker := range strings.Split(brokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			addrs = append(addrs, broker)
		}
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("kafka brokers are empty")
	}
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("kafka topic is empty")
	}

	logger = logging.OrDiscard(logger)
	w := &kafka.Writer{
		Addr:         kafka.TCP(addrs...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("failed to publish events", "error", err, "count", len(messages))
			}
		},
	}
	return &KafkaPublisher{writer: w, logger: logger}, nil
}

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal event", "error", err, "type", event.Type)
		return
	}
	err = p.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(event.EntityID),
		Value: payload,
	})
	if err != nil {
		p.logger.Warn("failed to publish event", "error", err, "type", event.Type)
	}
}

// Close flushes buffered events and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
