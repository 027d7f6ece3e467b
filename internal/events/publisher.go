package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher delivers domain events. Failures are reported but callers treat
// them as non-fatal: the database is the source of truth.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// AMQPPublisher publishes persistent JSON messages to RabbitMQ through the
// default exchange, one durable queue per routing key.
type AMQPPublisher struct {
	url string
}

// NewAMQPPublisher creates a publisher for the broker at url.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url}
}

// Publish dials the broker, declares the queue and sends one message.
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		routingKey, // name
		true,       // durable
		false,      // autoDelete
		false,      // exclusive
		false,      // noWait
		nil,        // args
	); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := marshal(routingKey, payload)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",         // default exchange
		routingKey, // routing key = queue name
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// redactor is implemented by payloads carrying secrets meant only for the
// delivery channel.
type redactor interface {
	Redacted() interface{}
}

// LogPublisher writes events to the process log. It is used when no broker
// is configured. Secrets such as reset tokens are masked.
type LogPublisher struct {
	Logger *log.Logger // nil means the standard logger
}

// Publish logs the event.
func (p LogPublisher) Publish(_ context.Context, routingKey string, payload interface{}) error {
	if r, ok := payload.(redactor); ok {
		payload = r.Redacted()
	}
	body, err := marshal(routingKey, payload)
	if err != nil {
		return err
	}
	if p.Logger != nil {
		p.Logger.Printf("event %s: %s", routingKey, body)
		return nil
	}
	log.Printf("event %s: %s", routingKey, body)
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Envelope
}

// Publish records the event.
func (r *Recorder) Publish(_ context.Context, routingKey string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Envelope{Type: routingKey, OccurredAt: time.Now().UTC(), Payload: payload})
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Envelope, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded payloads with the given routing key.
func (r *Recorder) OfType(routingKey string) []interface{} {
	var out []interface{}
	for _, e := range r.Events() {
		if e.Type == routingKey {
			out = append(out, e.Payload)
		}
	}
	return out
}

func marshal(routingKey string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(Envelope{Type: routingKey, OccurredAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", routingKey, err)
	}
	return body, nil
}
