package service

import (
    "context"
    "encoding/json"
    "fmt"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    q "github.com/hotelbook/room-reservation/internal/queue"
)

// EventPublisher delivers reservation lifecycle events.  Callers treat
// failures as non-fatal.
type EventPublisher interface {
    Publish(ctx context.Context, ev q.ReservationEvent) error
}

// NopPublisher drops every event.  Used when EVENTS_ENABLED is false.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, q.ReservationEvent) error { return nil }

// AMQPPublisher publishes events to a durable RabbitMQ queue through the
// default exchange.  One connection and channel are shared and reopened
// when the broker drops them.
type AMQPPublisher struct {
    url   string
    queue string

    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

// NewAMQPPublisher dials the broker and declares queue.  The returned
// publisher must be closed on shutdown.
func NewAMQPPublisher(url, queue string) (*AMQPPublisher, error) {
    p := &AMQPPublisher{url: url, queue: queue}
    p.mu.Lock()
    defer p.mu.Unlock()
    if err := p.connectLocked(); err != nil {
        return nil, err
    }
    return p, nil
}

func (p *AMQPPublisher) connectLocked() error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        return fmt.Errorf("rabbitmq dial: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return fmt.Errorf("rabbitmq channel open: %w", err)
    }
    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        p.queue, // name
        true,    // durable
        false,   // autoDelete
        false,   // exclusive
        false,   // noWait
        nil,     // args
    ); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return fmt.Errorf("rabbitmq queue declare: %w", err)
    }
    p.conn, p.ch = conn, ch
    return nil
}

// Publish marshals ev and sends it as a persistent message whose MessageId
// is the event id.
func (p *AMQPPublisher) Publish(ctx context.Context, ev q.ReservationEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    p.mu.Lock()
    defer p.mu.Unlock()
    if p.conn == nil || p.conn.IsClosed() || p.ch == nil || p.ch.IsClosed() {
        p.closeLocked()
        if err := p.connectLocked(); err != nil {
            return err
        }
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        MessageId:    ev.ID,
        Type:         ev.Type,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := p.ch.PublishWithContext(ctx,
        "",      // default exchange
        p.queue, // routing key = queue name
        false,   // mandatory
        false,   // immediate
        pub,
    ); err != nil {
        return fmt.Errorf("rabbitmq publish: %w", err)
    }
    return nil
}

func (p *AMQPPublisher) closeLocked() {
    if p.ch != nil {
        _ = p.ch.Close()
        p.ch = nil
    }
    if p.conn != nil {
        _ = p.conn.Close()
        p.conn = nil
    }
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.closeLocked()
    return nil
}
