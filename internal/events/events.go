// Package events publishes collection change notifications over NATS.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Change actions
const (
	ActionDeleted   = "deleted"
	ActionAdjusted  = "adjusted"
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionEvaluated = "evaluated"
)

const DefaultSubjectPrefix = "stockroom.changes"

// ChangeEvent tells listeners which collections of a tenant changed
type ChangeEvent struct {
	TenantID    uuid.UUID `json:"tenant_id"`
	Collections []string  `json:"collections"`
	Action      string    `json:"action"`
	At          time.Time `json:"at"`
}

// Publisher sends change events
type Publisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// Handler receives decoded change events
type Handler func(ctx context.Context, event ChangeEvent)

// Subscriber delivers change events for one collection of every tenant
type Subscriber interface {
	Subscribe(collection string, handler Handler) (func(), error)
}

// Subject is the NATS subject for one tenant's collection
func Subject(prefix string, tenantID uuid.UUID, collection string) string {
	return fmt.Sprintf("%s.%s.%s", prefix, tenantID.String(), collection)
}

// NATSBus publishes and subscribes over a core NATS connection
type NATSBus struct {
	conn   *nats.Conn
	prefix string
}

func NewNATSBus(url, prefix string) (*NATSBus, error) {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	conn, err := nats.Connect(url,
		nats.Name("stockroom"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("WARN: NATS disconnected: %v", err)
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	log.Printf("NATS connected (%s)", conn.ConnectedUrl())
	return &NATSBus{conn: conn, prefix: prefix}, nil
}

// Publish sends event once per collection it names
func (b *NATSBus) Publish(ctx context.Context, event ChangeEvent) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	var errs []error
	for _, collection := range event.Collections {
		if err := b.conn.Publish(Subject(b.prefix, event.TenantID, collection), data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *NATSBus) Subscribe(collection string, handler Handler) (func(), error) {
	subject := fmt.Sprintf("%s.*.%s", b.prefix, collection)
	sub, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		event, err := Decode(msg.Data)
		if err != nil {
			log.Printf("WARN: dropping malformed change event on %s: %v", msg.Subject, err)
			return
		}
		handler(context.Background(), event)
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Close drains pending messages and closes the connection
func (b *NATSBus) Close() {
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

func (b *NATSBus) Ping() error {
	if !b.conn.IsConnected() {
		return nats.ErrConnectionClosed
	}
	return b.conn.FlushTimeout(time.Second)
}

// Decode parses a change event payload
func Decode(data []byte) (ChangeEvent, error) {
	var event ChangeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return event, err
	}
	if event.TenantID == uuid.Nil {
		return event, errors.New("change event without tenant")
	}
	return event, nil
}

// NoopBus is used when NATS is not configured
type NoopBus struct{}

func (NoopBus) Publish(context.Context, ChangeEvent) error { return nil }

func (NoopBus) Subscribe(string, Handler) (func(), error) { return func() {}, nil }
