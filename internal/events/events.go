// Package events publishes domain events about listings.
package events

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"github.com/uyizlang/uyizlangbot/core/logger"
)

// TypeListingCreated names the event emitted after a listing is stored.
const TypeListingCreated = "listing.created"

// ListingCreated is the payload of a listing.created event.
type ListingCreated struct {
	Type       string    `json:"type"`
	ListingID  int64     `json:"listing_id"`
	UserID     int64     `json:"user_id"`
	TelegramID int64     `json:"telegram_id"`
	Title      string    `json:"title"`
	Rooms      int       `json:"rooms"`
	Price      int64     `json:"price"`
	Currency   string    `json:"currency"`
	Images     int       `json:"images"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Publisher delivers domain events.
type Publisher interface {
	PublishListingCreated(ctx context.Context, ev ListingCreated) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) PublishListingCreated(context.Context, ListingCreated) error { return nil }
func (Noop) Close() error                                                { return nil }

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaOptions configures NewKafkaPublisher.
type KafkaOptions struct {
	Brokers  []string
	Topic    string
	Username string
	Password string
	TLS      bool
}

// KafkaPublisher writes events as JSON keyed by listing id.
type KafkaPublisher struct {
	w       MessageWriter
	topic   string
	timeout time.Duration
}

// NewKafkaPublisher builds a synchronous writer for opts.Topic.
func NewKafkaPublisher(opts KafkaOptions) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(opts.Brokers...),
		Topic:        opts.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
	if opts.Username != "" || opts.TLS {
		tr := &kafka.Transport{}
		if opts.Username != "" {
			tr.SASL = plain.Mechanism{Username: opts.Username, Password: opts.Password}
		}
		if opts.TLS {
			tr.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		w.Transport = tr
	}
	logger.Events.LogAttrs(context.Background(), slog.LevelInfo, "kafka publisher",
		slog.String("event", "events.init"),
		slog.String("topic", opts.Topic),
		slog.Int("count", len(opts.Brokers)),
	)
	return NewPublisherWithWriter(w, opts.Topic)
}

// NewPublisherWithWriter wraps an existing writer.
func NewPublisherWithWriter(w MessageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: w, topic: topic, timeout: 5 * time.Second}
}

// PublishListingCreated writes ev, bounded by a short timeout.
func (p *KafkaPublisher) PublishListingCreated(ctx context.Context, ev ListingCreated) error {
	ev.Type = TypeListingCreated
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Type, err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.ListingID, 10)),
		Value: body,
		Time:  ev.CreatedAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
			{Key: "trace_id", Value: []byte(logger.TraceIDFrom(ctx))},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
