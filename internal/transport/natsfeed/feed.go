// Package natsfeed is the NATS JetStream implementation of the session
// gateway, for deployments where the game server publishes session events to
// a stream instead of (or alongside) a direct socket. JetStream delivery is
// at-least-once, which is exactly why the session reconciler dedups.
package natsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/nameit/internal/game/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// Config holds configuration for the JetStream session feed.
type Config struct {
	URL           string
	StreamName    string
	ConsumerName  string
	IntentSubject string        // e.g. "game.intents.<session-id>"
	MaxDeliver    int           // Max delivery attempts
	AckWait       time.Duration // How long to wait for ack
	MaxAckPending int           // Max messages pending ack
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConfig returns default feed configuration for a session.
func DefaultConfig(sessionID uuid.UUID) Config {
	return Config{
		URL:           nats.DefaultURL,
		StreamName:    "GAME_EVENTS",
		ConsumerName:  "nameit-client-" + sessionID.String()[:8],
		IntentSubject: "game.intents." + sessionID.String(),
		MaxDeliver:    5,
		AckWait:       30 * time.Second,
		MaxAckPending: 100,
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// Feed consumes session events from JetStream and publishes intents back.
type Feed struct {
	nc       *nats.Conn
	js       jetstream.JetStream
	consumer jetstream.Consumer
	config   Config

	eventCh   chan *events.GameEvent
	closeOnce sync.Once
	done      chan struct{}
}

// Connect dials NATS and binds the durable consumer for one session.
func Connect(ctx context.Context, sessionID uuid.UUID, config Config) (*Feed, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	f := &Feed{
		nc:      nc,
		js:      js,
		config:  config,
		eventCh: make(chan *events.GameEvent, 64),
		done:    make(chan struct{}),
	}

	if err := f.ensureConsumer(ctx, sessionID); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure consumer: %w", err)
	}

	return f, nil
}

// ensureConsumer creates or gets the durable consumer for this session's
// event subject.
func (f *Feed) ensureConsumer(ctx context.Context, sessionID uuid.UUID) error {
	stream, err := f.js.Stream(ctx, f.config.StreamName)
	if err != nil {
		return fmt.Errorf("get stream: %w", err)
	}

	consumerConfig := jetstream.ConsumerConfig{
		Name:          f.config.ConsumerName,
		Durable:       f.config.ConsumerName,
		Description:   "Name It client session consumer",
		FilterSubject: "game.events." + sessionID.String(),
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    f.config.MaxDeliver,
		AckWait:       f.config.AckWait,
		MaxAckPending: f.config.MaxAckPending,
		ReplayPolicy:  jetstream.ReplayInstantPolicy,
	}

	consumer, err := stream.Consumer(ctx, f.config.ConsumerName)
	if err != nil {
		consumer, err = stream.CreateConsumer(ctx, consumerConfig)
		if err != nil {
			return fmt.Errorf("create consumer: %w", err)
		}
		log.Info().
			Str("consumer", f.config.ConsumerName).
			Str("stream", f.config.StreamName).
			Msg("created JetStream consumer")
	} else {
		log.Info().
			Str("consumer", f.config.ConsumerName).
			Str("stream", f.config.StreamName).
			Msg("using existing JetStream consumer")
	}

	f.consumer = consumer
	return nil
}

// Start begins consuming session events. Blocks until the context is
// cancelled or the feed is closed.
func (f *Feed) Start(ctx context.Context) error {
	log.Info().
		Str("consumer", f.config.ConsumerName).
		Msg("starting JetStream session feed")

	consumeCtx, err := f.consumer.Consume(func(msg jetstream.Msg) {
		if err := f.processMessage(msg); err != nil {
			log.Error().Err(err).Str("subject", msg.Subject()).Msg("failed to process message")
			if nakErr := msg.Nak(); nakErr != nil {
				log.Error().Err(nakErr).Msg("failed to NAK message")
			}
			return
		}
		if ackErr := msg.Ack(); ackErr != nil {
			log.Error().Err(ackErr).Msg("failed to ACK message")
		}
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	select {
	case <-ctx.Done():
	case <-f.done:
	}

	log.Info().Msg("session feed shutting down")
	f.Close()
	consumeCtx.Stop()
	// Start owns the event channel; closing it here, after the consumer has
	// stopped, signals the engine that the feed is gone.
	close(f.eventCh)
	return nil
}

// processMessage converts one stream message into a GameEvent and forwards
// it in order.
func (f *Feed) processMessage(msg jetstream.Msg) error {
	var envelope struct {
		EventID   string          `json:"event_id"`
		EventType string          `json:"event_type"`
		SessionID string          `json:"session_id"`
		Timestamp time.Time       `json:"timestamp"`
		Payload   json.RawMessage `json:"payload"`
	}

	if err := json.Unmarshal(msg.Data(), &envelope); err != nil {
		return fmt.Errorf("unmarshal event envelope: %w", err)
	}

	event := &events.GameEvent{
		ID:        envelope.EventID,
		SessionID: envelope.SessionID,
		Type:      events.EventType(envelope.EventType),
		Timestamp: envelope.Timestamp,
		Data:      envelope.Payload,
	}

	log.Debug().
		Str("event_id", event.ID).
		Str("event_type", string(event.Type)).
		Str("subject", msg.Subject()).
		Msg("received session event")

	select {
	case f.eventCh <- event:
		return nil
	case <-f.done:
		return fmt.Errorf("feed closed")
	}
}

// Events delivers session events in stream order.
func (f *Feed) Events() <-chan *events.GameEvent {
	return f.eventCh
}

// Send publishes an outbound intent to the session's intent subject.
func (f *Feed) Send(ctx context.Context, intent events.Intent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}

	if _, err := f.js.Publish(ctx, f.config.IntentSubject, data); err != nil {
		return fmt.Errorf("publish %s intent: %w", intent.Type, err)
	}
	return nil
}

// Close shuts the feed down. Safe to call more than once.
func (f *Feed) Close() error {
	f.closeOnce.Do(func() {
		close(f.done)
		if f.nc != nil {
			f.nc.Close()
		}
	})
	return nil
}
