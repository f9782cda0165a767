// Package ws is the WebSocket implementation of the session gateway: a
// single socket carrying server events inbound and intents outbound. The
// session core never touches the socket; it sees only the event channel and
// Send.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mcdev12/nameit/internal/game/events"
	"github.com/rs/zerolog/log"
)

// Config holds configuration for the WebSocket gateway connection.
type Config struct {
	URL             string
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
}

// DefaultConfig returns default WebSocket configuration.
func DefaultConfig(url string) Config {
	return Config{
		URL:             url,
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  64 * 1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// Client is a WebSocket gateway connection. Open one per game screen and
// close it on unmount; it is not reusable after Close.
type Client struct {
	conn   *websocket.Conn
	config Config

	eventCh chan *events.GameEvent
	sendCh  chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to the game server and starts the read/write pumps.
func Dial(ctx context.Context, config Config) (*Client, error) {
	dialer := websocket.Dialer{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
	}

	conn, _, err := dialer.DialContext(ctx, config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial game server: %w", err)
	}

	c := &Client{
		conn:    conn,
		config:  config,
		eventCh: make(chan *events.GameEvent, 64),
		sendCh:  make(chan []byte, 64),
		done:    make(chan struct{}),
	}

	go c.writePump()
	go c.readPump()

	log.Info().Str("url", config.URL).Msg("gateway connection established")
	return c, nil
}

// Events delivers server-pushed events in arrival order. The channel closes
// when the connection is gone.
func (c *Client) Events() <-chan *events.GameEvent {
	return c.eventCh
}

// Send transmits an outbound intent. Fire-and-forget at the session level;
// an error here means the connection itself is failing.
func (c *Client) Send(ctx context.Context, intent events.Intent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}

	select {
	case c.sendCh <- data:
		return nil
	case <-c.done:
		return fmt.Errorf("send %s: connection closed", intent.Type)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close tears the connection down. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
	return nil
}

// writePump handles sending messages and keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case message := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Msg("failed to write to gateway")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump reads server events and forwards them, in order, to the event
// channel. Closing the channel is the engine's signal that the feed is gone.
func (c *Client) readPump() {
	defer func() {
		c.Close()
		close(c.eventCh)
	}()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Msg("unexpected gateway close")
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		var event events.GameEvent
		if err := json.Unmarshal(message, &event); err != nil {
			log.Error().Err(err).Msg("malformed gateway event - skipping")
			continue
		}

		select {
		case c.eventCh <- &event:
		case <-c.done:
			return
		}
	}
}
