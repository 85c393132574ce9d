package ws

import (
	"encoding/json"
	"sync"
	"time"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ClientConfig tunes a single live connection.
type ClientConfig struct {
	SendBuffer     int
	WriteWait      time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
}

func (c ClientConfig) pingInterval() time.Duration {
	return c.PongWait * 9 / 10
}

// Client owns one websocket connection. Outbound events go through a
// buffered queue drained by WritePump; inbound intents are read by ReadPump.
type Client struct {
	id     string
	userID string
	conn   *websocket.Conn
	cfg    ClientConfig
	logger *zap.Logger

	send      chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, userID string, cfg ClientConfig, logger *zap.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:     id,
		userID: userID,
		conn:   conn,
		cfg:    cfg,
		logger: logger.With(zap.String("connection_id", id), zap.String("user_id", userID)),
		send:   make(chan Event, cfg.SendBuffer),
		done:   make(chan struct{}),
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) UserID() string { return c.userID }

// Push never blocks. A full queue means the peer is not reading; the
// connection is closed and the push reported as failed.
func (c *Client) Push(ev Event) error {
	select {
	case <-c.done:
		return apperrors.ErrConnectionClosed
	default:
	}

	select {
	case c.send <- ev:
		return nil
	case <-c.done:
		return apperrors.ErrConnectionClosed
	default:
		c.logger.Warn("send buffer full, closing connection", zap.String("type", ev.Type))
		c.Close()
		return apperrors.ErrDeliveryBestEffort
	}
}

// Close is safe to call any number of times from any goroutine.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Client) Done() <-chan struct{} {
	return c.done
}

// ReadPump decodes intents and hands them to handle until the peer goes
// away. It closes the client on return.
func (c *Client) ReadPump(handle func(Intent)) {
	defer c.Close()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("unexpected close", zap.Error(err))
			}
			return
		}

		var intent Intent
		if err := json.Unmarshal(data, &intent); err != nil || intent.Type == "" {
			_ = c.Push(NewEvent(EventError, ErrorPayload{Code: "bad_request", Message: "malformed event"}))
			continue
		}
		handle(intent)
	}
}

// WritePump drains the queue to the socket and keeps the peer alive with
// pings. It owns closing the underlying connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.pingInterval())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.cfg.WriteWait))
			return
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.logger.Debug("write failed", zap.Error(err))
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteWait)); err != nil {
				c.logger.Debug("ping failed", zap.Error(err))
				c.Close()
				return
			}
		}
	}
}
