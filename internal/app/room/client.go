/*
Package room contains the core logic for the real-time voting room.

This file defines the Client struct, representing one live WebSocket
connection. It runs the read/write pumps, decodes inbound frames for the
Room's event loop, and delivers acknowledgements and broadcasts.
*/
package room

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/CALEBPOTZ/battleroyal/internal/pkg/errs"
	"github.com/CALEBPOTZ/battleroyal/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 4096

	// WsCloseCodeRemoved is a custom WebSocket Close Code (4000-4999 range)
	// signalling that the connection was closed because an admin removed the user.
	WsCloseCodeRemoved = 4001
)

// Client represents one live WebSocket connection. A connection holds at most
// one associated username, set by the Room after a successful registration;
// the Room owns the user record itself.
type Client struct {
	// the room this connection belongs to.
	room *Room

	// underlying WebSocket connection.
	conn *websocket.Conn

	// username associated with this connection, "" until registered.
	// Written and read only by the Room's Run loop.
	username string

	// send queues outbound frames for the WritePump.
	send chan []byte

	// once guards closing the send channel, which can race between an admin
	// kick and the natural disconnect path.
	once sync.Once

	// structured logger with connection context.
	logger zerolog.Logger
}

// errSendQueueFull reports a dropped frame due to a saturated send queue.
var errSendQueueFull = errors.New("client send queue full")

// NewClient constructs a Client for an upgraded connection.
func NewClient(room *Room, conn *websocket.Conn) *Client {
	logCtx := logx.Logger().With().Str("component", "client")
	if conn != nil {
		logCtx = logCtx.Str("remote_addr", conn.RemoteAddr().String())
	}
	clientLogger := logCtx.Logger()

	return &Client{
		room:   room,
		conn:   conn,
		send:   make(chan []byte, 64),
		logger: clientLogger,
	}
}

// ReadPump reads frames from the WebSocket connection until it closes,
// handling heartbeats and queueing decoded events for the Room.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		c.processInboundMessage(messageBytes)
	}
}

// cleanupOnDisconnect notifies the Room and closes the transport when the
// ReadPump terminates.
func (c *Client) cleanupOnDisconnect() {
	c.room.unregisterClient(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error")
	}
}

// processInboundMessage decodes a raw frame and queues it for the Room loop.
func (c *Client) processInboundMessage(messageBytes []byte) {
	var msg Message
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		return
	}

	c.room.enqueueInbound(inboundEvent{
		client:  c,
		msgType: msg.Type,
		payload: msg.Payload,
	})
}

// WritePump writes queued frames to the WebSocket connection and keeps the
// heartbeat alive.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}

// enqueue attempts a non-blocking push of a frame to the send queue.
// Returns false when the queue is full or already closed.
func (c *Client) enqueue(frame []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once.
func (c *Client) closeSend() {
	c.once.Do(func() {
		close(c.send)
	})
}

// sendEvent marshals and queues a server frame of the given type.
func (c *Client) sendEvent(msgType MessageType, payload any) error {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		c.logger.Error().Err(err).Str("msg_type", string(msgType)).Msg("Failed to build frame")
		return err
	}

	frame, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error().Err(err).Str("msg_type", string(msgType)).Msg("Failed to marshal frame")
		return err
	}

	if !c.enqueue(frame) {
		c.logger.Warn().Str("msg_type", string(msgType)).Msg("Client send queue full, dropping frame")
		return errSendQueueFull
	}
	return nil
}

// sendNotice queues a success acknowledgement with a human-readable message.
func (c *Client) sendNotice(msgType MessageType, text string) {
	if err := c.sendEvent(msgType, NoticePayload{Message: text}); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to queue notice")
	}
}

// sendErrorEvent queues a named error acknowledgement for the requesting
// connection only; errors are never broadcast.
func (c *Client) sendErrorEvent(msgType MessageType, cerr *errs.CustomError) {
	if cerr == nil {
		cerr = errs.NewError(errs.ErrUnknown)
	}

	payload := ErrorPayload{
		Code:    cerr.Code,
		Message: cerr.Message,
	}

	if err := c.sendEvent(msgType, payload); err != nil {
		c.logger.Warn().Err(err).Int("code", cerr.Code).Msg("Failed to queue error ack")
	}
}

// Kick closes the connection with a custom close frame after an admin removed
// the user.
func (c *Client) Kick(reason string) {
	c.logger.Info().
		Int("close_code", WsCloseCodeRemoved).
		Str("reason", reason).
		Msg("Kicking connection.")

	if c.conn != nil {
		closeMessage := websocket.FormatCloseMessage(WsCloseCodeRemoved, reason)

		c.conn.SetWriteDeadline(time.Now().Add(writeWait))

		if err := c.conn.WriteMessage(websocket.CloseMessage, closeMessage); err != nil {
			c.logger.Debug().Err(err).Msg("Failed to send close frame on kick")
		}
	}

	c.closeSend()
}
