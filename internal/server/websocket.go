package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"yacht-dice/internal/broadcast"
	"yacht-dice/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	frameRoll        = "ROLL"
	frameLock        = "LOCK"
	frameChooseScore = "CHOOSE_SCORE"

	errInvalidMessage     = "INVALID_MESSAGE"
	errUnknownMessageType = "UNKNOWN_MESSAGE_TYPE"

	maxFrameBytes = 4096
)

type wsQuery struct {
	Token   string `form:"token"`
	GuestID string `form:"guestId" binding:"omitempty,guestid"`
}

type inboundFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type lockPayload struct {
	DiceIndex *int `json:"diceIndex"`
}

type chooseScorePayload struct {
	ScoreKey string `json:"scoreKey"`
}

// wsConn serializes writes to one socket; gorilla allows a single
// concurrent writer.
type wsConn struct {
	conn         *websocket.Conn
	mu           sync.Mutex
	writeTimeout time.Duration
}

func (w *wsConn) write(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout))
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *wsConn) send(envelope broadcast.Envelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return w.write(data)
}

func (w *wsConn) ping() error {
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(w.writeTimeout))
}

func (w *wsConn) closeWith(code int, reason string) {
	message := websocket.FormatCloseMessage(code, reason)
	_ = w.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(w.writeTimeout))
	_ = w.conn.Close()
}

func (s *Server) handleWebsocket(c *gin.Context) {
	var uri sessionURI
	if !bindURI(c, &uri) {
		return
	}
	var query wsQuery
	queryErr := c.ShouldBindQuery(&query)

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Debug("ws upgrade failed", "session_id", uri.ID, "error", err)
		return
	}
	client := &wsConn{conn: conn, writeTimeout: s.cfg.WSWriteTimeout}

	// Engine calls outlive the socket so a close mid-command cannot abort a
	// half-applied mutation.
	ctx := context.WithoutCancel(c.Request.Context())

	if queryErr != nil {
		s.logger.Debug("ws query rejected", "session_id", uri.ID, "error", queryErr)
		client.closeWith(websocket.ClosePolicyViolation, string(game.CodeUnauthorized))
		return
	}
	who, err := s.identifySocket(query.Token, query.GuestID)
	if err != nil {
		s.logger.Info("ws rejected", "session_id", uri.ID, "reason", "unauthorized", "error", err)
		client.closeWith(websocket.ClosePolicyViolation, string(game.CodeUnauthorized))
		return
	}
	if _, err := s.engine.Seat(ctx, uri.ID, who.identity); err != nil {
		if _, ok := game.CodeOf(err); !ok {
			s.logger.Error("ws seat lookup failed", "session_id", uri.ID, "error", err)
			client.closeWith(websocket.CloseInternalServerErr, string(game.CodeInternal))
			return
		}
		s.logger.Info("ws rejected", "session_id", uri.ID, "reason", "not_in_session", "identity", who.identity.String())
		client.closeWith(websocket.ClosePolicyViolation, string(game.CodeNotInSession))
		return
	}

	s.logger.Info("ws connected", "session_id", uri.ID, "identity", who.identity.String(), "remote", c.Request.RemoteAddr)
	go s.serveWS(ctx, uri.ID, who.identity, client)
}

func (s *Server) serveWS(ctx context.Context, sessionID string, identity game.Identity, client *wsConn) {
	unregister := s.hub.Register(sessionID, client.write)
	done := make(chan struct{})
	defer func() {
		close(done)
		unregister()
		_ = client.conn.Close()
	}()

	if view, err := s.engine.View(ctx, sessionID); err != nil {
		s.logger.Error("ws initial snapshot failed", "session_id", sessionID, "error", err)
	} else if err := client.send(broadcast.Envelope{Type: broadcast.TypeState, Payload: view}); err != nil {
		return
	}

	go s.keepAlive(client, done)
	s.readWS(ctx, sessionID, identity, client)
}

func (s *Server) keepAlive(client *wsConn, done <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.WSPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := client.ping(); err != nil {
				_ = client.conn.Close()
				return
			}
		}
	}
}

func (s *Server) readWS(ctx context.Context, sessionID string, identity game.Identity, client *wsConn) {
	conn := client.conn
	conn.SetReadLimit(maxFrameBytes)
	readTimeout := 2 * s.cfg.WSPingInterval
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			s.logger.Info("ws disconnected", "session_id", sessionID, "identity", identity.String(), "error", err)
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		if reply := s.dispatch(ctx, sessionID, identity, payload); reply != "" {
			if err := client.send(broadcast.Envelope{Type: broadcast.TypeError, Error: reply}); err != nil {
				return
			}
		}
	}
}

// dispatch runs one inbound frame and returns the error code to send back
// to this socket, or "" on success.
func (s *Server) dispatch(ctx context.Context, sessionID string, identity game.Identity, payload []byte) string {
	var frame inboundFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return errInvalidMessage
	}
	var err error
	switch frame.Type {
	case frameRoll:
		_, err = s.engine.Roll(ctx, sessionID, identity)
	case frameLock:
		var body lockPayload
		if decodeErr := decodePayload(frame.Payload, &body); decodeErr != nil || body.DiceIndex == nil {
			return errInvalidMessage
		}
		_, err = s.engine.ToggleLock(ctx, sessionID, identity, *body.DiceIndex)
	case frameChooseScore:
		var body chooseScorePayload
		if decodeErr := decodePayload(frame.Payload, &body); decodeErr != nil || body.ScoreKey == "" {
			return errInvalidMessage
		}
		_, err = s.engine.ChooseScore(ctx, sessionID, identity, body.ScoreKey)
	default:
		return errUnknownMessageType
	}
	if err == nil {
		return ""
	}
	if code, ok := game.CodeOf(err); ok {
		return string(code)
	}
	s.logger.Error("ws command failed", "session_id", sessionID, "type", frame.Type, "error", err)
	return string(game.CodeInternal)
}

func decodePayload(raw json.RawMessage, dest any) error {
	if len(raw) == 0 {
		return errors.New("payload is required")
	}
	return json.Unmarshal(raw, dest)
}
