// Package broadcast fans serialized session snapshots out to every socket
// watching a session.
package broadcast

import (
	"encoding/json"
	"log/slog"
	"sync"
)

const (
	TypeState    = "STATE"
	TypeGameOver = "GAME_OVER"
	TypeError    = "ERROR"
)

// Envelope is the outbound frame shape.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Sink receives one serialized frame. Returned errors are ignored by the
// hub.
type Sink func(data []byte) error

type entry struct {
	sink Sink
}

// Hub maps session ids to rooms of sinks.
type Hub struct {
	mu     sync.Mutex
	rooms  map[string]map[*entry]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms:  make(map[string]map[*entry]struct{}),
		logger: logger,
	}
}

// Register adds sink to the session's room and returns a function that
// removes it again. The returned function is safe to call more than once.
func (h *Hub) Register(sessionID string, sink Sink) func() {
	e := &entry{sink: sink}
	h.mu.Lock()
	room := h.rooms[sessionID]
	if room == nil {
		room = make(map[*entry]struct{})
		h.rooms[sessionID] = room
	}
	room[e] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.remove(sessionID, e)
		})
	}
}

func (h *Hub) remove(sessionID string, e *entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[sessionID]
	if room == nil {
		return
	}
	delete(room, e)
	if len(room) == 0 {
		delete(h.rooms, sessionID)
	}
}

// Broadcast serializes payload once and hands it to every sink in the
// room. A failing sink does not stop delivery to the rest.
func (h *Hub) Broadcast(sessionID string, payload any) {
	h.mu.Lock()
	room := h.rooms[sessionID]
	sinks := make([]Sink, 0, len(room))
	for e := range room {
		sinks = append(sinks, e.sink)
	}
	h.mu.Unlock()
	if len(sinks) == 0 {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("broadcast encode failed", "session_id", sessionID, "error", err)
		return
	}
	for _, sink := range sinks {
		if err := sink(data); err != nil {
			h.logger.Debug("broadcast send failed", "session_id", sessionID, "error", err)
		}
	}
}

// RoomSize returns how many sinks are watching sessionID.
func (h *Hub) RoomSize(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[sessionID])
}

// Rooms returns the number of sessions with at least one watcher.
func (h *Hub) Rooms() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}
