package server

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialSession(t *testing.T, env *testEnv, sessionID string, query url.Values) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/ws/sessions/" + sessionID
	if len(query) > 0 {
		wsURL += "?" + query.Encode()
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func dialGuest(t *testing.T, env *testEnv, sessionID, guestID string) *websocket.Conn {
	t.Helper()
	return dialSession(t, env, sessionID, url.Values{"guestId": {guestID}})
}

func readEnvelope(t *testing.T, conn *websocket.Conn, timeout time.Duration) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read websocket message: %v", err)
	}
	var envelope map[string]any
	if err := json.Unmarshal(payload, &envelope); err != nil {
		t.Fatalf("decode websocket message: %v", err)
	}
	return envelope
}

func expectEnvelopeType(t *testing.T, conn *websocket.Conn, expected string) map[string]any {
	t.Helper()
	envelope := readEnvelope(t, conn, 5*time.Second)
	if envelope["type"] != expected {
		t.Fatalf("expected %s frame, got %#v", expected, envelope)
	}
	return envelope
}

func expectErrorFrame(t *testing.T, conn *websocket.Conn, code string) {
	t.Helper()
	envelope := expectEnvelopeType(t, conn, "ERROR")
	if envelope["error"] != code {
		t.Fatalf("expected error %s, got %v", code, envelope["error"])
	}
}

func expectClosed(t *testing.T, conn *websocket.Conn, code int, reason string) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		t.Fatalf("expected close frame, got %v", err)
	}
	if closeErr.Code != code || closeErr.Text != reason {
		t.Fatalf("expected close %d %q, got %d %q", code, reason, closeErr.Code, closeErr.Text)
	}
}

func sendFrame(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write websocket frame: %v", err)
	}
}

func stateOf(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	payload, ok := envelope["payload"].(map[string]any)
	if !ok {
		t.Fatalf("expected payload, got %#v", envelope)
	}
	state, ok := payload["state"].(map[string]any)
	if !ok {
		t.Fatalf("expected state in payload, got %#v", payload)
	}
	return state
}

func TestWebsocketRejectsMissingIdentity(t *testing.T) {
	env := newTestEnv(t)
	sessionID, _ := createSession(t, env.ts, "guest-ada", "Ada", false)
	conn := dialSession(t, env, sessionID, nil)
	expectClosed(t, conn, websocket.ClosePolicyViolation, "UNAUTHORIZED")

	bad := dialSession(t, env, sessionID, url.Values{"token": {"garbage"}, "guestId": {"guest-ada"}})
	expectClosed(t, bad, websocket.ClosePolicyViolation, "UNAUTHORIZED")
	malformed := dialSession(t, env, sessionID, url.Values{"guestId": {"guest ada!"}})
	expectClosed(t, malformed, websocket.ClosePolicyViolation, "UNAUTHORIZED")
	if size := env.hub.RoomSize(sessionID); size != 0 {
		t.Fatalf("expected rejected sockets to stay unregistered, got %d", size)
	}
}

func TestWebsocketRejectsNonMembers(t *testing.T) {
	env := newTestEnv(t)
	sessionID, _ := createSession(t, env.ts, "guest-ada", "Ada", false)
	conn := dialGuest(t, env, sessionID, "guest-stranger")
	expectClosed(t, conn, websocket.ClosePolicyViolation, "NOT_IN_SESSION")

	missing := dialGuest(t, env, "no-such-session", "guest-ada")
	expectClosed(t, missing, websocket.ClosePolicyViolation, "NOT_IN_SESSION")
}

func TestWebsocketSendsSnapshotOnConnect(t *testing.T) {
	env := newTestEnv(t)
	sessionID, _ := createSession(t, env.ts, "guest-ada", "Ada", false)
	conn := dialGuest(t, env, sessionID, "guest-ada")
	envelope := expectEnvelopeType(t, conn, "STATE")
	payload := envelope["payload"].(map[string]any)
	if payload["session"].(map[string]any)["id"] != sessionID {
		t.Fatalf("expected snapshot of %s, got %#v", sessionID, payload)
	}

	joinSession(t, env.ts, sessionID, "guest-bob", "Bob")
	update := expectEnvelopeType(t, conn, "STATE")
	if players := playersOf(t, update["payload"].(map[string]any)); len(players) != 2 {
		t.Fatalf("expected join to be pushed, got %#v", players)
	}
}

func TestWebsocketTokenWinsOverGuest(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-ada", "Ada")
	resp := doRequestWithToken(t, env.ts, "POST", "/api/sessions", token, map[string]any{})
	body := decodeBody(t, resp)
	sessionID := body["session"].(map[string]any)["id"].(string)

	conn := dialSession(t, env, sessionID, url.Values{"token": {token}, "guestId": {"guest-stranger"}})
	expectEnvelopeType(t, conn, "STATE")
}

func TestWebsocketTurnCommands(t *testing.T) {
	env := newTestEnv(t)
	sessionID, _ := createSession(t, env.ts, "guest-ada", "Ada", false)
	joinSession(t, env.ts, sessionID, "guest-bob", "Bob")
	startSession(t, env.ts, sessionID, "guest-ada")

	ada := dialGuest(t, env, sessionID, "guest-ada")
	bob := dialGuest(t, env, sessionID, "guest-bob")
	expectEnvelopeType(t, ada, "STATE")
	expectEnvelopeType(t, bob, "STATE")

	sendFrame(t, ada, `{"type":"LOCK","payload":{"diceIndex":0}}`)
	for _, conn := range []*websocket.Conn{ada, bob} {
		dice := stateOf(t, expectEnvelopeType(t, conn, "STATE"))["dice"].([]any)
		if dice[0].(map[string]any)["locked"] != true {
			t.Fatalf("expected die 0 locked, got %#v", dice[0])
		}
	}

	sendFrame(t, ada, `{"type":"ROLL"}`)
	for _, conn := range []*websocket.Conn{ada, bob} {
		state := stateOf(t, expectEnvelopeType(t, conn, "STATE"))
		dice := state["dice"].([]any)
		if state["triesLeft"].(float64) != 2 {
			t.Fatalf("expected 2 tries left, got %v", state["triesLeft"])
		}
		if dice[0].(map[string]any)["face"].(float64) != 1 || dice[1].(map[string]any)["face"].(float64) != 6 {
			t.Fatalf("expected locked die kept and others rolled, got %#v", dice)
		}
	}

	sendFrame(t, bob, `{"type":"ROLL"}`)
	expectErrorFrame(t, bob, "NOT_YOUR_TURN")

	// Bob's error went to Bob alone, so Ada's next frame is the score update.
	sendFrame(t, ada, `{"type":"CHOOSE_SCORE","payload":{"scoreKey":"sixes"}}`)
	for _, conn := range []*websocket.Conn{ada, bob} {
		state := stateOf(t, expectEnvelopeType(t, conn, "STATE"))
		if state["currentPlayerSlot"].(float64) != 2 {
			t.Fatalf("expected turn to pass to slot 2, got %v", state["currentPlayerSlot"])
		}
		sheet := state["scores"].(map[string]any)["1"].(map[string]any)
		if sheet["categories"].(map[string]any)["sixes"].(float64) != 24 {
			t.Fatalf("expected sixes scored 24, got %#v", sheet)
		}
	}
}

func TestWebsocketMalformedFrames(t *testing.T) {
	env := newTestEnv(t)
	sessionID, _ := createSession(t, env.ts, "guest-ada", "Ada", false)
	startSession(t, env.ts, sessionID, "guest-ada")
	conn := dialGuest(t, env, sessionID, "guest-ada")
	expectEnvelopeType(t, conn, "STATE")

	sendFrame(t, conn, `{not json`)
	expectErrorFrame(t, conn, "INVALID_MESSAGE")
	sendFrame(t, conn, `{"type":"DANCE"}`)
	expectErrorFrame(t, conn, "UNKNOWN_MESSAGE_TYPE")
	sendFrame(t, conn, `{"type":"LOCK"}`)
	expectErrorFrame(t, conn, "INVALID_MESSAGE")
	sendFrame(t, conn, `{"type":"LOCK","payload":{"diceIndex":7}}`)
	expectErrorFrame(t, conn, "INVALID_DICE_INDEX")
	sendFrame(t, conn, `{"type":"CHOOSE_SCORE","payload":{"scoreKey":"bogus"}}`)
	expectErrorFrame(t, conn, "INVALID_SCORE_KEY")
}

func TestWebsocketGameOver(t *testing.T) {
	env := newTestEnv(t)
	sessionID, _ := createSession(t, env.ts, "guest-ada", "Ada", false)
	startSession(t, env.ts, sessionID, "guest-ada")
	conn := dialGuest(t, env, sessionID, "guest-ada")
	expectEnvelopeType(t, conn, "STATE")

	categories := []string{
		"ones", "twos", "threes", "fours", "fives", "sixes",
		"three_of_a_kind", "four_of_a_kind", "full_house",
		"small_straight", "large_straight", "dice", "chance",
	}
	for _, category := range categories {
		sendFrame(t, conn, `{"type":"CHOOSE_SCORE","payload":{"scoreKey":"`+category+`"}}`)
		expectEnvelopeType(t, conn, "STATE")
	}
	over := expectEnvelopeType(t, conn, "GAME_OVER")
	payload := over["payload"].(map[string]any)
	if payload["session"].(map[string]any)["status"] != "FINISHED" {
		t.Fatalf("expected FINISHED session, got %#v", payload["session"])
	}

	sendFrame(t, conn, `{"type":"ROLL"}`)
	expectErrorFrame(t, conn, "SESSION_NOT_PLAYING")
}

func TestWebsocketCloseUnregisters(t *testing.T) {
	env := newTestEnv(t)
	sessionID, _ := createSession(t, env.ts, "guest-ada", "Ada", false)
	conn := dialGuest(t, env, sessionID, "guest-ada")
	expectEnvelopeType(t, conn, "STATE")
	if size := env.hub.RoomSize(sessionID); size != 1 {
		t.Fatalf("expected 1 registered socket, got %d", size)
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for env.hub.RoomSize(sessionID) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected socket to be unregistered after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
