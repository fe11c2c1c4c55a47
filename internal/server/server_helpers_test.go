package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func createSession(t *testing.T, ts *httptest.Server, guestID, displayName string, public bool) (string, string) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/sessions", map[string]any{
		"name":        "Friday dice",
		"isPublic":    public,
		"displayName": displayName,
		"guestId":     guestID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	session := body["session"].(map[string]any)
	return session["id"].(string), session["joinCode"].(string)
}

func joinSession(t *testing.T, ts *httptest.Server, sessionID, guestID, displayName string) map[string]any {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/sessions/"+sessionID+"/join", map[string]string{
		"guestId":     guestID,
		"displayName": displayName,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func startSession(t *testing.T, ts *httptest.Server, sessionID, guestID string) map[string]any {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/sessions/"+sessionID+"/start", map[string]string{
		"guestId": guestID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	return doRequestWithToken(t, ts, method, path, "", payload)
}

func doRequestWithToken(t *testing.T, ts *httptest.Server, method, path, token string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func expectError(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("expected status %d, got %d", status, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != code {
		t.Fatalf("expected error %s, got %v", code, body["error"])
	}
}

func playersOf(t *testing.T, view map[string]any) []map[string]any {
	t.Helper()
	raw, ok := view["players"].([]any)
	if !ok {
		t.Fatalf("expected players array, got %#v", view["players"])
	}
	players := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		players = append(players, entry.(map[string]any))
	}
	return players
}
