package game

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestResolveIdentity(t *testing.T) {
	identity, err := ResolveIdentity("u-1", "")
	if err != nil || identity.Kind() != IdentityUser || identity.UserID() != "u-1" {
		t.Fatalf("expected user identity, got %v err=%v", identity, err)
	}
	identity, err = ResolveIdentity("  ", "g-1")
	if err != nil || identity.Kind() != IdentityGuest || identity.GuestID() != "g-1" {
		t.Fatalf("expected guest identity, got %v err=%v", identity, err)
	}
	if _, err := ResolveIdentity("", ""); !errors.Is(err, Fail(CodeUserOrGuestRequired)) {
		t.Fatalf("expected USER_OR_GUEST_REQUIRED, got %v", err)
	}
	if _, err := ResolveIdentity("u-1", "g-1"); !errors.Is(err, Fail(CodeUserOrGuestRequired)) {
		t.Fatalf("expected USER_OR_GUEST_REQUIRED for both, got %v", err)
	}
	if (Identity{}).Valid() {
		t.Fatalf("expected zero identity to be invalid")
	}
}

func TestNewJoinCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := NewJoinCode()
		if err != nil {
			t.Fatalf("new join code: %v", err)
		}
		if !ValidJoinCode(code) {
			t.Fatalf("expected valid join code, got %q", code)
		}
		if strings.ContainsAny(code, "01IO") {
			t.Fatalf("expected no ambiguous symbols, got %q", code)
		}
	}
	if got := NormalizeJoinCode(" abc234 "); got != "ABC234" {
		t.Fatalf("expected ABC234, got %q", got)
	}
}

func TestStatusTransitions(t *testing.T) {
	if !StatusWaiting.CanTransition(StatusPlaying) {
		t.Fatalf("expected WAITING -> PLAYING")
	}
	if !StatusPlaying.CanTransition(StatusFinished) {
		t.Fatalf("expected PLAYING -> FINISHED")
	}
	for _, next := range []Status{StatusWaiting, StatusPlaying, StatusFinished} {
		if StatusFinished.CanTransition(next) {
			t.Fatalf("expected FINISHED to be terminal, moved to %s", next)
		}
	}
	if StatusPlaying.CanTransition(StatusWaiting) {
		t.Fatalf("expected no transition back to WAITING")
	}
}

func TestPlayerJSONHidesGuestID(t *testing.T) {
	data, err := json.Marshal(Player{ID: "p1", Slot: 1, Identity: Guest("secret-guest"), DisplayName: "Ada"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "secret-guest") {
		t.Fatalf("expected guest id to be hidden, got %s", data)
	}
	if !strings.Contains(string(data), `"isGuest":true`) || !strings.Contains(string(data), `"displayName":"Ada"`) {
		t.Fatalf("unexpected player json %s", data)
	}
}

func TestCodeOf(t *testing.T) {
	if code, ok := CodeOf(Fail(CodeNotYourTurn)); !ok || code != CodeNotYourTurn {
		t.Fatalf("expected NOT_YOUR_TURN, got %s %v", code, ok)
	}
	if _, ok := CodeOf(errors.New("db down")); ok {
		t.Fatalf("expected plain errors to carry no code")
	}
}
