package game

import "strings"

// IdentityKind tags which half of Identity is populated.
type IdentityKind int

const (
	IdentityNone IdentityKind = iota
	IdentityUser
	IdentityGuest
)

func (k IdentityKind) String() string {
	switch k {
	case IdentityUser:
		return "user"
	case IdentityGuest:
		return "guest"
	default:
		return "none"
	}
}

// Identity is either an authenticated user or an anonymous guest. The zero
// value is invalid and rejected by every engine operation.
type Identity struct {
	kind IdentityKind
	id   string
}

func User(id string) Identity {
	id = strings.TrimSpace(id)
	if id == "" {
		return Identity{}
	}
	return Identity{kind: IdentityUser, id: id}
}

func Guest(id string) Identity {
	id = strings.TrimSpace(id)
	if id == "" {
		return Identity{}
	}
	return Identity{kind: IdentityGuest, id: id}
}

// ResolveIdentity requires exactly one of userID and guestID.
func ResolveIdentity(userID, guestID string) (Identity, error) {
	user := User(userID)
	guest := Guest(guestID)
	switch {
	case user.Valid() && guest.Valid():
		return Identity{}, NewError(CodeUserOrGuestRequired, "provide either a user or a guest id, not both")
	case user.Valid():
		return user, nil
	case guest.Valid():
		return guest, nil
	default:
		return Identity{}, Fail(CodeUserOrGuestRequired)
	}
}

func (i Identity) Kind() IdentityKind { return i.kind }

func (i Identity) ID() string { return i.id }

func (i Identity) Valid() bool { return i.kind != IdentityNone && i.id != "" }

// UserID returns the user id or "" for guests.
func (i Identity) UserID() string {
	if i.kind == IdentityUser {
		return i.id
	}
	return ""
}

// GuestID returns the guest id or "" for users.
func (i Identity) GuestID() string {
	if i.kind == IdentityGuest {
		return i.id
	}
	return ""
}

func (i Identity) String() string {
	return i.kind.String() + ":" + i.id
}
