package game

import "errors"

// Code is a stable, machine-readable business-rule violation.
type Code string

const (
	CodeUserOrGuestRequired  Code = "USER_OR_GUEST_REQUIRED"
	CodeDisplayNameRequired  Code = "DISPLAY_NAME_REQUIRED"
	CodeSessionNotFound      Code = "SESSION_NOT_FOUND"
	CodeSessionNotWaiting    Code = "SESSION_ALREADY_STARTED_OR_FINISHED"
	CodeSessionFull          Code = "SESSION_FULL"
	CodeAlreadyInSession     Code = "ALREADY_IN_SESSION"
	CodeCannotLeaveStarted   Code = "CANNOT_LEAVE_STARTED_GAME"
	CodeMinOnePlayerRequired Code = "MIN_ONE_PLAYER_REQUIRED"
	CodeOnlyCreatorCanStart  Code = "ONLY_CREATOR_CAN_START"
	CodeSessionNotPlaying    Code = "SESSION_NOT_PLAYING"
	CodeNotInSession         Code = "NOT_IN_SESSION"
	CodeNoGameState          Code = "NO_GAME_STATE"
	CodeNotYourTurn          Code = "NOT_YOUR_TURN"
	CodeNoTriesLeft          Code = "NO_TRIES_LEFT"
	CodeInvalidDiceIndex     Code = "INVALID_DICE_INDEX"
	CodeInvalidScoreKey      Code = "INVALID_SCORE_KEY"
	CodeNoScoresForPlayer    Code = "NO_SCORES_FOR_PLAYER"
	CodeScoreAlreadySet      Code = "SCORE_ALREADY_SET"
	CodeInvalidRequest       Code = "INVALID_REQUEST"
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeInternal             Code = "INTERNAL_ERROR"
)

// Error is a business-rule violation. Infrastructure failures are never
// reported as *Error.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Fail builds an *Error whose message is its code.
func Fail(code Code) *Error {
	return &Error{Code: code, Message: string(code)}
}

// CodeOf returns the business code carried by err, if any.
func CodeOf(err error) (Code, bool) {
	var gameErr *Error
	if errors.As(err, &gameErr) {
		return gameErr.Code, true
	}
	return "", false
}

// Repository sentinels. Implementations translate their driver errors to
// these so callers never import a storage package.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateJoinCode = errors.New("join code already in use")
)
