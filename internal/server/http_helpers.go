package server

import (
	"net/http"

	"yacht-dice/internal/game"

	"github.com/gin-gonic/gin"
)

func errorBody(code game.Code, message string) gin.H {
	return gin.H{"error": string(code), "message": message}
}

// statusFor maps a business code to its HTTP status.
func statusFor(code game.Code) int {
	switch code {
	case game.CodeSessionNotFound:
		return http.StatusNotFound
	case game.CodeUserOrGuestRequired, game.CodeUnauthorized:
		return http.StatusUnauthorized
	case game.CodeOnlyCreatorCanStart, game.CodeNotYourTurn, game.CodeNotInSession:
		return http.StatusForbidden
	case game.CodeDisplayNameRequired, game.CodeInvalidDiceIndex, game.CodeInvalidScoreKey, game.CodeInvalidRequest:
		return http.StatusBadRequest
	case game.CodeSessionNotWaiting, game.CodeSessionFull, game.CodeAlreadyInSession,
		game.CodeCannotLeaveStarted, game.CodeMinOnePlayerRequired, game.CodeSessionNotPlaying,
		game.CodeNoGameState, game.CodeNoTriesLeft, game.CodeNoScoresForPlayer, game.CodeScoreAlreadySet:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports business errors by code and hides everything else
// behind a generic 500.
func (s *Server) writeError(c *gin.Context, err error) {
	code, ok := game.CodeOf(err)
	if ok {
		if status := statusFor(code); status != http.StatusInternalServerError {
			c.JSON(status, errorBody(code, err.Error()))
			return
		}
	}
	s.logger.Error("request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"session_id", c.Param("id"),
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
