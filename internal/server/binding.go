package server

import (
	"errors"
	"io"
	"net/http"

	"yacht-dice/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type bindMessages map[string]map[string]string

func bindJSON(c *gin.Context, req any, messages bindMessages, fallback string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(game.CodeInvalidRequest, resolveBindError(err, messages, fallback)))
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints whose body may be omitted by
// callers that authenticate with a bearer token.
func bindOptionalJSON(c *gin.Context, req any, messages bindMessages, fallback string) bool {
	err := c.ShouldBindJSON(req)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	c.JSON(http.StatusBadRequest, errorBody(game.CodeInvalidRequest, resolveBindError(err, messages, fallback)))
	return false
}

func bindURI(c *gin.Context, req any) bool {
	if err := c.ShouldBindUri(req); err != nil {
		c.JSON(http.StatusNotFound, errorBody(game.CodeSessionNotFound, "session not found"))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req any, messages bindMessages, fallback string) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(game.CodeInvalidRequest, resolveBindError(err, messages, fallback)))
		return false
	}
	return true
}

func resolveBindError(err error, messages bindMessages, fallback string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			if fieldMsgs, ok := messages[verr.Field()]; ok {
				if msg, ok := fieldMsgs[verr.Tag()]; ok {
					return msg
				}
			}
		}
	}
	if fallback != "" {
		return fallback
	}
	return "invalid request"
}
