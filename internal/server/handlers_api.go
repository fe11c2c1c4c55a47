package server

import (
	"net/http"

	"yacht-dice/internal/engine"
	"yacht-dice/internal/game"

	"github.com/gin-gonic/gin"
)

type sessionURI struct {
	ID string `uri:"id" binding:"required"`
}

type joinCodeURI struct {
	Code string `uri:"code" binding:"required"`
}

type createSessionRequest struct {
	Name        string `json:"name" binding:"omitempty,max=64"`
	IsPublic    bool   `json:"isPublic"`
	DisplayName string `json:"displayName" binding:"omitempty,displayname"`
	GuestID     string `json:"guestId" binding:"omitempty,guestid"`
}

type joinRequest struct {
	DisplayName string `json:"displayName" binding:"omitempty,displayname"`
	GuestID     string `json:"guestId" binding:"omitempty,guestid"`
}

type joinByCodeRequest struct {
	JoinCode    string `json:"joinCode" binding:"required,joincode"`
	DisplayName string `json:"displayName" binding:"omitempty,displayname"`
	GuestID     string `json:"guestId" binding:"omitempty,guestid"`
}

type guestRequest struct {
	GuestID string `json:"guestId" binding:"omitempty,guestid"`
}

type guestQuery struct {
	GuestID string `form:"guestId" binding:"omitempty,guestid"`
}

var requestMessages = bindMessages{
	"Name": {
		"max": "session name must be 64 characters or fewer",
	},
	"DisplayName": {
		"displayname": "display name must be 1-48 printable characters",
	},
	"GuestID": {
		"guestid": "guest id must be 1-64 letters, digits, '-' or '_'",
	},
	"JoinCode": {
		"required": "join code is required",
		"joincode": "join code must be 6 characters",
	},
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	var req createSessionRequest
	if !bindJSON(c, &req, requestMessages, "invalid session") {
		return
	}
	who, err := s.identify(c, req.GuestID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	name, err := s.displayName(c.Request.Context(), who, req.DisplayName)
	if err != nil {
		s.writeError(c, err)
		return
	}
	view, err := s.engine.Create(c.Request.Context(), who.identity, engine.CreateInput{
		Name:        req.Name,
		IsPublic:    req.IsPublic,
		DisplayName: name,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (s *Server) handleListPublic(c *gin.Context) {
	sessions, err := s.engine.ListPublicWaiting(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	if sessions == nil {
		sessions = []game.Session{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (s *Server) handleGetSession(c *gin.Context) {
	var uri sessionURI
	if !bindURI(c, &uri) {
		return
	}
	view, err := s.engine.View(c.Request.Context(), uri.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleFindByCode(c *gin.Context) {
	var uri joinCodeURI
	if !bindURI(c, &uri) {
		return
	}
	session, err := s.engine.FindByJoinCode(c.Request.Context(), uri.Code)
	if err != nil {
		s.writeError(c, err)
		return
	}
	view, err := s.engine.View(c.Request.Context(), session.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleJoinSession(c *gin.Context) {
	var uri sessionURI
	if !bindURI(c, &uri) {
		return
	}
	var req joinRequest
	if !bindOptionalJSON(c, &req, requestMessages, "invalid join request") {
		return
	}
	who, err := s.identify(c, req.GuestID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	name, err := s.displayName(c.Request.Context(), who, req.DisplayName)
	if err != nil {
		s.writeError(c, err)
		return
	}
	view, err := s.engine.Join(c.Request.Context(), uri.ID, who.identity, name)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleJoinByCode(c *gin.Context) {
	var req joinByCodeRequest
	if !bindJSON(c, &req, requestMessages, "invalid join request") {
		return
	}
	who, err := s.identify(c, req.GuestID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	name, err := s.displayName(c.Request.Context(), who, req.DisplayName)
	if err != nil {
		s.writeError(c, err)
		return
	}
	view, err := s.engine.JoinByCode(c.Request.Context(), req.JoinCode, who.identity, name)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleLeaveSession(c *gin.Context) {
	var uri sessionURI
	if !bindURI(c, &uri) {
		return
	}
	var req guestRequest
	if !bindOptionalJSON(c, &req, requestMessages, "invalid leave request") {
		return
	}
	who, err := s.identify(c, req.GuestID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.engine.Leave(c.Request.Context(), uri.ID, who.identity); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleStartSession(c *gin.Context) {
	var uri sessionURI
	if !bindURI(c, &uri) {
		return
	}
	var req guestRequest
	if !bindOptionalJSON(c, &req, requestMessages, "invalid start request") {
		return
	}
	who, err := s.identify(c, req.GuestID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	view, err := s.engine.Start(c.Request.Context(), uri.ID, who.identity)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleMySessions(c *gin.Context) {
	var query guestQuery
	if !bindQuery(c, &query, requestMessages, "invalid guest id") {
		return
	}
	who, err := s.identify(c, query.GuestID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	ids, err := s.engine.SessionsFor(c.Request.Context(), who.identity)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"sessionIds": ids})
}
