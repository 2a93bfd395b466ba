package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/logger"
)

type sessionInfo struct {
	Name       string `json:"name"`
	Messages   int    `json:"messages"`
	Current    bool   `json:"current"`
	Processing bool   `json:"processing"`
}

type createSessionReq struct {
	Name string `json:"name" binding:"required"`
}

type questionReq struct {
	Question string `json:"question" binding:"required"`
}

// GET /api/state
func (s *Server) getState(c *gin.Context) {
	respondOK(c, s.ports.Conversation.View())
}

// GET /api/sessions
func (s *Server) listSessions(c *gin.Context) {
	conv := s.ports.Conversation
	current := conv.Current()
	names := conv.Sessions()

	sessions := make([]sessionInfo, 0, len(names))
	for _, name := range names {
		msgs, err := conv.Messages(name)
		if err != nil {
			// Deleted between Sessions and Messages
			continue
		}
		sessions = append(sessions, sessionInfo{
			Name:       name,
			Messages:   len(msgs),
			Current:    name == current,
			Processing: conv.Processing(name),
		})
	}
	respondOK(c, gin.H{"current": current, "sessions": sessions})
}

// POST /api/sessions
func (s *Server) createSession(c *gin.Context) {
	var req createSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := s.ports.Conversation.CreateSession(req.Name); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": strings.TrimSpace(req.Name)})
}

// DELETE /api/sessions/:name
func (s *Server) deleteSession(c *gin.Context) {
	if err := s.ports.Conversation.DeleteSession(c.Param("name")); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/sessions/:name/select
func (s *Server) selectSession(c *gin.Context) {
	if err := s.ports.Conversation.SelectSession(c.Param("name")); err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, s.ports.Conversation.View())
}

// GET /api/sessions/:name/messages
func (s *Server) listMessages(c *gin.Context) {
	name := c.Param("name")
	msgs, err := s.ports.Conversation.Messages(name)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"session": name, "messages": msgs})
}

// DELETE /api/sessions/:name/messages/:index
func (s *Server) deleteMessage(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_index", err)
		return
	}
	if err := s.ports.Conversation.DeleteMessage(c.Param("name"), index); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/sessions/:name/questions
//
// The answer streams in the background; follow it on /api/events.
func (s *Server) submitQuestion(c *gin.Context) {
	name := c.Param("name")

	var req questionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		respondDomainError(c, fmt.Errorf("%w: question", domain.ErrEmptyInput))
		return
	}
	if _, err := s.ports.Conversation.Messages(name); err != nil {
		respondDomainError(c, err)
		return
	}
	turn, err := s.ports.Chat.Begin(s.baseCtx, name, question)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := turn.Run(); err != nil {
			logger.Warn("answer in session %q: %v", name, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"session": name, "status": "accepted"})
}

// POST /api/sessions/:name/stop
func (s *Server) stopAnswer(c *gin.Context) {
	stopped := s.ports.Chat.Stop(c.Param("name"))
	respondOK(c, gin.H{"stopped": stopped})
}

// GET /api/models
func (s *Server) listModels(c *gin.Context) {
	models, err := s.ports.Chat.Models(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if models == nil {
		models = []string{}
	}
	respondOK(c, gin.H{"models": models})
}
