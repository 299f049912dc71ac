// Package devserver – chat and message endpoints.
package devserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-chat-client/internal/domain"
	"github.com/tbourn/go-chat-client/internal/middleware"
	"github.com/tbourn/go-chat-client/internal/repo"
)

// ListChats handles GET /chats.
func (h *Handlers) ListChats(c *gin.Context) {
	chats, err := repo.ListChats(c.Request.Context(), h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not list chats")
		return
	}
	c.JSON(http.StatusOK, domain.ChatsEnvelope{
		Meta:  domain.Meta{Count: len(chats)},
		Chats: chats,
	})
}

// ListMessages handles GET /chats/:id/messages. Messages come back
// oldest-first with authors embedded.
func (h *Handlers) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	chatID := c.Param("id")

	if _, err := repo.GetChat(ctx, h.db, chatID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			failNotFound(c, "Chat")
			return
		}
		fail(c, http.StatusInternalServerError, "could not load chat")
		return
	}

	msgs, err := repo.ListMessages(ctx, h.db, chatID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not list messages")
		return
	}
	c.JSON(http.StatusOK, domain.MessagesEnvelope{
		Meta:     domain.Meta{Count: len(msgs)},
		Messages: msgs,
	})
}

// postMessageRequest is the POST /chats/:id/messages body.
type postMessageRequest struct {
	Text string `json:"text"`
}

// PostMessage handles POST /chats/:id/messages on behalf of the
// authenticated user.
func (h *Handlers) PostMessage(c *gin.Context) {
	ctx := c.Request.Context()
	chatID := c.Param("id")

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrorDetail{Msg: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		fail(c, http.StatusBadRequest, ErrorDetail{Msg: "text must not be empty"})
		return
	}

	if _, err := repo.GetChat(ctx, h.db, chatID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			failNotFound(c, "Chat")
			return
		}
		fail(c, http.StatusInternalServerError, "could not load chat")
		return
	}

	msg, err := repo.CreateMessage(ctx, h.db, chatID, middleware.UserID(c), req.Text)
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not store message")
		return
	}
	c.JSON(http.StatusCreated, domain.MessageEnvelope{Message: *msg})
}
