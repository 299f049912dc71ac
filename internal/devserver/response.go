// Package devserver implements the bundled development backend: a small Gin
// application speaking the same HTTP contract the chat client consumes, so
// the client can be run and tested against a local process.
//
// This file defines the error envelope. Every failure is returned as
// {"detail": ...} where detail is either a plain string or a structured
// object; the client decodes both shapes.
package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-chat-client/internal/middleware"
)

// ErrorDetail is the structured variant of the `detail` payload.
type ErrorDetail struct {
	Type             string `json:"type,omitempty"`
	EntityName       string `json:"entity_name,omitempty"`
	EntityField      string `json:"entity_field,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	Msg              string `json:"msg,omitempty"`
}

// fail aborts the request with {"detail": detail}. Server-side failures are
// logged with the request-scoped logger.
func fail(c *gin.Context, status int, detail any) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Interface("detail", detail).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// failDuplicate rejects a write because field already holds value elsewhere.
func failDuplicate(c *gin.Context, entity, field string) {
	fail(c, http.StatusConflict, ErrorDetail{
		Type:        "duplicate_value",
		EntityName:  entity,
		EntityField: field,
	})
}

// failNotFound rejects a read for a missing entity.
func failNotFound(c *gin.Context, entity string) {
	fail(c, http.StatusNotFound, ErrorDetail{
		Type:       "entity_not_found",
		EntityName: entity,
	})
}

// failAuth rejects a credential exchange or an unauthenticated request.
func failAuth(c *gin.Context, description string) {
	c.Header("WWW-Authenticate", "Bearer")
	fail(c, http.StatusUnauthorized, ErrorDetail{ErrorDescription: description})
}
