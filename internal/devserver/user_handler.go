// Package devserver – current-user endpoints.
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

// Me handles GET /users/me.
func (h *Handlers) Me(c *gin.Context) {
	u, err := repo.GetUser(c.Request.Context(), h.db, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			failNotFound(c, "User")
			return
		}
		fail(c, http.StatusInternalServerError, "could not load user")
		return
	}
	c.JSON(http.StatusOK, domain.UserEnvelope{User: *u})
}

// profileUpdateRequest is the PUT /users/me body. Absent fields are left
// unchanged.
type profileUpdateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UpdateMe handles PUT /users/me. Changing to a username or email another
// account holds is rejected with a duplicate_value detail.
func (h *Handlers) UpdateMe(c *gin.Context) {
	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrorDetail{Msg: "invalid request body"})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" && req.Email == "" {
		fail(c, http.StatusBadRequest, ErrorDetail{Msg: "nothing to update"})
		return
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		fail(c, http.StatusBadRequest, ErrorDetail{Msg: "a valid email is required"})
		return
	}

	ctx := c.Request.Context()
	uid := middleware.UserID(c)

	if req.Username != "" {
		if taken, err := repo.UsernameTaken(ctx, h.db, req.Username, uid); err != nil {
			fail(c, http.StatusInternalServerError, "could not update user")
			return
		} else if taken {
			failDuplicate(c, "User", "username")
			return
		}
	}
	if req.Email != "" {
		if taken, err := repo.EmailTaken(ctx, h.db, req.Email, uid); err != nil {
			fail(c, http.StatusInternalServerError, "could not update user")
			return
		} else if taken {
			failDuplicate(c, "User", "email")
			return
		}
	}

	u, err := repo.UpdateUser(ctx, h.db, uid, req.Username, req.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			failNotFound(c, "User")
			return
		}
		fail(c, http.StatusInternalServerError, "could not update user")
		return
	}
	c.JSON(http.StatusOK, domain.UserEnvelope{User: *u})
}
