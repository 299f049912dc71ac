// Package devserver – credential endpoints.
//
// POST /auth/token accepts form-encoded credentials and answers with a bearer
// token payload; POST /auth/registration creates an account. Both mirror the
// shapes the client's error decoder understands.
package devserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tbourn/go-chat-client/internal/domain"
	"github.com/tbourn/go-chat-client/internal/middleware"
	"github.com/tbourn/go-chat-client/internal/repo"
)

// minPasswordLen is enforced on registration only; login accepts whatever
// was registered.
const minPasswordLen = 8

// Handlers carries the dependencies shared by all endpoint implementations.
type Handlers struct {
	db       *gorm.DB
	tokenTTL time.Duration
}

// NewHandlers constructs the endpoint set over the given database handle.
func NewHandlers(db *gorm.DB, tokenTTL time.Duration) *Handlers {
	return &Handlers{db: db, tokenTTL: tokenTTL}
}

// Token handles POST /auth/token: a form-encoded credential exchange.
// Wrong username and wrong password are indistinguishable to the caller.
func (h *Handlers) Token(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	if username == "" || password == "" {
		failAuth(c, "invalid credentials")
		return
	}

	u, err := repo.FindUserByUsername(c.Request.Context(), h.db, username)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			fail(c, http.StatusInternalServerError, "could not verify credentials")
			return
		}
		failAuth(c, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		failAuth(c, "invalid credentials")
		return
	}

	tok, err := repo.CreateAccessToken(c.Request.Context(), h.db, u.ID, h.tokenTTL)
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not issue token")
		return
	}

	middleware.LoggerFrom(c).Info().Str("user_id", u.ID).Msg("token issued")
	c.JSON(http.StatusOK, domain.Token{
		AccessToken: tok.Token,
		TokenType:   "bearer",
		ExpiresIn:   int(h.tokenTTL.Seconds()),
	})
}

// registrationRequest is the POST /auth/registration body.
type registrationRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /auth/registration. Duplicate username or email is
// rejected with a duplicate_value detail naming the offending field.
func (h *Handlers) Register(c *gin.Context) {
	var req registrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrorDetail{Msg: "invalid request body"})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	switch {
	case req.Username == "":
		fail(c, http.StatusBadRequest, ErrorDetail{Msg: "username is required"})
		return
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		fail(c, http.StatusBadRequest, ErrorDetail{Msg: "a valid email is required"})
		return
	case len(req.Password) < minPasswordLen:
		fail(c, http.StatusBadRequest, ErrorDetail{Msg: "password must be at least 8 characters"})
		return
	}

	ctx := c.Request.Context()
	if taken, err := repo.UsernameTaken(ctx, h.db, req.Username, ""); err != nil {
		fail(c, http.StatusInternalServerError, "could not create account")
		return
	} else if taken {
		failDuplicate(c, "User", "username")
		return
	}
	if taken, err := repo.EmailTaken(ctx, h.db, req.Email, ""); err != nil {
		fail(c, http.StatusInternalServerError, "could not create account")
		return
	} else if taken {
		failDuplicate(c, "User", "email")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not create account")
		return
	}

	u, err := repo.CreateUser(ctx, h.db, req.Username, req.Email, string(hash))
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not create account")
		return
	}

	middleware.LoggerFrom(c).Info().Str("user_id", u.ID).Msg("account created")
	c.JSON(http.StatusCreated, domain.UserEnvelope{User: *u})
}
