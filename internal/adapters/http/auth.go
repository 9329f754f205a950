package http

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jsflux/encore/internal/domain"
)

const sessionUserKey = "userID"

// Plain credential comparison only; no hashing, no tokens. Auth proper is
// out of scope for this server.
func (a *API) register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Nickname string `json:"nickname"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("bad body: %w", domain.ErrValidation))
		return
	}
	user, err := domain.NewAppUser(req.Email, req.Password, req.Nickname)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := a.Store.Users().Create(c.Request.Context(), user); err != nil {
		abortWithError(c, err)
		return
	}
	log.Info().Str("module", "adapters.http").Str("email", user.Email).Msg("registered")
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (a *API) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("bad body: %w", domain.ErrValidation))
		return
	}
	if req.Email == "" {
		abortWithError(c, fmt.Errorf("email is required: %w", domain.ErrValidation))
		return
	}
	if req.Password == "" {
		abortWithError(c, fmt.Errorf("password is required: %w", domain.ErrValidation))
		return
	}
	user, err := a.Store.Users().ByEmail(c.Request.Context(), req.Email)
	if err != nil || user.Password != req.Password {
		abortWithError(c, domain.ErrBadCredentials)
		return
	}

	sess := sessions.Default(c)
	sess.Set(sessionUserKey, int64(user.ID))
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (a *API) me(c *gin.Context) {
	var id domain.UserID
	if v := sessions.Default(c).Get(sessionUserKey); v != nil {
		if raw, ok := v.(int64); ok {
			id = domain.UserID(raw)
		}
	}
	if id == 0 {
		var query struct {
			UserID int64 `form:"userId"`
		}
		_ = c.ShouldBindQuery(&query)
		id = domain.UserID(query.UserID)
	}
	if id == 0 {
		id = 1
	}
	user, err := a.Store.Users().ByID(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}
