package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/users"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/validation"
)

// RegisterUser handles POST /api/auth/register.
func (a *API) RegisterUser(c *gin.Context) {
	var req validation.RegisterRequest
	if err := validation.BindAndValidate(c, &req, a.Validator); err != nil {
		return
	}

	u, err := a.Users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			a.fail(c, http.StatusConflict, "email_taken", err)
			return
		}
		log.Error().Err(err).Msg("register failed")
		a.fail(c, http.StatusInternalServerError, "register_failed", err)
		return
	}

	token, err := a.Issuer.Sign(u.UserID, u.Name, u.IsAdmin)
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "token_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u, "token": token})
}

// Login handles POST /api/auth/login.
func (a *API) Login(c *gin.Context) {
	var req validation.LoginRequest
	if err := validation.BindAndValidate(c, &req, a.Validator); err != nil {
		return
	}

	u, err := a.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			a.fail(c, http.StatusUnauthorized, "invalid_credentials", nil)
			return
		}
		a.fail(c, http.StatusInternalServerError, "login_failed", err)
		return
	}

	token, err := a.Issuer.Sign(u.UserID, u.Name, u.IsAdmin)
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "token_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "token": token})
}
