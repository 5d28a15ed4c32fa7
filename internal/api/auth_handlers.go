package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"netcode-backend/internal/auth"
	"netcode-backend/internal/database"
	"netcode-backend/internal/models"
)

// status handles GET /api/status: the resolved identity, or {} if anonymous
func (h *Handlers) status(c echo.Context) error {
	identity := auth.IdentityFromContext(c)
	if identity == nil {
		return emptyJSON(c)
	}
	return c.JSON(http.StatusOK, identity)
}

// register handles POST /api/register
func (h *Handlers) register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}

	if _, err := h.Auth.Register(req); err != nil {
		var verr *auth.ValidationError
		switch {
		case errors.As(err, &verr):
			return errorJSON(c, http.StatusForbidden, verr.Message)
		case errors.Is(err, database.ErrUsernameTaken):
			return errorJSON(c, http.StatusForbidden, "Username is already taken, text us if you wanna claim yours")
		default:
			c.Logger().Error("register error: ", err)
			return errorJSON(c, http.StatusInternalServerError, "registration failed")
		}
	}

	return emptyJSON(c)
}

// login handles POST /api/login
func (h *Handlers) login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}

	result, err := h.Auth.Login(req.Username, req.Password)
	if err != nil {
		var verr *auth.ValidationError
		switch {
		case errors.As(err, &verr):
			return errorJSON(c, http.StatusForbidden, verr.Message)
		case errors.Is(err, auth.ErrInvalidCredentials):
			// Unknown username and wrong password answer identically
			return errorJSON(c, http.StatusForbidden, "Invalid login details")
		default:
			c.Logger().Error("login error: ", err)
			return errorJSON(c, http.StatusInternalServerError, "authentication failed")
		}
	}

	h.Limiter.RecordSuccess(c.RealIP())
	auth.SetAuthCookie(c, result.Token, result.ExpiresAt)

	return c.JSON(http.StatusOK, result.Identity)
}

// logout handles GET /api/logout
func (h *Handlers) logout(c echo.Context) error {
	identity := auth.IdentityFromContext(c)

	if err := h.Auth.Revoke(identity.ID); err != nil {
		c.Logger().Error("logout error: ", err)
		return errorJSON(c, http.StatusInternalServerError, "logout failed")
	}

	auth.ClearAuthCookie(c)
	return emptyJSON(c)
}
