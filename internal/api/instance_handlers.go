package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"netcode-backend/internal/auth"
	"netcode-backend/internal/orchestrator"
)

const shellUnreachable = "Could not reach netcode-shell"

// createSessionRequest represents the request body for instance creation
type createSessionRequest struct {
	MaxPlayers *int `json:"max_players"`
	Port       int  `json:"port"`
	TickRate   int  `json:"tick_rate"`
}

// createSession handles POST /api/create-session. Bounds are checked here
// before the shell is ever contacted.
func (h *Handlers) createSession(c echo.Context) error {
	identity := auth.IdentityFromContext(c)

	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}

	if req.MaxPlayers == nil {
		return errorJSON(c, http.StatusForbidden, "You must specify the maximum number of players")
	}
	if *req.MaxPlayers < orchestrator.MinPlayers || *req.MaxPlayers > orchestrator.MaxPlayers {
		return errorJSON(c, http.StatusForbidden, "Max players must be between 2-16")
	}
	if req.TickRate < orchestrator.MinTickRate || req.TickRate > orchestrator.MaxTickRate {
		return errorJSON(c, http.StatusForbidden, "Tick rate must be between 1-240")
	}

	result, err := h.Shell.CreateInstance(c.Request().Context(), orchestrator.InstanceRequest{
		MaxPlayers: *req.MaxPlayers,
		OwnerID:    identity.ID,
		Port:       req.Port,
		TickRate:   req.TickRate,
	})
	if err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrUnavailable):
			return errorJSON(c, http.StatusInternalServerError, shellUnreachable)
		case errors.Is(err, orchestrator.ErrMalformed):
			return errorJSON(c, http.StatusInternalServerError, "Unexpected error")
		default:
			c.Logger().Error("create session error: ", err)
			return errorJSON(c, http.StatusInternalServerError, "Unexpected error")
		}
	}

	return c.JSONBlob(http.StatusOK, result)
}

// serversStatus handles GET /api/servers-status: shell passthrough
func (h *Handlers) serversStatus(c echo.Context) error {
	status, err := h.Shell.GetStatus(c.Request().Context())
	if err != nil {
		if errors.Is(err, orchestrator.ErrMalformed) {
			return errorJSON(c, http.StatusInternalServerError, "Unexpected error")
		}
		return errorJSON(c, http.StatusInternalServerError, shellUnreachable)
	}

	return c.JSONBlob(http.StatusOK, status)
}

// serversStatusWS handles GET /api/servers-status/ws: pushes status
// snapshots over a WebSocket until the client goes away
func (h *Handlers) serversStatusWS(c echo.Context) error {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// Drain reads to notice the client closing the connection
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		status, err := h.Shell.GetStatus(ctx)
		if err != nil {
			ws.WriteJSON(map[string]string{"error": shellUnreachable})
		} else {
			ws.WriteMessage(websocket.TextMessage, status)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
