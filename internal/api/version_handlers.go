package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"netcode-backend/internal/database"
)

// latestVersion handles GET /api/latest-version
func (h *Handlers) latestVersion(c echo.Context) error {
	version, err := h.Versions.Latest()
	if err != nil {
		if errors.Is(err, database.ErrNoVersions) {
			return emptyJSON(c)
		}
		c.Logger().Error("latest version error: ", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to look up latest version")
	}

	return c.JSON(http.StatusOK, version)
}
