package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health check
func healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// emptyJSON is the canonical "nothing to report" success body
func emptyJSON(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{})
}

func errorJSON(c echo.Context, code int, message string) error {
	return c.JSON(code, map[string]string{
		"error": message,
	})
}
