package handler // declare the package name; contains HTTP handlers

import (
	"net/http" // net/http provides status codes and response helpers

	"github.com/labstack/echo/v4" // echo is the web framework used for the admin API
)

// Health is a simple health‑check endpoint used by load balancers and
// monitoring systems to verify that the reservation server is running.
// It returns {"status":"ok"} with an HTTP 200 status code.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
