// Package httpserver exposes the debate API over HTTP.
package httpserver

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sutarpriyanshu/ArguMentor/internal/debate"
)

// New creates a configured Echo server with the debate routes registered.
// timeout bounds each pipeline call through the request context; zero
// means no deadline.
func New(p debate.Pipeline, timeout time.Duration) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if timeout > 0 {
		e.Use(requestTimeout(timeout))
	}

	h := Handlers{Pipeline: p}
	h.Register(e)
	return e
}

func requestTimeout(d time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), d)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
