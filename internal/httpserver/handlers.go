package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sutarpriyanshu/ArguMentor/internal/debate"
)

// Handlers binds the response pipeline to the HTTP surface. The pipeline is
// stateless per call, so one Handlers value serves any number of debates.
type Handlers struct {
	Pipeline debate.Pipeline
}

// Register attaches all routes.
func (h Handlers) Register(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.POST("/api/debate", h.debateTurn)
	e.POST("/api/end-debate", h.endDebate)
}

type errorBody struct {
	Error string `json:"error"`
}

func (h Handlers) debateTurn(c echo.Context) error {
	var req debate.TurnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
	}
	resp, err := h.Pipeline.GenerateTurn(c.Request().Context(), req)
	if err != nil {
		c.Logger().Errorf("generate turn failed: %v", err)
		return c.JSON(http.StatusInternalServerError,
			errorBody{Error: "An error occurred while generating the debate response."})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h Handlers) endDebate(c echo.Context) error {
	var req debate.ScoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
	}
	result, err := h.Pipeline.ScoreDebate(c.Request().Context(), req)
	if err != nil {
		c.Logger().Errorf("end debate failed: %v", err)
		return c.JSON(http.StatusInternalServerError,
			errorBody{Error: "An error occurred while ending the debate."})
	}
	return c.JSON(http.StatusOK, result)
}
