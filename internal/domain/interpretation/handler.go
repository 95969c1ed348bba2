package interpretation

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/interpret", h.Interpret)
}

// Interpret handles POST /interpret. Validation failures are 422, PII gate
// rejections are 400 with the category list, and every provider-side failure
// is a uniform 503.
func (h *Handler) Interpret(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	resp, err := h.svc.Interpret(c.Request().Context(), &req)
	if err != nil {
		var piiErr *PIIError
		if errors.As(err, &piiErr) {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": "PII detected",
				"types": piiErr.Types,
			})
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, "interpretation service unavailable")
	}

	return c.JSON(http.StatusOK, resp)
}
