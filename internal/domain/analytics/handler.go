package analytics

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes mounts the analytics endpoints on an authenticated group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/analytics/visits-per-patient", h.VisitsPerPatient)
	api.GET("/analytics/average-lab-result/:testType", h.AverageLabResult)
}

func (h *Handler) VisitsPerPatient(c echo.Context) error {
	results, err := h.repo.VisitsPerPatient(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, results)
}

type averageLabResultResponse struct {
	TestType      string   `json:"test_type"`
	AverageResult *float64 `json:"average_result"`
}

func (h *Handler) AverageLabResult(c echo.Context) error {
	testType := c.Param("testType")

	avg, err := h.repo.AverageLabResult(c.Request().Context(), testType)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, averageLabResultResponse{
		TestType:      testType,
		AverageResult: avg,
	})
}
