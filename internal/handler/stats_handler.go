package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/learnify/marketplace-service/internal/dto"
	"github.com/learnify/marketplace-service/internal/middleware"
	"github.com/learnify/marketplace-service/internal/models"
	"github.com/learnify/marketplace-service/internal/service"
)

type StatsHandler struct {
	svc service.StatsService
}

func NewStatsHandler(svc service.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(e *echo.Echo, auth *middleware.Auth) {
	e.GET("/popular_classes", h.PopularClasses)
	e.GET("/popular-instructor", h.PopularInstructors)
	e.GET("/admin-stats", h.AdminStats, auth.RequireAuth, middleware.RequireRole(models.RoleAdmin))
}

func (h *StatsHandler) PopularClasses(c echo.Context) error {
	classes, err := h.svc.TopClassesByEnrollment(c.Request().Context(), service.PopularClassesLimit)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, classes)
}

func (h *StatsHandler) PopularInstructors(c echo.Context) error {
	rows, err := h.svc.InstructorLeaderboard(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToLeaderboard(rows))
}

func (h *StatsHandler) AdminStats(c echo.Context) error {
	stats, err := h.svc.AdminStats(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
