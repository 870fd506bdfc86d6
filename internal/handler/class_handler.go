package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/learnify/marketplace-service/internal/dto"
	"github.com/learnify/marketplace-service/internal/middleware"
	"github.com/learnify/marketplace-service/internal/models"
	"github.com/learnify/marketplace-service/internal/service"
)

type ClassHandler struct {
	svc service.CatalogService
}

func NewClassHandler(svc service.CatalogService) *ClassHandler {
	return &ClassHandler{svc: svc}
}

func (h *ClassHandler) RegisterRoutes(e *echo.Echo, auth *middleware.Auth) {
	instructor := middleware.RequireRole(models.RoleInstructor, models.RoleAdmin)
	admin := middleware.RequireRole(models.RoleAdmin)

	e.POST("/new-class", h.CreateClass, auth.RequireAuth, instructor)
	e.PUT("/update-class/:id", h.UpdateClass, auth.RequireAuth, instructor)
	e.GET("/classes", h.ListClasses)
	e.GET("/classes/:email", h.ListByInstructor)
	e.GET("/approved-classes", h.ListApproved)
	e.GET("/class/:id", h.GetClass)
	e.GET("/class-manage", h.ListClasses, auth.RequireAuth, admin)
	e.PATCH("/change-status/:id", h.ChangeStatus, auth.RequireAuth, admin)
}

func (h *ClassHandler) CreateClass(c echo.Context) error {
	var req dto.ClassRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p := middleware.PrincipalFrom(c)

	listing := toListing(req)
	listing.InstructorEmail = p.Email
	if err := h.svc.CreateClass(c.Request().Context(), listing); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, listing)
}

func (h *ClassHandler) UpdateClass(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ClassRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p := middleware.PrincipalFrom(c)

	listing := toListing(req)
	listing.ID = id
	listing.InstructorEmail = p.Email
	updated, err := h.svc.UpdateClass(c.Request().Context(), p.Email, p.Role, listing)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *ClassHandler) ListClasses(c echo.Context) error {
	classes, err := h.svc.ListClasses(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, classes)
}

func (h *ClassHandler) ListByInstructor(c echo.Context) error {
	classes, err := h.svc.ListByInstructor(c.Request().Context(), c.Param("email"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, classes)
}

func (h *ClassHandler) ListApproved(c echo.Context) error {
	classes, err := h.svc.ListApproved(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, classes)
}

func (h *ClassHandler) GetClass(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	listing, err := h.svc.GetClass(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, listing)
}

func (h *ClassHandler) ChangeStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ChangeStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.svc.ChangeStatus(c.Request().Context(), id, models.ListingStatus(req.Status), req.Reason)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func toListing(req dto.ClassRequest) *models.ClassListing {
	return &models.ClassListing{
		Name:           req.Name,
		Description:    req.Description,
		ImageURL:       req.ImageURL,
		VideoLink:      req.VideoLink,
		InstructorName: req.InstructorName,
		Price:          req.Price,
		AvailableSeats: req.AvailableSeats,
	}
}
