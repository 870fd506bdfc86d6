package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/learnify/marketplace-service/internal/dto"
	"github.com/learnify/marketplace-service/internal/models"
	"github.com/learnify/marketplace-service/internal/service"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/new-user", h.Register)
}

// Register is open to anyone, so it never grants the admin role.
func (h *UserHandler) Register(c echo.Context) error {
	var req dto.RegisterUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if models.Role(req.Role) == models.RoleAdmin {
		return echo.NewHTTPError(http.StatusBadRequest, "role must be student or instructor")
	}

	user := &models.User{
		Email:    req.Email,
		Name:     req.Name,
		PhotoURL: req.PhotoURL,
		Role:     models.Role(req.Role),
	}
	if err := h.svc.Register(c.Request().Context(), user); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}
