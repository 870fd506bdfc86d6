package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/learnify/marketplace-service/internal/dto"
	"github.com/learnify/marketplace-service/internal/middleware"
	"github.com/learnify/marketplace-service/internal/service"
)

type CartHandler struct {
	svc service.CartService
}

func NewCartHandler(svc service.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo, auth *middleware.Auth) {
	e.POST("/add-items", h.AddItem, auth.RequireAuth)
	e.GET("/cart/:email", h.ListCart)
	e.GET("/cart-item/:id", h.GetCartItem)
	e.DELETE("/delete-cart-items/:id", h.DeleteCartItem, auth.RequireAuth)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	var req dto.AddCartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	email, err := actingAs(c, req.UserMail)
	if err != nil {
		return err
	}

	entry, err := h.svc.Add(c.Request().Context(), req.ClassID, email)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *CartHandler) ListCart(c echo.Context) error {
	classes, err := h.svc.List(c.Request().Context(), c.Param("email"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, classes)
}

func (h *CartHandler) GetCartItem(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	email := c.QueryParam("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	ok, err := h.svc.Contains(c.Request().Context(), id, email)
	if err != nil {
		return toHTTPError(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, service.ErrCartEntryNotFound.Error())
	}
	return c.JSON(http.StatusOK, dto.CartItemResponse{ClassID: id})
}

// DeleteCartItem removes a class from the caller's cart. Admins may name
// another student with ?email=.
func (h *CartHandler) DeleteCartItem(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	email, err := actingAs(c, c.QueryParam("email"))
	if err != nil {
		return err
	}

	if err := h.svc.Remove(c.Request().Context(), id, email); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
