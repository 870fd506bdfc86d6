package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/learnify/marketplace-service/internal/middleware"
	"github.com/learnify/marketplace-service/internal/models"
	"github.com/learnify/marketplace-service/internal/service"
)

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPaymentAuthorizationFailed):
		return echo.NewHTTPError(http.StatusPaymentRequired, err.Error())
	case errors.Is(err, service.ErrListingNotFound),
		errors.Is(err, service.ErrCartEntryNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyInCart),
		errors.Is(err, service.ErrAlreadyEnrolled):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrForbiddenOwner):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	default:
		log.Printf("[Handler] internal error: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

// actingAs resolves the email a request acts for. Students may only act for
// themselves; admins may act for anyone. An empty email defaults to the
// principal, as does any case variant of the principal's own email.
func actingAs(c echo.Context, email string) (string, error) {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "unauthorized access")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return p.Email, nil
	}
	if strings.EqualFold(email, p.Email) {
		return p.Email, nil
	}
	if p.Role != models.RoleAdmin {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "unauthorized access")
	}
	return email, nil
}
