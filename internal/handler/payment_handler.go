package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/learnify/marketplace-service/internal/dto"
	"github.com/learnify/marketplace-service/internal/middleware"
	"github.com/learnify/marketplace-service/internal/models"
	"github.com/learnify/marketplace-service/internal/service"
)

type PaymentHandler struct {
	svc service.ReconciliationService
}

func NewPaymentHandler(svc service.ReconciliationService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, auth *middleware.Auth) {
	e.POST("/create-payment-intent", h.CreatePaymentIntent, auth.RequireAuth)
	e.POST("/payment-info", h.PaymentInfo, auth.RequireAuth)
	e.GET("/enrolled-classes/:email", h.EnrolledClasses)
	e.POST("/admin/recount", h.Recount, auth.RequireAuth, middleware.RequireRole(models.RoleAdmin))
}

func (h *PaymentHandler) CreatePaymentIntent(c echo.Context) error {
	var req dto.CreatePaymentIntentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	email, err := actingAs(c, "")
	if err != nil {
		return err
	}

	auth, err := h.svc.AuthorizeCharge(c.Request().Context(), service.ChargeRequest{
		StudentEmail: email,
		ClassIDs:     req.ClassesID,
		Price:        req.Price,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ClientSecretResponse{
		ClientSecret: auth.ClientSecret,
		IntentID:     auth.IntentID,
		AmountCents:  auth.AmountCents,
		Currency:     auth.Currency,
	})
}

// PaymentInfo records a confirmed purchase. With ?classId= only that class is
// bought; otherwise the body's classesId are. Classes found in the cart leave
// it, and classes bought outside the cart are enrolled the same way.
func (h *PaymentHandler) PaymentInfo(c echo.Context) error {
	var req dto.PaymentInfoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	email, err := actingAs(c, req.UserEmail)
	if err != nil {
		return err
	}

	purchase := service.PurchaseRequest{
		StudentEmail: email,
		ClassIDs:     req.ClassesID,
		Handle:       req.Handle(),
	}
	if q := c.QueryParam("classId"); q != "" {
		id, err := strconv.ParseUint(q, 10, 64)
		if err != nil || id == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid classId")
		}
		purchase.ClassIDs = []uint{uint(id)}
	}

	result, err := h.svc.ConfirmPurchase(c.Request().Context(), purchase)
	if err != nil {
		if result != nil && result.EnrolledCount > 0 {
			log.Printf("[Payment] purchase for %s stopped after %d enrollments: %v", email, result.EnrolledCount, err)
		}
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) EnrolledClasses(c echo.Context) error {
	rows, err := h.svc.GetEnrolledClasses(c.Request().Context(), c.Param("email"))
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.EnrolledClassResponse, len(rows))
	for i, r := range rows {
		resp[i] = dto.ToEnrolledClassResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) Recount(c echo.Context) error {
	n, err := h.svc.Recount(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.RecountResponse{Updated: n})
}
