package payment

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// StripeGateway talks to the Stripe PaymentIntents API over plain HTTPS.
type StripeGateway struct {
	client *resty.Client
}

type stripeIntent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata"`
}

type stripeError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func NewStripeGateway(baseURL, secretKey string) *StripeGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(secretKey).
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json")
	return &StripeGateway{client: client}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	form := map[string]string{
		"amount":                  strconv.FormatInt(req.AmountCents, 10),
		"currency":                req.Currency,
		"payment_method_types[0]": "card",
	}
	for k, v := range req.Metadata {
		form["metadata["+k+"]"] = v
	}

	pi := &stripeIntent{}
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetFormData(form).
		SetResult(pi).
		SetError(&stripeError{}).
		Post("/v1/payment_intents")
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	if resp.IsError() {
		return nil, decodeError(resp)
	}
	if pi.ID == "" {
		return nil, fmt.Errorf("decode payment intent: empty response")
	}

	log.Printf("[Stripe] created intent %s for %d %s", pi.ID, pi.Amount, pi.Currency)
	return pi.toIntent(), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	pi := &stripeIntent{}
	resp, err := g.client.R().
		SetContext(ctx).
		SetPathParam("id", intentID).
		SetResult(pi).
		SetError(&stripeError{}).
		Get("/v1/payment_intents/{id}")
	if err != nil {
		return nil, fmt.Errorf("get payment intent: %w", err)
	}
	if resp.IsError() {
		return nil, decodeError(resp)
	}
	if pi.ID == "" {
		return nil, fmt.Errorf("decode payment intent: empty response")
	}
	return pi.toIntent(), nil
}

func (pi *stripeIntent) toIntent() *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Currency:     pi.Currency,
		Status:       pi.Status,
		Metadata:     pi.Metadata,
	}
}

func decodeError(resp *resty.Response) error {
	gwErr := &GatewayError{StatusCode: resp.StatusCode(), Message: http.StatusText(resp.StatusCode())}

	if body, ok := resp.Error().(*stripeError); ok && body.Error.Message != "" {
		gwErr.Code = body.Error.Code
		gwErr.Message = body.Error.Message
	}

	log.Printf("[Stripe] request rejected: %v", gwErr)
	return gwErr
}
