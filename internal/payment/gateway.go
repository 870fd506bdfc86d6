package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Intent statuses reported by the gateway.
const (
	StatusSucceeded             = "succeeded"
	StatusProcessing            = "processing"
	StatusRequiresPaymentMethod = "requires_payment_method"
	StatusCanceled              = "canceled"
)

var ErrGatewayRejected = errors.New("payment gateway rejected the request")

// GatewayError carries the reason the gateway gave for a rejection.
type GatewayError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("gateway %d: %s", e.StatusCode, e.Message)
}

func (e *GatewayError) Unwrap() error { return ErrGatewayRejected }

type IntentRequest struct {
	AmountCents int64
	Currency    string
	Metadata    map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Currency     string
	Status       string
	Metadata     map[string]string
}

type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	GetIntent(ctx context.Context, intentID string) (*Intent, error)
}

// IntentIDFromHandle accepts either an intent id ("pi_123") or the client
// secret handed to the browser ("pi_123_secret_abc").
func IntentIDFromHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	if i := strings.Index(handle, "_secret_"); i > 0 {
		return handle[:i]
	}
	return handle
}
