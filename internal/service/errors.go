package service

import "errors"

var (
	ErrValidation                 = errors.New("validation failed")
	ErrPaymentAuthorizationFailed = errors.New("payment authorization failed")
	ErrListingNotFound            = errors.New("class not found")
	ErrAlreadyInCart              = errors.New("class is already in the cart")
	ErrAlreadyEnrolled            = errors.New("student is already enrolled in this class")
	ErrCartEntryNotFound          = errors.New("class is not in the cart")
	ErrUserNotFound               = errors.New("user not found")
	ErrForbiddenOwner             = errors.New("only the owning instructor can change this class")
	ErrStoreUnavailable           = errors.New("store unavailable")
)

// EventPublisher publishes domain events. A nil publisher disables publishing.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}
