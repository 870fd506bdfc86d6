package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ClassIDList accepts a JSON array of ids, a single id, or a string holding
// one id or a comma separated list. Ids may be numbers or numeric strings.
type ClassIDList []uint

func (l *ClassIDList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		ids := make(ClassIDList, 0, len(raw))
		for _, r := range raw {
			var one ClassIDList
			if err := one.UnmarshalJSON(r); err != nil {
				return err
			}
			ids = append(ids, one...)
		}
		*l = ids
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		ids := ClassIDList{}
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := parseID(part)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		*l = ids
		return nil
	}

	id, err := parseID(string(data))
	if err != nil {
		return err
	}
	*l = ClassIDList{id}
	return nil
}

func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid class id %q", s)
	}
	return uint(n), nil
}

type CreatePaymentIntentRequest struct {
	Price     decimal.Decimal `json:"price"`
	ClassesID ClassIDList     `json:"classesId"`
}

type PaymentInfoRequest struct {
	ClassesID ClassIDList `json:"classesId"`
	UserEmail string      `json:"userEmail" validate:"required,email"`
	// PaymentID is the intent id or client secret returned by
	// /create-payment-intent. TransactionID is accepted as an alias.
	PaymentID     string `json:"paymentId"`
	TransactionID string `json:"transactionId"`
}

func (r PaymentInfoRequest) Handle() string {
	if r.PaymentID != "" {
		return r.PaymentID
	}
	return r.TransactionID
}

type AddCartItemRequest struct {
	ClassID  uint   `json:"classId" validate:"required,gt=0"`
	UserMail string `json:"userMail" validate:"required,email"`
}

type ClassRequest struct {
	Name           string          `json:"name" validate:"required"`
	Description    string          `json:"description"`
	ImageURL       string          `json:"image" validate:"omitempty,url"`
	VideoLink      string          `json:"videoLink" validate:"omitempty,url"`
	InstructorName string          `json:"instructorName"`
	Price          decimal.Decimal `json:"price"`
	AvailableSeats int             `json:"availableSeats" validate:"gte=0"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
	Reason string `json:"reason"`
}

type RegisterUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl"`
	Role     string `json:"role" validate:"omitempty,oneof=student instructor"`
}
