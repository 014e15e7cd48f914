package domain

import (
	"context"
	"errors"
	"time"
)

// WebhookEvent is a provider webhook normalized to what the payment
// service needs. Reference is the provider's payment identifier.
type WebhookEvent struct {
	Provider   string
	Type       string
	Reference  string
	InvoiceID  string
	Amount     float64
	Currency   string
	OccurredAt time.Time
}

// Adapter turns a raw provider webhook into a WebhookEvent after verifying
// its signature.
type Adapter interface {
	Name() string
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

type HandleWebhookRequest struct {
	Provider  string
	Payload   []byte
	Signature string
}

type ListPaymentRequest struct {
	InvoiceID string
}

type Service interface {
	HandleWebhook(context.Context, HandleWebhookRequest) error
	ListByInvoice(context.Context, ListPaymentRequest) ([]Payment, error)
}

var (
	ErrUnknownProvider  = errors.New("unknown_provider")
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrUnsupportedEvent = errors.New("unsupported_event")
	ErrInvalidUser      = errors.New("invalid_user")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvoiceNotFound  = errors.New("invoice_not_found")
)
