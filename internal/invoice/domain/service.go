package domain

import (
	"context"
	"errors"
	"time"

	"github.com/lancekit/lancekit/internal/invoice/draft"
	"github.com/lancekit/lancekit/pkg/db/pagination"
)

type ListInvoiceRequest struct {
	PageToken string
	PageSize  int32
	Status    *InvoiceStatus
	ClientID  *string
	DueFrom   *time.Time
	DueTo     *time.Time
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type NextNumberResponse struct {
	NextNumber string `json:"next_number"`
}

// SubmitInvoiceRequest persists a validated, normalized draft payload.
// InvoiceID is set when editing an existing invoice.
type SubmitInvoiceRequest struct {
	InvoiceID *string
	Payload   draft.Payload
}

type PopulateFromProjectRequest struct {
	ProjectID string
}

// PopulateFromProjectResponse returns the task-derived line items for a
// project, ready to seed a compose session.
type PopulateFromProjectResponse struct {
	Currency string           `json:"currency"`
	Items    []draft.LineItem `json:"items"`
}

type MarkPaidRequest struct {
	ID        string
	PaidAt    *time.Time
	Reference string
}

type Service interface {
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	NextNumber(ctx context.Context) (NextNumberResponse, error)
	Submit(context.Context, SubmitInvoiceRequest) (Invoice, error)
	PopulateFromProject(context.Context, PopulateFromProjectRequest) (PopulateFromProjectResponse, error)
	MarkSent(ctx context.Context, id string) (Invoice, error)
	MarkPaid(context.Context, MarkPaidRequest) (Invoice, error)
	Void(ctx context.Context, id string) (Invoice, error)
	SweepOverdue(ctx context.Context, now time.Time) (int64, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidUser    = errors.New("invalid_user")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrInvalidProject = errors.New("invalid_project")
)

// PortErrorKind classifies persistence failures for callers, replacing
// status-code sniffing at the boundary.
type PortErrorKind int

const (
	PortUnknown PortErrorKind = iota
	PortUnauthorized
	PortValidation
	PortNotFound
)

// PortError is the discriminated error returned across the persistence
// boundary. Fields carries field-level messages for PortValidation.
type PortError struct {
	Kind   PortErrorKind
	Fields map[string]string
	Err    error
}

func (e *PortError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	switch e.Kind {
	case PortUnauthorized:
		return "unauthorized"
	case PortValidation:
		return "validation failed"
	case PortNotFound:
		return "not found"
	default:
		return "unknown error"
	}
}

func (e *PortError) Unwrap() error { return e.Err }

func NewPortError(kind PortErrorKind, err error) *PortError {
	return &PortError{Kind: kind, Err: err}
}

func NewPortValidationError(fields map[string]string) *PortError {
	return &PortError{Kind: PortValidation, Fields: fields}
}
