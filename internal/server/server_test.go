package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/lancekit/lancekit/internal/auth/token"
	invoicedomain "github.com/lancekit/lancekit/internal/invoice/domain"
	paymentdomain "github.com/lancekit/lancekit/internal/payment/domain"
	"github.com/lancekit/lancekit/internal/usercontext"
)

type fakeInvoiceService struct {
	submitErr  error
	getErr     error
	submitReqs []invoicedomain.SubmitInvoiceRequest
}

func (f *fakeInvoiceService) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	_ = ctx
	_ = req
	return invoicedomain.ListInvoiceResponse{}, nil
}

func (f *fakeInvoiceService) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	_ = ctx
	_ = id
	if f.getErr != nil {
		return invoicedomain.Invoice{}, f.getErr
	}
	return invoicedomain.Invoice{Number: "INV-2026-0001"}, nil
}

func (f *fakeInvoiceService) NextNumber(ctx context.Context) (invoicedomain.NextNumberResponse, error) {
	_ = ctx
	return invoicedomain.NextNumberResponse{NextNumber: "INV-2026-0002"}, nil
}

func (f *fakeInvoiceService) Submit(ctx context.Context, req invoicedomain.SubmitInvoiceRequest) (invoicedomain.Invoice, error) {
	_ = ctx
	f.submitReqs = append(f.submitReqs, req)
	if f.submitErr != nil {
		return invoicedomain.Invoice{}, f.submitErr
	}
	return invoicedomain.Invoice{Number: req.Payload.Number}, nil
}

func (f *fakeInvoiceService) PopulateFromProject(ctx context.Context, req invoicedomain.PopulateFromProjectRequest) (invoicedomain.PopulateFromProjectResponse, error) {
	_ = ctx
	_ = req
	return invoicedomain.PopulateFromProjectResponse{}, nil
}

func (f *fakeInvoiceService) MarkSent(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	_ = ctx
	_ = id
	return invoicedomain.Invoice{}, nil
}

func (f *fakeInvoiceService) MarkPaid(ctx context.Context, req invoicedomain.MarkPaidRequest) (invoicedomain.Invoice, error) {
	_ = ctx
	_ = req
	return invoicedomain.Invoice{}, nil
}

func (f *fakeInvoiceService) Void(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	_ = ctx
	_ = id
	return invoicedomain.Invoice{}, nil
}

func (f *fakeInvoiceService) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	_ = ctx
	_ = now
	return 0, nil
}

func (f *fakeInvoiceService) Delete(ctx context.Context, id string) error {
	_ = ctx
	_ = id
	return nil
}

type fakePaymentService struct {
	handleErr error
	requests  []paymentdomain.HandleWebhookRequest
}

func (f *fakePaymentService) HandleWebhook(ctx context.Context, req paymentdomain.HandleWebhookRequest) error {
	_ = ctx
	f.requests = append(f.requests, req)
	return f.handleErr
}

func (f *fakePaymentService) ListByInvoice(ctx context.Context, req paymentdomain.ListPaymentRequest) ([]paymentdomain.Payment, error) {
	_ = ctx
	_ = req
	return nil, nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	return router
}

func decodeErrorResponse(t *testing.T, body *bytes.Buffer) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	srv := &Server{issuer: token.NewIssuer("test-secret", time.Hour)}

	router := newTestRouter()
	router.GET("/api/ping", srv.AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
	if decoded := decodeErrorResponse(t, resp.Body); decoded.Error.Type != "unauthorized" {
		t.Fatalf("expected unauthorized error, got %q", decoded.Error.Type)
	}
}

func TestAuthRequiredInjectsUserFromToken(t *testing.T) {
	issuer := token.NewIssuer("test-secret", time.Hour)
	srv := &Server{issuer: issuer}

	userID := snowflake.ID(42)
	signed, _, err := issuer.Issue(userID, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var seen snowflake.ID
	router := newTestRouter()
	router.GET("/api/ping", srv.AuthRequired(), func(c *gin.Context) {
		seen, _ = usercontext.UserIDFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if seen != userID {
		t.Fatalf("expected user %d on the context, got %d", userID, seen)
	}
}

func TestSubmitInvoiceMapsFieldValidation(t *testing.T) {
	invoiceSvc := &fakeInvoiceService{
		submitErr: invoicedomain.NewPortValidationError(map[string]string{
			"number": "an invoice number is required",
		}),
	}
	srv := &Server{invoiceSvc: invoiceSvc}

	router := newTestRouter()
	router.POST("/api/invoices", srv.SubmitInvoice)

	req := httptest.NewRequest(http.MethodPost, "/api/invoices", bytes.NewBufferString(`{"client":"Acme"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	decoded := decodeErrorResponse(t, resp.Body)
	if len(decoded.Error.Errors) != 1 {
		t.Fatalf("expected one field error, got %d", len(decoded.Error.Errors))
	}
	if decoded.Error.Errors[0].Field != "number" {
		t.Fatalf("expected number field error, got %q", decoded.Error.Errors[0].Field)
	}
}

func TestGetInvoiceRejectsMalformedID(t *testing.T) {
	srv := &Server{invoiceSvc: &fakeInvoiceService{}}

	router := newTestRouter()
	router.GET("/api/invoices/:id", srv.GetInvoiceByID)

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/not-an-id", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestGetInvoiceMapsNotFound(t *testing.T) {
	srv := &Server{invoiceSvc: &fakeInvoiceService{getErr: invoicedomain.ErrNotFound}}

	router := newTestRouter()
	router.GET("/api/invoices/:id", srv.GetInvoiceByID)

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/"+snowflake.ID(7).String(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
	if decoded := decodeErrorResponse(t, resp.Body); decoded.Error.Type != "not_found" {
		t.Fatalf("expected not_found error, got %q", decoded.Error.Type)
	}
}

func TestResubmitInvoiceCarriesInvoiceID(t *testing.T) {
	invoiceSvc := &fakeInvoiceService{}
	srv := &Server{invoiceSvc: invoiceSvc}

	router := newTestRouter()
	router.PUT("/api/invoices/:id", srv.ResubmitInvoice)

	id := snowflake.ID(99).String()
	req := httptest.NewRequest(http.MethodPut, "/api/invoices/"+id, bytes.NewBufferString(`{"number":"INV-2026-0001"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if len(invoiceSvc.submitReqs) != 1 {
		t.Fatalf("expected one submit call, got %d", len(invoiceSvc.submitReqs))
	}
	if invoiceSvc.submitReqs[0].InvoiceID == nil || *invoiceSvc.submitReqs[0].InvoiceID != id {
		t.Fatal("expected the path id to reach the service")
	}
}

func TestPaymentWebhookPassesRawBodyAndSignature(t *testing.T) {
	paymentSvc := &fakePaymentService{}
	srv := &Server{paymentSvc: paymentSvc}

	router := newTestRouter()
	router.POST("/api/payments/webhooks/:provider", srv.HandlePaymentWebhook)

	body := `{"type":"payment_intent.succeeded"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhooks/stripe", bytes.NewBufferString(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if len(paymentSvc.requests) != 1 {
		t.Fatalf("expected one webhook call, got %d", len(paymentSvc.requests))
	}
	got := paymentSvc.requests[0]
	if got.Provider != "stripe" || string(got.Payload) != body || got.Signature != "t=1,v1=abc" {
		t.Fatal("expected provider, payload and signature to pass through unchanged")
	}
}

func TestPaymentWebhookMapsBadSignatureToUnauthorized(t *testing.T) {
	paymentSvc := &fakePaymentService{handleErr: paymentdomain.ErrInvalidSignature}
	srv := &Server{paymentSvc: paymentSvc}

	router := newTestRouter()
	router.POST("/api/payments/webhooks/:provider", srv.HandlePaymentWebhook)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhooks/stripe", bytes.NewBufferString(`{}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}
