package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/lancekit/lancekit/internal/auth/domain"
	authrepo "github.com/lancekit/lancekit/internal/auth/repository"
	"github.com/lancekit/lancekit/internal/config"
	invoicedomain "github.com/lancekit/lancekit/internal/invoice/domain"
	"github.com/lancekit/lancekit/internal/invoice/draft"
	invoicerepo "github.com/lancekit/lancekit/internal/invoice/repository"
	invoiceservice "github.com/lancekit/lancekit/internal/invoice/service"
	notificationcache "github.com/lancekit/lancekit/internal/notification/cache"
	notificationdomain "github.com/lancekit/lancekit/internal/notification/domain"
	notificationrepo "github.com/lancekit/lancekit/internal/notification/repository"
	notificationservice "github.com/lancekit/lancekit/internal/notification/service"
	"github.com/lancekit/lancekit/internal/payment/adapters/stripe"
	"github.com/lancekit/lancekit/internal/payment/domain"
	paymentrepo "github.com/lancekit/lancekit/internal/payment/repository"
	projectdomain "github.com/lancekit/lancekit/internal/project/domain"
	projectrepo "github.com/lancekit/lancekit/internal/project/repository"
	"github.com/lancekit/lancekit/internal/usercontext"
)

const webhookSecret = "whsec_test"

type fixture struct {
	svc      domain.Service
	invoices invoicedomain.Service
	db       *gorm.DB
	ctx      context.Context
	userID   snowflake.ID
}

func setup(t *testing.T) *fixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&authdomain.User{},
		&projectdomain.Project{},
		&projectdomain.Task{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&invoicedomain.NumberSequence{},
		&notificationdomain.Notification{},
		&domain.Payment{},
	))

	genID, err := snowflake.NewNode(1)
	require.NoError(t, err)

	holder, err := config.NewInvoicingConfigHolder()
	require.NoError(t, err)

	invoices := invoiceservice.New(invoiceservice.Params{
		DB:        gdb,
		Log:       zap.NewNop(),
		GenID:     genID,
		Repo:      invoicerepo.Provide(),
		Users:     authrepo.Provide(),
		Projects:  projectrepo.Provide(),
		Invoicing: holder,
	})

	notifications := notificationservice.New(notificationservice.Params{
		DB:     gdb,
		Log:    zap.NewNop(),
		GenID:  genID,
		Repo:   notificationrepo.Provide(),
		Unread: notificationcache.NewUnreadCounter(nil),
	})

	svc := New(Params{
		DB:            gdb,
		Log:           zap.NewNop(),
		GenID:         genID,
		Repo:          paymentrepo.Provide(),
		Invoices:      invoices,
		Notifications: notifications,
		Adapters:      []domain.Adapter{stripe.New(webhookSecret)},
	})

	userID := genID.Generate()
	require.NoError(t, gdb.Create(&authdomain.User{
		ID:           userID,
		Name:         "Sam",
		Email:        "sam@example.test",
		PasswordHash: "x",
		Currency:     "USD",
	}).Error)

	return &fixture{
		svc:      svc,
		invoices: invoices,
		db:       gdb,
		ctx:      usercontext.WithUserID(context.Background(), userID),
		userID:   userID,
	}
}

func (f *fixture) sentInvoice(t *testing.T) invoicedomain.Invoice {
	t.Helper()

	invoice, err := f.invoices.Submit(f.ctx, invoicedomain.SubmitInvoiceRequest{
		Payload: draft.Payload{
			Number:      "INV-2025-0001",
			Client:      "Acme Co",
			ClientEmail: "billing@acme.test",
			Amount:      150,
			Tax:         15,
			Total:       165,
			Currency:    "USD",
			Status:      "draft",
			IssueDate:   time.Now().UTC(),
			DueDate:     time.Now().UTC().Add(14 * 24 * time.Hour),
			Items: []draft.PayloadItem{
				{Description: "Design", Quantity: 2, Rate: 75, Amount: 150},
			},
		},
	})
	require.NoError(t, err)

	invoice, err = f.invoices.MarkSent(f.ctx, invoice.ID.String())
	require.NoError(t, err)
	return invoice
}

func signedEvent(invoiceID snowflake.ID) (payload []byte, signature string) {
	payload = []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": "payment_intent.succeeded",
		"created": 1750000000,
		"data": {"object": {
			"id": "pi_1",
			"amount_received": 16500,
			"currency": "usd",
			"created": 1750000000,
			"metadata": {"invoice_id": "%s"}
		}}
	}`, invoiceID.String()))

	timestamp := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", timestamp, payload)))
	signature = fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
	return payload, signature
}

func TestHandleWebhookMarksInvoicePaid(t *testing.T) {
	f := setup(t)
	invoice := f.sentInvoice(t)
	payload, signature := signedEvent(invoice.ID)

	err := f.svc.HandleWebhook(context.Background(), domain.HandleWebhookRequest{
		Provider:  "stripe",
		Payload:   payload,
		Signature: signature,
	})
	require.NoError(t, err)

	got, err := f.invoices.GetByID(f.ctx, invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusPaid, got.Status)
	require.NotNil(t, got.PaidAt)
	assert.Equal(t, "pi_1", got.Metadata["payment_reference"])

	payments, err := f.svc.ListByInvoice(f.ctx, domain.ListPaymentRequest{InvoiceID: invoice.ID.String()})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, 165.0, payments[0].Amount)
	assert.Equal(t, domain.PaymentStatusSucceeded, payments[0].Status)

	var notifications []notificationdomain.Notification
	require.NoError(t, f.db.Where("user_id = ?", f.userID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, notificationdomain.KindInvoicePaid, notifications[0].Kind)
}

func TestHandleWebhookIsIdempotent(t *testing.T) {
	f := setup(t)
	invoice := f.sentInvoice(t)
	payload, signature := signedEvent(invoice.ID)

	req := domain.HandleWebhookRequest{Provider: "stripe", Payload: payload, Signature: signature}
	require.NoError(t, f.svc.HandleWebhook(context.Background(), req))
	require.NoError(t, f.svc.HandleWebhook(context.Background(), req))

	payments, err := f.svc.ListByInvoice(f.ctx, domain.ListPaymentRequest{InvoiceID: invoice.ID.String()})
	require.NoError(t, err)
	require.Len(t, payments, 1)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	f := setup(t)
	invoice := f.sentInvoice(t)
	payload, _ := signedEvent(invoice.ID)

	err := f.svc.HandleWebhook(context.Background(), domain.HandleWebhookRequest{
		Provider:  "stripe",
		Payload:   payload,
		Signature: "t=1,v1=deadbeef",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestHandleWebhookUnknownProvider(t *testing.T) {
	f := setup(t)

	err := f.svc.HandleWebhook(context.Background(), domain.HandleWebhookRequest{Provider: "paypal"})
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestHandleWebhookUnknownInvoice(t *testing.T) {
	f := setup(t)
	payload, signature := signedEvent(snowflake.ID(999999999))

	err := f.svc.HandleWebhook(context.Background(), domain.HandleWebhookRequest{
		Provider:  "stripe",
		Payload:   payload,
		Signature: signature,
	})
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestHandleWebhookIgnoresOtherEventTypes(t *testing.T) {
	f := setup(t)

	payload := []byte(`{"id":"evt_2","type":"charge.refunded","data":{"object":{}}}`)
	timestamp := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", timestamp, payload)))
	signature := fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))

	err := f.svc.HandleWebhook(context.Background(), domain.HandleWebhookRequest{
		Provider:  "stripe",
		Payload:   payload,
		Signature: signature,
	})
	assert.NoError(t, err)
}
