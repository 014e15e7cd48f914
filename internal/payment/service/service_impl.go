package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	invoicedomain "github.com/lancekit/lancekit/internal/invoice/domain"
	notificationdomain "github.com/lancekit/lancekit/internal/notification/domain"
	"github.com/lancekit/lancekit/internal/payment/domain"
	"github.com/lancekit/lancekit/internal/usercontext"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Repo          domain.Repository
	Invoices      invoicedomain.Service
	Notifications notificationdomain.Service
	Adapters      []domain.Adapter `group:"payment.adapters"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	repo          domain.Repository
	invoices      invoicedomain.Service
	notifications notificationdomain.Service
	adapters      map[string]domain.Adapter
}

func New(p Params) domain.Service {
	adapters := make(map[string]domain.Adapter, len(p.Adapters))
	for _, adapter := range p.Adapters {
		adapters[adapter.Name()] = adapter
	}
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("payment.service"),
		genID:         p.GenID,
		repo:          p.Repo,
		invoices:      p.Invoices,
		notifications: p.Notifications,
		adapters:      adapters,
	}
}

// HandleWebhook verifies, records, and applies a provider payment event.
// Retried deliveries of the same payment are no-ops, as are event types the
// adapter does not act on.
func (s *Service) HandleWebhook(ctx context.Context, req domain.HandleWebhookRequest) error {
	adapter, ok := s.adapters[strings.TrimSpace(req.Provider)]
	if !ok {
		return domain.ErrUnknownProvider
	}

	event, err := adapter.ParseWebhook(req.Payload, req.Signature)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedEvent) {
			s.log.Debug("ignoring webhook event", zap.String("provider", req.Provider))
			return nil
		}
		return err
	}

	existing, err := s.repo.FindByReference(ctx, s.db, event.Provider, event.Reference)
	if err != nil {
		return err
	}
	if existing != nil {
		s.log.Debug("duplicate webhook delivery",
			zap.String("provider", event.Provider),
			zap.String("reference", event.Reference),
		)
		return nil
	}

	invoiceID, err := snowflake.ParseString(event.InvoiceID)
	if err != nil {
		return domain.ErrInvoiceNotFound
	}
	invoice, err := s.repo.FindInvoiceByID(ctx, s.db, invoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return domain.ErrInvoiceNotFound
	}

	payment := domain.Payment{
		ID:         s.genID.Generate(),
		UserID:     invoice.UserID,
		InvoiceID:  invoice.ID,
		Provider:   event.Provider,
		Reference:  event.Reference,
		Amount:     event.Amount,
		Currency:   event.Currency,
		Status:     domain.PaymentStatusSucceeded,
		ReceivedAt: event.OccurredAt,
		Metadata:   datatypes.JSONMap{"event_type": event.Type},
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, &payment); err != nil {
		return err
	}

	ownerCtx := usercontext.WithUserID(ctx, invoice.UserID)
	paidAt := event.OccurredAt
	_, err = s.invoices.MarkPaid(ownerCtx, invoicedomain.MarkPaidRequest{
		ID:        invoice.ID.String(),
		PaidAt:    &paidAt,
		Reference: event.Reference,
	})
	if err != nil {
		// Already paid or voided; keep the payment record either way.
		if !errors.Is(err, invoicedomain.ErrInvalidStatus) {
			return err
		}
		s.log.Warn("payment received for invoice not awaiting payment",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("status", string(invoice.Status)),
		)
		return nil
	}

	if _, err := s.notifications.Notify(ctx, notificationdomain.NotifyRequest{
		UserID: invoice.UserID,
		Kind:   notificationdomain.KindInvoicePaid,
		Title:  "Invoice " + invoice.Number + " was paid",
		Body:   "Payment received via " + event.Provider + ".",
		Ref:    invoice.ID.String(),
	}); err != nil {
		s.log.Warn("failed to create paid notification", zap.Error(err))
	}

	return nil
}

func (s *Service) ListByInvoice(ctx context.Context, req domain.ListPaymentRequest) ([]domain.Payment, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	invoiceID, err := snowflake.ParseString(strings.TrimSpace(req.InvoiceID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	items, err := s.repo.ListByInvoice(ctx, s.db, userID, invoiceID)
	if err != nil {
		return nil, err
	}

	payments := make([]domain.Payment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		payments = append(payments, *item)
	}
	return payments, nil
}
