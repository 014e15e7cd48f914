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

	authdomain "github.com/lancekit/lancekit/internal/auth/domain"
	"github.com/lancekit/lancekit/internal/config"
	"github.com/lancekit/lancekit/internal/invoice/domain"
	"github.com/lancekit/lancekit/internal/invoice/draft"
	"github.com/lancekit/lancekit/internal/invoice/numbering"
	projectdomain "github.com/lancekit/lancekit/internal/project/domain"
	"github.com/lancekit/lancekit/internal/usercontext"
	"github.com/lancekit/lancekit/pkg/db"
	"github.com/lancekit/lancekit/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Users     authdomain.Repository
	Projects  projectdomain.Repository
	Invoicing *config.InvoicingConfigHolder
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	users     authdomain.Repository
	projects  projectdomain.Repository
	invoicing *config.InvoicingConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		users:     p.Users,
		projects:  p.Projects,
		invoicing: p.Invoicing,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ListInvoiceResponse{}, domain.ErrInvalidUser
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	filter := domain.ListInvoiceFilter{
		Status:  req.Status,
		DueFrom: req.DueFrom,
		DueTo:   req.DueTo,
	}
	if req.ClientID != nil {
		clientID, err := snowflake.ParseString(strings.TrimSpace(*req.ClientID))
		if err != nil {
			return domain.ListInvoiceResponse{}, domain.ErrInvalidID
		}
		filter.ClientID = &clientID
	}

	items, err := s.repo.List(ctx, s.db, userID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        invoice.ID.String(),
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	invoice, err := s.load(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) NextNumber(ctx context.Context) (domain.NextNumberResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.NextNumberResponse{}, domain.ErrInvalidUser
	}

	cfg := s.invoicing.Get()
	now := time.Now().UTC()

	number, err := numbering.Peek(ctx, s.db, userID, cfg.NumberPrefix, now)
	if err != nil {
		s.log.Warn("number sequence unavailable, using fallback",
			zap.Error(err),
		)
		number = numbering.Fallback(cfg.NumberPrefix, now.Year())
	}

	return domain.NextNumberResponse{NextNumber: number}, nil
}

// Submit persists a normalized draft payload. Failures cross this boundary
// as *domain.PortError so callers can branch on kind instead of sniffing
// messages or status codes.
func (s *Service) Submit(ctx context.Context, req domain.SubmitInvoiceRequest) (domain.Invoice, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Invoice{}, domain.NewPortError(domain.PortUnauthorized, domain.ErrInvalidUser)
	}

	payload := req.Payload
	if fields := validatePayload(payload); len(fields) > 0 {
		return domain.Invoice{}, domain.NewPortValidationError(fields)
	}

	now := time.Now().UTC()
	var saved *domain.Invoice

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.InvoiceID != nil {
			existing, err := s.submitUpdate(ctx, tx, userID, *req.InvoiceID, payload, now)
			if err != nil {
				return err
			}
			saved = existing
			return nil
		}

		created, err := s.submitCreate(ctx, tx, userID, payload, now)
		if err != nil {
			return err
		}
		saved = created
		return nil
	})
	if err != nil {
		var portErr *domain.PortError
		if errors.As(err, &portErr) {
			return domain.Invoice{}, portErr
		}
		return domain.Invoice{}, domain.NewPortError(domain.PortUnknown, err)
	}

	return *saved, nil
}

func (s *Service) submitCreate(ctx context.Context, tx *gorm.DB, userID snowflake.ID, payload draft.Payload, now time.Time) (*domain.Invoice, error) {
	dup, err := s.repo.FindByNumber(ctx, tx, userID, payload.Number)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, domain.NewPortValidationError(map[string]string{
			"number": "that invoice number is already in use",
		})
	}

	status := domain.InvoiceStatus(payload.Status)
	if status == "" {
		status = domain.InvoiceStatusDraft
	}

	invoice := domain.Invoice{
		ID:          s.genID.Generate(),
		UserID:      userID,
		Number:      payload.Number,
		ClientID:    payload.ClientID,
		ClientName:  payload.Client,
		ClientEmail: payload.ClientEmail,
		ProjectID:   payload.ProjectID,
		Status:      status,
		Amount:      payload.Amount,
		Tax:         payload.Tax,
		Discount:    payload.Discount,
		Total:       payload.Total,
		Currency:    payload.Currency,
		IssueDate:   payload.IssueDate,
		DueDate:     payload.DueDate,
		Notes:       payload.Notes,
		Terms:       payload.Terms,
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.NewPortValidationError(map[string]string{
				"number": "that invoice number is already in use",
			})
		}
		return nil, err
	}

	items := s.buildItems(userID, invoice.ID, payload.Items, now)
	if err := s.repo.ReplaceItems(ctx, tx, userID, invoice.ID, items); err != nil {
		return nil, err
	}
	invoice.Items = items

	// Advance the number sequence so the next compose suggestion moves on.
	if _, err := numbering.Claim(ctx, tx, userID, s.invoicing.Get().NumberPrefix, now); err != nil {
		return nil, err
	}

	return &invoice, nil
}

func (s *Service) submitUpdate(ctx context.Context, tx *gorm.DB, userID snowflake.ID, id string, payload draft.Payload, now time.Time) (*domain.Invoice, error) {
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.NewPortError(domain.PortNotFound, domain.ErrInvalidID)
	}

	existing, err := s.repo.FindByID(ctx, tx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.NewPortError(domain.PortNotFound, domain.ErrNotFound)
	}

	if payload.Number != existing.Number {
		dup, err := s.repo.FindByNumber(ctx, tx, userID, payload.Number)
		if err != nil {
			return nil, err
		}
		if dup != nil && dup.ID != existing.ID {
			return nil, domain.NewPortValidationError(map[string]string{
				"number": "that invoice number is already in use",
			})
		}
	}

	// Status is never rewritten through submit; a sent invoice stays sent.
	existing.Number = payload.Number
	existing.ClientID = payload.ClientID
	existing.ClientName = payload.Client
	existing.ClientEmail = payload.ClientEmail
	existing.ProjectID = payload.ProjectID
	existing.Amount = payload.Amount
	existing.Tax = payload.Tax
	existing.Discount = payload.Discount
	existing.Total = payload.Total
	existing.Currency = payload.Currency
	existing.IssueDate = payload.IssueDate
	existing.DueDate = payload.DueDate
	existing.Notes = payload.Notes
	existing.Terms = payload.Terms
	existing.UpdatedAt = now

	if err := s.repo.Update(ctx, tx, existing); err != nil {
		return nil, err
	}

	items := s.buildItems(userID, existing.ID, payload.Items, now)
	if err := s.repo.ReplaceItems(ctx, tx, userID, existing.ID, items); err != nil {
		return nil, err
	}
	existing.Items = items

	return existing, nil
}

func (s *Service) buildItems(userID, invoiceID snowflake.ID, items []draft.PayloadItem, now time.Time) []domain.InvoiceItem {
	out := make([]domain.InvoiceItem, 0, len(items))
	for _, item := range items {
		out = append(out, domain.InvoiceItem{
			ID:          s.genID.Generate(),
			UserID:      userID,
			InvoiceID:   invoiceID,
			TaskID:      item.TaskID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Amount:      item.Amount,
			IsCustom:    item.IsCustom,
			CreatedAt:   now,
		})
	}
	return out
}

func validatePayload(payload draft.Payload) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(payload.Number) == "" {
		fields["number"] = "invoice number is required"
	}
	if strings.TrimSpace(payload.Client) == "" {
		fields["client"] = "client name is required"
	}
	if strings.TrimSpace(payload.ClientEmail) == "" {
		fields["client_email"] = "client email is required"
	}
	if payload.DueDate.IsZero() {
		fields["due_date"] = "due date is required"
	}
	if len(payload.Items) == 0 {
		fields["items"] = "at least one line item is required"
	}
	return fields
}

func (s *Service) PopulateFromProject(ctx context.Context, req domain.PopulateFromProjectRequest) (domain.PopulateFromProjectResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.PopulateFromProjectResponse{}, domain.ErrInvalidUser
	}

	projectID, err := snowflake.ParseString(strings.TrimSpace(req.ProjectID))
	if err != nil {
		return domain.PopulateFromProjectResponse{}, domain.ErrInvalidID
	}

	project, err := s.projects.FindByID(ctx, s.db, userID, projectID)
	if err != nil {
		return domain.PopulateFromProjectResponse{}, err
	}
	if project == nil {
		return domain.PopulateFromProjectResponse{}, domain.ErrInvalidProject
	}

	user, err := s.users.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.PopulateFromProjectResponse{}, err
	}

	tasks, err := s.projects.ListTasks(ctx, s.db, userID, projectID)
	if err != nil {
		return domain.PopulateFromProjectResponse{}, err
	}

	refs := make([]draft.TaskRef, 0, len(tasks))
	for _, task := range tasks {
		refs = append(refs, draft.TaskRef{ID: task.ID, Name: task.Name})
	}

	cfg := s.invoicing.Get()
	currency := cfg.DefaultCurrency
	var defaultRate float64
	if user != nil {
		defaultRate = user.DefaultHourlyRate
		if user.Currency != "" {
			currency = user.Currency
		}
	}

	items := draft.PopulateFromTasks(refs, draft.RateSource{
		ProjectHourlyRate: project.HourlyRate,
		UserDefaultRate:   defaultRate,
		Fallback:          cfg.FallbackHourlyRate,
	}, currency)

	return domain.PopulateFromProjectResponse{
		Currency: currency,
		Items:    items,
	}, nil
}

func (s *Service) MarkSent(ctx context.Context, id string) (domain.Invoice, error) {
	invoice, err := s.load(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}

	if invoice.Status != domain.InvoiceStatusDraft {
		return domain.Invoice{}, domain.ErrInvalidStatus
	}

	invoice.Status = domain.InvoiceStatusSent
	invoice.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) MarkPaid(ctx context.Context, req domain.MarkPaidRequest) (domain.Invoice, error) {
	invoice, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}

	if invoice.Status != domain.InvoiceStatusSent && invoice.Status != domain.InvoiceStatusOverdue {
		return domain.Invoice{}, domain.ErrInvalidStatus
	}

	now := time.Now().UTC()
	paidAt := now
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}

	invoice.Status = domain.InvoiceStatusPaid
	invoice.PaidAt = &paidAt
	invoice.UpdatedAt = now
	if invoice.Metadata == nil {
		invoice.Metadata = datatypes.JSONMap{}
	}
	if req.Reference != "" {
		invoice.Metadata["payment_reference"] = req.Reference
	}

	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("invoice paid",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number),
		zap.Float64("total", invoice.Total),
	)
	return *invoice, nil
}

func (s *Service) Void(ctx context.Context, id string) (domain.Invoice, error) {
	invoice, err := s.load(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}

	switch invoice.Status {
	case domain.InvoiceStatusDraft, domain.InvoiceStatusSent, domain.InvoiceStatusOverdue:
	default:
		return domain.Invoice{}, domain.ErrInvalidStatus
	}

	invoice.Status = domain.InvoiceStatusVoid
	invoice.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

// SweepOverdue flips sent invoices past their due date to overdue across all
// users. Called by the scheduler, not a request path.
func (s *Service) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	affected, err := s.repo.MarkOverdue(ctx, s.db, now.UTC())
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		s.log.Info("marked invoices overdue", zap.Int64("count", affected))
	}
	return affected, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	invoice, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if invoice.Status != domain.InvoiceStatusDraft {
		return domain.ErrInvalidStatus
	}

	userID, _ := usercontext.UserIDFromContext(ctx)
	return s.repo.Delete(ctx, s.db, userID, invoice.ID)
}

func (s *Service) load(ctx context.Context, id string) (*domain.Invoice, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	invoice, err := s.repo.FindByID(ctx, s.db, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}
