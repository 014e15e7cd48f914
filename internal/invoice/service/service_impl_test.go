package service

import (
	"context"
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
	"github.com/lancekit/lancekit/internal/invoice/domain"
	"github.com/lancekit/lancekit/internal/invoice/draft"
	invoicerepo "github.com/lancekit/lancekit/internal/invoice/repository"
	projectdomain "github.com/lancekit/lancekit/internal/project/domain"
	projectrepo "github.com/lancekit/lancekit/internal/project/repository"
	"github.com/lancekit/lancekit/internal/usercontext"
)

type fixture struct {
	svc    domain.Service
	db     *gorm.DB
	genID  *snowflake.Node
	ctx    context.Context
	userID snowflake.ID
}

func setup(t *testing.T) *fixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&authdomain.User{},
		&projectdomain.Project{},
		&projectdomain.Task{},
		&domain.Invoice{},
		&domain.InvoiceItem{},
		&domain.NumberSequence{},
	))

	genID, err := snowflake.NewNode(1)
	require.NoError(t, err)

	holder, err := config.NewInvoicingConfigHolder()
	require.NoError(t, err)

	svc := New(Params{
		DB:        gdb,
		Log:       zap.NewNop(),
		GenID:     genID,
		Repo:      invoicerepo.Provide(),
		Users:     authrepo.Provide(),
		Projects:  projectrepo.Provide(),
		Invoicing: holder,
	})

	userID := genID.Generate()
	require.NoError(t, gdb.Create(&authdomain.User{
		ID:                userID,
		Name:              "Sam",
		Email:             "sam@example.test",
		PasswordHash:      "x",
		DefaultHourlyRate: 120,
		Currency:          "USD",
	}).Error)

	return &fixture{
		svc:    svc,
		db:     gdb,
		genID:  genID,
		ctx:    usercontext.WithUserID(context.Background(), userID),
		userID: userID,
	}
}

func testPayload(number string) draft.Payload {
	return draft.Payload{
		Number:      number,
		Client:      "Acme Co",
		ClientEmail: "billing@acme.test",
		Amount:      150,
		Tax:         15,
		Discount:    0,
		Total:       165,
		Currency:    "USD",
		Status:      "draft",
		IssueDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Items: []draft.PayloadItem{
			{Description: "Design", Quantity: 2, Rate: 75, Amount: 150},
		},
	}
}

func TestSubmitCreatesDraftInvoice(t *testing.T) {
	f := setup(t)

	invoice, err := f.svc.Submit(f.ctx, domain.SubmitInvoiceRequest{
		Payload: testPayload("INV-2025-0001"),
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-2025-0001", invoice.Number)
	assert.Equal(t, domain.InvoiceStatusDraft, invoice.Status)
	assert.Equal(t, 165.0, invoice.Total)
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, "Design", invoice.Items[0].Description)

	got, err := f.svc.GetByID(f.ctx, invoice.ID.String())
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
}

func TestSubmitRejectsDuplicateNumber(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Submit(f.ctx, domain.SubmitInvoiceRequest{Payload: testPayload("INV-2025-0001")})
	require.NoError(t, err)

	_, err = f.svc.Submit(f.ctx, domain.SubmitInvoiceRequest{Payload: testPayload("INV-2025-0001")})
	var portErr *domain.PortError
	require.ErrorAs(t, err, &portErr)
	assert.Equal(t, domain.PortValidation, portErr.Kind)
	assert.Contains(t, portErr.Fields, "number")
}

func TestSubmitValidationFields(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Submit(f.ctx, domain.SubmitInvoiceRequest{Payload: draft.Payload{}})
	var portErr *domain.PortError
	require.ErrorAs(t, err, &portErr)
	assert.Equal(t, domain.PortValidation, portErr.Kind)
	assert.Contains(t, portErr.Fields, "number")
	assert.Contains(t, portErr.Fields, "client")
	assert.Contains(t, portErr.Fields, "due_date")
	assert.Contains(t, portErr.Fields, "items")
}

func TestSubmitUnauthorizedWithoutUser(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Submit(context.Background(), domain.SubmitInvoiceRequest{Payload: testPayload("INV-2025-0001")})
	var portErr *domain.PortError
	require.ErrorAs(t, err, &portErr)
	assert.Equal(t, domain.PortUnauthorized, portErr.Kind)
}

func TestSubmitUpdatePreservesStatus(t *testing.T) {
	f := setup(t)

	invoice, err := f.svc.Submit(f.ctx, domain.SubmitInvoiceRequest{Payload: testPayload("INV-2025-0001")})
	require.NoError(t, err)

	invoice, err = f.svc.MarkSent(f.ctx, invoice.ID.String())
	require.NoError(t, err)
	require.Equal(t, domain.InvoiceStatusSent, invoice.Status)

	id := invoice.ID.String()
	payload := testPayload("INV-2025-0001")
	payload.Notes = "updated"
	payload.Items = []draft.PayloadItem{
		{Description: "Design", Quantity: 2, Rate: 75, Amount: 150},
		{Description: "Build", Quantity: 1, Rate: 90, Amount: 90},
	}

	updated, err := f.svc.Submit(f.ctx, domain.SubmitInvoiceRequest{InvoiceID: &id, Payload: payload})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, updated.Status)
	assert.Equal(t, "updated", updated.Notes)
	require.Len(t, updated.Items, 2)
}

func TestSubmitUpdateMissingInvoice(t *testing.T) {
	f := setup(t)

	id := f.genID.Generate().String()
	_, err := f.svc.Submit(f.ctx, domain.SubmitInvoiceRequest{InvoiceID: &id, Payload: testPayload("INV-2025-0001")})
	var portErr *domain.PortError
	require.ErrorAs(t, err, &portErr)
	assert.Equal(t, domain.PortNotFound, portErr.Kind)
}

func TestNextNumberAdvancesAfterSubmit(t *testing.T) {
	f := setup(t)

	next, err := f.svc.NextNumber(f.ctx)
	require.NoError(t, err)
	first := next.NextNumber
	assert.Regexp(t, `^INV-\d{4}-0001$`, first)

	_, err = f.svc.Submit(f.ctx, domain.SubmitInvoiceRequest{Payload: testPayload(first)})
	require.NoError(t, err)

	next, err = f.svc.NextNumber(f.ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, next.NextNumber)
}

func TestPopulateFromProject(t *testing.T) {
	f := setup(t)

	projectID := f.genID.Generate()
	require.NoError(t, f.db.Create(&projectdomain.Project{
		ID:         projectID,
		UserID:     f.userID,
		ClientID:   f.genID.Generate(),
		Name:       "Site redesign",
		Code:       "site-redesign",
		Status:     projectdomain.ProjectStatusActive,
		HourlyRate: 75,
	}).Error)
	for _, name := range []string{"Design", "Build"} {
		require.NoError(t, f.db.Create(&projectdomain.Task{
			ID:        f.genID.Generate(),
			UserID:    f.userID,
			ProjectID: projectID,
			Name:      name,
		}).Error)
	}

	resp, err := f.svc.PopulateFromProject(f.ctx, domain.PopulateFromProjectRequest{ProjectID: projectID.String()})
	require.NoError(t, err)

	assert.Equal(t, "USD", resp.Currency)
	require.Len(t, resp.Items, 3)
	assert.Equal(t, "Design", resp.Items[0].Description)
	assert.Equal(t, 75.0, resp.Items[0].Rate)
	assert.True(t, resp.Items[2].IsCustom)
}

func TestPopulateFromProjectFallsBackToUserRate(t *testing.T) {
	f := setup(t)

	projectID := f.genID.Generate()
	require.NoError(t, f.db.Create(&projectdomain.Project{
		ID:       projectID,
		UserID:   f.userID,
		ClientID: f.genID.Generate(),
		Name:     "Retainer",
		Code:     "retainer",
		Status:   projectdomain.ProjectStatusActive,
	}).Error)
	require.NoError(t, f.db.Create(&projectdomain.Task{
		ID:        f.genID.Generate(),
		UserID:    f.userID,
		ProjectID: projectID,
		Name:      "Support",
	}).Error)

	resp, err := f.svc.PopulateFromProject(f.ctx, domain.PopulateFromProjectRequest{ProjectID: projectID.String()})
	require.NoError(t, err)
	assert.Equal(t, 120.0, resp.Items[0].Rate)
}

func TestPopulateFromUnknownProject(t *testing.T) {
	f := setup(t)

	_, err := f.svc.PopulateFromProject(f.ctx, domain.PopulateFromProjectRequest{
		ProjectID: f.genID.Generate().String(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidProject)
}

func TestLifecycleTransitions(t *testing.T) {
	f := setup(t)

	invoice, err := f.svc.Submit(f.ctx, domain.SubmitInvoiceRequest{Payload: testPayload("INV-2025-0001")})
	require.NoError(t, err)
	id := invoice.ID.String()

	// paid requires sent first
	_, err = f.svc.MarkPaid(f.ctx, domain.MarkPaidRequest{ID: id})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	invoice, err = f.svc.MarkSent(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, invoice.Status)

	_, err = f.svc.MarkSent(f.ctx, id)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	invoice, err = f.svc.MarkPaid(f.ctx, domain.MarkPaidRequest{ID: id, Reference: "ch_123"})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, invoice.Status)
	require.NotNil(t, invoice.PaidAt)
	assert.Equal(t, "ch_123", invoice.Metadata["payment_reference"])

	_, err = f.svc.Void(f.ctx, id)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestSweepOverdue(t *testing.T) {
	f := setup(t)

	payload := testPayload("INV-2025-0001")
	payload.DueDate = time.Now().UTC().Add(-48 * time.Hour)
	invoice, err := f.svc.Submit(f.ctx, domain.SubmitInvoiceRequest{Payload: payload})
	require.NoError(t, err)

	// drafts are never swept
	count, err := f.svc.SweepOverdue(f.ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = f.svc.MarkSent(f.ctx, invoice.ID.String())
	require.NoError(t, err)

	count, err = f.svc.SweepOverdue(f.ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := f.svc.GetByID(f.ctx, invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusOverdue, got.Status)
}

func TestDeleteOnlyDrafts(t *testing.T) {
	f := setup(t)

	invoice, err := f.svc.Submit(f.ctx, domain.SubmitInvoiceRequest{Payload: testPayload("INV-2025-0001")})
	require.NoError(t, err)

	_, err = f.svc.MarkSent(f.ctx, invoice.ID.String())
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.Delete(f.ctx, invoice.ID.String()), domain.ErrInvalidStatus)

	other, err := f.svc.Submit(f.ctx, domain.SubmitInvoiceRequest{Payload: testPayload("INV-2025-0002")})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(f.ctx, other.ID.String()))

	_, err = f.svc.GetByID(f.ctx, other.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListFiltersByStatus(t *testing.T) {
	f := setup(t)

	first, err := f.svc.Submit(f.ctx, domain.SubmitInvoiceRequest{Payload: testPayload("INV-2025-0001")})
	require.NoError(t, err)
	_, err = f.svc.Submit(f.ctx, domain.SubmitInvoiceRequest{Payload: testPayload("INV-2025-0002")})
	require.NoError(t, err)
	_, err = f.svc.MarkSent(f.ctx, first.ID.String())
	require.NoError(t, err)

	status := domain.InvoiceStatusSent
	resp, err := f.svc.List(f.ctx, domain.ListInvoiceRequest{Status: &status})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 1)
	assert.Equal(t, "INV-2025-0001", resp.Invoices[0].Number)
}
