package draft

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDraft() *Draft {
	due := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	return New(Defaults{
		Number:        "INV-2025-0001",
		Currency:      "USD",
		TaxPercentage: 10,
		IssueDate:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       &due,
	}, 0)
}

func selectedDraft() (*Draft, uint64) {
	d := newTestDraft()
	d.SelectClient(ClientRef{ID: 1, Name: "Acme Co", Email: "billing@acme.test"})
	gen := d.SelectProject(42, 75)
	return d, gen
}

func TestNewDraftStartsWithSingleEmptyItem(t *testing.T) {
	d := newTestDraft()

	require.Len(t, d.Items(), 1)
	item := d.Items()[0]
	assert.Empty(t, item.Description)
	assert.Equal(t, 1.0, item.Quantity)
	assert.Equal(t, 1.0, item.Rate)
	assert.Equal(t, "USD", item.Currency)
	assert.False(t, item.IsCustom)
	assert.Equal(t, ClientNone, d.ClientMode())
	assert.Equal(t, ItemsTaskDerived, d.ItemMode())
}

func TestTasksLoadedPopulatesItems(t *testing.T) {
	d, gen := selectedDraft()

	ok := d.TasksLoaded(gen, []TaskRef{
		{ID: 10, Name: "Design"},
		{ID: 11, Name: "Build"},
	})
	require.True(t, ok)

	items := d.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "Design", items[0].Description)
	assert.Equal(t, 75.0, items[0].Rate)
	require.NotNil(t, items[0].TaskID)
	assert.Equal(t, snowflake.ID(10), *items[0].TaskID)
	assert.False(t, items[0].IsCustom)

	// trailing empty custom row for ad-hoc additions
	last := items[2]
	assert.Empty(t, last.Description)
	assert.True(t, last.IsCustom)
	assert.Nil(t, last.TaskID)
}

func TestTasksLoadedDiscardsStaleGeneration(t *testing.T) {
	d, stale := selectedDraft()
	fresh := d.SelectProject(43, 90)
	require.NotEqual(t, stale, fresh)

	ok := d.TasksLoaded(stale, []TaskRef{{ID: 10, Name: "Old project task"}})
	assert.False(t, ok)
	require.Len(t, d.Items(), 1)
	assert.Empty(t, d.Items()[0].Description)

	ok = d.TasksLoaded(fresh, []TaskRef{{ID: 20, Name: "New project task"}})
	assert.True(t, ok)
	assert.Equal(t, "New project task", d.Items()[0].Description)
	assert.Equal(t, 90.0, d.Items()[0].Rate)
}

func TestTasksLoadedEmptyListKeepsSingleRow(t *testing.T) {
	d, gen := selectedDraft()

	require.True(t, d.TasksLoaded(gen, nil))
	require.Len(t, d.Items(), 1)
	assert.Empty(t, d.Items()[0].Description)
}

func TestRateResolutionFallsBackToUserDefault(t *testing.T) {
	due := time.Now().Add(14 * 24 * time.Hour)
	d := New(Defaults{Number: "INV-2025-0002", Currency: "USD", DueDate: &due}, 120)
	d.SelectClient(ClientRef{ID: 1, Name: "Acme Co", Email: "billing@acme.test"})
	gen := d.SelectProject(42, 0)

	require.True(t, d.TasksLoaded(gen, []TaskRef{{ID: 10, Name: "Design"}}))
	assert.Equal(t, 120.0, d.Items()[0].Rate)
}

func TestSelectClientResetsProjectAndItems(t *testing.T) {
	d, gen := selectedDraft()
	require.True(t, d.TasksLoaded(gen, []TaskRef{{ID: 10, Name: "Design"}}))
	require.Len(t, d.Items(), 2)

	d.SelectClient(ClientRef{ID: 2, Name: "Beta LLC", Email: "ap@beta.test"})

	assert.Equal(t, ProjectNone, d.ProjectMode())
	require.Len(t, d.Items(), 1)
	assert.Empty(t, d.Items()[0].Description)
}

func TestManualItemsToggleRoundTrip(t *testing.T) {
	d, gen := selectedDraft()
	require.True(t, d.TasksLoaded(gen, []TaskRef{
		{ID: 10, Name: "Design"},
		{ID: 11, Name: "Build"},
	}))
	require.Len(t, d.Items(), 3)

	d.EnterManualItems()
	require.Len(t, d.Items(), 1)
	assert.Empty(t, d.Items()[0].Description)

	// cached tasks repopulate without a refetch
	d.ExitManualItems()
	require.Len(t, d.Items(), 3)
	assert.Equal(t, "Design", d.Items()[0].Description)
}

func TestRemoveLastItemIsNoOp(t *testing.T) {
	d := newTestDraft()

	d.RemoveItem(0)
	require.Len(t, d.Items(), 1)

	d.AddItem()
	require.Len(t, d.Items(), 2)
	d.RemoveItem(1)
	require.Len(t, d.Items(), 1)
	d.RemoveItem(0)
	require.Len(t, d.Items(), 1)
}

func TestSetCurrencyPropagatesToItems(t *testing.T) {
	d, gen := selectedDraft()
	require.True(t, d.TasksLoaded(gen, []TaskRef{{ID: 10, Name: "Design"}}))

	d.SetCurrency("EUR")

	assert.Equal(t, "EUR", d.Currency())
	for _, item := range d.Items() {
		assert.Equal(t, "EUR", item.Currency)
	}
}

func TestDraftTotalsExample(t *testing.T) {
	d, gen := selectedDraft()
	require.True(t, d.TasksLoaded(gen, []TaskRef{
		{ID: 10, Name: "Design"},
		{ID: 11, Name: "Build"},
	}))

	desc := "Stock photos"
	qty := 2.0
	rate := 50.0
	d.UpdateItem(2, ItemPatch{Description: &desc, Quantity: &qty, Rate: &rate})
	d.DiscountAmount = 20

	totals := d.Totals()
	assert.Equal(t, 250.0, totals.Subtotal)
	assert.Equal(t, 25.0, totals.TaxAmount)
	assert.Equal(t, 255.0, totals.Total)
}

func TestBeginSubmitValidationOrder(t *testing.T) {
	d := newTestDraft()
	d.Number = "  "

	_, err := d.BeginSubmit()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "invoice number is required", verr.Message)
	assert.Equal(t, StateIdle, d.State())
	assert.Equal(t, verr.Message, d.LastError())

	d.Number = "INV-2025-0001"
	_, err = d.BeginSubmit()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "a client must be selected", verr.Message)

	d.UseManualClient(ManualClient{Name: "Acme Co"})
	_, err = d.BeginSubmit()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "client name and email are required", verr.Message)

	d.SetManualClient(ManualClient{Name: "Acme Co", Email: "billing@acme.test"})
	d.DueDate = nil
	_, err = d.BeginSubmit()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "due date is required", verr.Message)

	due := time.Now().Add(14 * 24 * time.Hour)
	d.DueDate = &due
	_, err = d.BeginSubmit()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "at least one line item with a description is required", verr.Message)
}

func TestBeginSubmitBuildsNormalizedPayload(t *testing.T) {
	d, gen := selectedDraft()
	require.True(t, d.TasksLoaded(gen, []TaskRef{{ID: 10, Name: "Design"}}))
	d.Notes = "  thanks  "

	payload, err := d.BeginSubmit()
	require.NoError(t, err)
	assert.Equal(t, StateSubmitting, d.State())
	assert.True(t, d.Saving())

	assert.Equal(t, "INV-2025-0001", payload.Number)
	assert.Equal(t, "Acme Co", payload.Client)
	assert.Equal(t, "billing@acme.test", payload.ClientEmail)
	require.NotNil(t, payload.ClientID)
	assert.Equal(t, snowflake.ID(1), *payload.ClientID)
	require.NotNil(t, payload.ProjectID)
	assert.Equal(t, snowflake.ID(42), *payload.ProjectID)
	assert.Equal(t, "draft", payload.Status)
	assert.Equal(t, "thanks", payload.Notes)

	// blank trailing row is dropped from the payload
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "Design", payload.Items[0].Description)
	assert.Equal(t, 75.0, payload.Items[0].Amount)
	assert.Equal(t, 75.0, payload.Amount)
	assert.InDelta(t, 82.5, payload.Total, 1e-9)
}

func TestBeginSubmitRejectsConcurrentSubmit(t *testing.T) {
	d, gen := selectedDraft()
	require.True(t, d.TasksLoaded(gen, []TaskRef{{ID: 10, Name: "Design"}}))

	_, err := d.BeginSubmit()
	require.NoError(t, err)

	_, err = d.BeginSubmit()
	assert.ErrorIs(t, err, ErrSubmitInFlight)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	d, gen := selectedDraft()
	require.True(t, d.TasksLoaded(gen, []TaskRef{{ID: 10, Name: "Design"}}))

	_, err := d.BeginSubmit()
	require.NoError(t, err)

	d.SubmitFailed("that invoice number is already in use")

	assert.Equal(t, StateIdle, d.State())
	assert.Equal(t, "that invoice number is already in use", d.LastError())
	assert.Equal(t, "Design", d.Items()[0].Description)

	// correct and resubmit
	d.Number = "INV-2025-0002"
	_, err = d.BeginSubmit()
	require.NoError(t, err)
}

func TestSubmitSuccessResetsDraft(t *testing.T) {
	d, gen := selectedDraft()
	require.True(t, d.TasksLoaded(gen, []TaskRef{{ID: 10, Name: "Design"}}))

	_, err := d.BeginSubmit()
	require.NoError(t, err)
	d.SubmitSucceeded()

	assert.Equal(t, StateIdle, d.State())
	assert.Equal(t, ClientNone, d.ClientMode())
	require.Len(t, d.Items(), 1)
	assert.Empty(t, d.Items()[0].Description)
}

func TestEditPreservesStatusAndID(t *testing.T) {
	due := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	d := Edit(ExistingInvoice{
		ID:     99,
		Number: "INV-2025-0007",
		Status: "sent",
		Client: ClientRef{ID: 1, Name: "Acme Co", Email: "billing@acme.test"},
		Items: []LineItem{
			{Description: "Design", Quantity: 1, Rate: 75, Currency: "USD"},
		},
		Currency:  "USD",
		IssueDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   &due,
	}, Defaults{Currency: "USD"}, 0)

	require.True(t, d.Editing())
	payload, err := d.BeginSubmit()
	require.NoError(t, err)
	assert.Equal(t, "sent", payload.Status)
	assert.Equal(t, "INV-2025-0007", payload.Number)
}
