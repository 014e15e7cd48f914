// Package draft implements the invoice compose aggregate: line-item
// population, totals, and the validate/submit lifecycle. It holds no
// persistence concerns; the invoice service feeds it and stores its payload.
package draft

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// ClientMode tracks how the draft resolves its client.
type ClientMode int

const (
	ClientNone ClientMode = iota
	ClientSelected
	ClientManual
)

// ProjectMode tracks whether a project drives line-item population.
type ProjectMode int

const (
	ProjectNone ProjectMode = iota
	ProjectSelected
)

// ItemMode tracks which population rule owns the item list.
type ItemMode int

const (
	ItemsTaskDerived ItemMode = iota
	ItemsManual
)

// SubmitState is the submission lifecycle of a draft.
type SubmitState int

const (
	StateIdle SubmitState = iota
	StateValidating
	StateSubmitting
)

var ErrSubmitInFlight = errors.New("submission already in progress")

// ValidationError carries the single human-readable message surfaced when a
// draft fails its pre-submit checks.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// LineItem is one billable row being composed. Amount is derived, never
// stored on the row.
type LineItem struct {
	Description string        `json:"description"`
	Quantity    float64       `json:"quantity"`
	Rate        float64       `json:"rate"`
	Currency    string        `json:"currency"`
	TaskID      *snowflake.ID `json:"task_id,omitempty"`
	IsCustom    bool          `json:"is_custom"`
}

// Amount returns quantity times rate with factor coercion applied.
func (li LineItem) Amount() float64 {
	return coerceFactor(li.Quantity) * coerceFactor(li.Rate)
}

// ClientRef is a selected existing client.
type ClientRef struct {
	ID    snowflake.ID
	Name  string
	Email string
}

// ManualClient is the free-form client used when no client record matches.
type ManualClient struct {
	Name    string
	Email   string
	Contact string
	Address string
}

// TaskRef is the slice of a task needed to derive a line item.
type TaskRef struct {
	ID   snowflake.ID
	Name string
}

const fallbackRate = 1

// RateSource resolves the default rate for task-derived items: project rate,
// then the user's default rate, then the fallback constant.
type RateSource struct {
	ProjectHourlyRate float64
	UserDefaultRate   float64
	Fallback          float64
}

func (r RateSource) Resolve() float64 {
	if r.ProjectHourlyRate > 0 {
		return r.ProjectHourlyRate
	}
	if r.UserDefaultRate > 0 {
		return r.UserDefaultRate
	}
	if r.Fallback > 0 {
		return r.Fallback
	}
	return fallbackRate
}

// DefaultItem returns the single empty row every fresh item list starts with.
func DefaultItem(currency string) LineItem {
	return LineItem{
		Description: "",
		Quantity:    1,
		Rate:        fallbackRate,
		Currency:    currency,
	}
}

// PopulateFromTasks derives one line item per task plus one trailing empty
// custom row for ad-hoc additions. An empty task list yields the single
// default row so the list never empties.
func PopulateFromTasks(tasks []TaskRef, rate RateSource, currency string) []LineItem {
	if len(tasks) == 0 {
		return []LineItem{DefaultItem(currency)}
	}

	resolved := rate.Resolve()
	items := make([]LineItem, 0, len(tasks)+1)
	for _, task := range tasks {
		taskID := task.ID
		items = append(items, LineItem{
			Description: task.Name,
			Quantity:    1,
			Rate:        resolved,
			Currency:    currency,
			TaskID:      &taskID,
		})
	}

	custom := DefaultItem(currency)
	custom.IsCustom = true
	return append(items, custom)
}

// Defaults seed a fresh draft and are restored on reset.
type Defaults struct {
	Number        string
	Currency      string
	TaxPercentage float64
	IssueDate     time.Time
	DueDate       *time.Time
	Terms         string
}

// ExistingInvoice hydrates a draft for editing a persisted invoice. Status
// and ID are preserved through resubmission.
type ExistingInvoice struct {
	ID        snowflake.ID
	Number    string
	Status    string
	Client    ClientRef
	ProjectID *snowflake.ID
	Currency  string
	Tax       float64
	Discount  float64
	IssueDate time.Time
	DueDate   *time.Time
	Notes     string
	Terms     string
	Items     []LineItem
}

// Draft is one invoice being composed. A compose session owns exactly one
// draft; it is not safe for concurrent use.
type Draft struct {
	Number         string
	IssueDate      time.Time
	DueDate        *time.Time
	TaxPercentage  float64
	DiscountAmount float64
	Notes          string
	Terms          string

	defaults   Defaults
	currency   string
	status     string
	existingID *snowflake.ID

	client     ClientRef
	manual     ManualClient
	clientMode ClientMode

	projectID   snowflake.ID
	projectRate float64
	projectMode ProjectMode

	itemMode    ItemMode
	items       []LineItem
	tasks       []TaskRef
	tasksLoaded bool

	userDefaultRate float64
	generation      uint64

	state     SubmitState
	lastError string
}

// New creates a fresh draft in its default state.
func New(defaults Defaults, userDefaultRate float64) *Draft {
	d := &Draft{defaults: defaults, userDefaultRate: userDefaultRate}
	d.reset()
	return d
}

// Edit hydrates a draft from an existing invoice, preserving its identity
// and status.
func Edit(existing ExistingInvoice, defaults Defaults, userDefaultRate float64) *Draft {
	d := New(defaults, userDefaultRate)

	id := existing.ID
	d.existingID = &id
	d.Number = existing.Number
	d.status = existing.Status
	d.currency = existing.Currency
	d.TaxPercentage = existing.Tax
	d.DiscountAmount = existing.Discount
	d.IssueDate = existing.IssueDate
	d.DueDate = existing.DueDate
	d.Notes = existing.Notes
	d.Terms = existing.Terms

	if existing.Client.ID != 0 {
		d.clientMode = ClientSelected
		d.client = existing.Client
		d.manual = ManualClient{Name: existing.Client.Name, Email: existing.Client.Email}
	}
	if existing.ProjectID != nil && *existing.ProjectID != 0 {
		d.projectMode = ProjectSelected
		d.projectID = *existing.ProjectID
	}
	if len(existing.Items) > 0 {
		d.items = append([]LineItem(nil), existing.Items...)
		d.SetCurrency(d.currency)
	}

	return d
}

func (d *Draft) reset() {
	d.Number = d.defaults.Number
	d.IssueDate = d.defaults.IssueDate
	d.DueDate = d.defaults.DueDate
	d.TaxPercentage = d.defaults.TaxPercentage
	d.DiscountAmount = 0
	d.Notes = ""
	d.Terms = d.defaults.Terms
	d.currency = d.defaults.Currency
	d.status = ""
	d.existingID = nil
	d.client = ClientRef{}
	d.manual = ManualClient{}
	d.clientMode = ClientNone
	d.projectID = 0
	d.projectRate = 0
	d.projectMode = ProjectNone
	d.itemMode = ItemsTaskDerived
	d.items = []LineItem{DefaultItem(d.currency)}
	d.tasks = nil
	d.tasksLoaded = false
	d.state = StateIdle
	d.lastError = ""
}

// Reset discards all compose state, restoring defaults. Called when the
// compose surface closes or after a successful submit.
func (d *Draft) Reset() { d.reset() }

func (d *Draft) Currency() string        { return d.currency }
func (d *Draft) Items() []LineItem       { return d.items }
func (d *Draft) ClientMode() ClientMode  { return d.clientMode }
func (d *Draft) ProjectMode() ProjectMode { return d.projectMode }
func (d *Draft) ItemMode() ItemMode      { return d.itemMode }
func (d *Draft) State() SubmitState      { return d.state }
func (d *Draft) Saving() bool            { return d.state == StateSubmitting }
func (d *Draft) LastError() string       { return d.lastError }
func (d *Draft) Editing() bool           { return d.existingID != nil }

// Generation is the current selection generation; task and project fetch
// results must present the generation they were requested under.
func (d *Draft) Generation() uint64 { return d.generation }

// SelectClient picks an existing client. Project and task state reset and
// the item list collapses to a single empty row awaiting task load. The
// client's fields are copied into the manual shadow without switching modes.
func (d *Draft) SelectClient(client ClientRef) uint64 {
	d.clientMode = ClientSelected
	d.client = client
	d.manual = ManualClient{Name: client.Name, Email: client.Email}
	d.clearProjectSelection()
	return d.generation
}

// UseManualClient switches to free-form client entry, clearing project and
// task state.
func (d *Draft) UseManualClient(manual ManualClient) {
	d.clientMode = ClientManual
	d.client = ClientRef{}
	d.manual = manual
	d.clearProjectSelection()
}

// SetManualClient updates the manual client fields without a mode change.
func (d *Draft) SetManualClient(manual ManualClient) {
	d.manual = manual
}

func (d *Draft) clearProjectSelection() {
	d.projectID = 0
	d.projectRate = 0
	d.projectMode = ProjectNone
	d.tasks = nil
	d.tasksLoaded = false
	d.itemMode = ItemsTaskDerived
	d.items = []LineItem{DefaultItem(d.currency)}
	d.generation++
}

// SelectProject picks a project under the selected client and returns the
// generation token the task fetch must carry.
func (d *Draft) SelectProject(projectID snowflake.ID, hourlyRate float64) uint64 {
	d.projectID = projectID
	d.projectRate = hourlyRate
	d.projectMode = ProjectSelected
	d.tasks = nil
	d.tasksLoaded = false
	d.items = []LineItem{DefaultItem(d.currency)}
	d.generation++
	return d.generation
}

// TasksLoaded delivers a task fetch result. A result carrying a stale
// generation is discarded and reports false. Population only fires when a
// client and project are selected and items are task-derived.
func (d *Draft) TasksLoaded(generation uint64, tasks []TaskRef) bool {
	if generation != d.generation {
		return false
	}

	d.tasks = append([]TaskRef(nil), tasks...)
	d.tasksLoaded = true

	if d.clientMode == ClientSelected && d.projectMode == ProjectSelected && d.itemMode == ItemsTaskDerived {
		d.populateFromTasks()
	}
	return true
}

func (d *Draft) populateFromTasks() {
	d.items = PopulateFromTasks(d.tasks, d.rateSource(), d.currency)
}

func (d *Draft) rateSource() RateSource {
	return RateSource{
		ProjectHourlyRate: d.projectRate,
		UserDefaultRate:   d.userDefaultRate,
		Fallback:          fallbackRate,
	}
}

// EnterManualItems switches the item list to manual entry, collapsing it to
// a single empty row.
func (d *Draft) EnterManualItems() {
	if d.itemMode == ItemsManual {
		return
	}
	d.itemMode = ItemsManual
	d.items = []LineItem{DefaultItem(d.currency)}
}

// ExitManualItems returns to task-derived population. If tasks are already
// cached they repopulate immediately; otherwise the manual rows survive
// until a task load arrives.
func (d *Draft) ExitManualItems() {
	if d.itemMode == ItemsTaskDerived {
		return
	}
	d.itemMode = ItemsTaskDerived
	if d.tasksLoaded && d.clientMode == ClientSelected && d.projectMode == ProjectSelected {
		d.populateFromTasks()
	}
}

// AddItem appends an empty custom row.
func (d *Draft) AddItem() {
	item := DefaultItem(d.currency)
	item.IsCustom = true
	d.items = append(d.items, item)
}

// RemoveItem deletes a row. Removing the last remaining row is a no-op; the
// list never empties through deletion.
func (d *Draft) RemoveItem(index int) {
	if len(d.items) <= 1 {
		return
	}
	if index < 0 || index >= len(d.items) {
		return
	}
	d.items = append(d.items[:index], d.items[index+1:]...)
}

// ItemPatch updates a row in place; nil fields are untouched.
type ItemPatch struct {
	Description *string
	Quantity    *float64
	Rate        *float64
}

func (d *Draft) UpdateItem(index int, patch ItemPatch) {
	if index < 0 || index >= len(d.items) {
		return
	}
	if patch.Description != nil {
		d.items[index].Description = *patch.Description
	}
	if patch.Quantity != nil {
		d.items[index].Quantity = *patch.Quantity
	}
	if patch.Rate != nil {
		d.items[index].Rate = *patch.Rate
	}
}

// SetCurrency changes the header currency and propagates it to every row.
func (d *Draft) SetCurrency(code string) {
	d.currency = code
	for i := range d.items {
		d.items[i].Currency = code
	}
}

// Totals recomputes the derived money view.
func (d *Draft) Totals() Totals {
	return CalculateTotals(d.items, d.TaxPercentage, d.DiscountAmount)
}

// PayloadItem is a normalized line on the submission payload.
type PayloadItem struct {
	Description string        `json:"description"`
	Quantity    float64       `json:"quantity"`
	Rate        float64       `json:"rate"`
	Amount      float64       `json:"amount"`
	TaskID      *snowflake.ID `json:"task_id,omitempty"`
	IsCustom    bool          `json:"is_custom"`
}

// Payload is the normalized submission contract handed to persistence.
type Payload struct {
	Number      string        `json:"number"`
	Client      string        `json:"client"`
	ClientEmail string        `json:"client_email"`
	ClientID    *snowflake.ID `json:"client_id,omitempty"`
	Amount      float64       `json:"amount"`
	Tax         float64       `json:"tax"`
	Discount    float64       `json:"discount"`
	Total       float64       `json:"total"`
	Currency    string        `json:"currency"`
	Status      string        `json:"status"`
	IssueDate   time.Time     `json:"issue_date"`
	DueDate     time.Time     `json:"due_date"`
	Items       []PayloadItem `json:"items"`
	Notes       string        `json:"notes"`
	Terms       string        `json:"terms"`
	ProjectID   *snowflake.ID `json:"project_id,omitempty"`
}

// BeginSubmit runs validation and, on success, moves the draft into the
// submitting state and returns the normalized payload. At most one
// submission may be in flight.
func (d *Draft) BeginSubmit() (Payload, error) {
	if d.state == StateSubmitting {
		return Payload{}, ErrSubmitInFlight
	}

	d.state = StateValidating
	if err := d.validate(); err != nil {
		d.state = StateIdle
		d.lastError = err.Error()
		return Payload{}, err
	}

	payload := d.payload()
	d.state = StateSubmitting
	d.lastError = ""
	return payload, nil
}

// SubmitSucceeded finishes a submission: the draft resets to defaults.
func (d *Draft) SubmitSucceeded() {
	d.reset()
}

// SubmitFailed records the failure message and returns to idle. The entered
// data survives so the user can correct and resubmit.
func (d *Draft) SubmitFailed(message string) {
	d.state = StateIdle
	d.lastError = message
}

func (d *Draft) validate() error {
	if strings.TrimSpace(d.Number) == "" {
		return &ValidationError{Message: "invoice number is required"}
	}

	switch d.clientMode {
	case ClientManual:
		if strings.TrimSpace(d.manual.Name) == "" || strings.TrimSpace(d.manual.Email) == "" {
			return &ValidationError{Message: "client name and email are required"}
		}
	case ClientSelected:
		if d.client.ID == 0 {
			return &ValidationError{Message: "a client must be selected"}
		}
	default:
		return &ValidationError{Message: "a client must be selected"}
	}

	if d.DueDate == nil || d.DueDate.IsZero() {
		return &ValidationError{Message: "due date is required"}
	}

	for _, item := range d.items {
		if strings.TrimSpace(item.Description) != "" {
			return nil
		}
	}
	return &ValidationError{Message: "at least one line item with a description is required"}
}

func (d *Draft) payload() Payload {
	items := make([]PayloadItem, 0, len(d.items))
	for _, item := range d.items {
		description := strings.TrimSpace(item.Description)
		if description == "" {
			continue
		}
		items = append(items, PayloadItem{
			Description: description,
			Quantity:    coerceFactor(item.Quantity),
			Rate:        coerceFactor(item.Rate),
			Amount:      item.Amount(),
			TaskID:      item.TaskID,
			IsCustom:    item.IsCustom,
		})
	}

	kept := make([]LineItem, 0, len(items))
	for _, item := range items {
		kept = append(kept, LineItem{Quantity: item.Quantity, Rate: item.Rate})
	}
	totals := CalculateTotals(kept, d.TaxPercentage, d.DiscountAmount)

	clientName := strings.TrimSpace(d.client.Name)
	clientEmail := strings.TrimSpace(d.client.Email)
	var clientID *snowflake.ID
	if d.clientMode == ClientManual {
		clientName = strings.TrimSpace(d.manual.Name)
		clientEmail = strings.TrimSpace(d.manual.Email)
	} else if d.client.ID != 0 {
		id := d.client.ID
		clientID = &id
	}

	status := d.status
	if status == "" {
		status = "draft"
	}

	var projectID *snowflake.ID
	if d.projectMode == ProjectSelected && d.projectID != 0 {
		id := d.projectID
		projectID = &id
	}

	var dueDate time.Time
	if d.DueDate != nil {
		dueDate = *d.DueDate
	}

	return Payload{
		Number:      strings.TrimSpace(d.Number),
		Client:      clientName,
		ClientEmail: clientEmail,
		ClientID:    clientID,
		Amount:      totals.Subtotal,
		Tax:         totals.TaxAmount,
		Discount:    totals.Discount,
		Total:       totals.Total,
		Currency:    d.currency,
		Status:      status,
		IssueDate:   d.IssueDate,
		DueDate:     dueDate,
		Items:       items,
		Notes:       strings.TrimSpace(d.Notes),
		Terms:       strings.TrimSpace(d.Terms),
		ProjectID:   projectID,
	}
}
