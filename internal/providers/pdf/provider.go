// Package pdf renders invoices to PDF.
package pdf

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/fx"

	authdomain "github.com/lancekit/lancekit/internal/auth/domain"
	invoicedomain "github.com/lancekit/lancekit/internal/invoice/domain"
)

type Provider interface {
	RenderInvoice(ctx context.Context, data InvoiceData) (io.Reader, error)
}

// InvoiceData is the flattened, pre-formatted view the renderer consumes.
type InvoiceData struct {
	FromName     string
	FromBusiness string
	FromEmail    string

	BillToName  string
	BillToEmail string

	Number    string
	Status    string
	IssueDate string
	DueDate   string

	Items []InvoiceItemData

	Subtotal string
	Tax      string
	Discount string
	Total    string
	Notes    string
	Terms    string
}

type InvoiceItemData struct {
	Description string
	Quantity    string
	Rate        string
	Amount      string
}

// BuildInvoiceData formats a persisted invoice for rendering.
func BuildInvoiceData(invoice invoicedomain.Invoice, user authdomain.User) InvoiceData {
	data := InvoiceData{
		FromName:     user.Name,
		FromBusiness: user.BusinessName,
		FromEmail:    user.Email,
		BillToName:   invoice.ClientName,
		BillToEmail:  invoice.ClientEmail,
		Number:       invoice.Number,
		Status:       string(invoice.Status),
		IssueDate:    invoice.IssueDate.Format("Jan 2, 2006"),
		DueDate:      invoice.DueDate.Format("Jan 2, 2006"),
		Subtotal:     money(invoice.Currency, invoice.Amount),
		Tax:          money(invoice.Currency, invoice.Tax),
		Discount:     money(invoice.Currency, invoice.Discount),
		Total:        money(invoice.Currency, invoice.Total),
		Notes:        invoice.Notes,
		Terms:        invoice.Terms,
	}

	for _, item := range invoice.Items {
		data.Items = append(data.Items, InvoiceItemData{
			Description: item.Description,
			Quantity:    fmt.Sprintf("%g", item.Quantity),
			Rate:        money(invoice.Currency, item.Rate),
			Amount:      money(invoice.Currency, item.Amount),
		})
	}

	return data
}

func money(currency string, amount float64) string {
	return fmt.Sprintf("%s %.2f", currency, amount)
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)
