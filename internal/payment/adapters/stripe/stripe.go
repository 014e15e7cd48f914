// Package stripe verifies and parses Stripe webhooks without the Stripe SDK.
package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lancekit/lancekit/internal/payment/domain"
)

type Adapter struct {
	webhookSecret string
}

func New(webhookSecret string) *Adapter {
	return &Adapter{webhookSecret: strings.TrimSpace(webhookSecret)}
}

func (a *Adapter) Name() string { return "stripe" }

// ParseWebhook checks the Stripe-Signature header against the endpoint
// secret, then normalizes the event. Events the service does not act on
// come back as ErrUnsupportedEvent.
func (a *Adapter) ParseWebhook(payload []byte, signature string) (*domain.WebhookEvent, error) {
	if err := a.verify(payload, signature); err != nil {
		return nil, err
	}

	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, domain.ErrUnsupportedEvent
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, domain.ErrUnsupportedEvent
	}

	switch strings.TrimSpace(event.Type) {
	case "payment_intent.succeeded":
		return a.parsePaymentIntent(event)
	default:
		return nil, domain.ErrUnsupportedEvent
	}
}

func (a *Adapter) verify(payload []byte, signature string) error {
	sigHeader := strings.TrimSpace(signature)
	if sigHeader == "" || a.webhookSecret == "" {
		return domain.ErrInvalidSignature
	}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return domain.ErrInvalidSignature
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(a.webhookSecret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, candidate := range signatures {
		if hmac.Equal([]byte(candidate), []byte(expected)) {
			return nil
		}
	}
	return domain.ErrInvalidSignature
}

type stripeEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Created int64           `json:"created"`
	Data    stripeEventData `json:"data"`
}

type stripeEventData struct {
	Object json.RawMessage `json:"object"`
}

type stripePaymentIntent struct {
	ID             string            `json:"id"`
	Amount         int64             `json:"amount"`
	AmountReceived int64             `json:"amount_received"`
	Currency       string            `json:"currency"`
	Created        int64             `json:"created"`
	Metadata       map[string]string `json:"metadata"`
}

func (a *Adapter) parsePaymentIntent(event stripeEvent) (*domain.WebhookEvent, error) {
	var intent stripePaymentIntent
	if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
		return nil, domain.ErrUnsupportedEvent
	}
	if strings.TrimSpace(intent.ID) == "" {
		return nil, domain.ErrUnsupportedEvent
	}

	invoiceID := strings.TrimSpace(intent.Metadata["invoice_id"])
	if invoiceID == "" {
		return nil, domain.ErrUnsupportedEvent
	}

	cents := intent.AmountReceived
	if cents <= 0 {
		cents = intent.Amount
	}

	return &domain.WebhookEvent{
		Provider:   "stripe",
		Type:       event.Type,
		Reference:  intent.ID,
		InvoiceID:  invoiceID,
		Amount:     float64(cents) / 100,
		Currency:   strings.ToUpper(strings.TrimSpace(intent.Currency)),
		OccurredAt: eventTime(intent.Created, event.Created),
	}, nil
}

func parseSignatureHeader(header string) (string, []string, error) {
	var timestamp string
	signatures := []string{}
	for _, part := range strings.Split(header, ",") {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "t" {
			timestamp = value
		}
		if key == "v1" {
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, domain.ErrInvalidSignature
	}
	return timestamp, signatures, nil
}

func eventTime(primary, fallback int64) time.Time {
	value := primary
	if value == 0 {
		value = fallback
	}
	if value == 0 {
		return time.Now().UTC()
	}
	return time.Unix(value, 0).UTC()
}
