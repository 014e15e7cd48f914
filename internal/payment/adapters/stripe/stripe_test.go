package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lancekit/lancekit/internal/payment/domain"
)

const secret = "whsec_test"

func signatureHeader(secret string, payload []byte, timestamp int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", timestamp, payload)))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func succeededPayload() []byte {
	return []byte(`{
		"id": "evt_1",
		"type": "payment_intent.succeeded",
		"created": 1750000000,
		"data": {"object": {
			"id": "pi_1",
			"amount": 16500,
			"amount_received": 16500,
			"currency": "usd",
			"created": 1750000000,
			"metadata": {"invoice_id": "1234567890"}
		}}
	}`)
}

func TestParseWebhook(t *testing.T) {
	adapter := New(secret)
	payload := succeededPayload()
	header := signatureHeader(secret, payload, time.Now().Unix())

	event, err := adapter.ParseWebhook(payload, header)
	require.NoError(t, err)

	assert.Equal(t, "stripe", event.Provider)
	assert.Equal(t, "pi_1", event.Reference)
	assert.Equal(t, "1234567890", event.InvoiceID)
	assert.Equal(t, 165.0, event.Amount)
	assert.Equal(t, "USD", event.Currency)
	assert.Equal(t, time.Unix(1750000000, 0).UTC(), event.OccurredAt)
}

func TestParseWebhookRejectsBadSignature(t *testing.T) {
	adapter := New(secret)
	payload := succeededPayload()

	_, err := adapter.ParseWebhook(payload, signatureHeader("wrong", payload, time.Now().Unix()))
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	_, err = adapter.ParseWebhook(payload, "")
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	_, err = adapter.ParseWebhook(payload, "t=,v1=")
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestParseWebhookIgnoresOtherEvents(t *testing.T) {
	adapter := New(secret)
	payload := []byte(`{"id":"evt_2","type":"charge.refunded","data":{"object":{}}}`)

	_, err := adapter.ParseWebhook(payload, signatureHeader(secret, payload, time.Now().Unix()))
	assert.ErrorIs(t, err, domain.ErrUnsupportedEvent)
}

func TestParseWebhookRequiresInvoiceMetadata(t *testing.T) {
	adapter := New(secret)
	payload := []byte(`{
		"id": "evt_3",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_3", "amount": 100, "currency": "usd", "metadata": {}}}
	}`)

	_, err := adapter.ParseWebhook(payload, signatureHeader(secret, payload, time.Now().Unix()))
	assert.ErrorIs(t, err, domain.ErrUnsupportedEvent)
}
