package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureRoundTrip(t *testing.T) {
	payload := []byte(`{"type":"checkout.session.completed"}`)
	header := Sign(payload, "whsec_test", time.Now())

	assert.NoError(t, VerifySignature(payload, header, "whsec_test", DefaultSignatureTolerance))
}

func TestSignatureWrongSecret(t *testing.T) {
	payload := []byte(`{"type":"checkout.session.completed"}`)
	header := Sign(payload, "whsec_test", time.Now())

	err := VerifySignature(payload, header, "whsec_other", DefaultSignatureTolerance)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestSignatureTamperedPayload(t *testing.T) {
	header := Sign([]byte(`{"amount":10}`), "whsec_test", time.Now())

	err := VerifySignature([]byte(`{"amount":9999}`), header, "whsec_test", DefaultSignatureTolerance)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestSignatureStaleTimestamp(t *testing.T) {
	payload := []byte(`{}`)
	header := Sign(payload, "whsec_test", time.Now().Add(-time.Hour))

	err := VerifySignature(payload, header, "whsec_test", DefaultSignatureTolerance)
	assert.ErrorIs(t, err, ErrTimestampTooOld)
}

func TestSignatureMalformedHeader(t *testing.T) {
	for _, header := range []string{"", "t=abc,v1=00", "v1=00", "t=123"} {
		err := VerifySignature([]byte(`{}`), header, "whsec_test", DefaultSignatureTolerance)
		assert.ErrorIs(t, err, ErrInvalidSignatureHeader, "header %q", header)
	}
}

func TestParseEvent(t *testing.T) {
	payload := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_1",
				"payment_intent": "pi_1",
				"metadata": {"bookId": "book-1", "userId": "user-1"}
			}
		}
	}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	assert.Equal(t, "pi_1", event.Data.Object.PaymentIntent)
	assert.Equal(t, "book-1", event.Data.Object.Metadata["bookId"])
	assert.Equal(t, "user-1", event.Data.Object.Metadata["userId"])
}
