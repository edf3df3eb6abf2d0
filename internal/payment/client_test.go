package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCheckoutSessionForm(t *testing.T) {
	var captured url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		captured = r.PostForm

		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_key", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"id":"cs_1","url":"https://checkout.example/cs_1"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_key")
	session, err := client.CreateCheckoutSession(context.Background(), CheckoutParams{
		BookID:     "book-1",
		UserID:     "user-1",
		BookTitle:  "Go in Practice",
		Amount:     19.99,
		SuccessURL: "https://shop.example/success",
		CancelURL:  "https://shop.example/cancel",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.example/cs_1", session.URL)
	assert.Equal(t, "1999", captured.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "usd", captured.Get("line_items[0][price_data][currency]"))
	assert.Equal(t, "book-1", captured.Get("metadata[bookId]"))
	assert.Equal(t, "user-1", captured.Get("metadata[userId]"))
	assert.Equal(t, "payment", captured.Get("mode"))
}

func TestMinorUnitsRounds(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{19.99, 1999},
		{0.1, 10},
		{29.98, 2998},
		{5, 500},
		{0, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, minorUnits(tc.amount), "amount %v", tc.amount)
	}
}

func TestCreateCheckoutSessionProcessorError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"no such price"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_key")
	_, err := client.CreateCheckoutSession(context.Background(), CheckoutParams{
		BookID: "book-1", UserID: "user-1", BookTitle: "X", Amount: 1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
