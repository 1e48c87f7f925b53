package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-planner/internal/status"
)

func TestSignAndVerify(t *testing.T) {
	secret := []byte("shared-secret")

	sig := Sign("ord-1", "pay-1", secret)
	assert.Len(t, sig, 64, "hex sha256 digest")

	assert.True(t, VerifySign("ord-1", "pay-1", sig, secret))
	assert.False(t, VerifySign("ord-1", "pay-2", sig, secret))
	assert.False(t, VerifySign("ord-2", "pay-1", sig, secret))
	assert.False(t, VerifySign("ord-1", "pay-1", sig, []byte("other-secret")))
	assert.False(t, VerifySign("ord-1", "pay-1", "", secret))

	// The signed payload is "orderID|paymentID"; shifting the
	// separator must change the signature.
	assert.NotEqual(t, Sign("ord-1", "pay-1", secret), Sign("ord-1|pay", "1", secret))
}

func TestHmac256_KnownVector(t *testing.T) {
	// echo -n "value" | openssl dgst -sha256 -hmac "key"
	got := Hmac256([]byte("value"), []byte("key"))
	assert.Equal(t, "90fbfcf15e74a36b89dbdb2a721d9aecffdfdddc5c83e27f7592594f71932481", got)
}

func TestClient_CreateOrder(t *testing.T) {
	secret := "test-secret"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "merchant-1", r.Header.Get("X-Key-Id"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, Hmac256(body, []byte(secret)), r.Header.Get("SignedHash"))

		var req struct {
			Amount   json.Number `json:"amount"`
			Currency string      `json:"currency"`
			Receipt  string      `json:"receipt"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "USD", req.Currency)
		assert.NotEmpty(t, req.Receipt)

		json.NewEncoder(w).Encode(map[string]any{
			"status":  "OK",
			"message": "created",
			"data": map[string]any{
				"orderId":   "ord-42",
				"amount":    req.Amount.String(),
				"currency":  req.Currency,
				"createdAt": 1735689600,
			},
		})
	}))
	defer srv.Close()

	client := NewClient(&ClientConfig{
		BaseURL:   srv.URL,
		KeyID:     "merchant-1",
		KeySecret: secret,
	})

	order, err := client.CreateOrder(context.Background(), decimal.NewFromInt(100), "USD")
	require.NoError(t, err)
	assert.Equal(t, "ord-42", order.ID)
	assert.True(t, decimal.NewFromInt(100).Equal(order.Amount))
	assert.Equal(t, "USD", order.Currency)
	assert.Equal(t, int64(1735689600), order.CreatedAt.Unix())
}

func TestClient_CreateOrderProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "ERROR",
			"message": "merchant suspended",
		})
	}))
	defer srv.Close()

	client := NewClient(&ClientConfig{BaseURL: srv.URL, KeySecret: "s"})

	_, err := client.CreateOrder(context.Background(), decimal.NewFromInt(100), "USD")
	assert.ErrorIs(t, err, status.ErrExternalService)
	assert.Contains(t, err.Error(), "merchant suspended")
}

func TestClient_CreateOrderHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(&ClientConfig{BaseURL: srv.URL, KeySecret: "s"})

	_, err := client.CreateOrder(context.Background(), decimal.NewFromInt(100), "USD")
	assert.ErrorIs(t, err, status.ErrExternalService)
}

func TestClient_VerifySignature(t *testing.T) {
	client := NewClient(&ClientConfig{KeySecret: "shared"})

	sig := Sign("ord-1", "pay-1", []byte("shared"))
	assert.True(t, client.VerifySignature("ord-1", "pay-1", sig))
	assert.False(t, client.VerifySignature("ord-1", "pay-1", "forged"))
}

func TestParseNotification(t *testing.T) {
	// Providers deliver either a JSON string or an already-decoded map.
	fromString, err := parseNotification(`{"participant_id":"p-1","order_id":"ord-1","payment_id":"pay-1","signature":"sig","status":"success"}`)
	require.NoError(t, err)
	assert.Equal(t, "p-1", fromString.ParticipantID)
	assert.Equal(t, "success", fromString.Status)

	fromMap, err := parseNotification(map[string]any{
		"participant_id": "p-2",
		"order_id":       "ord-2",
		"payment_id":     "pay-2",
		"status":         "failed",
	})
	require.NoError(t, err)
	assert.Equal(t, "p-2", fromMap.ParticipantID)
	assert.Equal(t, "failed", fromMap.Status)

	_, err = parseNotification("{not json")
	assert.Error(t, err)
}
