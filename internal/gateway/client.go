package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"event-planner/internal/status"
	"event-planner/utils"
)

type ClientConfig struct {
	BaseURL   string `json:"baseUrl" mapstructure:"base_url"`
	KeyID     string `json:"keyId" mapstructure:"key_id"`
	KeySecret string `json:"keySecret" mapstructure:"key_secret"`
}

var _ Gateway = (*Client)(nil)

// Client is the HTTP payment provider client. Requests carry a
// SignedHash header computed over the body with the shared secret;
// order creation runs behind a circuit breaker.
type Client struct {
	// baseURL is the base url of the provider backend.
	baseURL string

	// keyID identifies this merchant to the provider.
	keyID string

	// keySecret signs outbound requests and payment confirmations.
	keySecret string

	// breaker guards order creation against a flapping provider.
	breaker *utils.CircuitBreaker

	// hc is the http client.
	hc *http.Client
}

// NewClient creates a new provider client.
func NewClient(c *ClientConfig) *Client {
	return &Client{
		baseURL:   c.BaseURL,
		keyID:     c.KeyID,
		keySecret: c.KeySecret,
		breaker:   utils.NewCircuitBreaker("payment-gateway"),

		// set http client with timeout.
		hc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreateOrder asks the provider for an order reference. Any transport,
// breaker or provider-side failure is wrapped in
// status.ErrExternalService and surfaced without retry.
func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal, currency string) (*Order, error) {
	receipt, err := utils.GenerateCode(6)
	if err != nil {
		return nil, fmt.Errorf("%w: generate receipt: %v", status.ErrExternalService, err)
	}

	result, err := c.breaker.Execute(ctx, func() (any, error) {
		return c.postOrder(ctx, amount, currency, receipt)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create order: %v", status.ErrExternalService, err)
	}

	return result.(*Order), nil
}

func (c *Client) postOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*Order, error) {
	body := fmt.Sprintf(`{"amount":%s,"currency":%q,"receipt":%q}`, amount, currency, receipt)
	bodyReader := bytes.NewReader([]byte(body))

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s%s", base.String(), "/api/orders"), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("http.NewReq: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("SignedHash", Hmac256([]byte(body), []byte(c.keySecret)))
	req.Header.Set("X-Key-Id", c.keyID)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http.Do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resp.StatusCode: %d", resp.StatusCode)
	}

	var reply struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Data    struct {
			OrderID   string `json:"orderId"`
			Amount    string `json:"amount"`
			Currency  string `json:"currency"`
			CreatedAt int64  `json:"createdAt"`
		} `json:"data"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("json.Decode: %v", err)
	}
	if reply.Status != "OK" {
		return nil, fmt.Errorf("reply.Status: %v, reply.Message: %v", reply.Status, reply.Message)
	}

	order := &Order{
		ID:       reply.Data.OrderID,
		Amount:   amount,
		Currency: currency,
	}
	if reply.Data.CreatedAt > 0 {
		order.CreatedAt = time.Unix(reply.Data.CreatedAt, 0)
	} else {
		order.CreatedAt = time.Now()
	}
	return order, nil
}

// VerifySignature implements the provider's confirmation scheme:
// hex HMAC-SHA256 over "orderID|paymentID" under the shared secret.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySign(orderID, paymentID, signature, []byte(c.keySecret))
}
