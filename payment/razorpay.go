package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to the Razorpay REST API and verifies its two signature
// schemes: the client-callback signature (keyed on the API key secret) and
// the webhook signature (keyed on the separate webhook secret).
type Client struct {
	http          *resty.Client
	keyID         string
	keySecret     string
	webhookSecret string
}

func NewClient(keyID, keySecret, webhookSecret string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL("https://api.razorpay.com/v1").
			SetBasicAuth(keyID, keySecret).
			SetTimeout(10 * time.Second),
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
	}
}

// KeyID is handed to the frontend so it can open the hosted checkout.
func (cl *Client) KeyID() string {
	return cl.keyID
}

// Order is a gateway-side record created before checkout; its ID correlates
// the eventual payment back to an enrollment.
type Order struct {
	ID       string `json:"id"`
	Amount   uint   `json:"amount"` // in paise
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateOrder registers an order with the gateway. Amount is in paise.
func (cl *Client) CreateOrder(amount uint, currency, receipt string) (*Order, error) {
	resp, err := cl.http.R().
		SetBody(map[string]interface{}{
			"amount":   amount,
			"currency": currency,
			"receipt":  receipt,
		}).
		Post("/orders")
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %v", err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("gateway error: %s", resp.String())
	}

	var order Order
	if err := json.Unmarshal(resp.Body(), &order); err != nil {
		return nil, fmt.Errorf("failed to parse order response: %v", err)
	}
	return &order, nil
}

// VerifyPaymentSignature checks the client-callback signature:
// HMAC-SHA256("orderId|paymentId", keySecret) in hex.
func (cl *Client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	payload := orderID + "|" + paymentID
	return verifyHMAC([]byte(payload), signature, cl.keySecret)
}

// VerifyWebhookSignature checks the x-razorpay-signature header:
// HMAC-SHA256(rawBody, webhookSecret) in hex.
func (cl *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	return verifyHMAC(body, signature, cl.webhookSecret)
}

func verifyHMAC(payload []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// WebhookEvent is the gateway's event envelope. Only payment.captured is
// handled; everything else is acknowledged and ignored.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Amount  uint   `json:"amount"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}
