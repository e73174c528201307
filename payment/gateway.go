package payment

// Gateway is the slice of the Razorpay client the enrollment flows depend
// on. Tests substitute a fake.
type Gateway interface {
	KeyID() string
	CreateOrder(amount uint, currency, receipt string) (*Order, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
}

var _ Gateway = (*Client)(nil)
