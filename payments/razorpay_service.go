package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

var ErrGatewayResponse = errors.New("unexpected gateway response")

type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

type TransferRequest struct {
	PaymentID      string
	Account        string
	Amount         int64
	Currency       string
	IdempotencyKey string
	Notes          map[string]string
}

type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type paymentAPI interface {
	Transfer(paymentID string, data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Razorpay wraps the gateway SDK. Amounts are always minor units.
type Razorpay struct {
	orders        orderAPI
	payments      paymentAPI
	keyID         string
	keySecret     string
	webhookSecret string
}

func NewRazorpay(keyID, keySecret, webhookSecret string) *Razorpay {
	client := razorpay.NewClient(keyID, keySecret)
	return &Razorpay{
		orders:        client.Order,
		payments:      client.Payment,
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
	}
}

// KeyID is the public key the checkout widget needs alongside the order id.
func (r *Razorpay) KeyID() string {
	return r.keyID
}

func (r *Razorpay) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		data["notes"] = req.Notes
	}

	body, err := r.orders.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("create razorpay order: %w", err)
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("%w: order without id", ErrGatewayResponse)
	}
	status, _ := body["status"].(string)
	currency, _ := body["currency"].(string)
	receipt, _ := body["receipt"].(string)

	return &Order{
		ID:       id,
		Amount:   toInt64(body["amount"]),
		Currency: currency,
		Receipt:  receipt,
		Status:   status,
	}, nil
}

// Transfer routes part of a captured payment to a linked account. The
// idempotency key is sent as a header and repeated in the notes.
func (r *Razorpay) Transfer(ctx context.Context, req TransferRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	notes := map[string]string{"idempotency_key": req.IdempotencyKey}
	for k, v := range req.Notes {
		notes[k] = v
	}

	data := map[string]interface{}{
		"transfers": []map[string]interface{}{{
			"account":  req.Account,
			"amount":   req.Amount,
			"currency": req.Currency,
			"notes":    notes,
			"on_hold":  false,
		}},
	}
	headers := map[string]string{"X-Transfer-Idempotency": req.IdempotencyKey}

	body, err := r.payments.Transfer(req.PaymentID, data, headers)
	if err != nil {
		return "", fmt.Errorf("create razorpay transfer: %w", err)
	}

	items, _ := body["items"].([]interface{})
	if len(items) == 0 {
		return "", fmt.Errorf("%w: transfer response without items", ErrGatewayResponse)
	}
	first, _ := items[0].(map[string]interface{})
	id, _ := first["id"].(string)
	if id == "" {
		return "", fmt.Errorf("%w: transfer without id", ErrGatewayResponse)
	}
	return id, nil
}

// VerifyPaymentSignature checks the checkout callback signature,
// HMAC-SHA256("order_id|payment_id", key secret).
func (r *Razorpay) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	attrs := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(attrs, signature, r.keySecret)
}

// VerifyWebhookSignature checks X-Razorpay-Signature against the raw body.
func (r *Razorpay) VerifyWebhookSignature(body []byte, signature string) bool {
	if r.webhookSecret == "" || signature == "" {
		return false
	}
	return utils.VerifyWebhookSignature(string(body), signature, r.webhookSecret)
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}
