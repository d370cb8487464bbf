package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is what the services and notification dispatcher report to.
type Recorder interface {
	OrderCreated()
	PaymentVerified(source string)
	SignatureRejected(source string)
	WebhookDuplicate()
	TransferResult(status string)
	NotificationSent(channel, result string)
	PaidAfterCancel()
}

type Collector struct {
	ordersCreated     prometheus.Counter
	paymentsVerified  *prometheus.CounterVec
	signatureRejected *prometheus.CounterVec
	webhookDuplicates prometheus.Counter
	transfers         *prometheus.CounterVec
	notifications     *prometheus.CounterVec
	paidAfterCancel   prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mentorship_payment_orders_created_total",
			Help: "Gateway orders created for session payments.",
		}),
		paymentsVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorship_payments_verified_total",
			Help: "Payments marked paid, by verification source.",
		}, []string{"source"}),
		signatureRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorship_payment_signature_rejected_total",
			Help: "Callback and webhook requests rejected for a bad signature.",
		}, []string{"source"}),
		webhookDuplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mentorship_webhook_duplicates_total",
			Help: "Webhook deliveries skipped because the event id was already processed.",
		}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorship_payout_transfers_total",
			Help: "Mentor payout transfer attempts, by outcome.",
		}, []string{"status"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorship_notifications_total",
			Help: "Notifications dispatched, by channel and result.",
		}, []string{"channel", "result"}),
		paidAfterCancel: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mentorship_payments_needing_refund_total",
			Help: "Payments captured after their session was cancelled.",
		}),
	}

	reg.MustRegister(
		c.ordersCreated,
		c.paymentsVerified,
		c.signatureRejected,
		c.webhookDuplicates,
		c.transfers,
		c.notifications,
		c.paidAfterCancel,
	)

	return c
}

func (c *Collector) OrderCreated() {
	c.ordersCreated.Inc()
}

func (c *Collector) PaymentVerified(source string) {
	c.paymentsVerified.WithLabelValues(source).Inc()
}

func (c *Collector) SignatureRejected(source string) {
	c.signatureRejected.WithLabelValues(source).Inc()
}

func (c *Collector) WebhookDuplicate() {
	c.webhookDuplicates.Inc()
}

func (c *Collector) TransferResult(status string) {
	c.transfers.WithLabelValues(status).Inc()
}

func (c *Collector) NotificationSent(channel, result string) {
	c.notifications.WithLabelValues(channel, result).Inc()
}

func (c *Collector) PaidAfterCancel() {
	c.paidAfterCancel.Inc()
}

// Nop discards everything. Used when no registry is wired, mostly in tests.
type Nop struct{}

func (Nop) OrderCreated()                   {}
func (Nop) PaymentVerified(string)          {}
func (Nop) SignatureRejected(string)        {}
func (Nop) WebhookDuplicate()               {}
func (Nop) TransferResult(string)           {}
func (Nop) NotificationSent(string, string) {}
func (Nop) PaidAfterCancel()                {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
