package notifications

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/anjiri1684/mentorship/metrics"
	"github.com/anjiri1684/mentorship/models"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const maxTrackedRecipients = 10000

// Presence answers whether a user currently holds an open chat socket.
type Presence interface {
	IsOnline(ctx context.Context, userID uuid.UUID) bool
}

type DispatcherConfig struct {
	Email    EmailSender
	WhatsApp WhatsAppSender
	Presence Presence
	Metrics  metrics.Recorder
	// Every and Burst bound offline chat notifications per recipient.
	Every time.Duration
	Burst int
}

// Dispatcher fans a Notice out to email and WhatsApp. Delivery is best effort:
// failures are logged and counted, never returned.
type Dispatcher struct {
	email    EmailSender
	whatsapp WhatsAppSender
	presence Presence
	metrics  metrics.Recorder

	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[uuid.UUID]*rate.Limiter
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		email:    cfg.Email,
		whatsapp: cfg.WhatsApp,
		presence: cfg.Presence,
		metrics:  cfg.Metrics,
		limit:    rate.Inf,
		burst:    cfg.Burst,
		limiters: make(map[uuid.UUID]*rate.Limiter),
	}
	if d.metrics == nil {
		d.metrics = metrics.Nop{}
	}
	if cfg.Every > 0 {
		d.limit = rate.Every(cfg.Every)
	}
	if d.burst < 1 {
		d.burst = 1
	}
	return d
}

// Notify sends on every configured channel regardless of presence.
func (d *Dispatcher) Notify(ctx context.Context, to *models.User, n Notice) {
	if to == nil {
		return
	}

	if d.email != nil {
		if err := d.email.Send(ctx, to.Email, to.FullName, n.Subject, n.HTML); err != nil {
			log.Printf("🔥 Failed to send email to %s: %v", to.Email, err)
			d.metrics.NotificationSent("email", "error")
		} else {
			d.metrics.NotificationSent("email", "ok")
		}
	}

	if d.whatsapp != nil && to.Phone != nil && *to.Phone != "" {
		if err := d.whatsapp.Send(ctx, *to.Phone, n.Text); err != nil {
			log.Printf("🔥 Failed to send WhatsApp message to user %s: %v", to.ID, err)
			d.metrics.NotificationSent("whatsapp", "error")
		} else {
			d.metrics.NotificationSent("whatsapp", "ok")
		}
	}
}

// NotifyIfOffline only notifies users without an open socket, at most Burst
// times per Every window. It reports whether anything was sent.
func (d *Dispatcher) NotifyIfOffline(ctx context.Context, to *models.User, n Notice) bool {
	if to == nil {
		return false
	}
	if d.presence != nil && d.presence.IsOnline(ctx, to.ID) {
		return false
	}
	if !d.allow(to.ID) {
		d.metrics.NotificationSent("offline", "throttled")
		return false
	}
	d.Notify(ctx, to, n)
	return true
}

func (d *Dispatcher) allow(userID uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, ok := d.limiters[userID]
	if !ok {
		if len(d.limiters) >= maxTrackedRecipients {
			d.limiters = make(map[uuid.UUID]*rate.Limiter)
		}
		l = rate.NewLimiter(d.limit, d.burst)
		d.limiters[userID] = l
	}
	return l.Allow()
}
