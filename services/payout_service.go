package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anjiri1684/mentorship/metrics"
	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/payments"
	"github.com/google/uuid"
)

const (
	reconcileBatch = 50
	// transferLease bounds how long a processing claim blocks other callers.
	// A claim older than this is taken over; the idempotency key makes the
	// resend safe.
	transferLease = 10 * time.Minute
	recordTimeout = 10 * time.Second
)

type TransferGateway interface {
	Transfer(ctx context.Context, req payments.TransferRequest) (string, error)
}

// PayoutService routes the mentor share of a settled payment to the mentor's
// linked account, at most once per payment.
type PayoutService struct {
	payments     PaymentStore
	sessions     SessionStore
	transfers    TransferStore
	bank         BankDetailsStore
	gateway      TransferGateway
	metrics      metrics.Recorder
	sharePercent int64
	now          func() time.Time
}

type PayoutConfig struct {
	Payments     PaymentStore
	Sessions     SessionStore
	Transfers    TransferStore
	Bank         BankDetailsStore
	Gateway      TransferGateway
	Metrics      metrics.Recorder
	SharePercent int64
}

func NewPayoutService(cfg PayoutConfig) *PayoutService {
	rec := cfg.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &PayoutService{
		payments:     cfg.Payments,
		sessions:     cfg.Sessions,
		transfers:    cfg.Transfers,
		bank:         cfg.Bank,
		gateway:      cfg.Gateway,
		metrics:      rec,
		sharePercent: cfg.SharePercent,
		now:          time.Now,
	}
}

func (s *PayoutService) leaseExpired(t *models.Transfer) bool {
	return t.UpdatedAt.Before(s.now().Add(-transferLease))
}

// MentorShare is the floor of amount * percent / 100 in minor units.
func MentorShare(amount, percent int64) int64 {
	return amount * percent / 100
}

func (s *PayoutService) Transfer(ctx context.Context, paymentID uuid.UUID) (*models.Transfer, error) {
	payment, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentPaid || payment.GatewayPaymentID == nil {
		return nil, fmt.Errorf("%w: payment is not settled", models.ErrConflict)
	}

	transfer, err := s.transfers.GetTransferByPayment(ctx, paymentID)
	switch {
	case err == nil:
		if transfer.Status == models.TransferProcessed {
			return transfer, nil
		}
		if transfer.Status == models.TransferProcessing && !s.leaseExpired(transfer) {
			return nil, fmt.Errorf("%w: payout is already in progress", models.ErrConflict)
		}
	case !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	session, err := s.sessions.GetSession(ctx, payment.SessionID)
	if err != nil {
		return nil, err
	}
	bank, err := s.bank.GetBankDetails(ctx, session.MentorID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: mentor has no bank details", models.ErrConflict)
		}
		return nil, err
	}
	if bank.LinkedAccountID == nil || *bank.LinkedAccountID == "" {
		return nil, fmt.Errorf("%w: mentor has no linked payout account", models.ErrConflict)
	}
	account := *bank.LinkedAccountID

	if transfer == nil {
		transfer = &models.Transfer{
			PaymentID:       payment.ID,
			MentorID:        session.MentorID,
			Amount:          MentorShare(payment.Amount, s.sharePercent),
			Currency:        payment.Currency,
			LinkedAccountID: account,
			IdempotencyKey:  models.PayoutKey(payment.ID),
			Status:          models.TransferPending,
		}
		if err := s.transfers.CreateTransfer(ctx, transfer); err != nil {
			if !errors.Is(err, models.ErrConflict) {
				return nil, err
			}
			if transfer, err = s.transfers.GetTransferByPayment(ctx, paymentID); err != nil {
				return nil, err
			}
		}
	}

	claimed, err := s.transfers.ClaimTransfer(ctx, transfer.ID, account, s.now().Add(-transferLease))
	if err != nil {
		return nil, err
	}
	if !claimed {
		current, err := s.transfers.GetTransferByPayment(ctx, paymentID)
		if err != nil {
			return nil, err
		}
		if current.Status == models.TransferProcessed {
			return current, nil
		}
		return nil, fmt.Errorf("%w: payout is already in progress", models.ErrConflict)
	}

	gatewayID, err := s.gateway.Transfer(ctx, payments.TransferRequest{
		PaymentID:      *payment.GatewayPaymentID,
		Account:        account,
		Amount:         transfer.Amount,
		Currency:       transfer.Currency,
		IdempotencyKey: transfer.IdempotencyKey,
		Notes: map[string]string{
			"session_id": session.ID.String(),
			"mentor_id":  session.MentorID.String(),
		},
	})

	// The outcome is written even when the caller's context ran out during
	// the gateway call. A lost write leaves the claim to expire.
	recordCtx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err != nil {
		s.metrics.TransferResult(models.TransferFailed)
		if ferr := s.transfers.FailTransfer(recordCtx, transfer.ID, err.Error()); ferr != nil {
			log.Printf("🔥 Could not record failed transfer %s: %v", transfer.ID, ferr)
		}
		return nil, err
	}

	at := s.now()
	if err := s.transfers.CompleteTransfer(recordCtx, transfer.ID, gatewayID, at); err != nil {
		log.Printf("🔥 Transfer %s sent as %s but not recorded: %v", transfer.ID, gatewayID, err)
		return nil, err
	}
	s.metrics.TransferResult(models.TransferProcessed)

	transfer.Status = models.TransferProcessed
	transfer.LinkedAccountID = account
	transfer.GatewayTransferID = &gatewayID
	transfer.ProcessedAt = &at
	return transfer, nil
}

// Reconcile retries payouts for completed, paid sessions without a processed
// transfer. It returns how many succeeded.
func (s *PayoutService) Reconcile(ctx context.Context) (int, error) {
	ids, err := s.transfers.ListPayoutCandidates(ctx, reconcileBatch, s.now().Add(-transferLease))
	if err != nil {
		return 0, err
	}

	done := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.Transfer(ctx, id); err != nil {
			log.Printf("🔥 Payout reconciliation for payment %s: %v", id, err)
			continue
		}
		done++
	}
	return done, nil
}
