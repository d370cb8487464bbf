package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/payments"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTransfers struct {
	mu       sync.Mutex
	requests []payments.TransferRequest
	fail     error
	delay    time.Duration
	onCall   func()
}

func (c *countingTransfers) Transfer(_ context.Context, req payments.TransferRequest) (string, error) {
	time.Sleep(c.delay)
	if c.onCall != nil {
		c.onCall()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return "", c.fail
	}
	c.requests = append(c.requests, req)
	return fmt.Sprintf("trf_%d", len(c.requests)), nil
}

func (c *countingTransfers) calls() []payments.TransferRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]payments.TransferRequest(nil), c.requests...)
}

type payoutFixture struct {
	*sessionFixture
	gateway *countingTransfers
	payouts *PayoutService
	payment *models.SessionPayment
}

func newPayoutFixture(t *testing.T, linked bool) *payoutFixture {
	t.Helper()
	sf := newSessionFixture(t)
	f := &payoutFixture{sessionFixture: sf, gateway: &countingTransfers{}}
	f.payouts = NewPayoutService(PayoutConfig{
		Payments:     sf.store,
		Sessions:     sf.store,
		Transfers:    sf.store,
		Bank:         sf.store,
		Gateway:      f.gateway,
		SharePercent: 70,
	})

	// 45 minutes at 1200.00/h is 900.00.
	s := sf.book(t, sessionNow.Add(time.Hour), 45*time.Minute)
	f.payment = sf.pay(t, s)

	bank := &models.BankDetails{MentorID: sf.mentor.ID, AccountHolderName: "Nisha Iyer", AccountNumber: "123456789012", IFSC: "HDFC0001234"}
	if linked {
		acc := "acc_Nisha01"
		bank.LinkedAccountID = &acc
	}
	require.NoError(t, sf.store.CreateBankDetails(context.Background(), bank))
	return f
}

func TestMentorShareFloors(t *testing.T) {
	assert.Equal(t, int64(63000), MentorShare(90000, 70))
	assert.Equal(t, int64(69), MentorShare(99, 70))
	assert.Equal(t, int64(0), MentorShare(1, 70))
}

func TestTransferSendsMentorShareOnce(t *testing.T) {
	f := newPayoutFixture(t, true)
	ctx := context.Background()

	tr, err := f.payouts.Transfer(ctx, f.payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferProcessed, tr.Status)
	assert.Equal(t, int64(63000), tr.Amount)
	assert.Equal(t, models.PayoutKey(f.payment.ID), tr.IdempotencyKey)

	calls := f.gateway.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "acc_Nisha01", calls[0].Account)
	assert.Equal(t, *f.payment.GatewayPaymentID, calls[0].PaymentID)
	assert.Equal(t, tr.IdempotencyKey, calls[0].IdempotencyKey)

	again, err := f.payouts.Transfer(ctx, f.payment.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.ID, again.ID)
	assert.Len(t, f.gateway.calls(), 1, "processed transfers are not resent")
}

func TestConcurrentTransfersCallGatewayOnce(t *testing.T) {
	f := newPayoutFixture(t, true)
	f.gateway.delay = 20 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.payouts.Transfer(context.Background(), f.payment.ID)
		}()
	}
	wg.Wait()

	assert.Len(t, f.gateway.calls(), 1)
	tr, err := f.store.GetTransferByPayment(context.Background(), f.payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferProcessed, tr.Status)
}

func TestTransferRequiresLinkedAccount(t *testing.T) {
	f := newPayoutFixture(t, false)

	_, err := f.payouts.Transfer(context.Background(), f.payment.ID)
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Empty(t, f.gateway.calls())
}

func TestTransferRequiresBankDetails(t *testing.T) {
	f := newPayoutFixture(t, true)
	require.NoError(t, f.store.DeleteBankDetails(context.Background(), f.mentor.ID))

	_, err := f.payouts.Transfer(context.Background(), f.payment.ID)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestTransferRequiresPaidPayment(t *testing.T) {
	f := newPayoutFixture(t, true)
	ctx := context.Background()

	unpaid := f.book(t, sessionNow.Add(5*time.Hour), time.Hour)
	require.NoError(t, f.store.SaveOrder(ctx, &models.SessionPayment{
		SessionID: unpaid.ID, MenteeID: unpaid.MenteeID, Amount: unpaid.Price, Currency: "INR",
		GatewayOrderID: "order_unpaid", Status: models.PaymentCreated,
	}))
	p, _ := f.store.GetPaymentByOrderID(ctx, "order_unpaid")

	_, err := f.payouts.Transfer(ctx, p.ID)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestFailedTransferIsRetried(t *testing.T) {
	f := newPayoutFixture(t, true)
	ctx := context.Background()
	f.gateway.fail = errors.New("insufficient balance")

	_, err := f.payouts.Transfer(ctx, f.payment.ID)
	require.Error(t, err)
	tr, _ := f.store.GetTransferByPayment(ctx, f.payment.ID)
	assert.Equal(t, models.TransferFailed, tr.Status)
	assert.Equal(t, 1, tr.Attempts)

	f.gateway.fail = nil
	got, err := f.payouts.Transfer(ctx, f.payment.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.ID, got.ID)
	assert.Equal(t, models.TransferProcessed, got.Status)

	tr, _ = f.store.GetTransferByPayment(ctx, f.payment.ID)
	assert.Equal(t, 2, tr.Attempts)
}

func TestReconcilePaysCompletedSessions(t *testing.T) {
	f := newPayoutFixture(t, true)
	ctx := context.Background()

	n, err := f.payouts.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "session not completed yet")

	require.NoError(t, f.store.TransitionSession(ctx, f.payment.SessionID, []string{models.SessionConfirmed}, models.SessionCompleted, sessionNow))
	n, err = f.payouts.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = f.payouts.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, f.gateway.calls(), 1)
}

// ctxTransfers honours context cancellation on writes like the SQL store and
// can lose the next completion write.
type ctxTransfers struct {
	*memStore
	loseCompletion bool
}

func (c *ctxTransfers) CompleteTransfer(ctx context.Context, id uuid.UUID, gatewayID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.loseCompletion {
		c.loseCompletion = false
		return context.DeadlineExceeded
	}
	return c.memStore.CompleteTransfer(ctx, id, gatewayID, at)
}

func (c *ctxTransfers) FailTransfer(ctx context.Context, id uuid.UUID, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.memStore.FailTransfer(ctx, id, reason)
}

func TestTransferRecordedAfterCallerContextEnds(t *testing.T) {
	f := newPayoutFixture(t, true)
	f.payouts.transfers = &ctxTransfers{memStore: f.store}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.gateway.onCall = cancel

	tr, err := f.payouts.Transfer(ctx, f.payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferProcessed, tr.Status)

	stored, err := f.store.GetTransferByPayment(context.Background(), f.payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferProcessed, stored.Status)
}

func TestStuckTransferIsTakenOverAfterLease(t *testing.T) {
	f := newPayoutFixture(t, true)
	ctx := context.Background()
	f.payouts.transfers = &ctxTransfers{memStore: f.store, loseCompletion: true}

	_, err := f.payouts.Transfer(ctx, f.payment.ID)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	tr, _ := f.store.GetTransferByPayment(ctx, f.payment.ID)
	assert.Equal(t, models.TransferProcessing, tr.Status)

	_, err = f.payouts.Transfer(ctx, f.payment.ID)
	assert.ErrorIs(t, err, models.ErrConflict, "live claim blocks a second caller")

	f.payouts.now = func() time.Time { return time.Now().Add(transferLease + time.Minute) }
	got, err := f.payouts.Transfer(ctx, f.payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferProcessed, got.Status)

	calls := f.gateway.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0].IdempotencyKey, calls[1].IdempotencyKey)

	tr, _ = f.store.GetTransferByPayment(ctx, f.payment.ID)
	assert.Equal(t, 2, tr.Attempts)
}

func TestReconcileRecoversExpiredClaims(t *testing.T) {
	f := newPayoutFixture(t, true)
	ctx := context.Background()
	require.NoError(t, f.store.TransitionSession(ctx, f.payment.SessionID, []string{models.SessionConfirmed}, models.SessionCompleted, sessionNow))
	f.payouts.transfers = &ctxTransfers{memStore: f.store, loseCompletion: true}

	n, err := f.payouts.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = f.payouts.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "claim still within its lease")
	assert.Len(t, f.gateway.calls(), 1)

	f.payouts.now = func() time.Time { return time.Now().Add(transferLease + time.Minute) }
	n, err = f.payouts.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReconcileStopsAtAttemptCap(t *testing.T) {
	f := newPayoutFixture(t, true)
	ctx := context.Background()
	require.NoError(t, f.store.TransitionSession(ctx, f.payment.SessionID, []string{models.SessionConfirmed}, models.SessionCompleted, sessionNow))
	f.gateway.fail = errors.New("account suspended")

	for i := 0; i < memPayoutAttempts+2; i++ {
		_, err := f.payouts.Reconcile(ctx)
		require.NoError(t, err)
	}
	tr, _ := f.store.GetTransferByPayment(ctx, f.payment.ID)
	assert.Equal(t, memPayoutAttempts, tr.Attempts)

	f.gateway.fail = nil
	got, err := f.payouts.Transfer(ctx, f.payment.ID)
	require.NoError(t, err, "admins can still retry by hand")
	assert.Equal(t, models.TransferProcessed, got.Status)
}
