package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPayouts struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (r *recordingPayouts) Transfer(_ context.Context, paymentID uuid.UUID) (*models.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, paymentID)
	return &models.Transfer{PaymentID: paymentID, Status: models.TransferProcessed}, nil
}

func (r *recordingPayouts) calls() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uuid.UUID(nil), r.ids...)
}

var sessionNow = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type sessionFixture struct {
	store    *memStore
	svc      *SessionService
	payouts  *recordingPayouts
	notifier *fakeNotifier
	mentor   *models.User
	mentee   *models.User
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	store := newMemStore()
	f := &sessionFixture{
		store:    store,
		payouts:  &recordingPayouts{},
		notifier: &fakeNotifier{},
		mentor:   store.addMentor("Nisha Iyer", 120000),
		mentee:   store.addUser("Rohan Das", models.RoleMentee),
	}
	f.svc = NewSessionService(store, store, store, f.payouts, f.notifier)
	f.svc.now = fixedClock(sessionNow)
	return f
}

func (f *sessionFixture) book(t *testing.T, start time.Time, length time.Duration) *models.Session {
	t.Helper()
	s, err := f.svc.Create(context.Background(), f.mentee.ID, CreateSessionInput{
		MentorID:  f.mentor.ID,
		Topic:     "Calculus",
		StartTime: start,
		EndTime:   start.Add(length),
	})
	require.NoError(t, err)
	return s
}

// pay settles the session's payment the way a verified callback would.
func (f *sessionFixture) pay(t *testing.T, s *models.Session) *models.SessionPayment {
	t.Helper()
	ctx := context.Background()
	order := "order_" + s.ID.String()[:8]
	require.NoError(t, f.store.SaveOrder(ctx, &models.SessionPayment{
		SessionID: s.ID, MenteeID: s.MenteeID, Amount: s.Price, Currency: s.Currency,
		GatewayOrderID: order, Status: models.PaymentCreated,
	}))
	p, first, err := f.store.MarkPaid(ctx, order, "pay_"+s.ID.String()[:8], "sig", models.PaidViaCallback, sessionNow)
	require.NoError(t, err)
	require.True(t, first)
	return p
}

func claimsFor(u *models.User) *utils.Claims {
	return &utils.Claims{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func TestCreateSessionPricesByDuration(t *testing.T) {
	f := newSessionFixture(t)

	s := f.book(t, sessionNow.Add(24*time.Hour), 90*time.Minute)
	assert.Equal(t, int64(180000), s.Price)
	assert.Equal(t, "INR", s.Currency)
	assert.Equal(t, models.SessionScheduled, s.Status)
	assert.Equal(t, models.PaymentStatusPending, s.PaymentStatus)

	assert.Eventually(t, func() bool { return len(f.notifier.sentTo(f.mentor.ID)) == 1 }, time.Second, 10*time.Millisecond)
}

func TestCreateSessionValidation(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	start := sessionNow.Add(24 * time.Hour)

	cases := []struct {
		name string
		in   CreateSessionInput
		want error
	}{
		{"end before start", CreateSessionInput{MentorID: f.mentor.ID, Topic: "x", StartTime: start, EndTime: start.Add(-time.Hour)}, models.ErrInvalidInput},
		{"in the past", CreateSessionInput{MentorID: f.mentor.ID, Topic: "x", StartTime: sessionNow.Add(-time.Hour), EndTime: sessionNow}, models.ErrInvalidInput},
		{"too short", CreateSessionInput{MentorID: f.mentor.ID, Topic: "x", StartTime: start, EndTime: start.Add(5 * time.Minute)}, models.ErrInvalidInput},
		{"missing topic", CreateSessionInput{MentorID: f.mentor.ID, StartTime: start, EndTime: start.Add(time.Hour)}, models.ErrInvalidInput},
		{"unknown mentor", CreateSessionInput{MentorID: uuid.New(), Topic: "x", StartTime: start, EndTime: start.Add(time.Hour)}, models.ErrNotFound},
		{"self booking", CreateSessionInput{MentorID: f.mentee.ID, Topic: "x", StartTime: start, EndTime: start.Add(time.Hour)}, models.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.mentee.ID, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateSessionRejectsOverlap(t *testing.T) {
	f := newSessionFixture(t)
	start := sessionNow.Add(48 * time.Hour)
	f.book(t, start, time.Hour)

	_, err := f.svc.Create(context.Background(), f.mentee.ID, CreateSessionInput{
		MentorID: f.mentor.ID, Topic: "Algebra", StartTime: start.Add(30 * time.Minute), EndTime: start.Add(90 * time.Minute),
	})
	assert.ErrorIs(t, err, models.ErrConflict)

	f.book(t, start.Add(time.Hour), time.Hour)
}

func TestCreateSessionMentorNotAccepting(t *testing.T) {
	f := newSessionFixture(t)
	f.store.mentors[f.mentor.ID].IsAccepting = false

	_, err := f.svc.Create(context.Background(), f.mentee.ID, CreateSessionInput{
		MentorID: f.mentor.ID, Topic: "x", StartTime: sessionNow.Add(time.Hour), EndTime: sessionNow.Add(2 * time.Hour),
	})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestSessionVisibility(t *testing.T) {
	f := newSessionFixture(t)
	s := f.book(t, sessionNow.Add(time.Hour), time.Hour)
	ctx := context.Background()

	stranger := f.store.addUser("Stranger", models.RoleMentee)
	_, err := f.svc.Get(ctx, claimsFor(stranger), s.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	parent := f.store.addUser("Parent", models.RoleParent)
	require.NoError(t, f.store.SaveMenteeProfile(ctx, &models.MenteeProfile{UserID: f.mentee.ID, ParentUserID: &parent.ID}))
	_, err = f.svc.Get(ctx, claimsFor(parent), s.ID)
	assert.NoError(t, err)

	admin := f.store.addUser("Admin", models.RoleAdmin)
	_, err = f.svc.Get(ctx, claimsFor(admin), s.ID)
	assert.NoError(t, err)
}

func TestCancelSessionNotifiesOtherParty(t *testing.T) {
	f := newSessionFixture(t)
	s := f.book(t, sessionNow.Add(time.Hour), time.Hour)

	got, err := f.svc.UpdateStatus(context.Background(), claimsFor(f.mentee), s.ID, UpdateSessionInput{Status: models.SessionCancelled})
	require.NoError(t, err)
	assert.Equal(t, models.SessionCancelled, got.Status)

	assert.Eventually(t, func() bool {
		for _, n := range f.notifier.sentTo(f.mentor.ID) {
			if n.Subject == "Session cancelled" {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	_, err = f.svc.UpdateStatus(context.Background(), claimsFor(f.mentor), s.ID, UpdateSessionInput{Status: models.SessionCompleted})
	assert.ErrorIs(t, err, models.ErrInvalidStateTransition)
}

func TestManualConfirmIsRejected(t *testing.T) {
	f := newSessionFixture(t)
	s := f.book(t, sessionNow.Add(time.Hour), time.Hour)

	_, err := f.svc.UpdateStatus(context.Background(), claimsFor(f.mentor), s.ID, UpdateSessionInput{Status: models.SessionConfirmed})
	assert.ErrorIs(t, err, models.ErrInvalidStateTransition)
}

func TestCompleteRequiresPaymentAndTriggersPayout(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	s := f.book(t, sessionNow.Add(time.Hour), time.Hour)

	_, err := f.svc.UpdateStatus(ctx, claimsFor(f.mentor), s.ID, UpdateSessionInput{Status: models.SessionCompleted})
	assert.ErrorIs(t, err, models.ErrInvalidStateTransition, "unpaid sessions cannot complete")

	p := f.pay(t, s)
	f.svc.now = fixedClock(sessionNow.Add(2 * time.Hour))

	_, err = f.svc.UpdateStatus(ctx, claimsFor(f.mentee), s.ID, UpdateSessionInput{Status: models.SessionCompleted})
	assert.ErrorIs(t, err, models.ErrForbidden, "only the mentor completes")

	got, err := f.svc.UpdateStatus(ctx, claimsFor(f.mentor), s.ID, UpdateSessionInput{Status: models.SessionCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)

	assert.Eventually(t, func() bool {
		calls := f.payouts.calls()
		return len(calls) == 1 && calls[0] == p.ID
	}, time.Second, 10*time.Millisecond)
}

func TestMeetingLinkIsMentorOnly(t *testing.T) {
	f := newSessionFixture(t)
	s := f.book(t, sessionNow.Add(time.Hour), time.Hour)
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, claimsFor(f.mentee), s.ID, UpdateSessionInput{MeetingLink: ptr("https://meet.example.com/x")})
	assert.ErrorIs(t, err, models.ErrForbidden)

	got, err := f.svc.UpdateStatus(ctx, claimsFor(f.mentor), s.ID, UpdateSessionInput{MeetingLink: ptr("https://meet.example.com/x")})
	require.NoError(t, err)
	require.NotNil(t, got.MeetingLink)
	assert.Equal(t, "https://meet.example.com/x", *got.MeetingLink)
}

func TestDeleteOnlyUnpaidByOwner(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	unpaid := f.book(t, sessionNow.Add(time.Hour), time.Hour)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.mentor.ID, unpaid.ID), models.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, f.mentee.ID, unpaid.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, f.mentee.ID, unpaid.ID), models.ErrNotFound)

	paid := f.book(t, sessionNow.Add(3*time.Hour), time.Hour)
	f.pay(t, paid)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.mentee.ID, paid.ID), models.ErrConflict)
}

func TestSendRemindersOnce(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	soon := f.book(t, sessionNow.Add(30*time.Minute), time.Hour)
	later := f.book(t, sessionNow.Add(5*time.Hour), time.Hour)
	f.pay(t, soon)
	f.pay(t, later)

	n, err := f.svc.SendReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, f.notifier.sentTo(f.mentee.ID), 1)

	n, err = f.svc.SendReminders(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExpireStale(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	stale := f.book(t, sessionNow.Add(time.Hour), time.Hour)
	paid := f.book(t, sessionNow.Add(3*time.Hour), time.Hour)
	f.pay(t, paid)

	f.svc.now = fixedClock(sessionNow.Add(4 * time.Hour))
	n, err := f.svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, _ := f.store.GetSession(ctx, stale.ID)
	assert.Equal(t, models.SessionCancelled, got.Status)
	assert.Equal(t, models.PaymentStatusFailed, got.PaymentStatus)

	got, _ = f.store.GetSession(ctx, paid.ID)
	assert.Equal(t, models.SessionConfirmed, got.Status)
}
