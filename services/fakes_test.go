package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/notifications"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for repository.Store. It hands out
// copies so services never share state with it.
type memStore struct {
	mu sync.Mutex

	users          map[uuid.UUID]*models.User
	mentors        map[uuid.UUID]*models.MentorProfile
	mentees        map[uuid.UUID]*models.MenteeProfile
	bank           map[uuid.UUID]*models.BankDetails
	sessions       map[uuid.UUID]*models.Session
	payments       map[uuid.UUID]*models.SessionPayment
	transfers      map[uuid.UUID]*models.Transfer
	events         map[string]string
	reviews        map[uuid.UUID]*models.Review
	interests      map[uuid.UUID]*models.MentorshipInterest
	conversations  map[uuid.UUID][]uuid.UUID
	messages       []*models.Message
	questionnaires map[uuid.UUID]*models.QuestionnaireResponse
}

func newMemStore() *memStore {
	return &memStore{
		users:          map[uuid.UUID]*models.User{},
		mentors:        map[uuid.UUID]*models.MentorProfile{},
		mentees:        map[uuid.UUID]*models.MenteeProfile{},
		bank:           map[uuid.UUID]*models.BankDetails{},
		sessions:       map[uuid.UUID]*models.Session{},
		payments:       map[uuid.UUID]*models.SessionPayment{},
		transfers:      map[uuid.UUID]*models.Transfer{},
		events:         map[string]string{},
		reviews:        map[uuid.UUID]*models.Review{},
		interests:      map[uuid.UUID]*models.MentorshipInterest{},
		conversations:  map[uuid.UUID][]uuid.UUID{},
		questionnaires: map[uuid.UUID]*models.QuestionnaireResponse{},
	}
}

func (m *memStore) addUser(name, role string) *models.User {
	u := &models.User{
		ID:           uuid.New(),
		FullName:     name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Role:         role,
		AuthProvider: models.ProviderPassword,
		IsActive:     true,
	}
	m.mu.Lock()
	m.users[u.ID] = u
	m.mu.Unlock()
	c := *u
	return &c
}

func (m *memStore) addMentor(name string, hourlyRate int64) *models.User {
	u := m.addUser(name, models.RoleMentor)
	m.mu.Lock()
	m.mentors[u.ID] = &models.MentorProfile{UserID: u.ID, HourlyRate: hourlyRate, Currency: "INR", IsAccepting: true}
	m.mu.Unlock()
	return u
}

// Users

func (m *memStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return models.ErrConflict
		}
		if u.FirebaseUID != nil && existing.FirebaseUID != nil && *existing.FirebaseUID == *u.FirebaseUID {
			return models.ErrConflict
		}
		if u.GoogleSub != nil && existing.GoogleSub != nil && *existing.GoogleSub == *u.GoogleSub {
			return models.ErrConflict
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	c := *u
	m.users[u.ID] = &c
	return nil
}

func (m *memStore) SaveUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *u
	m.users[u.ID] = &c
	return nil
}

func (m *memStore) findUser(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return m.findUser(func(u *models.User) bool { return u.ID == id })
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.findUser(func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *memStore) GetUserByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	return m.findUser(func(u *models.User) bool { return u.FirebaseUID != nil && *u.FirebaseUID == uid })
}

func (m *memStore) GetUserByGoogleSub(_ context.Context, sub string) (*models.User, error) {
	return m.findUser(func(u *models.User) bool { return u.GoogleSub != nil && *u.GoogleSub == sub })
}

func (m *memStore) GetUserByResetToken(_ context.Context, token string) (*models.User, error) {
	return m.findUser(func(u *models.User) bool { return u.ResetPasswordToken != nil && *u.ResetPasswordToken == token })
}

// Profiles

func (m *memStore) GetMentorProfile(_ context.Context, userID uuid.UUID) (*models.MentorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.mentors[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *p
	if u, ok := m.users[userID]; ok {
		c.User = *u
	}
	return &c, nil
}

func (m *memStore) SaveMentorProfile(_ context.Context, p *models.MentorProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *p
	c.User = models.User{}
	m.mentors[p.UserID] = &c
	return nil
}

func (m *memStore) ListMentors(_ context.Context, f MentorFilter, page utils.Page) ([]models.MentorProfile, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.MentorProfile
	for id, p := range m.mentors {
		u := m.users[id]
		if u == nil || u.Role != models.RoleMentor || !u.IsActive {
			continue
		}
		if f.MaxHourlyRate > 0 && p.HourlyRate > f.MaxHourlyRate {
			continue
		}
		c := *p
		c.User = *u
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (m *memStore) GetMenteeProfile(_ context.Context, userID uuid.UUID) (*models.MenteeProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.mentees[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (m *memStore) SaveMenteeProfile(_ context.Context, p *models.MenteeProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *p
	m.mentees[p.UserID] = &c
	return nil
}

// Bank details

func (m *memStore) GetBankDetails(_ context.Context, mentorID uuid.UUID) (*models.BankDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bank[mentorID]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *b
	return &c, nil
}

func (m *memStore) CreateBankDetails(_ context.Context, b *models.BankDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bank[b.MentorID]; ok {
		return models.ErrConflict
	}
	b.ID = uuid.New()
	c := *b
	m.bank[b.MentorID] = &c
	return nil
}

func (m *memStore) SaveBankDetails(_ context.Context, b *models.BankDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *b
	m.bank[b.MentorID] = &c
	return nil
}

func (m *memStore) DeleteBankDetails(_ context.Context, mentorID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bank[mentorID]; !ok {
		return models.ErrNotFound
	}
	delete(m.bank, mentorID)
	return nil
}

// Sessions

func (m *memStore) CreateSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	c := *s
	m.sessions[s.ID] = &c
	return nil
}

// sessionCopy expects m.mu to be held.
func (m *memStore) sessionCopy(s *models.Session) models.Session {
	c := *s
	if u := m.users[s.MenteeID]; u != nil {
		c.Mentee = *u
	}
	if u := m.users[s.MentorID]; u != nil {
		c.Mentor = *u
	}
	c.Payment = nil
	for _, p := range m.payments {
		if p.SessionID == s.ID {
			pc := *p
			c.Payment = &pc
		}
	}
	return c
}

func (m *memStore) GetSession(_ context.Context, id uuid.UUID) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := m.sessionCopy(s)
	return &c, nil
}

func (m *memStore) ListSessions(_ context.Context, f SessionFilter, _ utils.Page) ([]models.Session, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Session
	for _, s := range m.sessions {
		if f.UserID != uuid.Nil {
			if f.Role == models.RoleMentor && s.MentorID != f.UserID {
				continue
			}
			if f.Role != models.RoleMentor && s.MenteeID != f.UserID {
				continue
			}
		}
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		out = append(out, m.sessionCopy(s))
	}
	return out, int64(len(out)), nil
}

func (m *memStore) HasOverlap(_ context.Context, mentorID uuid.UUID, start, end time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		active := s.Status == models.SessionScheduled || s.Status == models.SessionConfirmed
		if s.MentorID == mentorID && active && s.StartTime.Before(end) && s.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) TransitionSession(_ context.Context, id uuid.UUID, from []string, to string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return models.ErrNotFound
	}
	for _, f := range from {
		if s.Status == f {
			s.Status = to
			if to == models.SessionCompleted {
				s.CompletedAt = &at
			}
			return nil
		}
	}
	return models.ErrInvalidStateTransition
}

func (m *memStore) SetMeetingLink(_ context.Context, id uuid.UUID, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return models.ErrNotFound
	}
	s.MeetingLink = &link
	return nil
}

func (m *memStore) DeleteUnpaidSession(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return models.ErrNotFound
	}
	if s.PaymentStatus == models.PaymentStatusPaid {
		return models.ErrConflict
	}
	delete(m.sessions, id)
	return nil
}

func (m *memStore) ListDueReminders(_ context.Context, from, to time.Time) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Session
	for _, s := range m.sessions {
		if s.Status == models.SessionConfirmed && s.ReminderSentAt == nil &&
			!s.StartTime.Before(from) && !s.StartTime.After(to) {
			out = append(out, m.sessionCopy(s))
		}
	}
	return out, nil
}

func (m *memStore) MarkReminded(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok && s.ReminderSentAt == nil {
		s.ReminderSentAt = &at
	}
	return nil
}

func (m *memStore) ExpireUnpaid(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.sessions {
		if s.Status == models.SessionScheduled && s.PaymentStatus != models.PaymentStatusPaid && s.StartTime.Before(before) {
			s.Status = models.SessionCancelled
			s.PaymentStatus = models.PaymentStatusFailed
			n++
		}
	}
	return n, nil
}

// Payments

func (m *memStore) findPayment(match func(*models.SessionPayment) bool) (*models.SessionPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if match(p) {
			c := *p
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memStore) GetPayment(_ context.Context, id uuid.UUID) (*models.SessionPayment, error) {
	return m.findPayment(func(p *models.SessionPayment) bool { return p.ID == id })
}

func (m *memStore) GetPaymentBySession(_ context.Context, sessionID uuid.UUID) (*models.SessionPayment, error) {
	return m.findPayment(func(p *models.SessionPayment) bool { return p.SessionID == sessionID })
}

func (m *memStore) GetPaymentByOrderID(_ context.Context, orderID string) (*models.SessionPayment, error) {
	return m.findPayment(func(p *models.SessionPayment) bool { return p.GatewayOrderID == orderID })
}

func (m *memStore) SaveOrder(_ context.Context, p *models.SessionPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.payments {
		if existing.SessionID == p.SessionID {
			if existing.Status == models.PaymentPaid {
				return models.ErrConflict
			}
			existing.GatewayOrderID = p.GatewayOrderID
			existing.Amount = p.Amount
			existing.Status = models.PaymentCreated
			p.ID = existing.ID
			return nil
		}
	}
	p.ID = uuid.New()
	c := *p
	m.payments[p.ID] = &c
	return nil
}

func (m *memStore) MarkPaid(_ context.Context, orderID, paymentID, signature, via string, at time.Time) (*models.SessionPayment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.GatewayOrderID != orderID {
			continue
		}
		if p.Status == models.PaymentPaid {
			c := *p
			return &c, false, nil
		}
		p.Status = models.PaymentPaid
		p.GatewayPaymentID = &paymentID
		if signature != "" {
			p.GatewaySignature = &signature
		}
		p.PaidVia = &via
		p.PaidAt = &at
		if s, ok := m.sessions[p.SessionID]; ok {
			s.PaymentStatus = models.PaymentStatusPaid
			switch s.Status {
			case models.SessionScheduled:
				s.Status = models.SessionConfirmed
			case models.SessionCancelled:
				p.NeedsRefund = true
			}
		}
		c := *p
		return &c, true, nil
	}
	return nil, false, models.ErrNotFound
}

func (m *memStore) MarkFailed(_ context.Context, orderID, paymentID, reason string) (*models.SessionPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.GatewayOrderID != orderID {
			continue
		}
		if p.Status != models.PaymentPaid {
			p.Status = models.PaymentFailed
			p.FailureReason = &reason
			if s, ok := m.sessions[p.SessionID]; ok {
				s.PaymentStatus = models.PaymentStatusFailed
			}
		}
		c := *p
		return &c, nil
	}
	return nil, models.ErrNotFound
}

func (m *memStore) SetReceiptURL(_ context.Context, id uuid.UUID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.payments[id]; ok {
		p.ReceiptURL = &url
	}
	return nil
}

func (m *memStore) WebhookEventSeen(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.events[eventID]
	return ok, nil
}

func (m *memStore) RecordWebhookEvent(_ context.Context, eventID, eventType string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[eventID]; ok {
		return models.ErrConflict
	}
	m.events[eventID] = eventType
	return nil
}

func (m *memStore) ListPayments(_ context.Context, f PaymentFilter, _ utils.Page) ([]models.SessionPayment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SessionPayment
	for _, p := range m.payments {
		if f.NeedsRefund && !p.NeedsRefund {
			continue
		}
		if f.Status == "" || p.Status == f.Status {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

// Transfers

func (m *memStore) GetTransferByPayment(_ context.Context, paymentID uuid.UUID) (*models.Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.transfers {
		if t.PaymentID == paymentID {
			c := *t
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memStore) CreateTransfer(_ context.Context, t *models.Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.transfers {
		if existing.PaymentID == t.PaymentID || existing.IdempotencyKey == t.IdempotencyKey {
			return models.ErrConflict
		}
	}
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	c := *t
	m.transfers[t.ID] = &c
	return nil
}

func claimable(t *models.Transfer, staleBefore time.Time) bool {
	switch t.Status {
	case models.TransferPending, models.TransferFailed:
		return true
	case models.TransferProcessing:
		return t.UpdatedAt.Before(staleBefore)
	}
	return false
}

func (m *memStore) ClaimTransfer(_ context.Context, id uuid.UUID, account string, staleBefore time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transfers[id]
	if !ok || !claimable(t, staleBefore) {
		return false, nil
	}
	t.Status = models.TransferProcessing
	t.LinkedAccountID = account
	t.Attempts++
	t.UpdatedAt = time.Now()
	return true, nil
}

func (m *memStore) CompleteTransfer(_ context.Context, id uuid.UUID, gatewayID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.transfers[id]; ok && t.Status == models.TransferProcessing {
		t.Status = models.TransferProcessed
		t.GatewayTransferID = &gatewayID
		t.ProcessedAt = &at
		t.UpdatedAt = time.Now()
	}
	return nil
}

func (m *memStore) FailTransfer(_ context.Context, id uuid.UUID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.transfers[id]; ok && t.Status == models.TransferProcessing {
		t.Status = models.TransferFailed
		t.FailureReason = &reason
		t.UpdatedAt = time.Now()
	}
	return nil
}

// memPayoutAttempts mirrors the automatic retry cap of the SQL store.
const memPayoutAttempts = 5

func (m *memStore) ListPayoutCandidates(_ context.Context, limit int, staleBefore time.Time) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for _, p := range m.payments {
		s := m.sessions[p.SessionID]
		if p.Status != models.PaymentPaid || s == nil || s.Status != models.SessionCompleted {
			continue
		}
		eligible := true
		for _, t := range m.transfers {
			if t.PaymentID == p.ID {
				eligible = t.Attempts < memPayoutAttempts && claimable(t, staleBefore)
			}
		}
		if eligible && len(ids) < limit {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

// Reviews

func (m *memStore) CreateReview(_ context.Context, r *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.reviews {
		if existing.SessionID == r.SessionID {
			return models.ErrConflict
		}
	}
	r.ID = uuid.New()
	c := *r
	m.reviews[r.ID] = &c
	return nil
}

func (m *memStore) GetReview(_ context.Context, id uuid.UUID) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (m *memStore) ListReviewsByMentor(_ context.Context, mentorID uuid.UUID, _ utils.Page) ([]models.Review, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Review
	for _, r := range m.reviews {
		if r.MentorID == mentorID {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memStore) DeleteReview(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.reviews, id)
	return nil
}

func (m *memStore) RefreshMentorRating(_ context.Context, mentorID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.mentors[mentorID]
	if !ok {
		return nil
	}
	var sum, n int
	for _, r := range m.reviews {
		if r.MentorID == mentorID {
			sum += r.Rating
			n++
		}
	}
	p.ReviewCount = n
	p.AvgRating = 0
	if n > 0 {
		p.AvgRating = float32(sum) / float32(n)
	}
	return nil
}

// Interests

func (m *memStore) interestCopy(i *models.MentorshipInterest) *models.MentorshipInterest {
	c := *i
	if u := m.users[i.MenteeID]; u != nil {
		c.Mentee = *u
	}
	if u := m.users[i.MentorID]; u != nil {
		c.Mentor = *u
	}
	return &c
}

func (m *memStore) CreateInterest(_ context.Context, i *models.MentorshipInterest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i.ID = uuid.New()
	c := *i
	m.interests[i.ID] = &c
	return nil
}

func (m *memStore) GetInterest(_ context.Context, id uuid.UUID) (*models.MentorshipInterest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.interests[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return m.interestCopy(i), nil
}

func (m *memStore) ListInterests(_ context.Context, f InterestFilter) ([]models.MentorshipInterest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.MentorshipInterest
	for _, i := range m.interests {
		if f.MenteeID != nil && i.MenteeID != *f.MenteeID {
			continue
		}
		if f.MentorID != nil && i.MentorID != *f.MentorID {
			continue
		}
		if f.Status != "" && i.Status != f.Status {
			continue
		}
		out = append(out, *m.interestCopy(i))
	}
	return out, nil
}

func (m *memStore) HasPendingInterest(_ context.Context, menteeID, mentorID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.interests {
		if i.MenteeID == menteeID && i.MentorID == mentorID && i.Status == models.InterestPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) RespondInterest(_ context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.interests[id]
	if !ok {
		return models.ErrNotFound
	}
	if i.Status != models.InterestPending {
		return models.ErrInvalidStateTransition
	}
	i.Status = status
	return nil
}

func (m *memStore) DeleteInterest(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.interests[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.interests, id)
	return nil
}

// Chat

// conversationCopy expects m.mu to be held.
func (m *memStore) conversationCopy(id uuid.UUID) *models.Conversation {
	conv := &models.Conversation{ID: id}
	for _, uid := range m.conversations[id] {
		if u := m.users[uid]; u != nil {
			c := *u
			conv.Participants = append(conv.Participants, &c)
		}
	}
	return conv
}

func (m *memStore) ListConversations(_ context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Conversation
	for id, members := range m.conversations {
		for _, uid := range members {
			if uid == userID {
				out = append(out, *m.conversationCopy(id))
			}
		}
	}
	return out, nil
}

func (m *memStore) FindConversationBetween(_ context.Context, a, b uuid.UUID) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, members := range m.conversations {
		if len(members) == 2 && ((members[0] == a && members[1] == b) || (members[0] == b && members[1] == a)) {
			return m.conversationCopy(id), nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memStore) CreateConversation(_ context.Context, a, b uuid.UUID) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.conversations[id] = []uuid.UUID{a, b}
	return m.conversationCopy(id), nil
}

func (m *memStore) GetConversation(_ context.Context, id uuid.UUID) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.conversations[id]; !ok {
		return nil, models.ErrNotFound
	}
	return m.conversationCopy(id), nil
}

func (m *memStore) CreateMessage(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = uuid.New()
	c := *msg
	m.messages = append(m.messages, &c)
	return nil
}

func (m *memStore) ListMessages(_ context.Context, conversationID uuid.UUID, _ utils.Page) ([]models.Message, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Message
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			out = append(out, *msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (m *memStore) MarkMessagesRead(_ context.Context, conversationID, readerID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID && msg.SenderID != readerID && msg.ReadAt == nil {
			t := at
			msg.ReadAt = &t
		}
	}
	return nil
}

// Questionnaires

func (m *memStore) UpsertQuestionnaire(_ context.Context, r *models.QuestionnaireResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.questionnaires[r.UserID]; ok {
		r.ID = existing.ID
	} else {
		r.ID = uuid.New()
	}
	c := *r
	m.questionnaires[r.UserID] = &c
	return nil
}

func (m *memStore) GetQuestionnaireByUser(_ context.Context, userID uuid.UUID) (*models.QuestionnaireResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.questionnaires[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (m *memStore) ListQuestionnaires(_ context.Context, role string, _ utils.Page) ([]models.QuestionnaireResponse, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.QuestionnaireResponse
	for _, r := range m.questionnaires {
		if role == "" || r.Role == role {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

type sentNotice struct {
	To      uuid.UUID
	Notice  notifications.Notice
	Offline bool
}

type fakeNotifier struct {
	mu     sync.Mutex
	online map[uuid.UUID]bool
	sent   []sentNotice
}

func (f *fakeNotifier) Notify(_ context.Context, to *models.User, n notifications.Notice) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotice{To: to.ID, Notice: n})
}

func (f *fakeNotifier) NotifyIfOffline(_ context.Context, to *models.User, n notifications.Notice) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.online[to.ID] {
		return false
	}
	f.sent = append(f.sent, sentNotice{To: to.ID, Notice: n, Offline: true})
	return true
}

func (f *fakeNotifier) sentTo(id uuid.UUID) []notifications.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notifications.Notice
	for _, s := range f.sent {
		if s.To == id {
			out = append(out, s.Notice)
		}
	}
	return out
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
