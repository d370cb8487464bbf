package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/notifications"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
)

const (
	minSessionLength = 15 * time.Minute
	maxSessionLength = 4 * time.Hour
	reminderLead     = time.Hour
)

// PayoutTrigger starts the mentor payout for a settled payment.
type PayoutTrigger interface {
	Transfer(ctx context.Context, paymentID uuid.UUID) (*models.Transfer, error)
}

type CreateSessionInput struct {
	MentorID  uuid.UUID
	Topic     string
	Notes     *string
	StartTime time.Time
	EndTime   time.Time
}

type UpdateSessionInput struct {
	Status      string
	MeetingLink *string
}

type SessionService struct {
	sessions SessionStore
	profiles ProfileStore
	users    UserStore
	payouts  PayoutTrigger
	notifier Notifier
	now      func() time.Time
}

func NewSessionService(sessions SessionStore, profiles ProfileStore, users UserStore, payouts PayoutTrigger, notifier Notifier) *SessionService {
	return &SessionService{
		sessions: sessions,
		profiles: profiles,
		users:    users,
		payouts:  payouts,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *SessionService) Create(ctx context.Context, menteeID uuid.UUID, in CreateSessionInput) (*models.Session, error) {
	if in.MentorID == menteeID {
		return nil, fmt.Errorf("%w: you cannot book a session with yourself", models.ErrInvalidInput)
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, fmt.Errorf("%w: end time must be after start time", models.ErrInvalidInput)
	}
	length := in.EndTime.Sub(in.StartTime)
	if length < minSessionLength || length > maxSessionLength {
		return nil, fmt.Errorf("%w: sessions must last between %s and %s", models.ErrInvalidInput, minSessionLength, maxSessionLength)
	}
	if !in.StartTime.After(s.now()) {
		return nil, fmt.Errorf("%w: start time must be in the future", models.ErrInvalidInput)
	}

	mentor, err := s.profiles.GetMentorProfile(ctx, in.MentorID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: mentor not found", models.ErrNotFound)
		}
		return nil, err
	}
	if mentor.User.Role != models.RoleMentor || !mentor.User.IsActive {
		return nil, fmt.Errorf("%w: mentor not found", models.ErrNotFound)
	}
	if !mentor.IsAccepting {
		return nil, fmt.Errorf("%w: mentor is not accepting sessions", models.ErrConflict)
	}
	if mentor.HourlyRate <= 0 {
		return nil, fmt.Errorf("%w: mentor has not set an hourly rate", models.ErrConflict)
	}

	overlap, err := s.sessions.HasOverlap(ctx, in.MentorID, in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, fmt.Errorf("%w: mentor already has a session in this time slot", models.ErrConflict)
	}

	topic := utils.SanitizeText(in.Topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", models.ErrInvalidInput)
	}

	session := &models.Session{
		MenteeID:      menteeID,
		MentorID:      in.MentorID,
		Topic:         topic,
		Notes:         utils.SanitizeOptional(in.Notes),
		StartTime:     in.StartTime.UTC(),
		EndTime:       in.EndTime.UTC(),
		Status:        models.SessionScheduled,
		PaymentStatus: models.PaymentStatusPending,
		Price:         mentor.HourlyRate * int64(length/time.Minute) / 60,
		Currency:      mentor.Currency,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	if mentee, err := s.users.GetUserByID(ctx, menteeID); err == nil {
		mentorUser := mentor.User
		go s.notifier.Notify(context.Background(), &mentorUser,
			notifications.SessionRequestedNotice(mentee.FullName, session.Topic, session.StartTime))
	}
	return session, nil
}

func (s *SessionService) ListMine(ctx context.Context, claims *utils.Claims, status string, page utils.Page) ([]models.Session, int64, error) {
	return s.sessions.ListSessions(ctx, SessionFilter{
		UserID: claims.UserID,
		Role:   claims.Role,
		Status: status,
	}, page)
}

func (s *SessionService) ListAll(ctx context.Context, f SessionFilter, page utils.Page) ([]models.Session, int64, error) {
	return s.sessions.ListSessions(ctx, f, page)
}

// Get returns a session visible to the caller: participants, the parent of
// the mentee, and admins.
func (s *SessionService) Get(ctx context.Context, claims *utils.Claims, id uuid.UUID) (*models.Session, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canView(ctx, claims, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) canView(ctx context.Context, claims *utils.Claims, session *models.Session) error {
	if claims.Role == models.RoleAdmin || session.IsParticipant(claims.UserID) {
		return nil
	}
	if claims.Role == models.RoleParent {
		p, err := s.profiles.GetMenteeProfile(ctx, session.MenteeID)
		if err == nil && p.ParentUserID != nil && *p.ParentUserID == claims.UserID {
			return nil
		}
	}
	return fmt.Errorf("%w: you are not part of this session", models.ErrForbidden)
}

func (s *SessionService) UpdateStatus(ctx context.Context, claims *utils.Claims, id uuid.UUID, in UpdateSessionInput) (*models.Session, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	isAdmin := claims.Role == models.RoleAdmin
	if !isAdmin && !session.IsParticipant(claims.UserID) {
		return nil, fmt.Errorf("%w: you are not part of this session", models.ErrForbidden)
	}

	if in.MeetingLink != nil {
		if session.MentorID != claims.UserID && !isAdmin {
			return nil, fmt.Errorf("%w: only the mentor can set the meeting link", models.ErrForbidden)
		}
		if err := s.sessions.SetMeetingLink(ctx, id, *in.MeetingLink); err != nil {
			return nil, err
		}
	}

	switch in.Status {
	case "", session.Status:
	case models.SessionCancelled:
		if err := s.sessions.TransitionSession(ctx, id, []string{models.SessionScheduled, models.SessionConfirmed}, models.SessionCancelled, s.now()); err != nil {
			return nil, err
		}
		s.notifyCancelled(session, claims.UserID)
	case models.SessionCompleted:
		if session.MentorID != claims.UserID && !isAdmin {
			return nil, fmt.Errorf("%w: only the mentor can complete a session", models.ErrForbidden)
		}
		if session.PaymentStatus != models.PaymentStatusPaid || session.Payment == nil {
			return nil, fmt.Errorf("%w: session has not been paid", models.ErrInvalidStateTransition)
		}
		if s.now().Before(session.StartTime) {
			return nil, fmt.Errorf("%w: session has not started yet", models.ErrInvalidStateTransition)
		}
		if err := s.sessions.TransitionSession(ctx, id, []string{models.SessionConfirmed}, models.SessionCompleted, s.now()); err != nil {
			return nil, err
		}
		go s.payout(session.Payment.ID)
	case models.SessionConfirmed:
		return nil, fmt.Errorf("%w: sessions are confirmed by payment", models.ErrInvalidStateTransition)
	default:
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrInvalidInput, in.Status)
	}

	return s.sessions.GetSession(ctx, id)
}

func (s *SessionService) payout(paymentID uuid.UUID) {
	if _, err := s.payouts.Transfer(context.Background(), paymentID); err != nil {
		log.Printf("🔥 Payout for payment %s failed, reconciliation will retry: %v", paymentID, err)
	}
}

func (s *SessionService) notifyCancelled(session *models.Session, by uuid.UUID) {
	other := session.Mentor
	if by == session.MentorID {
		other = session.Mentee
	}
	go s.notifier.Notify(context.Background(), &other,
		notifications.SessionCancelledNotice(session.Topic, session.StartTime))
}

// Delete removes a session the mentee booked but never paid for.
func (s *SessionService) Delete(ctx context.Context, menteeID, id uuid.UUID) error {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if session.MenteeID != menteeID {
		return fmt.Errorf("%w: only the mentee who booked the session can delete it", models.ErrForbidden)
	}
	if session.PaymentStatus == models.PaymentStatusPaid {
		return fmt.Errorf("%w: paid sessions cannot be deleted, cancel instead", models.ErrConflict)
	}
	return s.sessions.DeleteUnpaidSession(ctx, id)
}

// SendReminders notifies both participants of confirmed sessions starting
// within the next hour. It returns the number of sessions reminded.
func (s *SessionService) SendReminders(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.sessions.ListDueReminders(ctx, now, now.Add(reminderLead))
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		session := due[i]
		if err := s.sessions.MarkReminded(ctx, session.ID, now); err != nil {
			log.Printf("🔥 Could not mark session %s reminded: %v", session.ID, err)
			continue
		}
		notice := notifications.SessionReminderNotice(session.Topic, session.StartTime, session.MeetingLink)
		s.notifier.Notify(ctx, &session.Mentee, notice)
		s.notifier.Notify(ctx, &session.Mentor, notice)
		sent++
	}
	return sent, nil
}

// ExpireStale cancels unpaid sessions whose start time has passed.
func (s *SessionService) ExpireStale(ctx context.Context) (int64, error) {
	return s.sessions.ExpireUnpaid(ctx, s.now())
}
