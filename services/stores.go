package services

import (
	"context"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/notifications"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
)

// Store interfaces are implemented by the repository package. They report
// missing rows as models.ErrNotFound and unique violations as models.ErrConflict.

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	SaveUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
	GetUserByGoogleSub(ctx context.Context, sub string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*models.User, error)
}

type MentorFilter struct {
	Query         string
	Expertise     string
	MaxHourlyRate int64
	MinRating     float32
}

type ProfileStore interface {
	GetMentorProfile(ctx context.Context, userID uuid.UUID) (*models.MentorProfile, error)
	SaveMentorProfile(ctx context.Context, p *models.MentorProfile) error
	ListMentors(ctx context.Context, f MentorFilter, page utils.Page) ([]models.MentorProfile, int64, error)
	GetMenteeProfile(ctx context.Context, userID uuid.UUID) (*models.MenteeProfile, error)
	SaveMenteeProfile(ctx context.Context, p *models.MenteeProfile) error
}

type BankDetailsStore interface {
	GetBankDetails(ctx context.Context, mentorID uuid.UUID) (*models.BankDetails, error)
	CreateBankDetails(ctx context.Context, b *models.BankDetails) error
	SaveBankDetails(ctx context.Context, b *models.BankDetails) error
	DeleteBankDetails(ctx context.Context, mentorID uuid.UUID) error
}

type SessionFilter struct {
	UserID        uuid.UUID
	Role          string
	Status        string
	PaymentStatus string
}

type SessionStore interface {
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	ListSessions(ctx context.Context, f SessionFilter, page utils.Page) ([]models.Session, int64, error)
	HasOverlap(ctx context.Context, mentorID uuid.UUID, start, end time.Time) (bool, error)
	// TransitionSession moves a session to status only if it is currently in
	// one of from. It returns models.ErrInvalidStateTransition otherwise.
	TransitionSession(ctx context.Context, id uuid.UUID, from []string, to string, at time.Time) error
	SetMeetingLink(ctx context.Context, id uuid.UUID, link string) error
	// DeleteUnpaidSession removes a session whose payment is not settled.
	DeleteUnpaidSession(ctx context.Context, id uuid.UUID) error
	ListDueReminders(ctx context.Context, from, to time.Time) ([]models.Session, error)
	MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error
	ExpireUnpaid(ctx context.Context, startedBefore time.Time) (int64, error)
}

type PaymentFilter struct {
	Status      string
	NeedsRefund bool
	From        *time.Time
	To          *time.Time
}

type PaymentStore interface {
	GetPayment(ctx context.Context, id uuid.UUID) (*models.SessionPayment, error)
	GetPaymentBySession(ctx context.Context, sessionID uuid.UUID) (*models.SessionPayment, error)
	GetPaymentByOrderID(ctx context.Context, orderID string) (*models.SessionPayment, error)
	// SaveOrder creates the session's payment record or replaces the order on
	// an unpaid one.
	SaveOrder(ctx context.Context, p *models.SessionPayment) error
	// MarkPaid settles the payment and confirms its session in one
	// transaction. first is false when the payment was already paid. A
	// payment for a cancelled session is settled with NeedsRefund set.
	MarkPaid(ctx context.Context, orderID, paymentID, signature, via string, at time.Time) (p *models.SessionPayment, first bool, err error)
	MarkFailed(ctx context.Context, orderID, paymentID, reason string) (*models.SessionPayment, error)
	SetReceiptURL(ctx context.Context, id uuid.UUID, url string) error
	WebhookEventSeen(ctx context.Context, eventID string) (bool, error)
	RecordWebhookEvent(ctx context.Context, eventID, eventType string, at time.Time) error
	ListPayments(ctx context.Context, f PaymentFilter, page utils.Page) ([]models.SessionPayment, int64, error)
}

type TransferStore interface {
	GetTransferByPayment(ctx context.Context, paymentID uuid.UUID) (*models.Transfer, error)
	CreateTransfer(ctx context.Context, t *models.Transfer) error
	// ClaimTransfer moves a pending or failed transfer to processing and
	// records the destination account. A processing transfer last touched
	// before staleBefore is claimed as well. It reports false if another
	// caller holds it or it is already processed.
	ClaimTransfer(ctx context.Context, id uuid.UUID, linkedAccountID string, staleBefore time.Time) (bool, error)
	CompleteTransfer(ctx context.Context, id uuid.UUID, gatewayTransferID string, at time.Time) error
	FailTransfer(ctx context.Context, id uuid.UUID, reason string) error
	// ListPayoutCandidates returns paid payments of completed sessions that
	// have no processed transfer yet, skipping transfers held by a live claim
	// or out of automatic attempts.
	ListPayoutCandidates(ctx context.Context, limit int, staleBefore time.Time) ([]uuid.UUID, error)
}

type ReviewStore interface {
	CreateReview(ctx context.Context, r *models.Review) error
	GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ListReviewsByMentor(ctx context.Context, mentorID uuid.UUID, page utils.Page) ([]models.Review, int64, error)
	DeleteReview(ctx context.Context, id uuid.UUID) error
	RefreshMentorRating(ctx context.Context, mentorID uuid.UUID) error
}

type InterestFilter struct {
	MenteeID *uuid.UUID
	MentorID *uuid.UUID
	Status   string
}

type InterestStore interface {
	CreateInterest(ctx context.Context, i *models.MentorshipInterest) error
	GetInterest(ctx context.Context, id uuid.UUID) (*models.MentorshipInterest, error)
	ListInterests(ctx context.Context, f InterestFilter) ([]models.MentorshipInterest, error)
	HasPendingInterest(ctx context.Context, menteeID, mentorID uuid.UUID) (bool, error)
	RespondInterest(ctx context.Context, id uuid.UUID, status string) error
	DeleteInterest(ctx context.Context, id uuid.UUID) error
}

type ChatStore interface {
	ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	FindConversationBetween(ctx context.Context, a, b uuid.UUID) (*models.Conversation, error)
	CreateConversation(ctx context.Context, a, b uuid.UUID) (*models.Conversation, error)
	GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	CreateMessage(ctx context.Context, m *models.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID, page utils.Page) ([]models.Message, int64, error)
	MarkMessagesRead(ctx context.Context, conversationID, readerID uuid.UUID, at time.Time) error
}

type QuestionnaireStore interface {
	UpsertQuestionnaire(ctx context.Context, r *models.QuestionnaireResponse) error
	GetQuestionnaireByUser(ctx context.Context, userID uuid.UUID) (*models.QuestionnaireResponse, error)
	ListQuestionnaires(ctx context.Context, role string, page utils.Page) ([]models.QuestionnaireResponse, int64, error)
}

type PlatformStats struct {
	UsersByRole      map[string]int64 `json:"users_by_role"`
	SessionsByStatus map[string]int64 `json:"sessions_by_status"`
	PaidRevenue      int64            `json:"paid_revenue"`
	PaidOutToMentors int64            `json:"paid_out_to_mentors"`
	PendingTransfers int64            `json:"pending_transfers"`
	ReviewsSubmitted int64            `json:"reviews_submitted"`
}

type UserFilter struct {
	Role   string
	Query  string
	Active *bool
}

type TransactionRow struct {
	PaymentID        uuid.UUID
	SessionID        uuid.UUID
	MenteeEmail      string
	MentorEmail      string
	Amount           int64
	Currency         string
	Status           string
	GatewayOrderID   string
	GatewayPaymentID string
	TransferStatus   string
	TransferAmount   int64
	PaidAt           *time.Time
	CreatedAt        time.Time
}

type AdminStore interface {
	Stats(ctx context.Context) (*PlatformStats, error)
	ListUsers(ctx context.Context, f UserFilter, page utils.Page) ([]models.User, int64, error)
	SetUserActive(ctx context.Context, userID uuid.UUID, active bool) error
	TransactionRows(ctx context.Context, from, to time.Time, each func(TransactionRow) error) error
}

// Notifier delivers best-effort notifications.
type Notifier interface {
	Notify(ctx context.Context, to *models.User, n notifications.Notice)
	NotifyIfOffline(ctx context.Context, to *models.User, n notifications.Notice) bool
}
