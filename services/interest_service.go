package services

import (
	"context"
	"fmt"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/notifications"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
)

type InterestService struct {
	interests InterestStore
	users     UserStore
	notifier  Notifier
}

func NewInterestService(interests InterestStore, users UserStore, notifier Notifier) *InterestService {
	return &InterestService{interests: interests, users: users, notifier: notifier}
}

func (s *InterestService) Create(ctx context.Context, menteeID, mentorID uuid.UUID, message string) (*models.MentorshipInterest, error) {
	if menteeID == mentorID {
		return nil, fmt.Errorf("%w: you cannot express interest in yourself", models.ErrInvalidInput)
	}

	mentor, err := s.users.GetUserByID(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	if mentor.Role != models.RoleMentor || !mentor.IsActive {
		return nil, fmt.Errorf("%w: mentor not found", models.ErrNotFound)
	}

	pending, err := s.interests.HasPendingInterest(ctx, menteeID, mentorID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("%w: you already have a pending request with this mentor", models.ErrConflict)
	}

	interest := &models.MentorshipInterest{
		MenteeID: menteeID,
		MentorID: mentorID,
		Message:  utils.SanitizeText(message),
		Status:   models.InterestPending,
	}
	if err := s.interests.CreateInterest(ctx, interest); err != nil {
		return nil, err
	}

	if mentee, err := s.users.GetUserByID(ctx, menteeID); err == nil {
		go s.notifier.Notify(context.Background(), mentor,
			notifications.InterestReceivedNotice(mentee.FullName, interest.Message))
	}
	return interest, nil
}

func (s *InterestService) ListSent(ctx context.Context, menteeID uuid.UUID, status string) ([]models.MentorshipInterest, error) {
	return s.interests.ListInterests(ctx, InterestFilter{MenteeID: &menteeID, Status: status})
}

func (s *InterestService) ListReceived(ctx context.Context, mentorID uuid.UUID, status string) ([]models.MentorshipInterest, error) {
	return s.interests.ListInterests(ctx, InterestFilter{MentorID: &mentorID, Status: status})
}

// Respond accepts or declines a pending interest addressed to the mentor.
func (s *InterestService) Respond(ctx context.Context, mentorID, id uuid.UUID, status string) (*models.MentorshipInterest, error) {
	if status != models.InterestAccepted && status != models.InterestDeclined {
		return nil, fmt.Errorf("%w: status must be accepted or declined", models.ErrInvalidInput)
	}

	interest, err := s.interests.GetInterest(ctx, id)
	if err != nil {
		return nil, err
	}
	if interest.MentorID != mentorID {
		return nil, fmt.Errorf("%w: this request was sent to another mentor", models.ErrForbidden)
	}
	if err := s.interests.RespondInterest(ctx, id, status); err != nil {
		return nil, err
	}
	interest.Status = status

	mentee := interest.Mentee
	go s.notifier.Notify(context.Background(), &mentee,
		notifications.InterestRespondedNotice(interest.Mentor.FullName, status))
	return interest, nil
}

func (s *InterestService) Delete(ctx context.Context, menteeID, id uuid.UUID) error {
	interest, err := s.interests.GetInterest(ctx, id)
	if err != nil {
		return err
	}
	if interest.MenteeID != menteeID {
		return fmt.Errorf("%w: only the sender can withdraw a request", models.ErrForbidden)
	}
	return s.interests.DeleteInterest(ctx, id)
}
