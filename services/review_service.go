package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
)

type ReviewService struct {
	reviews  ReviewStore
	sessions SessionStore
}

func NewReviewService(reviews ReviewStore, sessions SessionStore) *ReviewService {
	return &ReviewService{reviews: reviews, sessions: sessions}
}

// Create records the mentee's review of a completed session. Each session
// can be reviewed once.
func (s *ReviewService) Create(ctx context.Context, menteeID, sessionID uuid.UUID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", models.ErrInvalidInput)
	}

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.MenteeID != menteeID {
		return nil, fmt.Errorf("%w: you can only review your own sessions", models.ErrForbidden)
	}
	if session.Status != models.SessionCompleted {
		return nil, fmt.Errorf("%w: only completed sessions can be reviewed", models.ErrInvalidStateTransition)
	}

	review := &models.Review{
		SessionID: sessionID,
		MenteeID:  menteeID,
		MentorID:  session.MentorID,
		Rating:    rating,
		Comment:   utils.SanitizeText(comment),
	}
	if err := s.reviews.CreateReview(ctx, review); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: session already reviewed", models.ErrConflict)
		}
		return nil, err
	}

	if err := s.reviews.RefreshMentorRating(ctx, session.MentorID); err != nil {
		log.Printf("🔥 Failed to refresh rating for mentor %s: %v", session.MentorID, err)
	}
	return review, nil
}

func (s *ReviewService) ListForMentor(ctx context.Context, mentorID uuid.UUID, page utils.Page) ([]models.Review, int64, error) {
	return s.reviews.ListReviewsByMentor(ctx, mentorID, page)
}

func (s *ReviewService) Delete(ctx context.Context, id uuid.UUID) error {
	review, err := s.reviews.GetReview(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reviews.DeleteReview(ctx, id); err != nil {
		return err
	}
	return s.reviews.RefreshMentorRating(ctx, review.MentorID)
}
