package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/questionnaire"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
)

type QuestionnaireService struct {
	store   QuestionnaireStore
	catalog *questionnaire.Catalog
	now     func() time.Time
}

func NewQuestionnaireService(store QuestionnaireStore, catalog *questionnaire.Catalog) *QuestionnaireService {
	return &QuestionnaireService{store: store, catalog: catalog, now: time.Now}
}

func (s *QuestionnaireService) Questions(role string) (questionnaire.Set, error) {
	set, err := s.catalog.ForRole(role)
	if errors.Is(err, questionnaire.ErrUnknownRole) {
		return questionnaire.Set{}, fmt.Errorf("%w: %v", models.ErrNotFound, err)
	}
	return set, err
}

// Submit validates the answers against the caller's role set and replaces
// any earlier submission.
func (s *QuestionnaireService) Submit(ctx context.Context, claims *utils.Claims, answers map[string]string) (*models.QuestionnaireResponse, error) {
	set, err := s.Questions(claims.Role)
	if err != nil {
		return nil, err
	}

	clean := make(map[string]string, len(answers))
	for k, v := range answers {
		clean[k] = utils.SanitizeText(v)
	}
	if err := set.Validate(clean); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	resp := &models.QuestionnaireResponse{
		UserID:      claims.UserID,
		Role:        claims.Role,
		Answers:     clean,
		SubmittedAt: s.now(),
	}
	if err := s.store.UpsertQuestionnaire(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *QuestionnaireService) Mine(ctx context.Context, userID uuid.UUID) (*models.QuestionnaireResponse, error) {
	return s.store.GetQuestionnaireByUser(ctx, userID)
}

func (s *QuestionnaireService) ListAll(ctx context.Context, role string, page utils.Page) ([]models.QuestionnaireResponse, int64, error) {
	return s.store.ListQuestionnaires(ctx, role, page)
}
