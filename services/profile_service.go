package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
)

type UpdateUserInput struct {
	FullName          *string
	Phone             *string
	ProfilePictureURL *string
	TimeZone          *string
}

type MentorProfileInput struct {
	Headline          *string
	Bio               *string
	Expertise         *string
	YearsOfExperience *int
	HourlyRate        *int64
	Currency          *string
	IsAccepting       *bool
}

type MenteeProfileInput struct {
	School    *string
	Grade     *string
	Interests *string
	Goals     *string
	// ParentEmail links the profile to a registered parent account.
	ParentEmail *string
}

type ProfileService struct {
	users    UserStore
	profiles ProfileStore
	tokens   TokenIssuer
	currency string
}

func NewProfileService(users UserStore, profiles ProfileStore, tokens TokenIssuer, currency string) *ProfileService {
	return &ProfileService{users: users, profiles: profiles, tokens: tokens, currency: currency}
}

func (s *ProfileService) GetMe(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

func (s *ProfileService) UpdateMe(ctx context.Context, userID uuid.UUID, in UpdateUserInput) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.FullName != nil {
		name := utils.SanitizeText(*in.FullName)
		if name == "" {
			return nil, fmt.Errorf("%w: full name cannot be empty", models.ErrInvalidInput)
		}
		user.FullName = name
	}
	if in.Phone != nil {
		user.Phone = utils.SanitizeOptional(in.Phone)
	}
	if in.ProfilePictureURL != nil {
		user.ProfilePictureURL = in.ProfilePictureURL
	}
	if in.TimeZone != nil {
		user.TimeZone = in.TimeZone
	}

	if err := s.users.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateRole switches between the self-service roles and returns a fresh
// token carrying the new role.
func (s *ProfileService) UpdateRole(ctx context.Context, userID uuid.UUID, role string) (*AuthResult, error) {
	if role == models.RoleAdmin || !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: unsupported role %q", models.ErrInvalidInput, role)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleAdmin {
		return nil, fmt.Errorf("%w: admins cannot change role", models.ErrForbidden)
	}

	if user.Role != role {
		user.Role = role
		if err := s.users.SaveUser(ctx, user); err != nil {
			return nil, err
		}
	}
	if err := ensureRoleProfile(ctx, s.profiles, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *ProfileService) GetMentorProfile(ctx context.Context, userID uuid.UUID) (*models.MentorProfile, error) {
	return s.profiles.GetMentorProfile(ctx, userID)
}

func (s *ProfileService) UpdateMentorProfile(ctx context.Context, userID uuid.UUID, in MentorProfileInput) (*models.MentorProfile, error) {
	p, err := s.profiles.GetMentorProfile(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		p = &models.MentorProfile{UserID: userID, Currency: s.currency, IsAccepting: true}
	} else if err != nil {
		return nil, err
	}

	if in.Headline != nil {
		p.Headline = utils.SanitizeOptional(in.Headline)
	}
	if in.Bio != nil {
		p.Bio = utils.SanitizeOptional(in.Bio)
	}
	if in.Expertise != nil {
		p.Expertise = utils.SanitizeOptional(in.Expertise)
	}
	if in.YearsOfExperience != nil {
		if *in.YearsOfExperience < 0 {
			return nil, fmt.Errorf("%w: years of experience cannot be negative", models.ErrInvalidInput)
		}
		p.YearsOfExperience = *in.YearsOfExperience
	}
	if in.HourlyRate != nil {
		if *in.HourlyRate < 0 {
			return nil, fmt.Errorf("%w: hourly rate cannot be negative", models.ErrInvalidInput)
		}
		p.HourlyRate = *in.HourlyRate
	}
	if in.Currency != nil {
		if len(*in.Currency) != 3 {
			return nil, fmt.Errorf("%w: currency must be a 3-letter code", models.ErrInvalidInput)
		}
		p.Currency = strings.ToUpper(*in.Currency)
	}
	if in.IsAccepting != nil {
		p.IsAccepting = *in.IsAccepting
	}

	if err := s.profiles.SaveMentorProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProfileService) ListMentors(ctx context.Context, f MentorFilter, page utils.Page) ([]models.MentorProfile, int64, error) {
	return s.profiles.ListMentors(ctx, f, page)
}

// GetMentor returns the public profile of an active mentor.
func (s *ProfileService) GetMentor(ctx context.Context, mentorID uuid.UUID) (*models.MentorProfile, error) {
	p, err := s.profiles.GetMentorProfile(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	if p.User.Role != models.RoleMentor || !p.User.IsActive {
		return nil, models.ErrNotFound
	}
	return p, nil
}

func (s *ProfileService) GetMenteeProfile(ctx context.Context, userID uuid.UUID) (*models.MenteeProfile, error) {
	return s.profiles.GetMenteeProfile(ctx, userID)
}

func (s *ProfileService) UpdateMenteeProfile(ctx context.Context, userID uuid.UUID, in MenteeProfileInput) (*models.MenteeProfile, error) {
	p, err := s.profiles.GetMenteeProfile(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		p = &models.MenteeProfile{UserID: userID}
	} else if err != nil {
		return nil, err
	}

	if in.School != nil {
		p.School = utils.SanitizeOptional(in.School)
	}
	if in.Grade != nil {
		p.Grade = utils.SanitizeOptional(in.Grade)
	}
	if in.Interests != nil {
		p.Interests = utils.SanitizeOptional(in.Interests)
	}
	if in.Goals != nil {
		p.Goals = utils.SanitizeOptional(in.Goals)
	}
	if in.ParentEmail != nil {
		if *in.ParentEmail == "" {
			p.ParentUserID = nil
		} else {
			parent, err := s.users.GetUserByEmail(ctx, *in.ParentEmail)
			if errors.Is(err, models.ErrNotFound) || (err == nil && parent.Role != models.RoleParent) {
				return nil, fmt.Errorf("%w: no parent account with that email", models.ErrInvalidInput)
			}
			if err != nil {
				return nil, err
			}
			p.ParentUserID = &parent.ID
		}
	}

	if err := s.profiles.SaveMenteeProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ensureRoleProfile creates the empty profile row a role needs.
func ensureRoleProfile(ctx context.Context, profiles ProfileStore, u *models.User) error {
	switch u.Role {
	case models.RoleMentor:
		_, err := profiles.GetMentorProfile(ctx, u.ID)
		if errors.Is(err, models.ErrNotFound) {
			return profiles.SaveMentorProfile(ctx, &models.MentorProfile{UserID: u.ID, Currency: "INR", IsAccepting: true})
		}
		return err
	case models.RoleMentee:
		_, err := profiles.GetMenteeProfile(ctx, u.ID)
		if errors.Is(err, models.ErrNotFound) {
			return profiles.SaveMenteeProfile(ctx, &models.MenteeProfile{UserID: u.ID})
		}
		return err
	}
	return nil
}
