package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anjiri1684/mentorship/identity"
	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/notifications"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = 15 * time.Minute

type TokenIssuer interface {
	Issue(userID uuid.UUID, email, role string) (string, error)
}

type IDTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*identity.Identity, error)
}

type CodeExchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*identity.Identity, error)
}

type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Role     string
	Phone    *string
}

type AuthService struct {
	users       UserStore
	profiles    ProfileStore
	tokens      TokenIssuer
	firebase    IDTokenVerifier
	google      CodeExchanger
	notifier    Notifier
	frontendURL string
	now         func() time.Time
}

type AuthConfig struct {
	Users       UserStore
	Profiles    ProfileStore
	Tokens      TokenIssuer
	Firebase    IDTokenVerifier
	Google      CodeExchanger
	Notifier    Notifier
	FrontendURL string
}

func NewAuthService(cfg AuthConfig) *AuthService {
	return &AuthService{
		users:       cfg.Users,
		profiles:    cfg.Profiles,
		tokens:      cfg.Tokens,
		firebase:    cfg.Firebase,
		google:      cfg.Google,
		notifier:    cfg.Notifier,
		frontendURL: cfg.FrontendURL,
		now:         time.Now,
	}
}

// signupRole defaults to mentee. Admins are only created by the seed command.
func signupRole(role string) (string, error) {
	if role == "" {
		return models.RoleMentee, nil
	}
	if role == models.RoleAdmin || !models.ValidRole(role) {
		return "", fmt.Errorf("%w: unsupported role %q", models.ErrInvalidInput, role)
	}
	return role, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	role, err := signupRole(in.Role)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	password := string(hashed)

	user := &models.User{
		FullName:     utils.SanitizeText(in.FullName),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Password:     &password,
		Role:         role,
		AuthProvider: models.ProviderPassword,
		Phone:        in.Phone,
		IsActive:     true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: email already exists", models.ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.ensureProfile(ctx, user)
	go s.notifier.Notify(context.Background(), user, notifications.Notice{
		Subject: "Welcome!",
		HTML:    "<h1>Welcome!</h1><p>Thank you for registering.</p>",
		Text:    "Welcome! Thank you for registering.",
	})

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	invalid := fmt.Errorf("%w: invalid email or password", models.ErrUnauthorized)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if user.Password == nil {
		return nil, fmt.Errorf("%w: this account signs in with %s", models.ErrUnauthorized, user.AuthProvider)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(password)); err != nil {
		return nil, invalid
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", models.ErrForbidden)
	}
	return s.issue(user)
}

func (s *AuthService) LoginWithFirebase(ctx context.Context, idToken, role string) (*AuthResult, error) {
	if s.firebase == nil {
		return nil, fmt.Errorf("%w: firebase login", models.ErrNotConfigured)
	}
	id, err := s.firebase.Verify(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	return s.federated(ctx, id, role)
}

func (s *AuthService) GoogleAuthURL() (string, string, error) {
	if s.google == nil {
		return "", "", fmt.Errorf("%w: google login", models.ErrNotConfigured)
	}
	state, err := utils.GenerateOAuthState()
	if err != nil {
		return "", "", err
	}
	return s.google.AuthCodeURL(state), state, nil
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, code, role string) (*AuthResult, error) {
	if s.google == nil {
		return nil, fmt.Errorf("%w: google login", models.ErrNotConfigured)
	}
	id, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	return s.federated(ctx, id, role)
}

// federated upserts the user behind a verified external identity: by provider
// subject first, then by verified email, else a new account.
func (s *AuthService) federated(ctx context.Context, id *identity.Identity, role string) (*AuthResult, error) {
	user, err := s.findBySubject(ctx, id)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	if user == nil {
		user, err = s.linkOrCreate(ctx, id, role)
		if errors.Is(err, models.ErrConflict) {
			// A concurrent first login created the row.
			user, err = s.findBySubject(ctx, id)
		}
		if err != nil {
			return nil, err
		}
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", models.ErrForbidden)
	}
	return s.issue(user)
}

func (s *AuthService) findBySubject(ctx context.Context, id *identity.Identity) (*models.User, error) {
	if id.Provider == models.ProviderGoogle {
		return s.users.GetUserByGoogleSub(ctx, id.Subject)
	}
	return s.users.GetUserByFirebaseUID(ctx, id.Subject)
}

func (s *AuthService) linkOrCreate(ctx context.Context, id *identity.Identity, role string) (*models.User, error) {
	subject := id.Subject

	existing, err := s.users.GetUserByEmail(ctx, id.Email)
	switch {
	case err == nil:
		if !id.EmailVerified {
			return nil, fmt.Errorf("%w: email is registered and the identity is not verified", models.ErrUnauthorized)
		}
		if id.Provider == models.ProviderGoogle {
			existing.GoogleSub = &subject
		} else {
			existing.FirebaseUID = &subject
		}
		if existing.ProfilePictureURL == nil && id.Picture != "" {
			existing.ProfilePictureURL = &id.Picture
		}
		if err := s.users.SaveUser(ctx, existing); err != nil {
			return nil, fmt.Errorf("link identity: %w", err)
		}
		return existing, nil
	case !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	r, err := signupRole(role)
	if err != nil {
		return nil, err
	}
	name := utils.SanitizeText(id.Name)
	if name == "" {
		name = strings.Split(id.Email, "@")[0]
	}

	user := &models.User{
		FullName:     name,
		Email:        strings.ToLower(id.Email),
		Role:         r,
		AuthProvider: id.Provider,
		IsActive:     true,
	}
	if id.Provider == models.ProviderGoogle {
		user.GoogleSub = &subject
	} else {
		user.FirebaseUID = &subject
	}
	if id.Picture != "" {
		user.ProfilePictureURL = &id.Picture
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.ensureProfile(ctx, user)
	return user, nil
}

// ensureProfile creates the empty role profile. Failures only log: the
// profile endpoints create it lazily as well.
func (s *AuthService) ensureProfile(ctx context.Context, u *models.User) {
	if err := ensureRoleProfile(ctx, s.profiles, u); err != nil {
		log.Printf("🔥 Failed to create %s profile for %s: %v", u.Role, u.ID, err)
	}
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return err
	}
	if user.Password == nil {
		return nil
	}

	token, err := utils.GenerateResetToken()
	if err != nil {
		return err
	}
	expiration := s.now().Add(resetTokenTTL)
	user.ResetPasswordToken = &token
	user.ResetPasswordTokenExpiresAt = &expiration

	if err := s.users.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)
	go s.notifier.Notify(context.Background(), user, notifications.PasswordResetNotice(resetLink))
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	invalid := fmt.Errorf("%w: invalid or expired reset token", models.ErrInvalidInput)

	user, err := s.users.GetUserByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return invalid
		}
		return err
	}
	if user.ResetPasswordTokenExpiresAt == nil || s.now().After(*user.ResetPasswordTokenExpiresAt) {
		return invalid
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	password := string(hashed)
	user.Password = &password
	user.ResetPasswordToken = nil
	user.ResetPasswordTokenExpiresAt = nil

	return s.users.SaveUser(ctx, user)
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token}, nil
}
