package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
)

var (
	ifscPattern          = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	accountNumberPattern = regexp.MustCompile(`^[0-9]{9,18}$`)
	linkedAccountPattern = regexp.MustCompile(`^acc_[A-Za-z0-9]+$`)
)

type BankDetailsInput struct {
	AccountHolderName string
	AccountNumber     string
	IFSC              string
	BankName          *string
	UPIID             *string
}

type BankDetailsService struct {
	store BankDetailsStore
	users UserStore
}

func NewBankDetailsService(store BankDetailsStore, users UserStore) *BankDetailsService {
	return &BankDetailsService{store: store, users: users}
}

func (in *BankDetailsInput) normalize() error {
	in.AccountHolderName = utils.SanitizeText(in.AccountHolderName)
	in.AccountNumber = strings.ReplaceAll(in.AccountNumber, " ", "")
	in.IFSC = strings.ToUpper(strings.TrimSpace(in.IFSC))

	if in.AccountHolderName == "" {
		return fmt.Errorf("%w: account holder name is required", models.ErrInvalidInput)
	}
	if !accountNumberPattern.MatchString(in.AccountNumber) {
		return fmt.Errorf("%w: account number must be 9 to 18 digits", models.ErrInvalidInput)
	}
	if !ifscPattern.MatchString(in.IFSC) {
		return fmt.Errorf("%w: invalid IFSC code", models.ErrInvalidInput)
	}
	in.BankName = utils.SanitizeOptional(in.BankName)
	in.UPIID = utils.SanitizeOptional(in.UPIID)
	return nil
}

func (s *BankDetailsService) Get(ctx context.Context, mentorID uuid.UUID) (*models.BankDetails, error) {
	return s.store.GetBankDetails(ctx, mentorID)
}

func (s *BankDetailsService) Create(ctx context.Context, mentorID uuid.UUID, in BankDetailsInput) (*models.BankDetails, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	b := &models.BankDetails{
		MentorID:          mentorID,
		AccountHolderName: in.AccountHolderName,
		AccountNumber:     in.AccountNumber,
		IFSC:              in.IFSC,
		BankName:          in.BankName,
		UPIID:             in.UPIID,
	}
	if err := s.store.CreateBankDetails(ctx, b); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: bank details already exist, update them instead", models.ErrConflict)
		}
		return nil, err
	}
	return b, nil
}

// Update replaces the account fields in place. A changed account number
// drops the linked gateway account so payouts wait for re-linking.
func (s *BankDetailsService) Update(ctx context.Context, mentorID uuid.UUID, in BankDetailsInput) (*models.BankDetails, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	b, err := s.store.GetBankDetails(ctx, mentorID)
	if err != nil {
		return nil, err
	}

	if b.AccountNumber != in.AccountNumber || b.IFSC != in.IFSC {
		b.LinkedAccountID = nil
	}
	b.AccountHolderName = in.AccountHolderName
	b.AccountNumber = in.AccountNumber
	b.IFSC = in.IFSC
	b.BankName = in.BankName
	b.UPIID = in.UPIID

	if err := s.store.SaveBankDetails(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BankDetailsService) Delete(ctx context.Context, mentorID uuid.UUID) error {
	return s.store.DeleteBankDetails(ctx, mentorID)
}

// SetLinkedAccount records the gateway route account an admin onboarded for
// the mentor.
func (s *BankDetailsService) SetLinkedAccount(ctx context.Context, mentorID uuid.UUID, accountID string) (*models.BankDetails, error) {
	if !linkedAccountPattern.MatchString(accountID) {
		return nil, fmt.Errorf("%w: linked account id must look like acc_XXXX", models.ErrInvalidInput)
	}

	mentor, err := s.users.GetUserByID(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	if mentor.Role != models.RoleMentor {
		return nil, fmt.Errorf("%w: user is not a mentor", models.ErrInvalidInput)
	}

	b, err := s.store.GetBankDetails(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	b.LinkedAccountID = &accountID
	if err := s.store.SaveBankDetails(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}
