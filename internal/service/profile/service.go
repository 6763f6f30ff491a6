package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/repository"
	apperrors "github.com/healthbook/booking-api/pkg/errors"
)

// Service covers self-service profile management and family members.
type Service struct {
	accounts repository.AccountRepository
	family   repository.FamilyRepository
}

func NewService(accounts repository.AccountRepository, family repository.FamilyRepository) *Service {
	return &Service{accounts: accounts, family: family}
}

// Get returns the caller's own account.
func (s *Service) Get(ctx context.Context, accountID uuid.UUID) (*model.Account, error) {
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("account")
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return account, nil
}

// Update applies a self-service edit. Role, email and verification state
// cannot be changed here.
func (s *Service) Update(ctx context.Context, accountID uuid.UUID, req *model.UpdateAccountRequest) (*model.Account, error) {
	account, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Mobile != nil {
		account.Mobile = req.Mobile
	}
	if req.Gender != nil {
		account.Gender = req.Gender
	}
	if req.DateOfBirth != nil {
		account.DateOfBirth = req.DateOfBirth
	}
	if req.BloodGroup != nil {
		account.BloodGroup = req.BloodGroup
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

// ListFamily returns the caller's family members.
func (s *Service) ListFamily(ctx context.Context, accountID uuid.UUID) ([]*model.FamilyMember, error) {
	return s.family.ListForAccount(ctx, accountID)
}

// AddFamily attaches a family member to the caller's account.
func (s *Service) AddFamily(ctx context.Context, accountID uuid.UUID, req *model.FamilyMemberRequest) (*model.FamilyMember, error) {
	member := &model.FamilyMember{
		AccountID:   accountID,
		Name:        req.Name,
		Relation:    req.Relation,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
		BloodGroup:  req.BloodGroup,
	}
	if err := s.family.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add family member: %w", err)
	}
	return member, nil
}

// UpdateFamily edits one of the caller's family members.
func (s *Service) UpdateFamily(ctx context.Context, accountID, memberID uuid.UUID, req *model.FamilyMemberRequest) (*model.FamilyMember, error) {
	member := &model.FamilyMember{
		AccountID:   accountID,
		Name:        req.Name,
		Relation:    req.Relation,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
		BloodGroup:  req.BloodGroup,
	}
	member.ID = memberID

	if err := s.family.Update(ctx, member); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("family member")
		}
		return nil, fmt.Errorf("failed to update family member: %w", err)
	}
	return member, nil
}

// RemoveFamily deletes one of the caller's family members.
func (s *Service) RemoveFamily(ctx context.Context, accountID, memberID uuid.UUID) error {
	if err := s.family.Delete(ctx, accountID, memberID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("family member")
		}
		return fmt.Errorf("failed to remove family member: %w", err)
	}
	return nil
}
