package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/healthbook/booking-api/internal/email"
	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/repository"
	"github.com/healthbook/booking-api/pkg/auth"
	apperrors "github.com/healthbook/booking-api/pkg/errors"
	"github.com/healthbook/booking-api/pkg/logger"
)

const (
	bcryptCost       = 12
	resetTokenExpiry = 1 * time.Hour
)

type Service struct {
	accounts repository.AccountRepository
	tokens   repository.TokenRepository
	jwtSvc   auth.JWTService
	emailSvc email.Service
	logger   *logger.Logger
}

func NewService(
	accounts repository.AccountRepository,
	tokens repository.TokenRepository,
	jwtSvc auth.JWTService,
	emailSvc email.Service,
	log *logger.Logger,
) *Service {
	return &Service{
		accounts: accounts,
		tokens:   tokens,
		jwtSvc:   jwtSvc,
		emailSvc: emailSvc,
		logger:   log,
	}
}

// Login is the admission gate. portalRole, when non-empty, is the role the
// login portal expects and must match the stored role.
//
// A missing account and a wrong password produce the same error so callers
// cannot enumerate registered emails.
func (s *Service) Login(ctx context.Context, email, password, portalRole string) (*model.AuthResponse, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.InvalidCredentials()
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.InvalidCredentials()
	}

	if account.IsBlocked {
		return nil, apperrors.AccountBlocked()
	}

	if portalRole != "" && portalRole != account.Role {
		return nil, apperrors.RoleMismatch()
	}

	if account.Role == model.RoleDoctor && !account.IsVerified {
		return nil, apperrors.PendingVerification()
	}

	now := time.Now()
	if err := s.accounts.TouchLastLogin(ctx, account.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update login timestamp: %w", err)
	}
	account.LastLoginAt = &now

	token, err := s.jwtSvc.GenerateToken(account.ID, account.Role, account.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.AuthResponse{Account: account, Token: token}, nil
}

// Register creates an account. Users are verified immediately, doctors start
// pending an admin decision. Admin accounts are never created here.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	if role == model.RoleAdmin {
		return nil, apperrors.Validation("admin accounts cannot be registered")
	}

	if _, err := s.accounts.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.Conflict("email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &model.Account{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         role,
		IsVerified:   role == model.RoleUser,
		Mobile:       optional(req.Mobile),
		Gender:       optional(req.Gender),
	}

	if role == model.RoleDoctor {
		account.Specialization = optional(req.Specialization)
		account.Experience = optional(req.Experience)
		account.Qualification = optional(req.Qualification)
		account.ClinicName = optional(req.ClinicName)
		account.ClinicAddress = optional(req.ClinicAddress)
		account.City = optional(req.City)
		if req.ConsultationFee > 0 {
			fee := req.ConsultationFee
			account.ConsultationFee = &fee
		}
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	token, err := s.jwtSvc.GenerateToken(account.ID, account.Role, account.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.AuthResponse{Account: account, Token: token}, nil
}

// ValidateToken verifies the signature and then the account itself: a bumped
// token_version, a block or a deletion all invalidate outstanding tokens.
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token")
	}

	account, err := s.accounts.Get(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized("account no longer exists")
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if account.IsBlocked {
		return nil, apperrors.AccountBlocked()
	}
	if account.TokenVersion != claims.TokenVersion {
		return nil, apperrors.Unauthorized("token has been revoked")
	}

	return &model.TokenClaims{
		AccountID:    account.ID,
		Role:         account.Role,
		TokenVersion: account.TokenVersion,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}

// ForgotPassword stores a one-shot reset token and mails it. A missing email
// reports success to the caller.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	account, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	token := uuid.New().String()
	if err := s.tokens.StoreResetToken(ctx, account.ID, token, time.Now().Add(resetTokenExpiry)); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.emailSvc.SendPasswordReset(ctx, account.Email, token); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset token, replaces the hash and bumps the token
// version so every previously issued session dies.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	accountID, err := s.tokens.ConsumeResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.Validation("invalid or expired reset token")
		}
		return fmt.Errorf("failed to validate reset token: %w", err)
	}

	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	account.PasswordHash = string(hash)
	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.accounts.BumpTokenVersion(ctx, account.ID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
