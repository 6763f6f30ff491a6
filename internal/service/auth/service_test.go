package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/repository/memory"
	"github.com/healthbook/booking-api/pkg/auth"
	apperrors "github.com/healthbook/booking-api/pkg/errors"
	"github.com/healthbook/booking-api/pkg/logger"
)

type capturingEmail struct {
	mu     sync.Mutex
	to     string
	tokens []string
}

func (e *capturingEmail) SendPasswordReset(ctx context.Context, to, token string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.to = to
	e.tokens = append(e.tokens, token)
	return nil
}

func newTestService(t *testing.T) (*Service, *memory.AccountRepository, *capturingEmail) {
	t.Helper()
	accounts := memory.NewAccountRepository()
	tokens := memory.NewTokenRepository()
	emails := &capturingEmail{}
	jwtSvc := auth.NewJWTService("test-secret", auth.TokenExpiry)
	svc := NewService(accounts, tokens, jwtSvc, emails, logger.NewLogger(nil))
	return svc, accounts, emails
}

func seedAccount(t *testing.T, accounts *memory.AccountRepository, email, password, role string, verified bool) *model.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	account := &model.Account{
		Email:        email,
		Name:         "Test Account",
		PasswordHash: string(hash),
		Role:         role,
		IsVerified:   verified,
	}
	require.NoError(t, accounts.Create(context.Background(), account))
	return account
}

func TestLoginSuccess(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	seedAccount(t, accounts, "user@example.com", "secret123", model.RoleUser, true)

	resp, err := svc.Login(context.Background(), "user@example.com", "secret123", model.RoleUser)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "user@example.com", resp.Account.Email)
	assert.NotNil(t, resp.Account.LastLoginAt)
}

func TestLoginUnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	seedAccount(t, accounts, "user@example.com", "secret123", model.RoleUser, true)

	_, errUnknown := svc.Login(context.Background(), "nobody@example.com", "secret123", "")
	_, errWrongPw := svc.Login(context.Background(), "user@example.com", "wrong", "")

	require.Error(t, errUnknown)
	require.Error(t, errWrongPw)
	assert.ErrorIs(t, errUnknown, apperrors.InvalidCredentials())
	assert.ErrorIs(t, errWrongPw, apperrors.InvalidCredentials())
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestLoginBlockedAccount(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	account := seedAccount(t, accounts, "blocked@example.com", "secret123", model.RoleUser, true)
	require.NoError(t, accounts.SetBlocked(context.Background(), account.ID, true))

	_, err := svc.Login(context.Background(), "blocked@example.com", "secret123", "")
	assert.ErrorIs(t, err, apperrors.AccountBlocked())
}

func TestLoginBlockedCheckedBeforeRole(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	account := seedAccount(t, accounts, "blocked@example.com", "secret123", model.RoleUser, true)
	require.NoError(t, accounts.SetBlocked(context.Background(), account.ID, true))

	// A blocked account logging into the wrong portal reports the block.
	_, err := svc.Login(context.Background(), "blocked@example.com", "secret123", model.RoleDoctor)
	assert.ErrorIs(t, err, apperrors.AccountBlocked())
}

func TestLoginRoleMismatch(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	seedAccount(t, accounts, "user@example.com", "secret123", model.RoleUser, true)

	_, err := svc.Login(context.Background(), "user@example.com", "secret123", model.RoleDoctor)
	assert.ErrorIs(t, err, apperrors.RoleMismatch())
}

func TestLoginWithoutPortalRoleSkipsRoleCheck(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	seedAccount(t, accounts, "doc@example.com", "secret123", model.RoleDoctor, true)

	resp, err := svc.Login(context.Background(), "doc@example.com", "secret123", "")
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, resp.Account.Role)
}

func TestLoginPendingDoctor(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	seedAccount(t, accounts, "doc@example.com", "secret123", model.RoleDoctor, false)

	_, err := svc.Login(context.Background(), "doc@example.com", "secret123", model.RoleDoctor)
	assert.ErrorIs(t, err, apperrors.PendingVerification())
}

func TestLoginPendingDoctorWrongPasswordStaysCredentialError(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	seedAccount(t, accounts, "doc@example.com", "secret123", model.RoleDoctor, false)

	// The credential check runs before the verification gate, so a bad
	// password never leaks the pending state.
	_, err := svc.Login(context.Background(), "doc@example.com", "wrong", model.RoleDoctor)
	assert.ErrorIs(t, err, apperrors.InvalidCredentials())
}

func TestRegisterUserIsImmediatelyVerified(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Pat",
		Email:    "pat@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, resp.Account.Role)
	assert.True(t, resp.Account.IsVerified)
	assert.NotEmpty(t, resp.Token)
	assert.NotEqual(t, "secret123", resp.Account.PasswordHash)
}

func TestRegisterDoctorStartsPending(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:           "Dr. Roy",
		Email:          "roy@example.com",
		Password:       "secret123",
		Role:           model.RoleDoctor,
		Specialization: "Cardiology",
		City:           "Pune",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, resp.Account.Role)
	assert.False(t, resp.Account.IsVerified)
	require.NotNil(t, resp.Account.Specialization)
	assert.Equal(t, "Cardiology", *resp.Account.Specialization)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Mallory",
		Email:    "mallory@example.com",
		Password: "secret123",
		Role:     model.RoleAdmin,
	})
	assert.ErrorIs(t, err, apperrors.Validation(""))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	seedAccount(t, accounts, "taken@example.com", "secret123", model.RoleUser, true)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Other",
		Email:    "taken@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, apperrors.Conflict(""))
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, accounts, _ := newTestService(t)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Pat",
		Email:    "pat@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	stored, err := accounts.GetByEmail(context.Background(), "pat@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))
}

func TestValidateTokenRoundTrip(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	seedAccount(t, accounts, "user@example.com", "secret123", model.RoleUser, true)

	resp, err := svc.Login(context.Background(), "user@example.com", "secret123", "")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.Account.ID, claims.AccountID)
	assert.Equal(t, model.RoleUser, claims.Role)
}

func TestValidateTokenRejectedAfterBlock(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	seedAccount(t, accounts, "user@example.com", "secret123", model.RoleUser, true)

	resp, err := svc.Login(context.Background(), "user@example.com", "secret123", "")
	require.NoError(t, err)

	require.NoError(t, accounts.SetBlocked(context.Background(), resp.Account.ID, true))

	_, err = svc.ValidateToken(context.Background(), resp.Token)
	assert.ErrorIs(t, err, apperrors.AccountBlocked())
}

func TestValidateTokenRejectedAfterUnblock(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	seedAccount(t, accounts, "user@example.com", "secret123", model.RoleUser, true)

	resp, err := svc.Login(context.Background(), "user@example.com", "secret123", "")
	require.NoError(t, err)

	// Block bumps the token version, so tokens issued before the block stay
	// dead after an unblock.
	require.NoError(t, accounts.SetBlocked(context.Background(), resp.Account.ID, true))
	require.NoError(t, accounts.SetBlocked(context.Background(), resp.Account.ID, false))

	_, err = svc.ValidateToken(context.Background(), resp.Token)
	assert.ErrorIs(t, err, apperrors.Unauthorized(""))
}

func TestValidateTokenRejectedAfterAccountDeleted(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	seedAccount(t, accounts, "user@example.com", "secret123", model.RoleUser, true)

	resp, err := svc.Login(context.Background(), "user@example.com", "secret123", "")
	require.NoError(t, err)

	require.NoError(t, accounts.Delete(context.Background(), resp.Account.ID))

	_, err = svc.ValidateToken(context.Background(), resp.Token)
	assert.ErrorIs(t, err, apperrors.Unauthorized(""))
}

func TestValidateTokenGarbage(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ValidateToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, apperrors.Unauthorized(""))
}

func TestForgotPasswordUnknownEmailSilent(t *testing.T) {
	svc, _, emails := newTestService(t)

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Empty(t, emails.tokens)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, accounts, emails := newTestService(t)
	seedAccount(t, accounts, "user@example.com", "oldsecret", model.RoleUser, true)

	loginResp, err := svc.Login(context.Background(), "user@example.com", "oldsecret", "")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(context.Background(), "user@example.com"))
	require.Len(t, emails.tokens, 1)
	assert.Equal(t, "user@example.com", emails.to)

	require.NoError(t, svc.ResetPassword(context.Background(), emails.tokens[0], "newsecret"))

	// Old password dead, new one works.
	_, err = svc.Login(context.Background(), "user@example.com", "oldsecret", "")
	assert.ErrorIs(t, err, apperrors.InvalidCredentials())
	_, err = svc.Login(context.Background(), "user@example.com", "newsecret", "")
	assert.NoError(t, err)

	// Sessions issued before the reset are revoked.
	_, err = svc.ValidateToken(context.Background(), loginResp.Token)
	assert.ErrorIs(t, err, apperrors.Unauthorized(""))

	// The token is one-shot.
	err = svc.ResetPassword(context.Background(), emails.tokens[0], "thirdsecret")
	assert.ErrorIs(t, err, apperrors.Validation(""))
}
