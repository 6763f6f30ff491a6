package profile

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/repository/memory"
	apperrors "github.com/healthbook/booking-api/pkg/errors"
)

func newTestService(t *testing.T) (*Service, *memory.AccountRepository) {
	t.Helper()
	accounts := memory.NewAccountRepository()
	return NewService(accounts, memory.NewFamilyRepository()), accounts
}

func seedAccount(t *testing.T, accounts *memory.AccountRepository) *model.Account {
	t.Helper()
	account := &model.Account{
		Email:        "user@example.com",
		Name:         "Pat",
		PasswordHash: "irrelevant",
		Role:         model.RoleUser,
		IsVerified:   true,
	}
	require.NoError(t, accounts.Create(context.Background(), account))
	return account
}

func TestUpdateProfileFields(t *testing.T) {
	svc, accounts := newTestService(t)
	account := seedAccount(t, accounts)

	name := "Patricia"
	mobile := "9876543210"
	updated, err := svc.Update(context.Background(), account.ID, &model.UpdateAccountRequest{
		Name:   &name,
		Mobile: &mobile,
	})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	require.NotNil(t, updated.Mobile)
	assert.Equal(t, mobile, *updated.Mobile)

	// Identity fields survive the update untouched.
	assert.Equal(t, account.Email, updated.Email)
	assert.Equal(t, model.RoleUser, updated.Role)
	assert.True(t, updated.IsVerified)
}

func TestGetUnknownAccount(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.NotFound(""))
}

func TestFamilyMemberLifecycle(t *testing.T) {
	svc, accounts := newTestService(t)
	account := seedAccount(t, accounts)

	member, err := svc.AddFamily(context.Background(), account.ID, &model.FamilyMemberRequest{
		Name:     "Junior",
		Relation: "son",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, member.ID)

	list, err := svc.ListFamily(context.Background(), account.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	updated, err := svc.UpdateFamily(context.Background(), account.ID, member.ID, &model.FamilyMemberRequest{
		Name:     "Junior Jr.",
		Relation: "son",
	})
	require.NoError(t, err)
	assert.Equal(t, "Junior Jr.", updated.Name)

	require.NoError(t, svc.RemoveFamily(context.Background(), account.ID, member.ID))

	list, err = svc.ListFamily(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFamilyMemberScopedToOwner(t *testing.T) {
	svc, accounts := newTestService(t)
	account := seedAccount(t, accounts)

	member, err := svc.AddFamily(context.Background(), account.ID, &model.FamilyMemberRequest{
		Name:     "Junior",
		Relation: "son",
	})
	require.NoError(t, err)

	// Another account cannot edit or remove it.
	stranger := uuid.New()
	_, err = svc.UpdateFamily(context.Background(), stranger, member.ID, &model.FamilyMemberRequest{
		Name:     "Hijacked",
		Relation: "son",
	})
	assert.ErrorIs(t, err, apperrors.NotFound(""))
	assert.ErrorIs(t, svc.RemoveFamily(context.Background(), stranger, member.ID), apperrors.NotFound(""))
}
