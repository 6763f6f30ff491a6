package chat

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
	return NewService(memory.NewChatRepository(), accounts), accounts
}

func seedAccount(t *testing.T, accounts *memory.AccountRepository, email, role string) *model.Account {
	t.Helper()
	account := &model.Account{
		Email:        email,
		Name:         "Chat Party",
		PasswordHash: "irrelevant",
		Role:         role,
		IsVerified:   true,
	}
	require.NoError(t, accounts.Create(context.Background(), account))
	return account
}

func TestSendAndConversation(t *testing.T) {
	svc, accounts := newTestService(t)
	patient := seedAccount(t, accounts, "patient@example.com", model.RoleUser)
	doctor := seedAccount(t, accounts, "doctor@example.com", model.RoleDoctor)

	_, err := svc.Send(context.Background(), patient.ID, patient.Role, &model.SendMessageRequest{
		ReceiverID: doctor.ID,
		Body:       "when should I take the medication?",
	})
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), doctor.ID, doctor.Role, &model.SendMessageRequest{
		ReceiverID: patient.ID,
		Body:       "after meals, twice a day",
	})
	require.NoError(t, err)

	// Both parties see the same two-way conversation.
	fromPatient, err := svc.Conversation(context.Background(), patient.ID, doctor.ID)
	require.NoError(t, err)
	assert.Len(t, fromPatient, 2)

	fromDoctor, err := svc.Conversation(context.Background(), doctor.ID, patient.ID)
	require.NoError(t, err)
	assert.Len(t, fromDoctor, 2)
}

func TestSendToUnknownReceiver(t *testing.T) {
	svc, accounts := newTestService(t)
	patient := seedAccount(t, accounts, "patient@example.com", model.RoleUser)

	_, err := svc.Send(context.Background(), patient.ID, patient.Role, &model.SendMessageRequest{
		ReceiverID: uuid.New(),
		Body:       "hello?",
	})
	assert.ErrorIs(t, err, apperrors.NotFound(""))
}

func TestConversationExcludesThirdParties(t *testing.T) {
	svc, accounts := newTestService(t)
	patient := seedAccount(t, accounts, "patient@example.com", model.RoleUser)
	doctor := seedAccount(t, accounts, "doctor@example.com", model.RoleDoctor)
	other := seedAccount(t, accounts, "other@example.com", model.RoleUser)

	_, err := svc.Send(context.Background(), patient.ID, patient.Role, &model.SendMessageRequest{
		ReceiverID: doctor.ID,
		Body:       "private question",
	})
	require.NoError(t, err)

	msgs, err := svc.Conversation(context.Background(), other.ID, doctor.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
