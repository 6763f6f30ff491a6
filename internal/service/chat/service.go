package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/repository"
	apperrors "github.com/healthbook/booking-api/pkg/errors"
)

type Service struct {
	repo     repository.ChatRepository
	accounts repository.AccountRepository
}

func NewService(repo repository.ChatRepository, accounts repository.AccountRepository) *Service {
	return &Service{repo: repo, accounts: accounts}
}

// Send stores a message from sender to receiver. The receiver must exist.
func (s *Service) Send(ctx context.Context, senderID uuid.UUID, senderRole string, req *model.SendMessageRequest) (*model.ChatMessage, error) {
	if _, err := s.accounts.Get(ctx, req.ReceiverID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("receiver")
		}
		return nil, fmt.Errorf("failed to load receiver: %w", err)
	}

	msg := &model.ChatMessage{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		SenderRole: senderRole,
		Body:       req.Body,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return msg, nil
}

// Conversation returns all messages between the caller and the other
// account, oldest first.
func (s *Service) Conversation(ctx context.Context, callerID, otherID uuid.UUID) ([]*model.ChatMessage, error) {
	return s.repo.Conversation(ctx, callerID, otherID)
}
