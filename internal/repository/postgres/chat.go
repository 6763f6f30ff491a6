package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/repository"
)

type chatRepository struct {
	BaseRepository
}

func NewChatRepository(base BaseRepository) repository.ChatRepository {
	return &chatRepository{base}
}

func (r *chatRepository) Create(ctx context.Context, msg *model.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (
			id, sender_id, receiver_id, sender_role, body, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = msg.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		msg.ID,
		msg.SenderID,
		msg.ReceiverID,
		msg.SenderRole,
		msg.Body,
		msg.CreatedAt,
		msg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chat message: %w", err)
	}
	return nil
}

func (r *chatRepository) Conversation(ctx context.Context, a, b uuid.UUID) ([]*model.ChatMessage, error) {
	query := `
		SELECT * FROM chat_messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at
	`
	var messages []*model.ChatMessage
	if err := r.db.SelectContext(ctx, &messages, query, a, b); err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return messages, nil
}
