package model

import "github.com/google/uuid"

// ChatMessage is a single message between two accounts. Messages are plain
// rows, there is no read state or delivery tracking.
type ChatMessage struct {
	Base
	SenderID   uuid.UUID `json:"sender_id" db:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id" db:"receiver_id"`
	SenderRole string    `json:"sender_role" db:"sender_role"`
	Body       string    `json:"body" db:"body"`
}

type SendMessageRequest struct {
	ReceiverID uuid.UUID `json:"receiver_id" binding:"required"`
	Body       string    `json:"body" binding:"required,max=2000"`
}
