package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// Event types published through the outbox.
const (
	EventDoctorVerificationDecided = "doctor.verification.decided"
	EventAccountBlocked            = "account.blocked"
	EventAccountDeleted            = "account.deleted"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// AccountLifecyclePayload is the audit record for administrative blocks and
// deletions. Email and role are captured because a deleted row is gone by the
// time anyone reads the event.
type AccountLifecyclePayload struct {
	AccountID uuid.UUID `json:"account_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	At        time.Time `json:"at"`
}

// VerificationDecidedPayload is the audit record retained for every admin
// decision, including rejections whose account row is deleted.
type VerificationDecidedPayload struct {
	DoctorID  uuid.UUID            `json:"doctor_id"`
	Email     string               `json:"email"`
	Decision  VerificationDecision `json:"decision"`
	DecidedBy uuid.UUID            `json:"decided_by"`
	DecidedAt time.Time            `json:"decided_at"`
}
