package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/healthbook/booking-api/internal/model"
)

// ErrNotFound is returned when a lookup matches no rows. Services translate
// it into their own error taxonomy.
var ErrNotFound = errors.New("record not found")

// AccountRepository persists principals of every role.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	Get(ctx context.Context, id uuid.UUID) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	Update(ctx context.Context, account *model.Account) error
	List(ctx context.Context, filters *model.AccountFilters) ([]*model.Account, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error
	BumpTokenVersion(ctx context.Context, id uuid.UUID) error
	// SetBlockedWithEvent blocks the account and writes the outbox event in
	// one transaction, bumping token_version like SetBlocked does.
	SetBlockedWithEvent(ctx context.Context, id uuid.UUID, event *model.OutboxEvent) error
	// SetVerifiedWithEvent flips the verification flag and writes the outbox
	// event in one transaction.
	SetVerifiedWithEvent(ctx context.Context, id uuid.UUID, verified bool, event *model.OutboxEvent) error
	// DeleteWithEvent removes the account and writes the outbox event in one
	// transaction, so rejection decisions survive the deleted row.
	DeleteWithEvent(ctx context.Context, id uuid.UUID, event *model.OutboxEvent) error
}

// AppointmentRepository persists booking records.
type AppointmentRepository interface {
	Create(ctx context.Context, apt *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Update(ctx context.Context, apt *model.Appointment) error
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	ListPatientsForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Account, error)
	StatsForDoctor(ctx context.Context, doctorID uuid.UUID, now time.Time) (*model.DoctorStats, error)
}

// ChatRepository persists chat messages.
type ChatRepository interface {
	Create(ctx context.Context, msg *model.ChatMessage) error
	Conversation(ctx context.Context, a, b uuid.UUID) ([]*model.ChatMessage, error)
}

// FamilyRepository persists family members attached to an account.
type FamilyRepository interface {
	Create(ctx context.Context, member *model.FamilyMember) error
	ListForAccount(ctx context.Context, accountID uuid.UUID) ([]*model.FamilyMember, error)
	Update(ctx context.Context, member *model.FamilyMember) error
	Delete(ctx context.Context, accountID, memberID uuid.UUID) error
}

// TokenRepository stores one-shot password reset tokens.
type TokenRepository interface {
	StoreResetToken(ctx context.Context, accountID uuid.UUID, token string, expiry time.Time) error
	ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error)
}

// OutboxRepository stores events pending publication.
type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage *string) error
	IncrementRetry(ctx context.Context, id uuid.UUID) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
