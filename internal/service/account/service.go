package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/repository"
	apperrors "github.com/healthbook/booking-api/pkg/errors"
	"github.com/healthbook/booking-api/pkg/logger"
)

// Service implements the admin side of the verification workflow plus
// account administration.
type Service struct {
	accounts     repository.AccountRepository
	appointments repository.AppointmentRepository
	logger       *logger.Logger
}

func NewService(
	accounts repository.AccountRepository,
	appointments repository.AppointmentRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		accounts:     accounts,
		appointments: appointments,
		logger:       log,
	}
}

// ListPendingDoctors returns doctor accounts awaiting a decision.
func (s *Service) ListPendingDoctors(ctx context.Context) ([]*model.Account, error) {
	pending := false
	return s.accounts.List(ctx, &model.AccountFilters{
		Role:       model.RoleDoctor,
		IsVerified: &pending,
	})
}

// DecideDoctor applies an admin decision to one doctor account.
//
// Approve is idempotent: approving an already verified doctor succeeds and
// changes nothing. Reject hard-deletes the record, so a second reject fails
// with not-found. Concurrent decisions on the same account race with
// last-write-wins semantics.
func (s *Service) DecideDoctor(ctx context.Context, doctorID, adminID uuid.UUID, decision model.VerificationDecision) (*model.Account, error) {
	doctor, err := s.accounts.Get(ctx, doctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor")
		}
		return nil, fmt.Errorf("failed to load doctor: %w", err)
	}
	if doctor.Role != model.RoleDoctor {
		return nil, apperrors.NotFound("doctor")
	}

	event, err := decisionEvent(doctor, adminID, decision)
	if err != nil {
		return nil, err
	}

	switch decision {
	case model.DecisionApproved:
		if err := s.accounts.SetVerifiedWithEvent(ctx, doctor.ID, true, event); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NotFound("doctor")
			}
			return nil, fmt.Errorf("failed to approve doctor: %w", err)
		}
		doctor.IsVerified = true
		return doctor, nil

	case model.DecisionRejected:
		if err := s.accounts.DeleteWithEvent(ctx, doctor.ID, event); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NotFound("doctor")
			}
			return nil, fmt.Errorf("failed to reject doctor: %w", err)
		}
		return nil, nil

	default:
		return nil, apperrors.Validation("invalid decision status")
	}
}

// decisionEvent builds the audit event retained for every decision. The
// payload carries the doctor's email because the rejected row is gone by the
// time anyone reads the event.
func decisionEvent(doctor *model.Account, adminID uuid.UUID, decision model.VerificationDecision) (*model.OutboxEvent, error) {
	payload, err := json.Marshal(model.VerificationDecidedPayload{
		DoctorID:  doctor.ID,
		Email:     doctor.Email,
		Decision:  decision,
		DecidedBy: adminID,
		DecidedAt: time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal decision payload: %w", err)
	}
	return &model.OutboxEvent{
		EventType: model.EventDoctorVerificationDecided,
		Payload:   payload,
	}, nil
}

// ListDoctors returns every doctor account, verified or pending.
func (s *Service) ListDoctors(ctx context.Context) ([]*model.Account, error) {
	return s.accounts.List(ctx, &model.AccountFilters{Role: model.RoleDoctor})
}

// ListUsers returns every patient account.
func (s *Service) ListUsers(ctx context.Context) ([]*model.Account, error) {
	return s.accounts.List(ctx, &model.AccountFilters{Role: model.RoleUser})
}

// ListAllAppointments returns every appointment in the system.
func (s *Service) ListAllAppointments(ctx context.Context) ([]*model.Appointment, error) {
	return s.appointments.List(ctx, &model.AppointmentFilters{})
}

// SetBlocked blocks or unblocks an account. Blocking revokes outstanding
// sessions via the token version bump in the repository and writes an
// account.blocked outbox event in the same transaction. Unblocking emits
// nothing.
func (s *Service) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	if !blocked {
		if err := s.accounts.SetBlocked(ctx, id, false); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NotFound("account")
			}
			return fmt.Errorf("failed to update blocked status: %w", err)
		}
		return nil
	}

	account, err := s.accounts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("account")
		}
		return fmt.Errorf("failed to load account: %w", err)
	}

	event, err := lifecycleEvent(model.EventAccountBlocked, account)
	if err != nil {
		return err
	}
	if err := s.accounts.SetBlockedWithEvent(ctx, id, event); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("account")
		}
		return fmt.Errorf("failed to block account: %w", err)
	}
	return nil
}

// DeleteAccount removes an account and writes an account.deleted outbox
// event in the same transaction. Appointments and messages referencing the
// account are left in place, matching the original system's behavior.
func (s *Service) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	account, err := s.accounts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("account")
		}
		return fmt.Errorf("failed to load account: %w", err)
	}

	event, err := lifecycleEvent(model.EventAccountDeleted, account)
	if err != nil {
		return err
	}
	if err := s.accounts.DeleteWithEvent(ctx, id, event); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("account")
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

func lifecycleEvent(eventType string, account *model.Account) (*model.OutboxEvent, error) {
	payload, err := json.Marshal(model.AccountLifecyclePayload{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		At:        time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lifecycle payload: %w", err)
	}
	return &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}, nil
}
