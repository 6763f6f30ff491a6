package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/repository"
	apperrors "github.com/healthbook/booking-api/pkg/errors"
)

// Service handles booking and appointment listings. Booking is a plain
// insert: there is no slot locking and no double-booking prevention.
type Service struct {
	repo     repository.AppointmentRepository
	accounts repository.AccountRepository
}

func NewService(repo repository.AppointmentRepository, accounts repository.AccountRepository) *Service {
	return &Service{repo: repo, accounts: accounts}
}

// Book creates a pending appointment with the given doctor. The doctor must
// exist and be verified.
func (s *Service) Book(ctx context.Context, patientID uuid.UUID, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	doctor, err := s.accounts.Get(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor")
		}
		return nil, fmt.Errorf("failed to load doctor: %w", err)
	}
	if doctor.Role != model.RoleDoctor || !doctor.IsVerified {
		return nil, apperrors.NotFound("doctor")
	}

	apt := &model.Appointment{
		PatientID:     patientID,
		DoctorID:      req.DoctorID,
		ScheduledDate: req.Date,
		ScheduledTime: req.Time,
		Issue:         req.Issue,
		Status:        model.AppointmentStatusPending,
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	return apt, nil
}

// ListForPatient returns the patient's own appointments.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	return s.repo.List(ctx, &model.AppointmentFilters{PatientID: patientID})
}

// UpdateStatus lets the owning doctor move an appointment through its status
// field. Any transition between known statuses is allowed.
func (s *Service) UpdateStatus(ctx context.Context, doctorID, aptID uuid.UUID, req *model.UpdateAppointmentStatusRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, aptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment")
		}
		return nil, fmt.Errorf("failed to load appointment: %w", err)
	}
	if apt.DoctorID != doctorID {
		return nil, apperrors.Forbidden("appointment belongs to another doctor")
	}
	if !req.Status.Valid() {
		return nil, apperrors.Validation("invalid appointment status")
	}

	apt.Status = req.Status
	if req.Notes != nil {
		apt.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return apt, nil
}

// Cancel lets the owning patient cancel their appointment.
func (s *Service) Cancel(ctx context.Context, patientID, aptID uuid.UUID) error {
	apt, err := s.repo.Get(ctx, aptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("appointment")
		}
		return fmt.Errorf("failed to load appointment: %w", err)
	}
	if apt.PatientID != patientID {
		return apperrors.Forbidden("appointment belongs to another patient")
	}

	apt.Status = model.AppointmentStatusCancelled
	if err := s.repo.Update(ctx, apt); err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}
	return nil
}
