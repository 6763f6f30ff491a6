package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/google/uuid"

	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/repository"
	apperrors "github.com/healthbook/booking-api/pkg/errors"
)

const (
	directoryCacheKey = "doctors:verified"
	directoryCacheTTL = 30 * time.Second
)

// Service serves the public doctor directory and the doctor dashboard.
type Service struct {
	accounts     repository.AccountRepository
	appointments repository.AppointmentRepository
	cache        *gocache.Cache
}

func NewService(accounts repository.AccountRepository, appointments repository.AppointmentRepository) *Service {
	return &Service{
		accounts:     accounts,
		appointments: appointments,
		cache:        gocache.New(directoryCacheTTL, 2*directoryCacheTTL),
	}
}

// ListVerified returns the public directory of verified doctors. The listing
// is cached briefly; a freshly approved doctor appears within the TTL.
func (s *Service) ListVerified(ctx context.Context) ([]*model.Account, error) {
	if cached, ok := s.cache.Get(directoryCacheKey); ok {
		return cached.([]*model.Account), nil
	}

	verified := true
	doctors, err := s.accounts.List(ctx, &model.AccountFilters{
		Role:       model.RoleDoctor,
		IsVerified: &verified,
	})
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(directoryCacheKey, doctors)
	return doctors, nil
}

// Get returns one verified doctor. Pending or nonexistent doctors are both
// not-found to the public.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	account, err := s.accounts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor")
		}
		return nil, fmt.Errorf("failed to load doctor: %w", err)
	}
	if account.Role != model.RoleDoctor || !account.IsVerified {
		return nil, apperrors.NotFound("doctor")
	}
	return account, nil
}

// Search matches verified doctors by name, specialization, clinic or city.
func (s *Service) Search(ctx context.Context, query string) ([]*model.Account, error) {
	verified := true
	return s.accounts.List(ctx, &model.AccountFilters{
		Role:       model.RoleDoctor,
		IsVerified: &verified,
		SearchTerm: query,
	})
}

// BySpecialty lists verified doctors with a matching specialization.
func (s *Service) BySpecialty(ctx context.Context, specialty string) ([]*model.Account, error) {
	return s.Search(ctx, specialty)
}

// Profile returns the doctor's own record.
func (s *Service) Profile(ctx context.Context, doctorID uuid.UUID) (*model.Account, error) {
	account, err := s.accounts.Get(ctx, doctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor")
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return account, nil
}

// UpdateProfile applies a doctor's edits to their own record. Role, email and
// verification state are untouchable here.
func (s *Service) UpdateProfile(ctx context.Context, doctorID uuid.UUID, req *model.UpdateDoctorProfileRequest) (*model.Account, error) {
	account, err := s.Profile(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Mobile != nil {
		account.Mobile = req.Mobile
	}
	if req.Specialization != nil {
		account.Specialization = req.Specialization
	}
	if req.Experience != nil {
		account.Experience = req.Experience
	}
	if req.Qualification != nil {
		account.Qualification = req.Qualification
	}
	applyClinicFields(account, req.ClinicName, req.ClinicAddress, req.City,
		req.ConsultationFee, req.WorkingDays, req.OpeningTime, req.ClosingTime)

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	s.cache.Delete(directoryCacheKey)
	return account, nil
}

// Clinic returns the practice slice of the doctor's record.
func (s *Service) Clinic(ctx context.Context, doctorID uuid.UUID) (*model.ClinicInfo, error) {
	account, err := s.Profile(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return &model.ClinicInfo{
		ClinicName:      account.ClinicName,
		ClinicAddress:   account.ClinicAddress,
		City:            account.City,
		ConsultationFee: account.ConsultationFee,
		WorkingDays:     account.WorkingDays,
		OpeningTime:     account.OpeningTime,
		ClosingTime:     account.ClosingTime,
	}, nil
}

// UpdateClinic applies practice edits only.
func (s *Service) UpdateClinic(ctx context.Context, doctorID uuid.UUID, req *model.UpdateClinicRequest) (*model.ClinicInfo, error) {
	account, err := s.Profile(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	applyClinicFields(account, req.ClinicName, req.ClinicAddress, req.City,
		req.ConsultationFee, req.WorkingDays, req.OpeningTime, req.ClosingTime)

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update clinic info: %w", err)
	}
	s.cache.Delete(directoryCacheKey)
	return s.Clinic(ctx, doctorID)
}

// Patients lists the distinct patients who booked with this doctor.
func (s *Service) Patients(ctx context.Context, doctorID uuid.UUID) ([]*model.Account, error) {
	return s.appointments.ListPatientsForDoctor(ctx, doctorID)
}

// Appointments lists the doctor's appointments, newest first.
func (s *Service) Appointments(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	return s.appointments.List(ctx, &model.AppointmentFilters{DoctorID: doctorID})
}

// Stats backs the doctor dashboard.
func (s *Service) Stats(ctx context.Context, doctorID uuid.UUID) (*model.DoctorStats, error) {
	return s.appointments.StatsForDoctor(ctx, doctorID, time.Now())
}

func applyClinicFields(account *model.Account, name, address, city *string, fee *float64, days, opening, closing *string) {
	if name != nil {
		account.ClinicName = name
	}
	if address != nil {
		account.ClinicAddress = address
	}
	if city != nil {
		account.City = city
	}
	if fee != nil {
		account.ConsultationFee = fee
	}
	if days != nil {
		account.WorkingDays = days
	}
	if opening != nil {
		account.OpeningTime = opening
	}
	if closing != nil {
		account.ClosingTime = closing
	}
}
