package doctor

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
	appointments := memory.NewAppointmentRepository()
	appointments.Accounts = accounts
	return NewService(accounts, appointments), accounts
}

func seedDoctor(t *testing.T, accounts *memory.AccountRepository, name, specialization, city string, verified bool) *model.Account {
	t.Helper()
	doctor := &model.Account{
		Email:          name + "@example.com",
		Name:           name,
		PasswordHash:   "irrelevant",
		Role:           model.RoleDoctor,
		IsVerified:     verified,
		Specialization: &specialization,
		City:           &city,
	}
	require.NoError(t, accounts.Create(context.Background(), doctor))
	return doctor
}

func TestDirectoryListsOnlyVerified(t *testing.T) {
	svc, accounts := newTestService(t)
	verified := seedDoctor(t, accounts, "verified", "Cardiology", "Pune", true)
	seedDoctor(t, accounts, "pending", "Dermatology", "Pune", false)

	list, err := svc.ListVerified(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, verified.ID, list[0].ID)
}

func TestDirectoryIsCached(t *testing.T) {
	svc, accounts := newTestService(t)
	seedDoctor(t, accounts, "first", "Cardiology", "Pune", true)

	list, err := svc.ListVerified(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	// A doctor added after the first listing stays invisible until the cache
	// expires or is invalidated.
	seedDoctor(t, accounts, "second", "Dermatology", "Pune", true)

	cached, err := svc.ListVerified(context.Background())
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}

func TestProfileUpdateInvalidatesDirectory(t *testing.T) {
	svc, accounts := newTestService(t)
	doctor := seedDoctor(t, accounts, "doc", "Cardiology", "Pune", true)

	_, err := svc.ListVerified(context.Background())
	require.NoError(t, err)

	newName := "Dr. Renamed"
	_, err = svc.UpdateProfile(context.Background(), doctor.ID, &model.UpdateDoctorProfileRequest{Name: &newName})
	require.NoError(t, err)

	list, err := svc.ListVerified(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, newName, list[0].Name)
}

func TestGetPendingDoctorIsNotFound(t *testing.T) {
	svc, accounts := newTestService(t)
	pending := seedDoctor(t, accounts, "pending", "Cardiology", "Pune", false)

	_, err := svc.Get(context.Background(), pending.ID)
	assert.ErrorIs(t, err, apperrors.NotFound(""))
}

func TestGetVerifiedDoctor(t *testing.T) {
	svc, accounts := newTestService(t)
	doctor := seedDoctor(t, accounts, "doc", "Cardiology", "Pune", true)

	got, err := svc.Get(context.Background(), doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, doctor.ID, got.ID)
}

func TestGetUnknownDoctor(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.NotFound(""))
}

func TestSearchMatchesSpecializationAndCity(t *testing.T) {
	svc, accounts := newTestService(t)
	cardio := seedDoctor(t, accounts, "cardio", "Cardiology", "Pune", true)
	seedDoctor(t, accounts, "derma", "Dermatology", "Mumbai", true)

	bySpec, err := svc.Search(context.Background(), "cardio")
	require.NoError(t, err)
	require.Len(t, bySpec, 1)
	assert.Equal(t, cardio.ID, bySpec[0].ID)

	byCity, err := svc.Search(context.Background(), "mumbai")
	require.NoError(t, err)
	assert.Len(t, byCity, 1)
}

func TestSearchExcludesPendingDoctors(t *testing.T) {
	svc, accounts := newTestService(t)
	seedDoctor(t, accounts, "pending", "Cardiology", "Pune", false)

	list, err := svc.Search(context.Background(), "cardiology")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateClinic(t *testing.T) {
	svc, accounts := newTestService(t)
	doctor := seedDoctor(t, accounts, "doc", "Cardiology", "Pune", true)

	name := "Heart Care Clinic"
	fee := 750.0
	clinic, err := svc.UpdateClinic(context.Background(), doctor.ID, &model.UpdateClinicRequest{
		ClinicName:      &name,
		ConsultationFee: &fee,
	})
	require.NoError(t, err)
	require.NotNil(t, clinic.ClinicName)
	assert.Equal(t, name, *clinic.ClinicName)
	require.NotNil(t, clinic.ConsultationFee)
	assert.Equal(t, fee, *clinic.ConsultationFee)

	// City survives a partial update.
	require.NotNil(t, clinic.City)
	assert.Equal(t, "Pune", *clinic.City)
}
