package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/repository/memory"
	apperrors "github.com/healthbook/booking-api/pkg/errors"
)

func newTestService(t *testing.T) (*Service, *memory.AccountRepository, *memory.AppointmentRepository) {
	t.Helper()
	accounts := memory.NewAccountRepository()
	appointments := memory.NewAppointmentRepository()
	appointments.Accounts = accounts
	return NewService(appointments, accounts), accounts, appointments
}

func seedVerifiedDoctor(t *testing.T, accounts *memory.AccountRepository) *model.Account {
	t.Helper()
	doctor := &model.Account{
		Email:        "doc@example.com",
		Name:         "Dr. Test",
		PasswordHash: "irrelevant",
		Role:         model.RoleDoctor,
		IsVerified:   true,
	}
	require.NoError(t, accounts.Create(context.Background(), doctor))
	return doctor
}

func bookingRequest(doctorID uuid.UUID) *model.BookAppointmentRequest {
	return &model.BookAppointmentRequest{
		DoctorID: doctorID,
		Date:     time.Now().AddDate(0, 0, 1),
		Time:     "10:30",
		Issue:    "persistent headache",
	}
}

func TestBookAppointment(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	doctor := seedVerifiedDoctor(t, accounts)
	patientID := uuid.New()

	apt, err := svc.Book(context.Background(), patientID, bookingRequest(doctor.ID))
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.Equal(t, patientID, apt.PatientID)
	assert.Equal(t, doctor.ID, apt.DoctorID)
	assert.NotEqual(t, uuid.Nil, apt.ID)
}

func TestBookWithUnknownDoctor(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Book(context.Background(), uuid.New(), bookingRequest(uuid.New()))
	assert.ErrorIs(t, err, apperrors.NotFound(""))
}

func TestBookWithUnverifiedDoctor(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	doctor := &model.Account{
		Email:        "pending@example.com",
		Name:         "Dr. Pending",
		PasswordHash: "irrelevant",
		Role:         model.RoleDoctor,
		IsVerified:   false,
	}
	require.NoError(t, accounts.Create(context.Background(), doctor))

	_, err := svc.Book(context.Background(), uuid.New(), bookingRequest(doctor.ID))
	assert.ErrorIs(t, err, apperrors.NotFound(""))
}

func TestDoubleBookingSameSlotAllowed(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	doctor := seedVerifiedDoctor(t, accounts)

	_, err := svc.Book(context.Background(), uuid.New(), bookingRequest(doctor.ID))
	require.NoError(t, err)
	_, err = svc.Book(context.Background(), uuid.New(), bookingRequest(doctor.ID))
	assert.NoError(t, err)
}

func TestListForPatient(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	doctor := seedVerifiedDoctor(t, accounts)
	patientID := uuid.New()

	_, err := svc.Book(context.Background(), patientID, bookingRequest(doctor.ID))
	require.NoError(t, err)
	_, err = svc.Book(context.Background(), uuid.New(), bookingRequest(doctor.ID))
	require.NoError(t, err)

	mine, err := svc.ListForPatient(context.Background(), patientID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, patientID, mine[0].PatientID)
}

func TestUpdateStatusByOwningDoctor(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	doctor := seedVerifiedDoctor(t, accounts)

	apt, err := svc.Book(context.Background(), uuid.New(), bookingRequest(doctor.ID))
	require.NoError(t, err)

	notes := "bring previous reports"
	updated, err := svc.UpdateStatus(context.Background(), doctor.ID, apt.ID, &model.UpdateAppointmentStatusRequest{
		Status: model.AppointmentStatusConfirmed,
		Notes:  &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, updated.Status)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, notes, *updated.Notes)
}

func TestUpdateStatusByOtherDoctorForbidden(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	doctor := seedVerifiedDoctor(t, accounts)

	apt, err := svc.Book(context.Background(), uuid.New(), bookingRequest(doctor.ID))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), uuid.New(), apt.ID, &model.UpdateAppointmentStatusRequest{
		Status: model.AppointmentStatusConfirmed,
	})
	assert.ErrorIs(t, err, apperrors.Forbidden(""))
}

func TestCancelByOwningPatient(t *testing.T) {
	svc, accounts, appointments := newTestService(t)
	doctor := seedVerifiedDoctor(t, accounts)
	patientID := uuid.New()

	apt, err := svc.Book(context.Background(), patientID, bookingRequest(doctor.ID))
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), patientID, apt.ID))

	stored, err := appointments.Get(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, stored.Status)
}

func TestCancelByOtherPatientForbidden(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	doctor := seedVerifiedDoctor(t, accounts)

	apt, err := svc.Book(context.Background(), uuid.New(), bookingRequest(doctor.ID))
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), uuid.New(), apt.ID)
	assert.ErrorIs(t, err, apperrors.Forbidden(""))
}

func TestCancelUnknownAppointment(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Cancel(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperrors.NotFound(""))
}
