package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether s is a known appointment status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed,
		AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// Appointment is a plain booking record. There is deliberately no slot
// locking or overlap detection: two patients can book the same doctor at the
// same time and both inserts succeed.
type Appointment struct {
	Base
	PatientID     uuid.UUID         `json:"patient_id" db:"patient_id"`
	DoctorID      uuid.UUID         `json:"doctor_id" db:"doctor_id"`
	ScheduledDate time.Time         `json:"scheduled_date" db:"scheduled_date"`
	ScheduledTime string            `json:"scheduled_time" db:"scheduled_time"`
	Issue         string            `json:"issue" db:"issue"`
	Status        AppointmentStatus `json:"status" db:"status"`
	Notes         *string           `json:"notes,omitempty" db:"notes"`

	// Joined display fields, populated on listings.
	PatientName *string `json:"patient_name,omitempty" db:"patient_name"`
	DoctorName  *string `json:"doctor_name,omitempty" db:"doctor_name"`
}

type BookAppointmentRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" binding:"required"`
	Date     time.Time `json:"date" binding:"required"`
	Time     string    `json:"time" binding:"required,timeslot"`
	Issue    string    `json:"issue" binding:"required,max=1000"`
}

type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=pending confirmed completed cancelled"`
	Notes  *string           `json:"notes" binding:"omitempty,max=1000"`
}

type AppointmentFilters struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Status    AppointmentStatus
	From      time.Time
	To        time.Time
}
