package model

import (
	"time"

	"github.com/google/uuid"
)

// Account roles
const (
	RoleUser   = "user"
	RoleDoctor = "doctor"
	RoleAdmin  = "admin"
)

// Account represents any principal in the system: patients, doctors and
// admins share one table, the role column decides which columns are relevant.
type Account struct {
	Base
	Email        string     `json:"email" db:"email"`
	Name         string     `json:"name" db:"name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         string     `json:"role" db:"role"`
	IsVerified   bool       `json:"is_verified" db:"is_verified"`
	IsBlocked    bool       `json:"is_blocked" db:"is_blocked"`
	TokenVersion int        `json:"-" db:"token_version"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`

	Mobile      *string    `json:"mobile,omitempty" db:"mobile"`
	Gender      *string    `json:"gender,omitempty" db:"gender"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	BloodGroup  *string    `json:"blood_group,omitempty" db:"blood_group"`

	// Professional fields, populated for doctor accounts only.
	Specialization  *string  `json:"specialization,omitempty" db:"specialization"`
	Experience      *string  `json:"experience,omitempty" db:"experience"`
	Qualification   *string  `json:"qualification,omitempty" db:"qualification"`
	ClinicName      *string  `json:"clinic_name,omitempty" db:"clinic_name"`
	ClinicAddress   *string  `json:"clinic_address,omitempty" db:"clinic_address"`
	City            *string  `json:"city,omitempty" db:"city"`
	ConsultationFee *float64 `json:"consultation_fee,omitempty" db:"consultation_fee"`
	WorkingDays     *string  `json:"working_days,omitempty" db:"working_days"`
	OpeningTime     *string  `json:"opening_time,omitempty" db:"opening_time"`
	ClosingTime     *string  `json:"closing_time,omitempty" db:"closing_time"`
	Rating          float64  `json:"rating" db:"rating"`
	ReviewCount     int      `json:"review_count" db:"review_count"`
}

// IsDoctor reports whether the account is a doctor.
func (a *Account) IsDoctor() bool { return a.Role == RoleDoctor }

// UpdateAccountRequest represents a self-service profile update. Role, email
// and verification state are not reassignable through this request.
type UpdateAccountRequest struct {
	Name        *string    `json:"name"`
	Mobile      *string    `json:"mobile"`
	Gender      *string    `json:"gender" binding:"omitempty,oneof=Male Female Other"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	BloodGroup  *string    `json:"blood_group" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
}

// UpdateDoctorProfileRequest covers the professional and practice fields a
// doctor may edit on their own record.
type UpdateDoctorProfileRequest struct {
	Name            *string  `json:"name"`
	Mobile          *string  `json:"mobile"`
	Specialization  *string  `json:"specialization"`
	Experience      *string  `json:"experience"`
	Qualification   *string  `json:"qualification"`
	ClinicName      *string  `json:"clinic_name"`
	ClinicAddress   *string  `json:"clinic_address"`
	City            *string  `json:"city"`
	ConsultationFee *float64 `json:"consultation_fee" binding:"omitempty,gte=0"`
	WorkingDays     *string  `json:"working_days"`
	OpeningTime     *string  `json:"opening_time" binding:"omitempty,timeslot"`
	ClosingTime     *string  `json:"closing_time" binding:"omitempty,timeslot"`
}

// UpdateClinicRequest updates practice information only.
type UpdateClinicRequest struct {
	ClinicName      *string  `json:"clinic_name"`
	ClinicAddress   *string  `json:"clinic_address"`
	City            *string  `json:"city"`
	ConsultationFee *float64 `json:"consultation_fee" binding:"omitempty,gte=0"`
	WorkingDays     *string  `json:"working_days"`
	OpeningTime     *string  `json:"opening_time" binding:"omitempty,timeslot"`
	ClosingTime     *string  `json:"closing_time" binding:"omitempty,timeslot"`
}

// ClinicInfo is the practice slice of a doctor account.
type ClinicInfo struct {
	ClinicName      *string  `json:"clinic_name" db:"clinic_name"`
	ClinicAddress   *string  `json:"clinic_address" db:"clinic_address"`
	City            *string  `json:"city" db:"city"`
	ConsultationFee *float64 `json:"consultation_fee" db:"consultation_fee"`
	WorkingDays     *string  `json:"working_days" db:"working_days"`
	OpeningTime     *string  `json:"opening_time" db:"opening_time"`
	ClosingTime     *string  `json:"closing_time" db:"closing_time"`
}

// AccountFilters narrows account listings.
type AccountFilters struct {
	Role       string
	IsVerified *bool
	City       string
	SearchTerm string
}

// DoctorStats backs the doctor dashboard.
type DoctorStats struct {
	TotalPatients         int `json:"total_patients"`
	TotalAppointments     int `json:"total_appointments"`
	TodayAppointments     int `json:"today_appointments"`
	PendingAppointments   int `json:"pending_appointments"`
	CompletedAppointments int `json:"completed_appointments"`
	WeekAppointments      int `json:"week_appointments"`
}

// VerificationDecision is an admin's verdict on a pending doctor.
type VerificationDecision string

const (
	DecisionApproved VerificationDecision = "approved"
	DecisionRejected VerificationDecision = "rejected"
)

// VerifyDoctorRequest is the admin decision payload.
type VerifyDoctorRequest struct {
	Status VerificationDecision `json:"status" binding:"required,oneof=approved rejected"`
}

type FamilyMember struct {
	Base
	AccountID   uuid.UUID  `json:"account_id" db:"account_id"`
	Name        string     `json:"name" db:"name"`
	Relation    string     `json:"relation" db:"relation"`
	Gender      *string    `json:"gender,omitempty" db:"gender"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	BloodGroup  *string    `json:"blood_group,omitempty" db:"blood_group"`
}

type FamilyMemberRequest struct {
	Name        string     `json:"name" binding:"required"`
	Relation    string     `json:"relation" binding:"required"`
	Gender      *string    `json:"gender" binding:"omitempty,oneof=Male Female Other"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	BloodGroup  *string    `json:"blood_group" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
}
