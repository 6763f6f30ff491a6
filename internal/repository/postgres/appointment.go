package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, scheduled_date, scheduled_time,
			issue, status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	apt.ID = uuid.New()
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		apt.ID,
		apt.PatientID,
		apt.DoctorID,
		apt.ScheduledDate,
		apt.ScheduledTime,
		apt.Issue,
		apt.Status,
		apt.Notes,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT * FROM appointments WHERE id = $1`

	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		return nil, mapScanErr(err)
	}
	return &apt, nil
}

func (r *appointmentRepository) Update(ctx context.Context, apt *model.Appointment) error {
	query := `
		UPDATE appointments SET
			scheduled_date = $1,
			scheduled_time = $2,
			issue = $3,
			status = $4,
			notes = $5,
			updated_at = NOW()
		WHERE id = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		apt.ScheduledDate,
		apt.ScheduledTime,
		apt.Issue,
		apt.Status,
		apt.Notes,
		apt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return requireRows(result)
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT a.*, p.name AS patient_name, d.name AS doctor_name
		FROM appointments a
		LEFT JOIN accounts p ON p.id = a.patient_id
		LEFT JOIN accounts d ON d.id = a.doctor_id
		WHERE 1=1
	`
	args := []interface{}{}

	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND a.patient_id = $%d", len(args)+1)
		args = append(args, filters.PatientID)
	}
	if filters.DoctorID != uuid.Nil {
		query += fmt.Sprintf(" AND a.doctor_id = $%d", len(args)+1)
		args = append(args, filters.DoctorID)
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND a.status = $%d", len(args)+1)
		args = append(args, filters.Status)
	}
	if !filters.From.IsZero() {
		query += fmt.Sprintf(" AND a.scheduled_date >= $%d", len(args)+1)
		args = append(args, filters.From)
	}
	if !filters.To.IsZero() {
		query += fmt.Sprintf(" AND a.scheduled_date < $%d", len(args)+1)
		args = append(args, filters.To)
	}

	query += " ORDER BY a.scheduled_date DESC, a.scheduled_time DESC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListPatientsForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Account, error) {
	query := `
		SELECT DISTINCT ON (p.id) p.*
		FROM accounts p
		JOIN appointments a ON a.patient_id = p.id
		WHERE a.doctor_id = $1
		ORDER BY p.id, p.created_at
	`
	var patients []*model.Account
	if err := r.db.SelectContext(ctx, &patients, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *appointmentRepository) StatsForDoctor(ctx context.Context, doctorID uuid.UUID, now time.Time) (*model.DoctorStats, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	weekStart := dayStart.AddDate(0, 0, -int(now.Weekday()))

	query := `
		SELECT
			COUNT(DISTINCT patient_id) AS total_patients,
			COUNT(*) AS total_appointments,
			COUNT(*) FILTER (WHERE scheduled_date >= $2 AND scheduled_date < $3) AS today_appointments,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending_appointments,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed_appointments,
			COUNT(*) FILTER (WHERE scheduled_date >= $4) AS week_appointments
		FROM appointments
		WHERE doctor_id = $1
	`

	var stats model.DoctorStats
	row := r.db.QueryRowxContext(ctx, query, doctorID, dayStart, dayEnd, weekStart)
	if err := row.Scan(
		&stats.TotalPatients,
		&stats.TotalAppointments,
		&stats.TodayAppointments,
		&stats.PendingAppointments,
		&stats.CompletedAppointments,
		&stats.WeekAppointments,
	); err != nil {
		return nil, fmt.Errorf("failed to compute doctor stats: %w", err)
	}
	return &stats, nil
}
