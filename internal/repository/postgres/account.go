package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/repository"
)

type accountRepository struct {
	BaseRepository
}

func NewAccountRepository(base BaseRepository) repository.AccountRepository {
	return &accountRepository{base}
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (
			id, email, name, password_hash, role, is_verified, is_blocked,
			token_version, mobile, gender, date_of_birth, blood_group,
			specialization, experience, qualification, clinic_name,
			clinic_address, city, consultation_fee, working_days,
			opening_time, closing_time, created_at, updated_at
		) VALUES (
			:id, :email, :name, :password_hash, :role, :is_verified, :is_blocked,
			:token_version, :mobile, :gender, :date_of_birth, :blood_group,
			:specialization, :experience, :qualification, :clinic_name,
			:clinic_address, :city, :consultation_fee, :working_days,
			:opening_time, :closing_time, :created_at, :updated_at
		)
	`

	account.ID = uuid.New()
	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, account); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	query := `SELECT * FROM accounts WHERE id = $1`

	var account model.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		return nil, mapScanErr(err)
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `SELECT * FROM accounts WHERE email = $1`

	var account model.Account
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		return nil, mapScanErr(err)
	}
	return &account, nil
}

func (r *accountRepository) Update(ctx context.Context, account *model.Account) error {
	query := `
		UPDATE accounts SET
			name = :name,
			mobile = :mobile,
			gender = :gender,
			date_of_birth = :date_of_birth,
			blood_group = :blood_group,
			password_hash = :password_hash,
			specialization = :specialization,
			experience = :experience,
			qualification = :qualification,
			clinic_name = :clinic_name,
			clinic_address = :clinic_address,
			city = :city,
			consultation_fee = :consultation_fee,
			working_days = :working_days,
			opening_time = :opening_time,
			closing_time = :closing_time,
			updated_at = NOW()
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, account)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return requireRows(result)
}

func (r *accountRepository) DeleteWithEvent(ctx context.Context, id uuid.UUID, event *model.OutboxEvent) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
		if err := requireRows(result); err != nil {
			return err
		}
		return insertOutboxEventTx(ctx, tx, event)
	})
}

func (r *accountRepository) List(ctx context.Context, filters *model.AccountFilters) ([]*model.Account, error) {
	query := `SELECT * FROM accounts WHERE 1=1`
	args := []interface{}{}

	if filters.Role != "" {
		query += fmt.Sprintf(" AND role = $%d", len(args)+1)
		args = append(args, filters.Role)
	}
	if filters.IsVerified != nil {
		query += fmt.Sprintf(" AND is_verified = $%d", len(args)+1)
		args = append(args, *filters.IsVerified)
	}
	if filters.City != "" {
		query += fmt.Sprintf(" AND city ILIKE $%d", len(args)+1)
		args = append(args, filters.City)
	}
	if filters.SearchTerm != "" {
		query += fmt.Sprintf(
			" AND (name ILIKE $%d OR specialization ILIKE $%d OR clinic_name ILIKE $%d OR city ILIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1, len(args)+1,
		)
		args = append(args, "%"+filters.SearchTerm+"%")
	}

	query += " ORDER BY created_at DESC"

	var accounts []*model.Account
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (r *accountRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE accounts SET last_login_at = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return requireRows(result)
}

func (r *accountRepository) SetVerifiedWithEvent(ctx context.Context, id uuid.UUID, verified bool, event *model.OutboxEvent) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `UPDATE accounts SET is_verified = $1, updated_at = NOW() WHERE id = $2`
		result, err := tx.ExecContext(ctx, query, verified, id)
		if err != nil {
			return fmt.Errorf("failed to update verification status: %w", err)
		}
		if err := requireRows(result); err != nil {
			return err
		}
		return insertOutboxEventTx(ctx, tx, event)
	})
}

func (r *accountRepository) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	// Blocking bumps token_version so outstanding sessions die with it.
	query := `
		UPDATE accounts
		SET is_blocked = $1,
		    token_version = CASE WHEN $1 THEN token_version + 1 ELSE token_version END,
		    updated_at = NOW()
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, blocked, id)
	if err != nil {
		return fmt.Errorf("failed to update blocked status: %w", err)
	}
	return requireRows(result)
}

func (r *accountRepository) SetBlockedWithEvent(ctx context.Context, id uuid.UUID, event *model.OutboxEvent) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE accounts
			SET token_version = CASE WHEN is_blocked THEN token_version ELSE token_version + 1 END,
			    is_blocked = TRUE,
			    updated_at = NOW()
			WHERE id = $1
		`
		result, err := tx.ExecContext(ctx, query, id)
		if err != nil {
			return fmt.Errorf("failed to block account: %w", err)
		}
		if err := requireRows(result); err != nil {
			return err
		}
		return insertOutboxEventTx(ctx, tx, event)
	})
}

func (r *accountRepository) BumpTokenVersion(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE accounts SET token_version = token_version + 1, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to bump token version: %w", err)
	}
	return requireRows(result)
}
