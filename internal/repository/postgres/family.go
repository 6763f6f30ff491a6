package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/repository"
)

type familyRepository struct {
	BaseRepository
}

func NewFamilyRepository(base BaseRepository) repository.FamilyRepository {
	return &familyRepository{base}
}

func (r *familyRepository) Create(ctx context.Context, member *model.FamilyMember) error {
	query := `
		INSERT INTO family_members (
			id, account_id, name, relation, gender, date_of_birth,
			blood_group, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	member.ID = uuid.New()
	member.CreatedAt = time.Now()
	member.UpdatedAt = member.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		member.ID,
		member.AccountID,
		member.Name,
		member.Relation,
		member.Gender,
		member.DateOfBirth,
		member.BloodGroup,
		member.CreatedAt,
		member.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create family member: %w", err)
	}
	return nil
}

func (r *familyRepository) ListForAccount(ctx context.Context, accountID uuid.UUID) ([]*model.FamilyMember, error) {
	query := `SELECT * FROM family_members WHERE account_id = $1 ORDER BY created_at`

	var members []*model.FamilyMember
	if err := r.db.SelectContext(ctx, &members, query, accountID); err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	return members, nil
}

func (r *familyRepository) Update(ctx context.Context, member *model.FamilyMember) error {
	query := `
		UPDATE family_members SET
			name = $1,
			relation = $2,
			gender = $3,
			date_of_birth = $4,
			blood_group = $5,
			updated_at = NOW()
		WHERE id = $6 AND account_id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		member.Name,
		member.Relation,
		member.Gender,
		member.DateOfBirth,
		member.BloodGroup,
		member.ID,
		member.AccountID,
	)
	if err != nil {
		return fmt.Errorf("failed to update family member: %w", err)
	}
	return requireRows(result)
}

func (r *familyRepository) Delete(ctx context.Context, accountID, memberID uuid.UUID) error {
	query := `DELETE FROM family_members WHERE id = $1 AND account_id = $2`
	result, err := r.db.ExecContext(ctx, query, memberID, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete family member: %w", err)
	}
	return requireRows(result)
}
