package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/healthbook/booking-api/internal/repository"
)

type tokenRepository struct {
	BaseRepository
}

func NewTokenRepository(base BaseRepository) repository.TokenRepository {
	return &tokenRepository{base}
}

func (r *tokenRepository) StoreResetToken(ctx context.Context, accountID uuid.UUID, token string, expiry time.Time) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO account_tokens (account_id, token, expires_at, created_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (account_id) DO UPDATE
			SET token = $2, expires_at = $3, used_at = NULL, created_at = NOW()
		`
		_, err := tx.ExecContext(ctx, query, accountID, token, expiry)
		return err
	})
}

func (r *tokenRepository) ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	query := `
		UPDATE account_tokens
		SET used_at = NOW()
		WHERE token = $1
		  AND expires_at > NOW()
		  AND used_at IS NULL
		RETURNING account_id
	`

	var accountID uuid.UUID
	if err := r.db.GetContext(ctx, &accountID, query, token); err != nil {
		return uuid.Nil, mapScanErr(err)
	}
	return accountID, nil
}
