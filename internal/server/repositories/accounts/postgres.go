package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bkkdisplay/confeditor/internal/common"
	"github.com/bkkdisplay/confeditor/internal/dbx"
	"github.com/bkkdisplay/confeditor/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query :=
		`SELECT email, password_hash, created_at, last_upload_at, upload_count_today, config_blob
		 FROM accounts
		 WHERE email = $1
		 `

	a := &models.Account{}
	var lastUpload sql.NullTime
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&a.Email, &a.PasswordHash, &a.CreatedAt, &lastUpload, &a.UploadCountToday, &a.ConfigBlob)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if lastUpload.Valid {
		t := lastUpload.Time
		a.LastUploadAt = &t
	}
	return a, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, account *models.Account) error {
	query :=
		`INSERT INTO accounts (email, password_hash, created_at, last_upload_at, upload_count_today, config_blob)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query,
		account.Email, account.PasswordHash, account.CreatedAt,
		account.LastUploadAt, account.UploadCountToday, account.ConfigBlob)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return common.ErrorDuplicate
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, email string, fields UpdateFields) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if fields.LastUploadAt != nil {
		args = append(args, *fields.LastUploadAt)
		sets = append(sets, fmt.Sprintf("last_upload_at = $%d", len(args)))
	}
	if fields.UploadCountToday != nil {
		args = append(args, *fields.UploadCountToday)
		sets = append(sets, fmt.Sprintf("upload_count_today = $%d", len(args)))
	}
	if fields.ConfigBlob != nil {
		args = append(args, *fields.ConfigBlob)
		sets = append(sets, fmt.Sprintf("config_blob = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, email)
	query := fmt.Sprintf("UPDATE accounts SET %s WHERE email = $%d", strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}
