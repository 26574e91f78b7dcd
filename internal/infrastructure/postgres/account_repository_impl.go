package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/satriajagad/portfolio-backend/internal/domain/entity"
	"github.com/satriajagad/portfolio-backend/internal/domain/repository"
)

const accountColumns = `
	id, full_name, email, phone, about_me, password_hash,
	portfolio_url, github_url, twitter_url, linkedin_url,
	avatar_id, avatar_url, resume_id, resume_url,
	reset_token_hash, reset_token_expires, created_at, updated_at`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func scanAccount(row pgx.Row) (*entity.Account, error) {
	a := &entity.Account{}
	err := row.Scan(
		&a.ID, &a.FullName, &a.Email, &a.Phone, &a.AboutMe, &a.PasswordHash,
		&a.PortfolioURL, &a.GithubURL, &a.TwitterURL, &a.LinkedInURL,
		&a.Avatar.ID, &a.Avatar.URL, &a.Resume.ID, &a.Resume.URL,
		&a.ResetTokenHash, &a.ResetTokenExpires, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (
			full_name, email, phone, about_me, password_hash,
			portfolio_url, github_url, twitter_url, linkedin_url,
			avatar_id, avatar_url, resume_id, resume_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`,
		a.FullName, a.Email, a.Phone, a.AboutMe, a.PasswordHash,
		a.PortfolioURL, a.GithubURL, a.TwitterURL, a.LinkedInURL,
		a.Avatar.ID, a.Avatar.URL, a.Resume.ID, a.Resume.URL,
	)
	return row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `
		SELECT`+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `
		SELECT`+accountColumns+`
		FROM accounts
		WHERE email = $1
	`, email))
}

func (r *AccountRepository) Update(ctx context.Context, a *entity.Account) error {
	a.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET full_name = $1, email = $2, phone = $3, about_me = $4,
			portfolio_url = $5, github_url = $6, twitter_url = $7, linkedin_url = $8,
			avatar_id = $9, avatar_url = $10, resume_id = $11, resume_url = $12,
			updated_at = $13
		WHERE id = $14
	`,
		a.FullName, a.Email, a.Phone, a.AboutMe,
		a.PortfolioURL, a.GithubURL, a.TwitterURL, a.LinkedInURL,
		a.Avatar.ID, a.Avatar.URL, a.Resume.ID, a.Resume.URL,
		a.UpdatedAt, a.ID,
	)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET password_hash = $1, updated_at = now()
		WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET reset_token_hash = $1, reset_token_expires = $2, updated_at = now()
		WHERE id = $3
	`, tokenHash, expires, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) ClearResetToken(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET reset_token_hash = NULL, reset_token_expires = NULL, updated_at = now()
		WHERE id = $1
	`, id)
	return err
}

// ConsumeResetToken matches hash and expiry in a single conditional write so
// a token cannot validate twice even under concurrent duplicate requests.
func (r *AccountRepository) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*entity.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET password_hash = $1, reset_token_hash = NULL, reset_token_expires = NULL, updated_at = now()
		WHERE reset_token_hash = $2 AND reset_token_expires > $3
		RETURNING`+accountColumns+`
	`, passwordHash, tokenHash, now))
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
