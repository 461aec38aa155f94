package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mp2tech/service-center/internal/domain"
)

const profileColumns = `user_id, name, email, mobile, address, password_hash, role, is_deleted, created_at, updated_at`

// ProfileRepository encapsulates profile (admin/technician) persistence.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	Update(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.Profile, error)
	SoftDelete(ctx context.Context, id string) error
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository instantiates repository.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	const query = `
        INSERT INTO profiles (name, email, mobile, address, password_hash, role)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING user_id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		profile.Name,
		profile.Email,
		profile.Mobile,
		profile.Address,
		profile.PasswordHash,
		profile.Role,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	const query = `
        UPDATE profiles SET name=$1, email=$2, mobile=$3, address=$4, updated_at=NOW()
        WHERE user_id=$5 AND is_deleted=FALSE`
	cmd, err := r.pool.Exec(ctx, query,
		profile.Name,
		profile.Email,
		profile.Mobile,
		profile.Address,
		profile.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE user_id=$1 AND is_deleted=FALSE`, profileColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE email=$1 AND is_deleted=FALSE`, profileColumns)
	return r.fetchSingle(ctx, query, email)
}

func (r *profileRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE role=$1 AND is_deleted=FALSE ORDER BY name`, profileColumns)
	rows, err := r.pool.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Profile
	for rows.Next() {
		var profile domain.Profile
		if err := rows.Scan(profileFields(&profile)...); err != nil {
			return nil, err
		}
		result = append(result, profile)
	}
	return result, rows.Err()
}

func (r *profileRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE profiles SET is_deleted=TRUE, updated_at=NOW() WHERE user_id=$1 AND is_deleted=FALSE`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *profileRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Profile, error) {
	var profile domain.Profile
	if err := r.pool.QueryRow(ctx, query, arg).Scan(profileFields(&profile)...); err != nil {
		return nil, err
	}
	return &profile, nil
}

func profileFields(p *domain.Profile) []any {
	return []any{
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Mobile,
		&p.Address,
		&p.PasswordHash,
		&p.Role,
		&p.IsDeleted,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
}
