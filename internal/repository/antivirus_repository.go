package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mp2tech/service-center/internal/domain"
)

const licenseColumns = `license_id, cust_id, product, license_key, expiry_date, is_deleted, created_at, updated_at`

// AntivirusRepository encapsulates license persistence.
type AntivirusRepository interface {
	Create(ctx context.Context, license *domain.AntivirusLicense) error
	Update(ctx context.Context, license *domain.AntivirusLicense) error
	GetByID(ctx context.Context, id string) (*domain.AntivirusLicense, error)
	List(ctx context.Context) ([]domain.AntivirusLicense, error)
	ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.AntivirusLicense, error)
	SoftDelete(ctx context.Context, id string) error
}

type antivirusRepository struct {
	pool *pgxpool.Pool
}

// NewAntivirusRepository instantiates repository.
func NewAntivirusRepository(pool *pgxpool.Pool) AntivirusRepository {
	return &antivirusRepository{pool: pool}
}

func (r *antivirusRepository) Create(ctx context.Context, license *domain.AntivirusLicense) error {
	const query = `
        INSERT INTO antivirus_licenses (cust_id, product, license_key, expiry_date)
        VALUES ($1,$2,$3,$4)
        RETURNING license_id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		license.CustomerID,
		license.Product,
		license.LicenseKey,
		license.ExpiryDate,
	).Scan(&license.ID, &license.CreatedAt, &license.UpdatedAt)
}

func (r *antivirusRepository) Update(ctx context.Context, license *domain.AntivirusLicense) error {
	const query = `
        UPDATE antivirus_licenses SET cust_id=$1, product=$2, license_key=$3, expiry_date=$4, updated_at=NOW()
        WHERE license_id=$5 AND is_deleted=FALSE`
	cmd, err := r.pool.Exec(ctx, query,
		license.CustomerID,
		license.Product,
		license.LicenseKey,
		license.ExpiryDate,
		license.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *antivirusRepository) GetByID(ctx context.Context, id string) (*domain.AntivirusLicense, error) {
	query := fmt.Sprintf(`SELECT %s FROM antivirus_licenses WHERE license_id=$1 AND is_deleted=FALSE`, licenseColumns)
	var license domain.AntivirusLicense
	if err := r.pool.QueryRow(ctx, query, id).Scan(licenseFields(&license)...); err != nil {
		return nil, err
	}
	return &license, nil
}

// List returns licenses ordered soonest-expiring first, mirroring the
// dashboard's expiry view.
func (r *antivirusRepository) List(ctx context.Context) ([]domain.AntivirusLicense, error) {
	query := fmt.Sprintf(`SELECT %s FROM antivirus_licenses WHERE is_deleted=FALSE ORDER BY expiry_date`, licenseColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLicenses(rows)
}

func (r *antivirusRepository) ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.AntivirusLicense, error) {
	query := fmt.Sprintf(`SELECT %s FROM antivirus_licenses
        WHERE is_deleted=FALSE AND expiry_date <= $1 ORDER BY expiry_date`, licenseColumns)
	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLicenses(rows)
}

func (r *antivirusRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE antivirus_licenses SET is_deleted=TRUE, updated_at=NOW() WHERE license_id=$1 AND is_deleted=FALSE`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanLicenses(rows pgx.Rows) ([]domain.AntivirusLicense, error) {
	var result []domain.AntivirusLicense
	for rows.Next() {
		var license domain.AntivirusLicense
		if err := rows.Scan(licenseFields(&license)...); err != nil {
			return nil, err
		}
		result = append(result, license)
	}
	return result, rows.Err()
}

func licenseFields(l *domain.AntivirusLicense) []any {
	return []any{
		&l.ID,
		&l.CustomerID,
		&l.Product,
		&l.LicenseKey,
		&l.ExpiryDate,
		&l.IsDeleted,
		&l.CreatedAt,
		&l.UpdatedAt,
	}
}
