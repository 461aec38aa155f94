package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mp2tech/service-center/internal/domain"
)

const customerColumns = `cust_id, name, mobile, email, address, company, gst, is_deleted, created_at, updated_at`

// CustomerRepository encapsulates customer persistence.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	Search(ctx context.Context, term string, limit int) ([]domain.Customer, error)
	List(ctx context.Context, limit, offset int) ([]domain.Customer, error)
	SoftDelete(ctx context.Context, id string) error
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository instantiates repository.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (name, mobile, email, address, company, gst)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING cust_id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		customer.Name,
		customer.Mobile,
		customer.Email,
		customer.Address,
		customer.Company,
		customer.GST,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	const query = `
        UPDATE customers SET name=$1, mobile=$2, email=$3, address=$4, company=$5, gst=$6, updated_at=NOW()
        WHERE cust_id=$7 AND is_deleted=FALSE`
	cmd, err := r.pool.Exec(ctx, query,
		customer.Name,
		customer.Mobile,
		customer.Email,
		customer.Address,
		customer.Company,
		customer.GST,
		customer.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE cust_id=$1 AND is_deleted=FALSE`, customerColumns)
	var customer domain.Customer
	if err := r.pool.QueryRow(ctx, query, id).Scan(customerFields(&customer)...); err != nil {
		return nil, err
	}
	return &customer, nil
}

// Search matches name or mobile, case-insensitively, for the lookup field on
// the ticket form.
func (r *customerRepository) Search(ctx context.Context, term string, limit int) ([]domain.Customer, error) {
	if limit <= 0 {
		limit = 10
	}
	search := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	query := fmt.Sprintf(`SELECT %s FROM customers
        WHERE is_deleted=FALSE AND (LOWER(name) LIKE $1 OR mobile LIKE $1)
        ORDER BY name LIMIT %d`, customerColumns, limit)
	rows, err := r.pool.Query(ctx, query, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCustomers(rows)
}

func (r *customerRepository) List(ctx context.Context, limit, offset int) ([]domain.Customer, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE is_deleted=FALSE ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		customerColumns, limit, offset)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCustomers(rows)
}

func (r *customerRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE customers SET is_deleted=TRUE, updated_at=NOW() WHERE cust_id=$1 AND is_deleted=FALSE`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanCustomers(rows pgx.Rows) ([]domain.Customer, error) {
	var result []domain.Customer
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(customerFields(&customer)...); err != nil {
			return nil, err
		}
		result = append(result, customer)
	}
	return result, rows.Err()
}

func customerFields(c *domain.Customer) []any {
	return []any{
		&c.ID,
		&c.Name,
		&c.Mobile,
		&c.Email,
		&c.Address,
		&c.Company,
		&c.GST,
		&c.IsDeleted,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
}
