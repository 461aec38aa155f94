package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mp2tech/service-center/internal/domain"
)

const templateColumns = `template_id, title, subject, message, recipient, status, active, variables, created_at, updated_at`

// TemplateRepository encapsulates WhatsApp template persistence.
type TemplateRepository interface {
	Create(ctx context.Context, template *domain.WhatsAppTemplate) error
	Update(ctx context.Context, template *domain.WhatsAppTemplate) error
	GetByID(ctx context.Context, id string) (*domain.WhatsAppTemplate, error)
	List(ctx context.Context) ([]domain.WhatsAppTemplate, error)
	ListByStatus(ctx context.Context, status domain.TicketStatus, recipient domain.RecipientClass) ([]domain.WhatsAppTemplate, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type templateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository instantiates repository.
func NewTemplateRepository(pool *pgxpool.Pool) TemplateRepository {
	return &templateRepository{pool: pool}
}

func (r *templateRepository) Create(ctx context.Context, template *domain.WhatsAppTemplate) error {
	const query = `
        INSERT INTO whatsapp_templates (title, subject, message, recipient, status, active, variables)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING template_id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		template.Title,
		template.Subject,
		template.Message,
		template.Recipient,
		template.Status,
		template.Active,
		template.Variables,
	).Scan(&template.ID, &template.CreatedAt, &template.UpdatedAt)
}

func (r *templateRepository) Update(ctx context.Context, template *domain.WhatsAppTemplate) error {
	const query = `
        UPDATE whatsapp_templates SET title=$1, subject=$2, message=$3, recipient=$4, status=$5,
            active=$6, variables=$7, updated_at=NOW()
        WHERE template_id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		template.Title,
		template.Subject,
		template.Message,
		template.Recipient,
		template.Status,
		template.Active,
		template.Variables,
		template.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*domain.WhatsAppTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM whatsapp_templates WHERE template_id=$1`, templateColumns)
	var template domain.WhatsAppTemplate
	if err := r.pool.QueryRow(ctx, query, id).Scan(templateFields(&template)...); err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) List(ctx context.Context) ([]domain.WhatsAppTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM whatsapp_templates ORDER BY status, recipient, title`, templateColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTemplates(rows)
}

func (r *templateRepository) ListByStatus(ctx context.Context, status domain.TicketStatus, recipient domain.RecipientClass) ([]domain.WhatsAppTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM whatsapp_templates
        WHERE status=$1 AND recipient=$2 AND active=TRUE ORDER BY title`, templateColumns)
	rows, err := r.pool.Query(ctx, query, status, recipient)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTemplates(rows)
}

func (r *templateRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM whatsapp_templates WHERE template_id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *templateRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM whatsapp_templates`).Scan(&count)
	return count, err
}

func scanTemplates(rows pgx.Rows) ([]domain.WhatsAppTemplate, error) {
	var result []domain.WhatsAppTemplate
	for rows.Next() {
		var template domain.WhatsAppTemplate
		if err := rows.Scan(templateFields(&template)...); err != nil {
			return nil, err
		}
		result = append(result, template)
	}
	return result, rows.Err()
}

func templateFields(t *domain.WhatsAppTemplate) []any {
	return []any{
		&t.ID,
		&t.Title,
		&t.Subject,
		&t.Message,
		&t.Recipient,
		&t.Status,
		&t.Active,
		&t.Variables,
		&t.CreatedAt,
		&t.UpdatedAt,
	}
}
