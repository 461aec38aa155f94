package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mp2tech/service-center/internal/domain"
	"github.com/mp2tech/service-center/internal/lifecycle"
)

const ticketColumns = `ticket_id, title, description, cust_id, technician_id, created_by,
	issue_type, ticket_type, priority, device_type, device_brand, serial_number, device_working,
	status, needs_approval, estimate_amount, pickup_date, pickup_time, delivery_date, delivery_time,
	is_deleted, archive_status, created_at, updated_at`

// TicketFilter captures listing parameters. All reads exclude soft-deleted rows.
type TicketFilter struct {
	Statuses      []domain.TicketStatus
	TechnicianID  *string
	CustomerID    *string
	NeedsApproval *bool
	Archived      *bool
	SearchTerm    *string
	Limit         int
	Offset        int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	UpdateLifecycle(ctx context.Context, ticket *domain.Ticket, expectedUpdatedAt time.Time) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	SetArchived(ctx context.Context, id string, archived bool) error
	SoftDelete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[domain.TicketStatus]int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, cust_id, technician_id, created_by,
            issue_type, ticket_type, priority, device_type, device_brand, serial_number, device_working,
            status, needs_approval, estimate_amount, pickup_date, pickup_time, delivery_date, delivery_time)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
        RETURNING ticket_id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.CustomerID,
		ticket.TechnicianID,
		ticket.CreatedBy,
		ticket.IssueType,
		ticket.TicketType,
		ticket.Priority,
		ticket.Device.Type,
		ticket.Device.Brand,
		ticket.Device.SerialNumber,
		ticket.Device.Working,
		ticket.Status,
		ticket.NeedsApproval,
		ticket.EstimateAmount,
		ticket.PickupDate,
		ticket.PickupTime,
		ticket.DeliveryDate,
		ticket.DeliveryTime,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

// Update writes admin field edits. Lifecycle fields go through UpdateLifecycle.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, cust_id=$3, issue_type=$4, ticket_type=$5,
            priority=$6, device_type=$7, device_brand=$8, serial_number=$9, device_working=$10,
            estimate_amount=$11, pickup_date=$12, pickup_time=$13, delivery_date=$14, delivery_time=$15,
            updated_at=NOW()
        WHERE ticket_id=$16 AND is_deleted=FALSE`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.CustomerID,
		ticket.IssueType,
		ticket.TicketType,
		ticket.Priority,
		ticket.Device.Type,
		ticket.Device.Brand,
		ticket.Device.SerialNumber,
		ticket.Device.Working,
		ticket.EstimateAmount,
		ticket.PickupDate,
		ticket.PickupTime,
		ticket.DeliveryDate,
		ticket.DeliveryTime,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateLifecycle writes status, approval flag and technician together, guarded
// by an optimistic check on updated_at so concurrent transitions surface as a
// conflict instead of a silent lost update.
func (r *ticketRepository) UpdateLifecycle(ctx context.Context, ticket *domain.Ticket, expectedUpdatedAt time.Time) error {
	const query = `
        UPDATE tickets SET status=$1, needs_approval=$2, technician_id=$3, updated_at=$4
        WHERE ticket_id=$5 AND is_deleted=FALSE AND updated_at=$6`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Status,
		ticket.NeedsApproval,
		ticket.TechnicianID,
		ticket.UpdatedAt,
		ticket.ID,
		expectedUpdatedAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		// Distinguish a missing row from a stale version.
		if _, getErr := r.GetByID(ctx, ticket.ID); getErr != nil {
			return getErr
		}
		return lifecycle.ErrVersionConflict
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE ticket_id=$1 AND is_deleted=FALSE`, ticketColumns)
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(ticketFields(&ticket)...); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"is_deleted=FALSE"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("technician_id=$%d", len(args)))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("cust_id=$%d", len(args)))
	}
	if filter.NeedsApproval != nil {
		args = append(args, *filter.NeedsApproval)
		clauses = append(clauses, fmt.Sprintf("needs_approval=$%d", len(args)))
	}
	if filter.Archived != nil {
		args = append(args, *filter.Archived)
		clauses = append(clauses, fmt.Sprintf("archive_status=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(ticketFields(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	const query = `UPDATE tickets SET archive_status=$1, updated_at=NOW() WHERE ticket_id=$2 AND is_deleted=FALSE`
	cmd, err := r.pool.Exec(ctx, query, archived, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE tickets SET is_deleted=TRUE, updated_at=NOW() WHERE ticket_id=$1 AND is_deleted=FALSE`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CountByStatus feeds dashboard grouping; callers order results via the
// status registry.
func (r *ticketRepository) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int64, error) {
	const query = `SELECT status, COUNT(*) FROM tickets WHERE is_deleted=FALSE GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketStatus]int64)
	for rows.Next() {
		var status domain.TicketStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func ticketFields(t *domain.Ticket) []any {
	return []any{
		&t.ID,
		&t.Title,
		&t.Description,
		&t.CustomerID,
		&t.TechnicianID,
		&t.CreatedBy,
		&t.IssueType,
		&t.TicketType,
		&t.Priority,
		&t.Device.Type,
		&t.Device.Brand,
		&t.Device.SerialNumber,
		&t.Device.Working,
		&t.Status,
		&t.NeedsApproval,
		&t.EstimateAmount,
		&t.PickupDate,
		&t.PickupTime,
		&t.DeliveryDate,
		&t.DeliveryTime,
		&t.IsDeleted,
		&t.Archived,
		&t.CreatedAt,
		&t.UpdatedAt,
	}
}
