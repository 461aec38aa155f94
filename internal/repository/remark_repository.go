package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mp2tech/service-center/internal/domain"
)

// RemarkRepository encapsulates ticket remark persistence. Remarks are
// append-only; there is no update. Create writes the remark and its
// attachments in one transaction.
type RemarkRepository interface {
	Create(ctx context.Context, remark *domain.TicketRemark) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketRemark, error)
}

type remarkRepository struct {
	pool *pgxpool.Pool
}

// NewRemarkRepository instantiates repository.
func NewRemarkRepository(pool *pgxpool.Pool) RemarkRepository {
	return &remarkRepository{pool: pool}
}

func (r *remarkRepository) Create(ctx context.Context, remark *domain.TicketRemark) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const remarkQuery = `
        INSERT INTO ticket_remarks (ticket_id, author_id, remark_text)
        VALUES ($1,$2,$3)
        RETURNING remark_id, created_at`
	if err := tx.QueryRow(ctx, remarkQuery,
		remark.TicketID,
		remark.AuthorID,
		remark.Text,
	).Scan(&remark.ID, &remark.CreatedAt); err != nil {
		return err
	}

	const attachmentQuery = `
        INSERT INTO remark_attachments (remark_id, name, path)
        VALUES ($1,$2,$3)
        RETURNING attachment_id, created_at`
	for i := range remark.Attachments {
		att := &remark.Attachments[i]
		att.RemarkID = remark.ID
		if err := tx.QueryRow(ctx, attachmentQuery,
			att.RemarkID,
			att.Name,
			att.Path,
		).Scan(&att.ID, &att.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *remarkRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketRemark, error) {
	const query = `
        SELECT remark_id, ticket_id, author_id, remark_text, created_at
        FROM ticket_remarks WHERE ticket_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var remarks []domain.TicketRemark
	for rows.Next() {
		var remark domain.TicketRemark
		if err := rows.Scan(&remark.ID, &remark.TicketID, &remark.AuthorID, &remark.Text, &remark.CreatedAt); err != nil {
			return nil, err
		}
		remarks = append(remarks, remark)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range remarks {
		attachments, err := r.listAttachments(ctx, remarks[i].ID)
		if err != nil {
			return nil, err
		}
		remarks[i].Attachments = attachments
	}
	return remarks, nil
}

func (r *remarkRepository) listAttachments(ctx context.Context, remarkID string) ([]domain.RemarkAttachment, error) {
	const query = `
        SELECT attachment_id, remark_id, name, path, created_at
        FROM remark_attachments WHERE remark_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, remarkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []domain.RemarkAttachment
	for rows.Next() {
		var att domain.RemarkAttachment
		if err := rows.Scan(&att.ID, &att.RemarkID, &att.Name, &att.Path, &att.CreatedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, att)
	}
	return attachments, rows.Err()
}
