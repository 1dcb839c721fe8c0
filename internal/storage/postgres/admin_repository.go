package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nazyhomayoun/learning-software-testing/internal/domain"
)

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) CreateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `INSERT INTO events (id, name, starts_at) VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, stmt, event.ID, event.Name, event.StartsAt)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const query = `SELECT id, name, starts_at FROM events ORDER BY starts_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.StartsAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (r *AdminRepository) CreateTicketType(ctx context.Context, tt domain.TicketType) error {
	const stmt = `
INSERT INTO ticket_types (id, event_id, name, capacity, unit_price, sales_open, sales_start, sales_end)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, stmt,
		tt.ID,
		tt.EventID,
		tt.Name,
		tt.Capacity,
		tt.UnitPrice,
		tt.SalesOpen,
		nullableTime(tt.SalesStart),
		nullableTime(tt.SalesEnd),
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("create ticket type: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListTicketTypesByEvent(ctx context.Context, eventID string) ([]domain.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE event_id = $1 ORDER BY name`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	defer rows.Close()

	var types []domain.TicketType
	for rows.Next() {
		tt, err := scanTicketTypeRow(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, tt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	return types, nil
}

func (r *AdminRepository) SetSalesOpen(ctx context.Context, ticketTypeID string, open bool) error {
	const stmt = `UPDATE ticket_types SET sales_open = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, stmt, ticketTypeID, open)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set sales open: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketTypeNotFound
	}
	return nil
}

func scanTicketTypeRow(rows pgx.Rows) (domain.TicketType, error) {
	var tt domain.TicketType
	var salesStart, salesEnd *time.Time
	if err := rows.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Capacity, &tt.UnitPrice, &tt.SalesOpen, &salesStart, &salesEnd); err != nil {
		return domain.TicketType{}, fmt.Errorf("scan ticket type: %w", err)
	}
	if salesStart != nil {
		tt.SalesStart = *salesStart
	}
	if salesEnd != nil {
		tt.SalesEnd = *salesEnd
	}
	return tt, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
