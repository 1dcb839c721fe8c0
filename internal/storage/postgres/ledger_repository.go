package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nazyhomayoun/learning-software-testing/internal/domain"
)

// LedgerRepository stores ticket types and holds. Reserve-path callers lock
// the ticket-type row first (NOWAIT), which serializes all counter changes
// for that type without blocking other types.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const ticketTypeColumns = `id, event_id, name, capacity, unit_price, sales_open, sales_start, sales_end`

func (r *LedgerRepository) GetTicketType(ctx context.Context, ticketTypeID string) (domain.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE id = $1`
	return r.scanTicketType(r.queryRow(ctx, query, ticketTypeID))
}

func (r *LedgerRepository) GetTicketTypeForUpdate(ctx context.Context, ticketTypeID string) (domain.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE id = $1 FOR UPDATE NOWAIT`
	return r.scanTicketType(r.queryRow(ctx, query, ticketTypeID))
}

func (r *LedgerRepository) scanTicketType(row pgx.Row) (domain.TicketType, error) {
	var tt domain.TicketType
	var salesStart, salesEnd *time.Time
	err := row.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Capacity, &tt.UnitPrice, &tt.SalesOpen, &salesStart, &salesEnd)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.TicketType{}, domain.ErrInvalidID
		}
		if isLockNotAvailable(err) {
			return domain.TicketType{}, domain.ErrBusy
		}
		if err == pgx.ErrNoRows {
			return domain.TicketType{}, domain.ErrTicketTypeNotFound
		}
		return domain.TicketType{}, fmt.Errorf("get ticket type: %w", err)
	}
	if salesStart != nil {
		tt.SalesStart = *salesStart
	}
	if salesEnd != nil {
		tt.SalesEnd = *salesEnd
	}
	return tt, nil
}

func (r *LedgerRepository) SumActiveHolds(ctx context.Context, ticketTypeID string, now time.Time) (int, error) {
	const query = `
SELECT COALESCE(SUM(quantity), 0)
FROM holds
WHERE ticket_type_id = $1 AND status = 'active' AND expires_at > $2`

	var total int
	if err := r.queryRow(ctx, query, ticketTypeID, now).Scan(&total); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("sum active holds: %w", err)
	}
	return total, nil
}

func (r *LedgerRepository) SumConfirmed(ctx context.Context, ticketTypeID string) (int, error) {
	const query = `
SELECT COALESCE(SUM(quantity), 0)
FROM holds
WHERE ticket_type_id = $1 AND status = 'confirmed'`

	var total int
	if err := r.queryRow(ctx, query, ticketTypeID).Scan(&total); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("sum confirmed: %w", err)
	}
	return total, nil
}

func (r *LedgerRepository) CreateHold(ctx context.Context, hold domain.Hold) error {
	const stmt = `
INSERT INTO holds (id, ticket_type_id, quantity, status, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.exec(ctx, stmt,
		hold.ID,
		hold.TicketTypeID,
		hold.Quantity,
		hold.Status,
		hold.ExpiresAt,
		hold.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create hold: %w", err)
	}
	return nil
}

func (r *LedgerRepository) GetHoldForUpdate(ctx context.Context, holdID string) (domain.Hold, error) {
	const query = `
SELECT id, ticket_type_id, quantity, status, expires_at, created_at
FROM holds
WHERE id = $1
FOR UPDATE NOWAIT`

	var h domain.Hold
	err := r.queryRow(ctx, query, holdID).
		Scan(&h.ID, &h.TicketTypeID, &h.Quantity, &h.Status, &h.ExpiresAt, &h.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Hold{}, domain.ErrInvalidID
		}
		if isLockNotAvailable(err) {
			return domain.Hold{}, domain.ErrBusy
		}
		if err == pgx.ErrNoRows {
			return domain.Hold{}, domain.ErrHoldNotFound
		}
		return domain.Hold{}, fmt.Errorf("get hold: %w", err)
	}
	return h, nil
}

func (r *LedgerRepository) UpdateHoldStatus(ctx context.Context, holdID string, status domain.HoldStatus) error {
	const stmt = `UPDATE holds SET status = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, holdID, status)
	if err != nil {
		return fmt.Errorf("update hold status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrHoldNotFound
	}
	return nil
}

// ExpireDueHolds flips every overdue Active hold to Expired in one
// statement. Rows locked by a concurrent confirm are skipped rather than
// waited on; whichever writer commits first decides the hold's fate, and a
// skipped hold is picked up on the next sweep if the confirm loses.
func (r *LedgerRepository) ExpireDueHolds(ctx context.Context, now time.Time) ([]domain.Hold, error) {
	const stmt = `
UPDATE holds
SET status = 'expired'
WHERE id IN (
	SELECT id FROM holds
	WHERE status = 'active' AND expires_at <= $1
	FOR UPDATE SKIP LOCKED
)
RETURNING id, ticket_type_id, quantity, status, expires_at, created_at`

	rows, err := r.query(ctx, stmt, now)
	if err != nil {
		return nil, fmt.Errorf("expire due holds: %w", err)
	}
	defer rows.Close()

	var expired []domain.Hold
	for rows.Next() {
		var h domain.Hold
		if err := rows.Scan(&h.ID, &h.TicketTypeID, &h.Quantity, &h.Status, &h.ExpiresAt, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expired hold: %w", err)
		}
		expired = append(expired, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("expire due holds: %w", err)
	}
	return expired, nil
}

func (r *LedgerRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *LedgerRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *LedgerRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
