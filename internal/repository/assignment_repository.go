package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simonclouds/ecommerce/internal/model"
	"github.com/simonclouds/ecommerce/internal/service"
	"github.com/simonclouds/ecommerce/pkg/database"
)

// AssignmentPoolInterface defines the database operations needed by
// AssignmentRepository. This allows for easier testing with mocks.
type AssignmentPoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// AssignmentRepository provides data access for offer assignments using pgx.
type AssignmentRepository struct {
	pool AssignmentPoolInterface
}

// NewAssignmentRepository creates a new AssignmentRepository with the given pool.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// NewAssignmentRepositoryWithPool creates a new AssignmentRepository with a
// custom pool interface. This is primarily used for testing.
func NewAssignmentRepositoryWithPool(pool AssignmentPoolInterface) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// ListByCode retrieves every assignment created for a voucher code, oldest
// first. On success, returns an empty slice (not nil) when none exist.
func (r *AssignmentRepository) ListByCode(ctx context.Context, code string) ([]model.OfferAssignment, error) {
	query := `SELECT id, offer_id, code, user_email, status, created_at
		FROM offer_assignments WHERE code = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("list assignments for code %s: %w", code, err)
	}
	defer rows.Close()

	var assignments []model.OfferAssignment
	for rows.Next() {
		var a model.OfferAssignment
		var status string
		if err := rows.Scan(&a.ID, &a.OfferID, &a.Code, &a.UserEmail, &status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		a.Status = model.AssignmentStatus(status)
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignment rows: %w", err)
	}

	// Return empty slice, not nil
	if assignments == nil {
		assignments = []model.OfferAssignment{}
	}

	return assignments, nil
}

// FindActiveForUser retrieves the oldest non-redeemed, non-revoked assignment
// for a code and learner email, with a row lock (SELECT FOR UPDATE). Must be
// called within a transaction. Returns nil, nil when no such assignment
// exists (service layer handles this).
func (r *AssignmentRepository) FindActiveForUser(ctx context.Context, tx database.TxQuerier, code, userEmail string) (*model.OfferAssignment, error) {
	query := `SELECT id, offer_id, code, user_email, status, created_at
		FROM offer_assignments
		WHERE code = $1 AND user_email = $2 AND status NOT IN ($3, $4)
		ORDER BY created_at LIMIT 1 FOR UPDATE`

	var a model.OfferAssignment
	var status string
	err := tx.QueryRow(ctx, query, code, userEmail,
		string(model.AssignmentRedeemed), string(model.AssignmentRevoked)).Scan(
		&a.ID, &a.OfferID, &a.Code, &a.UserEmail, &status, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("find active assignment for %s: %w", code, err)
	}
	a.Status = model.AssignmentStatus(status)
	return &a, nil
}

// MarkRedeemed sets an assignment's status to redeemed. Must be called within
// a transaction after locking the row.
func (r *AssignmentRepository) MarkRedeemed(ctx context.Context, tx database.TxQuerier, id int64) error {
	query := `UPDATE offer_assignments SET status = $2 WHERE id = $1`

	_, err := tx.Exec(ctx, query, id, string(model.AssignmentRedeemed))
	if err != nil {
		return fmt.Errorf("mark assignment %d redeemed: %w", id, err)
	}
	return nil
}

// UpdateEmailStatus records an email delivery outcome on the active
// assignment(s) matching a code and learner email. Redeemed and revoked
// assignments are left untouched.
// Returns service.ErrAssignmentNotFound if nothing matched.
func (r *AssignmentRepository) UpdateEmailStatus(ctx context.Context, code, userEmail string, status model.AssignmentStatus) error {
	query := `UPDATE offer_assignments SET status = $3
		WHERE code = $1 AND user_email = $2 AND status NOT IN ($4, $5)`

	tag, err := r.pool.Exec(ctx, query, code, userEmail, string(status),
		string(model.AssignmentRedeemed), string(model.AssignmentRevoked))
	if err != nil {
		return fmt.Errorf("update email status for %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrAssignmentNotFound
	}
	return nil
}
