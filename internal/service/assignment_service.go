package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/simonclouds/ecommerce/internal/model"
	"github.com/simonclouds/ecommerce/pkg/database"
)

// AssignmentRepositoryInterface defines the interface for offer assignment
// data access.
type AssignmentRepositoryInterface interface {
	ListByCode(ctx context.Context, code string) ([]model.OfferAssignment, error)
	FindActiveForUser(ctx context.Context, tx database.TxQuerier, code, userEmail string) (*model.OfferAssignment, error)
	MarkRedeemed(ctx context.Context, tx database.TxQuerier, id int64) error
	UpdateEmailStatus(ctx context.Context, code, userEmail string, status model.AssignmentStatus) error
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AssignmentService manages the lifecycle of offer assignments: redeeming a
// learner's slot when an order is placed and recording email delivery
// outcomes.
type AssignmentService struct {
	pool        TxBeginner
	assignments AssignmentRepositoryInterface
}

// NewAssignmentService creates an AssignmentService with the given pool and
// repository.
func NewAssignmentService(pool *pgxpool.Pool, assignments AssignmentRepositoryInterface) *AssignmentService {
	return &AssignmentService{pool: pool, assignments: assignments}
}

// NewAssignmentServiceWithTxBeginner creates an AssignmentService with a
// custom TxBeginner. Primarily used for testing.
func NewAssignmentServiceWithTxBeginner(pool TxBeginner, assignments AssignmentRepositoryInterface) *AssignmentService {
	return &AssignmentService{pool: pool, assignments: assignments}
}

// RedeemAssignment marks the owner's first active assignment for the code as
// redeemed. Called after an order containing an assigned voucher is placed.
// A voucher without a matching assignment is a no-op, not an error.
func (s *AssignmentService) RedeemAssignment(ctx context.Context, code, userEmail string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// Lock the assignment row so concurrent redemptions of the same slot
	// serialize on the database.
	assignment, err := s.assignments.FindActiveForUser(ctx, tx, code, userEmail)
	if err != nil {
		return fmt.Errorf("find active assignment: %w", err)
	}
	if assignment == nil {
		log.Debug().Str("code", code).Str("user_email", userEmail).
			Msg("no active assignment to redeem for code")
		return nil
	}

	if err := s.assignments.MarkRedeemed(ctx, tx, assignment.ID); err != nil {
		return fmt.Errorf("mark redeemed: %w", err)
	}

	return tx.Commit(ctx)
}

// UpdateEmailStatus records the delivery outcome of an assignment email. A
// successful delivery keeps the assignment pending redemption; a failed one
// marks it bounced so the code can be revoked or reassigned.
// Returns ErrAssignmentNotFound when no assignment matches the code and email.
func (s *AssignmentService) UpdateEmailStatus(ctx context.Context, userEmail, code, emailStatus string) error {
	var status model.AssignmentStatus
	switch emailStatus {
	case "success":
		status = model.AssignmentEmailPending
	case "failed":
		status = model.AssignmentEmailBounced
	default:
		return fmt.Errorf("%w: unknown email status %q", ErrInvalidRequest, emailStatus)
	}

	if err := s.assignments.UpdateEmailStatus(ctx, code, userEmail, status); err != nil {
		return fmt.Errorf("update email status: %w", err)
	}

	return nil
}
