package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simonclouds/ecommerce/internal/model"
)

// VoucherPoolInterface defines the database operations needed by
// VoucherRepository.
type VoucherPoolInterface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// VoucherRepository provides data access for vouchers using pgx.
type VoucherRepository struct {
	pool VoucherPoolInterface
}

// NewVoucherRepository creates a new VoucherRepository with the given pool.
func NewVoucherRepository(pool *pgxpool.Pool) *VoucherRepository {
	return &VoucherRepository{pool: pool}
}

// NewVoucherRepositoryWithPool creates a new VoucherRepository with a custom
// pool interface. This is primarily used for testing.
func NewVoucherRepositoryWithPool(pool VoucherPoolInterface) *VoucherRepository {
	return &VoucherRepository{pool: pool}
}

// GetByCode retrieves a voucher by its code.
// Returns nil, nil if the voucher is not found (service layer handles this).
func (r *VoucherRepository) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	query := `SELECT code, usage, num_orders, start_datetime, end_datetime
		FROM vouchers WHERE code = $1`

	var voucher model.Voucher
	var usage string
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&voucher.Code,
		&usage,
		&voucher.NumOrders,
		&voucher.StartDatetime,
		&voucher.EndDatetime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get voucher by code %s: %w", code, err)
	}
	voucher.Usage = model.VoucherUsage(usage)
	return &voucher, nil
}
