package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simonclouds/ecommerce/internal/model"
)

// OfferPoolInterface defines the database operations needed by
// OfferRepository.
type OfferPoolInterface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OfferRepository provides data access for conditional offers using pgx.
type OfferRepository struct {
	pool OfferPoolInterface
}

// NewOfferRepository creates a new OfferRepository with the given pool.
func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

// NewOfferRepositoryWithPool creates a new OfferRepository with a custom pool
// interface. This is primarily used for testing.
func NewOfferRepositoryWithPool(pool OfferPoolInterface) *OfferRepository {
	return &OfferRepository{pool: pool}
}

const offerColumns = `id, name, offer_type, max_global_applications,
	enterprise_customer_uuid, enterprise_customer_name, enterprise_customer_catalog_uuid`

// GetByID retrieves a conditional offer by its ID.
// Returns nil, nil if the offer is not found (service layer handles this).
func (r *OfferRepository) GetByID(ctx context.Context, id int64) (*model.ConditionalOffer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`

	offer, err := r.scanOffer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get offer by id %d: %w", id, err)
	}
	return offer, nil
}

// GetEnterpriseOfferByCode retrieves the enterprise offer attached to a
// voucher code. A voucher may carry several offers; only the one scoped to an
// enterprise customer participates in assignment accounting.
// Returns nil, nil if the code carries no enterprise offer.
func (r *OfferRepository) GetEnterpriseOfferByCode(ctx context.Context, code string) (*model.ConditionalOffer, error) {
	query := `SELECT o.id, o.name, o.offer_type, o.max_global_applications,
		o.enterprise_customer_uuid, o.enterprise_customer_name, o.enterprise_customer_catalog_uuid
		FROM offers o
		JOIN voucher_offers vo ON vo.offer_id = o.id
		WHERE vo.code = $1 AND o.enterprise_customer_uuid IS NOT NULL
		ORDER BY o.id LIMIT 1`

	offer, err := r.scanOffer(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get enterprise offer for code %s: %w", code, err)
	}
	return offer, nil
}

func (r *OfferRepository) scanOffer(row pgx.Row) (*model.ConditionalOffer, error) {
	var offer model.ConditionalOffer
	var offerType string
	var catalogUUID *uuid.UUID

	err := row.Scan(
		&offer.ID,
		&offer.Name,
		&offerType,
		&offer.MaxGlobalApplications,
		&offer.Condition.EnterpriseCustomerUUID,
		&offer.Condition.EnterpriseCustomerName,
		&catalogUUID,
	)
	if err != nil {
		return nil, err
	}

	offer.Type = model.OfferType(offerType)
	if catalogUUID != nil {
		offer.Condition.EnterpriseCustomerCatalogUUID = *catalogUUID
	}
	return &offer, nil
}
