package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simonclouds/ecommerce/internal/model"
)

// VoucherRepositoryInterface defines the interface for voucher data access.
type VoucherRepositoryInterface interface {
	GetByCode(ctx context.Context, code string) (*model.Voucher, error)
}

// OfferRepositoryInterface defines the interface for offer data access.
type OfferRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*model.ConditionalOffer, error)
	GetEnterpriseOfferByCode(ctx context.Context, code string) (*model.ConditionalOffer, error)
}

// EligibilityService evaluates baskets against enterprise offers. Voucher
// codes go through the assignable condition (base check plus slot
// accounting); site offers selected by ID go through the base check only.
type EligibilityService struct {
	vouchers    VoucherRepositoryInterface
	offers      OfferRepositoryInterface
	assignments AssignmentLister
	condition   *EnterpriseCondition
	assignable  *AssignableCondition
}

// NewEligibilityService wires the eligibility engine with its repositories,
// remote enterprise API and feature switches.
func NewEligibilityService(
	vouchers VoucherRepositoryInterface,
	offers OfferRepositoryInterface,
	assignments AssignmentLister,
	api EnterpriseAPI,
	switches Switches,
) *EligibilityService {
	base := NewEnterpriseCondition(api, switches)
	return &EligibilityService{
		vouchers:    vouchers,
		offers:      offers,
		assignments: assignments,
		condition:   base,
		assignable:  NewAssignableCondition(base, assignments),
	}
}

// CheckBasket evaluates the submitted basket and returns the eligibility
// outcome. Returns ErrInvalidRequest when neither a voucher code nor an
// offer ID selects the offer, ErrVoucherNotFound / ErrOfferNotFound when the
// selection does not resolve.
func (s *EligibilityService) CheckBasket(ctx context.Context, req *model.EligibilityRequest) (*model.EligibilityResponse, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	basket, err := buildBasket(&req.Basket)
	if err != nil {
		return nil, err
	}

	resp := &model.EligibilityResponse{
		Total: basket.Total().StringFixed(2),
	}

	switch {
	case req.Code != "":
		voucher, err := s.vouchers.GetByCode(ctx, req.Code)
		if err != nil {
			return nil, fmt.Errorf("get voucher: %w", err)
		}
		if voucher == nil {
			return nil, ErrVoucherNotFound
		}

		offer, err := s.offers.GetEnterpriseOfferByCode(ctx, req.Code)
		if err != nil {
			return nil, fmt.Errorf("get enterprise offer: %w", err)
		}
		if offer == nil {
			return nil, ErrOfferNotFound
		}

		basket.Vouchers = []model.Voucher{*voucher}
		resp.Eligible = s.assignable.IsSatisfied(ctx, offer, basket)

	case req.OfferID != 0:
		offer, err := s.offers.GetByID(ctx, req.OfferID)
		if err != nil {
			return nil, fmt.Errorf("get offer: %w", err)
		}
		if offer == nil {
			return nil, ErrOfferNotFound
		}

		resp.Eligible = s.condition.IsSatisfied(ctx, offer, basket)

	default:
		return nil, ErrInvalidRequest
	}

	return resp, nil
}

// SlotsAvailable returns the number of assignment slots left on a voucher.
// Used by coupon administration to decide how many more learner emails a
// code can be assigned to.
func (s *EligibilityService) SlotsAvailable(ctx context.Context, code string) (int, error) {
	voucher, err := s.vouchers.GetByCode(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("get voucher: %w", err)
	}
	if voucher == nil {
		return 0, ErrVoucherNotFound
	}

	offer, err := s.offers.GetEnterpriseOfferByCode(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("get enterprise offer: %w", err)
	}
	if offer == nil {
		return 0, ErrOfferNotFound
	}

	assignments, err := s.assignments.ListByCode(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("list assignments: %w", err)
	}

	active := 0
	for _, a := range assignments {
		if a.Status.Active() {
			active++
		}
	}

	return SlotsAvailableForAssignment(voucher, offer, active), nil
}

// buildBasket maps the request DTO onto the domain basket. An invalid
// catalog UUID is dropped rather than rejected, matching the lenient
// handling of learner-provided catalog values. An invalid price is an error.
func buildBasket(req *model.BasketRequest) (*model.Basket, error) {
	basket := &model.Basket{}

	if req.Owner != nil {
		basket.Owner = &model.User{
			Username: req.Owner.Username,
			Email:    req.Owner.Email,
		}
	}

	if req.CatalogUUID != "" {
		if parsed, err := uuid.Parse(req.CatalogUUID); err == nil {
			basket.CatalogUUID = parsed
		}
	}

	for _, line := range req.Lines {
		price := decimal.Zero
		if line.Price != "" {
			parsed, err := decimal.NewFromString(line.Price)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid price %q", ErrInvalidRequest, line.Price)
			}
			price = parsed
		}
		basket.Lines = append(basket.Lines, model.BasketLine{
			ProductID:   line.ProductID,
			CourseRunID: line.CourseRunID,
			Quantity:    line.Quantity,
			Price:       price,
		})
	}

	return basket, nil
}
