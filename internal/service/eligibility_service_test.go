package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonclouds/ecommerce/internal/enterprise"
	"github.com/simonclouds/ecommerce/internal/model"
)

// mockVoucherRepository is a mock implementation of VoucherRepositoryInterface.
type mockVoucherRepository struct {
	getByCodeFn func(ctx context.Context, code string) (*model.Voucher, error)
}

func (m *mockVoucherRepository) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, code)
	}
	return nil, nil
}

// mockOfferRepository is a mock implementation of OfferRepositoryInterface.
type mockOfferRepository struct {
	getByIDFn                  func(ctx context.Context, id int64) (*model.ConditionalOffer, error)
	getEnterpriseOfferByCodeFn func(ctx context.Context, code string) (*model.ConditionalOffer, error)
}

func (m *mockOfferRepository) GetByID(ctx context.Context, id int64) (*model.ConditionalOffer, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockOfferRepository) GetEnterpriseOfferByCode(ctx context.Context, code string) (*model.ConditionalOffer, error) {
	if m.getEnterpriseOfferByCodeFn != nil {
		return m.getEnterpriseOfferByCodeFn(ctx, code)
	}
	return nil, nil
}

func eligibleAPI() *mockEnterpriseAPI {
	return &mockEnterpriseAPI{
		fetchLearnerDataFn: func(ctx context.Context, username string) ([]enterprise.LearnerData, error) {
			return linkedLearner(), nil
		},
	}
}

func basketRequest() model.BasketRequest {
	return model.BasketRequest{
		Owner: &model.BasketOwnerRequest{Username: "jdoe", Email: "jdoe@example.com"},
		Lines: []model.BasketLineRequest{
			{ProductID: 1, CourseRunID: "course-v1:acme+101+2026", Quantity: 2, Price: "49.50"},
		},
	}
}

func TestEligibilityService_CheckBasket_ByOfferID(t *testing.T) {
	offers := &mockOfferRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.ConditionalOffer, error) {
			assert.Equal(t, int64(17), id)
			return testOffer(model.OfferTypeSite), nil
		},
	}
	svc := NewEligibilityService(&mockVoucherRepository{}, offers, &mockAssignmentLister{}, eligibleAPI(), allSwitchesOn())

	resp, err := svc.CheckBasket(context.Background(), &model.EligibilityRequest{
		OfferID: 17,
		Basket:  basketRequest(),
	})

	require.NoError(t, err)
	assert.True(t, resp.Eligible)
	assert.Equal(t, "99.00", resp.Total)
}

func TestEligibilityService_CheckBasket_ByCode(t *testing.T) {
	vouchers := &mockVoucherRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Voucher, error) {
			assert.Equal(t, "CODE1", code)
			return &model.Voucher{Code: "CODE1", Usage: model.MultiUse}, nil
		},
	}
	offers := &mockOfferRepository{
		getEnterpriseOfferByCodeFn: func(ctx context.Context, code string) (*model.ConditionalOffer, error) {
			return testOffer(model.OfferTypeVoucher), nil
		},
	}
	lister := &mockAssignmentLister{
		listByCodeFn: func(ctx context.Context, code string) ([]model.OfferAssignment, error) {
			return []model.OfferAssignment{
				{Code: "CODE1", UserEmail: "jdoe@example.com", Status: model.AssignmentEmailPending},
			}, nil
		},
	}
	svc := NewEligibilityService(vouchers, offers, lister, eligibleAPI(), allSwitchesOn())

	resp, err := svc.CheckBasket(context.Background(), &model.EligibilityRequest{
		Code:   "CODE1",
		Basket: basketRequest(),
	})

	require.NoError(t, err)
	assert.True(t, resp.Eligible)
}

func TestEligibilityService_CheckBasket_VoucherNotFound(t *testing.T) {
	svc := NewEligibilityService(&mockVoucherRepository{}, &mockOfferRepository{}, &mockAssignmentLister{}, eligibleAPI(), allSwitchesOn())

	_, err := svc.CheckBasket(context.Background(), &model.EligibilityRequest{
		Code:   "MISSING",
		Basket: basketRequest(),
	})

	assert.ErrorIs(t, err, ErrVoucherNotFound)
}

func TestEligibilityService_CheckBasket_OfferNotFound(t *testing.T) {
	vouchers := &mockVoucherRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Voucher, error) {
			return &model.Voucher{Code: code, Usage: model.SingleUse}, nil
		},
	}
	svc := NewEligibilityService(vouchers, &mockOfferRepository{}, &mockAssignmentLister{}, eligibleAPI(), allSwitchesOn())

	_, err := svc.CheckBasket(context.Background(), &model.EligibilityRequest{
		Code:   "CODE1",
		Basket: basketRequest(),
	})
	assert.ErrorIs(t, err, ErrOfferNotFound)

	_, err = svc.CheckBasket(context.Background(), &model.EligibilityRequest{
		OfferID: 99,
		Basket:  basketRequest(),
	})
	assert.ErrorIs(t, err, ErrOfferNotFound)
}

func TestEligibilityService_CheckBasket_NoSelector(t *testing.T) {
	svc := NewEligibilityService(&mockVoucherRepository{}, &mockOfferRepository{}, &mockAssignmentLister{}, eligibleAPI(), allSwitchesOn())

	_, err := svc.CheckBasket(context.Background(), &model.EligibilityRequest{
		Basket: basketRequest(),
	})

	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestEligibilityService_CheckBasket_InvalidPrice(t *testing.T) {
	svc := NewEligibilityService(&mockVoucherRepository{}, &mockOfferRepository{}, &mockAssignmentLister{}, eligibleAPI(), allSwitchesOn())

	req := &model.EligibilityRequest{OfferID: 17, Basket: basketRequest()}
	req.Basket.Lines[0].Price = "not-a-number"

	_, err := svc.CheckBasket(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestEligibilityService_CheckBasket_InvalidCatalogUUIDIgnored(t *testing.T) {
	offers := &mockOfferRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.ConditionalOffer, error) {
			return testOffer(model.OfferTypeSite), nil
		},
	}
	svc := NewEligibilityService(&mockVoucherRepository{}, offers, &mockAssignmentLister{}, eligibleAPI(), allSwitchesOn())

	req := &model.EligibilityRequest{OfferID: 17, Basket: basketRequest()}
	req.Basket.CatalogUUID = "garbage"

	resp, err := svc.CheckBasket(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Eligible, "an unparseable catalog value must not scope the basket")
}

func TestEligibilityService_CheckBasket_RepositoryError(t *testing.T) {
	wantErr := errors.New("database connection failed")
	vouchers := &mockVoucherRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Voucher, error) {
			return nil, wantErr
		},
	}
	svc := NewEligibilityService(vouchers, &mockOfferRepository{}, &mockAssignmentLister{}, eligibleAPI(), allSwitchesOn())

	_, err := svc.CheckBasket(context.Background(), &model.EligibilityRequest{
		Code:   "CODE1",
		Basket: basketRequest(),
	})

	assert.ErrorIs(t, err, wantErr)
}

func TestEligibilityService_SlotsAvailable(t *testing.T) {
	vouchers := &mockVoucherRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Voucher, error) {
			return &model.Voucher{Code: code, Usage: model.MultiUse, NumOrders: 2}, nil
		},
	}
	offers := &mockOfferRepository{
		getEnterpriseOfferByCodeFn: func(ctx context.Context, code string) (*model.ConditionalOffer, error) {
			return &model.ConditionalOffer{ID: 17, MaxGlobalApplications: 10}, nil
		},
	}
	lister := &mockAssignmentLister{
		listByCodeFn: func(ctx context.Context, code string) ([]model.OfferAssignment, error) {
			return []model.OfferAssignment{
				{UserEmail: "a@example.com", Status: model.AssignmentEmailPending},
				{UserEmail: "b@example.com", Status: model.AssignmentRedeemed},
				{UserEmail: "c@example.com", Status: model.AssignmentEmailBounced},
			}, nil
		},
	}
	svc := NewEligibilityService(vouchers, offers, lister, eligibleAPI(), allSwitchesOn())

	// 10 max - 2 orders - 2 active assignments (redeemed does not count).
	slots, err := svc.SlotsAvailable(context.Background(), "CODE1")
	require.NoError(t, err)
	assert.Equal(t, 6, slots)
}

func TestEligibilityService_SlotsAvailable_VoucherNotFound(t *testing.T) {
	svc := NewEligibilityService(&mockVoucherRepository{}, &mockOfferRepository{}, &mockAssignmentLister{}, eligibleAPI(), allSwitchesOn())

	_, err := svc.SlotsAvailable(context.Background(), "MISSING")
	assert.ErrorIs(t, err, ErrVoucherNotFound)
}
