package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/simonclouds/ecommerce/internal/enterprise"
	"github.com/simonclouds/ecommerce/internal/model"
)

// EnterpriseAPI defines the remote calls the eligibility engine needs from
// the enterprise service.
type EnterpriseAPI interface {
	FetchLearnerData(ctx context.Context, username string) ([]enterprise.LearnerData, error)
	CatalogContainsCourseRuns(ctx context.Context, courseRunIDs []string, enterpriseUUID, catalogUUID uuid.UUID) (bool, error)
}

// Switches holds the feature flags gating enterprise offers. They are plain
// injected values, not global lookups.
type Switches struct {
	EnterpriseOffersEnabled    bool
	EnterpriseOffersForCoupons bool
}

// EnterpriseCondition decides whether a basket qualifies for an enterprise
// customer offer. Every failed guard is logged and reported to the caller as
// a plain "not eligible"; remote-service failures never surface as errors.
type EnterpriseCondition struct {
	api      EnterpriseAPI
	switches Switches
}

// NewEnterpriseCondition creates an EnterpriseCondition with the given
// enterprise API client and feature switches.
func NewEnterpriseCondition(api EnterpriseAPI, switches Switches) *EnterpriseCondition {
	return &EnterpriseCondition{api: api, switches: switches}
}

// Name returns the display name for an offer gated by the given condition.
func (c *EnterpriseCondition) Name(cond model.Condition) string {
	return fmt.Sprintf("Basket contains a seat from %s's catalog", cond.EnterpriseCustomerName)
}

// IsSatisfied determines if the basket owner is eligible for the offer based
// on their association with the enterprise customer and the offer's catalog
// scoping. Guards are evaluated in order; the first failing guard wins.
func (c *EnterpriseCondition) IsSatisfied(ctx context.Context, offer *model.ConditionalOffer, basket *model.Basket) bool {
	if !c.switches.EnterpriseOffersEnabled {
		log.Debug().Int64("offer_id", offer.ID).Msg("enterprise offers switch is off")
		return false
	}

	if basket.Owner == nil {
		// An anonymous user is never linked to any enterprise customer.
		return false
	}

	if offer.Type == model.OfferTypeVoucher && !c.switches.EnterpriseOffersForCoupons {
		log.Info().Int64("offer_id", offer.ID).
			Msg("skipping voucher type enterprise offer until coupons switch is on")
		return false
	}

	learners, err := c.api.FetchLearnerData(ctx, basket.Owner.Username)
	if err != nil {
		log.Error().Err(err).
			Str("username", basket.Owner.Username).
			Int64("basket_id", basket.ID).
			Msg("failed to retrieve enterprise learner data")
		return false
	}

	if len(learners) == 0 {
		if offer.Type == model.OfferTypeSite {
			log.Debug().Int64("offer_id", offer.ID).
				Str("username", basket.Owner.Username).
				Msg("no learner data returned for site offer")
			return false
		}
	} else {
		learnerUUID := learners[0].EnterpriseCustomer.UUID
		if learnerUUID != offer.Condition.EnterpriseCustomerUUID.String() {
			log.Debug().Int64("offer_id", offer.ID).
				Str("learner_enterprise", learnerUUID).
				Str("condition_enterprise", offer.Condition.EnterpriseCustomerUUID.String()).
				Msg("learner's enterprise does not match this condition's enterprise")
			return false
		}
	}

	courseRunIDs, ok := basket.CourseRunIDs()
	if !ok {
		log.Warn().Int64("offer_id", offer.ID).Int64("basket_id", basket.ID).
			Msg("basket contains a product not related to a course run")
		return false
	}

	// An explicit catalog on the basket also filters out offers whose
	// condition has no catalog set.
	if basket.CatalogUUID != uuid.Nil && offer.Condition.EnterpriseCustomerCatalogUUID != basket.CatalogUUID {
		log.Warn().Int64("offer_id", offer.ID).
			Str("basket_catalog", basket.CatalogUUID.String()).
			Str("condition_catalog", offer.Condition.EnterpriseCustomerCatalogUUID.String()).
			Msg("enterprise catalog on the basket does not match the catalog for this condition")
		return false
	}

	contains, err := c.api.CatalogContainsCourseRuns(ctx, courseRunIDs,
		offer.Condition.EnterpriseCustomerUUID, offer.Condition.EnterpriseCustomerCatalogUUID)
	if err != nil {
		log.Error().Err(err).Int64("offer_id", offer.ID).
			Msg("failed to check catalog content for basket course runs")
		return false
	}
	if !contains {
		log.Warn().Int64("offer_id", offer.ID).
			Str("catalog", offer.Condition.EnterpriseCustomerCatalogUUID.String()).
			Strs("course_runs", courseRunIDs).
			Msg("enterprise catalog does not contain the courses in this basket")
		return false
	}

	return true
}

// AssignmentLister provides read access to the offer assignments of a code.
type AssignmentLister interface {
	ListByCode(ctx context.Context, code string) ([]model.OfferAssignment, error)
}

// AssignableCondition layers per-user redemption-slot accounting on top of
// the base enterprise check, for vouchers whose codes are assigned to
// specific learner emails.
type AssignableCondition struct {
	base        *EnterpriseCondition
	assignments AssignmentLister
}

// NewAssignableCondition composes the base condition with slot accounting.
func NewAssignableCondition(base *EnterpriseCondition, assignments AssignmentLister) *AssignableCondition {
	return &AssignableCondition{base: base, assignments: assignments}
}

// IsSatisfied reports whether the basket owner holds a redeemable slot for
// the voucher applied to the basket. A voucher with no assignments at all is
// open to any owner who passes the base condition.
func (c *AssignableCondition) IsSatisfied(ctx context.Context, offer *model.ConditionalOffer, basket *model.Basket) bool {
	if !c.base.IsSatisfied(ctx, offer, basket) {
		return false
	}

	voucher := basket.FirstVoucher()
	if voucher == nil {
		log.Warn().Int64("offer_id", offer.ID).Int64("basket_id", basket.ID).
			Msg("assignable offer evaluated against a basket with no voucher")
		return false
	}

	assignments, err := c.assignments.ListByCode(ctx, voucher.Code)
	if err != nil {
		log.Error().Err(err).Str("code", voucher.Code).
			Msg("failed to load offer assignments for voucher")
		return false
	}

	// No assignments were created for this voucher: any qualifying owner
	// may redeem it.
	if len(assignments) == 0 {
		return true
	}

	slotAvailable := false
	for _, a := range assignments {
		if a.UserEmail == basket.Owner.Email && a.Status.Active() {
			slotAvailable = true
			break
		}
	}

	var redemptionsAvailable bool
	if voucher.Usage == model.SingleUse {
		redemptionsAvailable = voucher.NumOrders == 0
	} else {
		redemptionsAvailable = voucher.NumOrders < offer.MaxUses()
	}

	return slotAvailable && redemptionsAvailable
}

// SlotsAvailableForAssignment calculates how many assignment slots remain on
// a voucher. activeAssignments counts existing assignments that are neither
// redeemed nor revoked; redeemed ones are accounted through NumOrders.
func SlotsAvailableForAssignment(voucher *model.Voucher, offer *model.ConditionalOffer, activeAssignments int) int {
	if voucher.Usage == model.SingleUse || voucher.Usage == model.MultiUsePerCustomer {
		if voucher.NumOrders > 0 || activeAssignments > 0 {
			return 0
		}
		if offer.MaxGlobalApplications > 0 {
			return offer.MaxGlobalApplications
		}
		return 1
	}

	slots := offer.MaxUses() - (voucher.NumOrders + activeAssignments)
	if slots < 0 {
		return 0
	}
	return slots
}
