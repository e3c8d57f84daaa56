package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferMaxUsesDefault caps redemptions for offers that leave
// MaxGlobalApplications unset.
const OfferMaxUsesDefault = 10000

// OfferType distinguishes how a conditional offer is applied.
type OfferType string

const (
	// OfferTypeSite offers apply automatically to every basket on the site.
	OfferTypeSite OfferType = "site"
	// OfferTypeVoucher offers require a voucher code to be applied.
	OfferTypeVoucher OfferType = "voucher"
)

// Condition holds the enterprise scoping attached to a conditional offer.
// An offer is only applicable to baskets owned by learners linked to the
// enterprise customer, optionally restricted to one of its catalogs.
type Condition struct {
	EnterpriseCustomerUUID        uuid.UUID
	EnterpriseCustomerName        string
	EnterpriseCustomerCatalogUUID uuid.UUID // uuid.Nil when the offer is not catalog-scoped
}

// ConditionalOffer is a promotional offer gated by an enterprise condition.
type ConditionalOffer struct {
	ID                    int64
	Name                  string
	Type                  OfferType
	Condition             Condition
	MaxGlobalApplications int // 0 means unlimited, capped at OfferMaxUsesDefault
}

// MaxUses returns the effective redemption cap for the offer.
func (o *ConditionalOffer) MaxUses() int {
	if o.MaxGlobalApplications > 0 {
		return o.MaxGlobalApplications
	}
	return OfferMaxUsesDefault
}

// VoucherUsage describes a voucher's redemption policy.
type VoucherUsage string

const (
	SingleUse           VoucherUsage = "single_use"
	MultiUse            VoucherUsage = "multi_use"
	OncePerCustomer     VoucherUsage = "once_per_customer"
	MultiUsePerCustomer VoucherUsage = "multi_use_per_customer"
)

// Voucher is a redeemable code tied to an offer.
type Voucher struct {
	Code          string
	Usage         VoucherUsage
	NumOrders     int
	StartDatetime time.Time
	EndDatetime   time.Time
}

// AssignmentStatus tracks the lifecycle of a code assigned to a learner.
type AssignmentStatus string

const (
	AssignmentEmailPending AssignmentStatus = "email_pending"
	AssignmentEmailBounced AssignmentStatus = "email_bounced"
	AssignmentRedeemed     AssignmentStatus = "redeemed"
	AssignmentRevoked      AssignmentStatus = "revoked"
)

// Active reports whether the assignment still occupies a redemption slot.
// Redeemed assignments are counted through the voucher's order count instead.
func (s AssignmentStatus) Active() bool {
	return s != AssignmentRedeemed && s != AssignmentRevoked
}

// OfferAssignment links a voucher code to a specific learner email.
type OfferAssignment struct {
	ID        int64
	OfferID   int64
	Code      string
	UserEmail string
	Status    AssignmentStatus
	CreatedAt time.Time
}

// User is the owner of a basket.
type User struct {
	ID       int64
	Username string
	Email    string
}

// BasketLine is a single product entry in a basket.
type BasketLine struct {
	ProductID   int64
	CourseRunID string // empty when the product is not tied to a course run
	Quantity    int
	Price       decimal.Decimal
}

// Basket holds the products a user is attempting to purchase, plus the
// vouchers applied to it. CatalogUUID carries the enterprise catalog the
// learner explicitly provided (request parameter or basket attribute),
// already resolved by the caller; uuid.Nil when absent.
type Basket struct {
	ID          int64
	Owner       *User
	Lines       []BasketLine
	CatalogUUID uuid.UUID
	Vouchers    []Voucher
}

// Total returns the basket total across all lines.
func (b *Basket) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range b.Lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// CourseRunIDs collects the course run of every basket line. The second
// return value is false if any line is not tied to a course run.
func (b *Basket) CourseRunIDs() ([]string, bool) {
	ids := make([]string, 0, len(b.Lines))
	for _, line := range b.Lines {
		if line.CourseRunID == "" {
			return nil, false
		}
		ids = append(ids, line.CourseRunID)
	}
	return ids, true
}

// FirstVoucher returns the voucher applied to the basket, or nil.
func (b *Basket) FirstVoucher() *Voucher {
	if len(b.Vouchers) == 0 {
		return nil
	}
	return &b.Vouchers[0]
}
