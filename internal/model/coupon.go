package model

import "time"

// Coupon issue triggers. Policies declare which trigger auto-issues them.
const (
	TriggerSignup               = "signup"
	TriggerReservationCompleted = "reservation_completed"
	TriggerCheckinCompleted     = "checkin_completed"
	TriggerManualClaim          = "manual_claim"
)

// CouponPolicy is a store's (or the platform's, when StoreID is nil)
// auto-issue rule. Policy CRUD lives outside this core; we only read
// enabled policies when a trigger fires.
type CouponPolicy struct {
	ID             string   // coupon_policies.id
	StoreID        *string  // coupon_policies.store_id (nil = platform-wide)
	Type           string   // coupon_policies.type
	Name           string   // coupon_policies.name
	AutoIssueOn    string   // coupon_policies.auto_issue_on (trigger)
	DiscountAmount *int64   // coupon_policies.discount_amount (nullable)
	DiscountRate   *float64 // coupon_policies.discount_rate (nullable)
	MinSpend       *int64   // coupon_policies.min_spend (nullable)
	MaxDiscount    *int64   // coupon_policies.max_discount (nullable)
	BenefitItem    *string  // coupon_policies.benefit_item (nullable)
	BenefitValue   *string  // coupon_policies.benefit_value (nullable)
	ValidityDays   int      // coupon_policies.validity_days
	Enabled        bool     // coupon_policies.enabled
}

// Coupon is an issued coupon. At most one coupon exists per
// (reservation id, policy type) pair; the issuer enforces this before
// inserting.
type Coupon struct {
	ID             string     // coupons.id
	CustomerID     string     // coupons.customer_id
	StoreID        *string    // coupons.store_id (nullable)
	Type           string     // coupons.type
	Title          string     // coupons.title
	DiscountAmount *int64     // coupons.discount_amount (nullable)
	DiscountRate   *float64   // coupons.discount_rate (nullable)
	MinSpend       *int64     // coupons.min_spend (nullable)
	MaxDiscount    *int64     // coupons.max_discount (nullable)
	BenefitItem    *string    // coupons.benefit_item (nullable)
	BenefitValue   *string    // coupons.benefit_value (nullable)
	Status         string     // coupons.status ("active" on issue)
	IssuedAt       time.Time  // coupons.issued_at
	ExpiresAt      time.Time  // coupons.expires_at
	UsedAt         *time.Time // coupons.used_at (nullable)
	ReservationID  *string    // coupons.reservation_id (nullable)
}
