package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/luggage-storage-reservation/internal/model"
	"github.com/iliyamo/luggage-storage-reservation/internal/repository"
)

// CouponIssuer auto-issues coupons when a lifecycle trigger fires. It is a
// best-effort collaborator: lifecycle transitions call IssueBestEffort
// after their commit, and a failure here is logged and swallowed, never
// surfaced to the caller of the transition.
type CouponIssuer struct {
	coupons *repository.CouponRepo
}

// NewCouponIssuer returns a CouponIssuer over the given coupon repository.
func NewCouponIssuer(coupons *repository.CouponRepo) *CouponIssuer {
	return &CouponIssuer{coupons: coupons}
}

// IssueParams identifies who triggered the issue and why.
type IssueParams struct {
	CustomerID    string
	StoreID       string // empty means only platform-wide policies apply
	Trigger       string // signup | reservation_completed | checkin_completed | manual_claim
	ReservationID string // empty skips per-reservation deduplication
}

// IssueForTrigger issues one coupon per matching enabled policy and returns
// the created coupon ids. A reservation receives at most one coupon per
// policy type, so replaying a trigger for the same reservation issues
// nothing new.
func (s *CouponIssuer) IssueForTrigger(ctx context.Context, p IssueParams) ([]string, error) {
	if p.CustomerID == "" || p.Trigger == "" {
		return nil, nil
	}
	policies, err := s.coupons.ActivePoliciesByTrigger(ctx, p.Trigger, p.StoreID)
	if err != nil {
		return nil, err
	}

	var created []string
	for _, policy := range policies {
		if p.ReservationID != "" {
			dup, err := s.coupons.ExistsForReservationAndType(ctx, p.ReservationID, policy.Type)
			if err != nil {
				return created, err
			}
			if dup {
				continue
			}
		}
		validity := policy.ValidityDays
		if validity <= 0 {
			validity = 7
		}
		now := time.Now().UTC()
		coupon := &model.Coupon{
			ID:             "coup_" + uuid.NewString(),
			CustomerID:     p.CustomerID,
			StoreID:        policy.StoreID,
			Type:           policy.Type,
			Title:          policy.Name,
			DiscountAmount: policy.DiscountAmount,
			DiscountRate:   policy.DiscountRate,
			MinSpend:       policy.MinSpend,
			MaxDiscount:    policy.MaxDiscount,
			BenefitItem:    policy.BenefitItem,
			BenefitValue:   policy.BenefitValue,
			Status:         "active",
			IssuedAt:       now,
			ExpiresAt:      now.AddDate(0, 0, validity),
		}
		if p.ReservationID != "" {
			rid := p.ReservationID
			coupon.ReservationID = &rid
		}
		if err := s.coupons.Insert(ctx, coupon); err != nil {
			return created, err
		}
		created = append(created, coupon.ID)
	}
	return created, nil
}

// IssueBestEffort runs IssueForTrigger and swallows any error after logging
// it. Lifecycle transitions call this after commit so coupon trouble can
// never fail or roll back a check-in or check-out.
func (s *CouponIssuer) IssueBestEffort(ctx context.Context, p IssueParams) {
	if _, err := s.IssueForTrigger(ctx, p); err != nil {
		log.Printf("coupon-issuer: trigger=%s reservation=%s failed: %v", p.Trigger, p.ReservationID, err)
	}
}
