package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/luggage-storage-reservation/internal/model"
)

// CouponRepo reads auto-issue policies and writes issued coupons. Policy
// CRUD belongs to an external surface; this core only consumes enabled
// policies when a lifecycle trigger fires.
type CouponRepo struct {
	db *sql.DB
}

// NewCouponRepo returns a CouponRepo bound to the given database.
func NewCouponRepo(db *sql.DB) *CouponRepo { return &CouponRepo{db: db} }

// ActivePoliciesByTrigger returns enabled policies whose auto_issue_on
// matches the trigger, scoped to the store plus platform-wide policies.
// With an empty storeID only platform-wide policies match.
func (r *CouponRepo) ActivePoliciesByTrigger(ctx context.Context, trigger, storeID string) ([]model.CouponPolicy, error) {
	q := `SELECT id, store_id, type, name, auto_issue_on, discount_amount, discount_rate,
	             min_spend, max_discount, benefit_item, benefit_value, validity_days, enabled
	      FROM coupon_policies
	      WHERE auto_issue_on = ? AND enabled = 1`
	args := []interface{}{trigger}
	if storeID != "" {
		q += ` AND (store_id IS NULL OR store_id = ?)`
		args = append(args, storeID)
	} else {
		q += ` AND store_id IS NULL`
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []model.CouponPolicy
	for rows.Next() {
		var p model.CouponPolicy
		var storeID sql.NullString
		var discountAmount, minSpend, maxDiscount sql.NullInt64
		var discountRate sql.NullFloat64
		var benefitItem, benefitValue sql.NullString
		var validityDays sql.NullInt64
		if err := rows.Scan(
			&p.ID, &storeID, &p.Type, &p.Name, &p.AutoIssueOn,
			&discountAmount, &discountRate, &minSpend, &maxDiscount,
			&benefitItem, &benefitValue, &validityDays, &p.Enabled,
		); err != nil {
			return nil, err
		}
		if storeID.Valid {
			v := storeID.String
			p.StoreID = &v
		}
		if discountAmount.Valid {
			v := discountAmount.Int64
			p.DiscountAmount = &v
		}
		if discountRate.Valid {
			v := discountRate.Float64
			p.DiscountRate = &v
		}
		if minSpend.Valid {
			v := minSpend.Int64
			p.MinSpend = &v
		}
		if maxDiscount.Valid {
			v := maxDiscount.Int64
			p.MaxDiscount = &v
		}
		if benefitItem.Valid {
			v := benefitItem.String
			p.BenefitItem = &v
		}
		if benefitValue.Valid {
			v := benefitValue.String
			p.BenefitValue = &v
		}
		if validityDays.Valid {
			p.ValidityDays = int(validityDays.Int64)
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return policies, nil
}

// ExistsForReservationAndType reports whether a coupon of the given policy
// type was already issued against the reservation. This is the natural
// deduplication: at most one coupon per (reservation, policy type).
func (r *CouponRepo) ExistsForReservationAndType(ctx context.Context, reservationID, policyType string) (bool, error) {
	const q = `SELECT id FROM coupons WHERE reservation_id = ? AND type = ? LIMIT 1`
	var id string
	err := r.db.QueryRowContext(ctx, q, reservationID, policyType).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert writes one issued coupon.
func (r *CouponRepo) Insert(ctx context.Context, c *model.Coupon) error {
	const q = `INSERT INTO coupons (
	             id, customer_id, store_id, type, title,
	             discount_amount, discount_rate, min_spend, max_discount,
	             benefit_item, benefit_value, status, issued_at, expires_at,
	             reservation_id, created_at, updated_at
	           ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, UTC_TIMESTAMP(), UTC_TIMESTAMP())`
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.CustomerID, c.StoreID, c.Type, c.Title,
		c.DiscountAmount, c.DiscountRate, c.MinSpend, c.MaxDiscount,
		c.BenefitItem, c.BenefitValue, c.Status, c.IssuedAt.UTC(), c.ExpiresAt.UTC(),
		c.ReservationID,
	)
	return err
}
