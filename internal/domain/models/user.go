package models

import (
	"time"
)

// Tier is a subscription entitlement level.
type Tier string

const (
	TierFree       Tier = "FREE"
	TierPro        Tier = "PRO"
	TierEnterprise Tier = "ENTERPRISE"
)

// IsPaid reports whether the tier is one of the paid plans.
func (t Tier) IsPaid() bool {
	return t == TierPro || t == TierEnterprise
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == TierFree || t.IsPaid()
}

// Rank orders tiers for comparisons (FREE < PRO < ENTERPRISE).
func (t Tier) Rank() int {
	switch t {
	case TierPro:
		return 1
	case TierEnterprise:
		return 2
	default:
		return 0
	}
}

// User is the identity of a caller, named or anonymous.
type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        *string   `json:"email,omitempty" db:"email"`
	Image        *string   `json:"image,omitempty" db:"image"`
	Subscription Tier      `json:"subscription" db:"subscription"`
	IsAnonymous  bool      `json:"is_anonymous" db:"is_anonymous"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Usage is the caller's generation allowance.
type Usage struct {
	Tier       Tier `json:"tier"`
	Upgraded   bool `json:"upgraded"`
	TotalForms int  `json:"total_forms"`
	// Limit and Remaining are nil for upgraded identities (unlimited).
	Limit     *int `json:"limit"`
	Remaining *int `json:"remaining"`
}

// MergeResult reports what an anonymous-to-named account link moved.
type MergeResult struct {
	FromUserID       string `json:"from_user_id"`
	ToUserID         string `json:"to_user_id"`
	FormsTransferred int64  `json:"forms_transferred"`
	CarriedTier      *Tier  `json:"carried_tier,omitempty"`
}
