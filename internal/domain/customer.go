package domain

import "time"

// CustomerTier orders service tiers from lowest to highest.
type CustomerTier string

const (
	TierStandard CustomerTier = "STANDARD"
	TierPremium  CustomerTier = "PREMIUM"
	TierVIP      CustomerTier = "VIP"
)

// Valid reports whether the tier is known.
func (t CustomerTier) Valid() bool {
	switch t {
	case TierStandard, TierPremium, TierVIP:
		return true
	}
	return false
}

// Customer links an identity to a service tier.
type Customer struct {
	ID        string
	UserID    string
	Name      string
	Email     string
	Tier      CustomerTier
	CreatedAt time.Time
	UpdatedAt time.Time
}
