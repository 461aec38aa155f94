package domain

import "time"

// AntivirusLicense tracks a license sold to a customer.
type AntivirusLicense struct {
	ID         string
	CustomerID string
	Product    string
	LicenseKey string
	ExpiryDate time.Time
	IsDeleted  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DaysUntilExpiry returns whole days remaining relative to now; negative when
// already expired.
func (l AntivirusLicense) DaysUntilExpiry(now time.Time) int {
	return int(l.ExpiryDate.Sub(now).Hours() / 24)
}
