package domain

import "time"

// Customer is a service-center client record.
type Customer struct {
	ID        string
	Name      string
	Mobile    string
	Email     string
	Address   string
	Company   string
	GST       string
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
