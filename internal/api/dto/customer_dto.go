package dto

import (
	"time"

	"github.com/mp2tech/service-center/internal/domain"
)

// CustomerRequest payload for create/update.
type CustomerRequest struct {
	Name    string `json:"name"`
	Mobile  string `json:"mobile"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Company string `json:"company"`
	GST     string `json:"gst"`
}

// CustomerResponse is the public view of a customer.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Mobile    string    `json:"mobile"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	Company   string    `json:"company,omitempty"`
	GST       string    `json:"gst,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCustomerResponse maps a domain customer.
func NewCustomerResponse(customer *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		Mobile:    customer.Mobile,
		Email:     customer.Email,
		Address:   customer.Address,
		Company:   customer.Company,
		GST:       customer.GST,
		CreatedAt: customer.CreatedAt,
	}
}
