package dto

import "livecart/internal/domain/customer"

// ListCustomersQuery contains customer overview list filters.
type ListCustomersQuery struct {
	PageRequest
	Search          string `form:"search"`
	WithOutstanding bool   `form:"withOutstanding"`
	MinJoyReserve   int    `form:"minJoyReserve" binding:"omitempty,min=0"`
	Sort            string `form:"sort"`
}

// ToFilter converts query to a domain list filter.
func (q *ListCustomersQuery) ToFilter() customer.ListFilter {
	q.Defaults()
	return customer.ListFilter{
		Search:          q.Search,
		WithOutstanding: q.WithOutstanding,
		MinJoyReserve:   q.MinJoyReserve,
		Sort:            customer.Sort(q.Sort),
		Limit:           q.Limit,
		Offset:          q.Offset,
	}
}

// UpdateCustomerRequest represents a customer profile update.
type UpdateCustomerRequest struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// ApplyTo applies updates to an existing customer.
func (r *UpdateCustomerRequest) ApplyTo(c *customer.Customer) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
	if r.Address != nil {
		c.Address = *r.Address
	}
	if r.Notes != nil {
		c.Notes = *r.Notes
	}
}
