package service

import (
	"github.com/Raymond9734/customer-directory-api/internal/models"
)

// RoleUser is the role granted to every registered customer
const RoleUser = "ROLE_USER"

// CustomerView is the external-facing projection of a customer.
// It never carries the credential hash; Username mirrors the email.
type CustomerView struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Gender   models.Gender `json:"gender"`
	Age      int           `json:"age"`
	Roles    []string      `json:"roles"`
	Username string        `json:"username"`
}

// newCustomerView builds a fresh view projection from a customer record
func newCustomerView(customer *models.Customer) *CustomerView {
	return &CustomerView{
		ID:       customer.ID,
		Name:     customer.Name,
		Email:    customer.Email,
		Gender:   customer.Gender,
		Age:      customer.Age,
		Roles:    []string{RoleUser},
		Username: customer.Email,
	}
}
