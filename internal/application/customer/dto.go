package customer

import (
	"time"

	"github.com/damneddesigns/storefront/internal/domain/customer"
)

// RegisterRequest creates a customer account
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
	Phone     string `json:"phone"`
}

// LoginRequest authenticates a customer
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest changes profile fields; empty fields are left as-is
type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// ChangePasswordRequest rotates the account password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// AddressRequest creates or replaces an address on file
type AddressRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	StreetLine1 string `json:"street_line1" binding:"required"`
	StreetLine2 string `json:"street_line2"`
	City        string `json:"city" binding:"required"`
	Province    string `json:"province"`
	PostalCode  string `json:"postal_code" binding:"required"`
	CountryCode string `json:"country_code" binding:"required,len=2"`
	Phone       string `json:"phone"`
	IsDefault   bool   `json:"is_default"`
}

// AddressResponse is the public shape of a stored address
type AddressResponse struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	StreetLine1 string `json:"street_line1"`
	StreetLine2 string `json:"street_line2,omitempty"`
	City        string `json:"city"`
	Province    string `json:"province,omitempty"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone,omitempty"`
	IsDefault   bool   `json:"is_default"`
}

// CustomerResponse is the public shape of a customer account
type CustomerResponse struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Phone     string            `json:"phone,omitempty"`
	Group     string            `json:"group"`
	Verified  bool              `json:"verified"`
	Addresses []AddressResponse `json:"addresses"`
	CreatedAt time.Time         `json:"created_at"`
}

// LoginResponse carries the session token and the authenticated customer
type LoginResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	ExpiresAt   time.Time         `json:"expires_at"`
	Customer    *CustomerResponse `json:"customer"`
}

// ToCustomerResponse maps a customer aggregate to its public shape
func ToCustomerResponse(c *customer.Customer) *CustomerResponse {
	addresses := make([]AddressResponse, 0, len(c.Addresses))
	for i := range c.Addresses {
		addresses = append(addresses, ToAddressResponse(&c.Addresses[i]))
	}
	return &CustomerResponse{
		ID:        c.ID.String(),
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
		Group:     string(c.Group),
		Verified:  c.Verified,
		Addresses: addresses,
		CreatedAt: c.CreatedAt,
	}
}

// ToAddressResponse maps an address to its public shape
func ToAddressResponse(a *customer.Address) AddressResponse {
	return AddressResponse{
		ID:          a.ID.String(),
		FullName:    a.FullName,
		StreetLine1: a.StreetLine1,
		StreetLine2: a.StreetLine2,
		City:        a.City,
		Province:    a.Province,
		PostalCode:  a.PostalCode,
		CountryCode: a.CountryCode,
		Phone:       a.Phone,
		IsDefault:   a.IsDefault,
	}
}
