package customer

import (
	"strings"
	"time"

	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Group identifies a customer segment used by promotions and pricing
type Group string

const (
	GroupRetail    Group = "RETAIL"
	GroupWholesale Group = "WHOLESALE"
	GroupVIP       Group = "VIP"
)

// IsValid reports whether the group is a known segment
func (g Group) IsValid() bool {
	switch g {
	case GroupRetail, GroupWholesale, GroupVIP:
		return true
	}
	return false
}

// Customer is a registered shop account
type Customer struct {
	ID           uuid.UUID
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	PasswordHash string
	Group        Group `gorm:"column:customer_group"`
	Verified     bool
	Addresses    []Address `gorm:"foreignKey:CustomerID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Address is a shipping or billing address on file
type Address struct {
	ID          uuid.UUID
	CustomerID  uuid.UUID
	FullName    string
	StreetLine1 string
	StreetLine2 string
	City        string
	Province    string
	PostalCode  string
	CountryCode string // ISO 3166-1 alpha-2
	Phone       string
	IsDefault   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the database table name for addresses
func (Address) TableName() string { return "customer_addresses" }

// NewCustomer creates a customer with a bcrypt-hashed password
func NewCustomer(email, firstName, lastName, password string) (*Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_EMAIL", "A valid email address is required")
	}
	if len(password) < 8 {
		return nil, shared.NewDomainError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Customer{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
		Group:        GroupRetail,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CheckPassword verifies a plaintext password against the stored hash
func (c *Customer) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
}

// SetPassword re-hashes and replaces the customer's password
func (c *Customer) SetPassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.PasswordHash = string(hash)
	c.UpdatedAt = time.Now()
	return nil
}

// AssignGroup moves the customer into a segment
func (c *Customer) AssignGroup(group Group) error {
	if !group.IsValid() {
		return shared.NewDomainError("INVALID_GROUP", "Unknown customer group")
	}
	c.Group = group
	c.UpdatedAt = time.Now()
	return nil
}

// AddAddress attaches an address; the first address becomes the default
func (c *Customer) AddAddress(addr Address) *Address {
	now := time.Now()
	addr.ID = uuid.New()
	addr.CustomerID = c.ID
	addr.CreatedAt = now
	addr.UpdatedAt = now
	if len(c.Addresses) == 0 {
		addr.IsDefault = true
	}
	c.Addresses = append(c.Addresses, addr)
	c.UpdatedAt = now
	return &c.Addresses[len(c.Addresses)-1]
}

// DefaultAddress returns the default address, or nil if none is set
func (c *Customer) DefaultAddress() *Address {
	for i := range c.Addresses {
		if c.Addresses[i].IsDefault {
			return &c.Addresses[i]
		}
	}
	return nil
}
