// Package customer exposes account registration, authentication and
// address book use cases.
package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/damneddesigns/storefront/internal/domain/customer"
	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/damneddesigns/storefront/internal/infrastructure/auth"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong
// passwords so login failures do not leak which accounts exist
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Email or password is incorrect")

// Service implements customer account use cases
type Service struct {
	customers customer.Repository
	tokens    *auth.JWTService
	logger    *zap.Logger
}

// NewService creates a customer service
func NewService(customers customer.Repository, tokens *auth.JWTService, logger *zap.Logger) *Service {
	return &Service{customers: customers, tokens: tokens, logger: logger}
}

// Register creates a new customer account
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*CustomerResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.customers.FindByEmail(ctx, email); err == nil {
		return nil, shared.ErrAlreadyExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("check existing account: %w", err)
	}

	cust, err := customer.NewCustomer(email, req.FirstName, req.LastName, req.Password)
	if err != nil {
		return nil, err
	}
	cust.Phone = req.Phone

	if err := s.customers.Save(ctx, cust); err != nil {
		return nil, fmt.Errorf("save customer: %w", err)
	}

	s.logger.Info("Customer registered", zap.String("customer_id", cust.ID.String()))
	return ToCustomerResponse(cust), nil
}

// Login authenticates a customer and issues a session token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	cust, err := s.customers.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up customer: %w", err)
	}
	if !cust.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(cust.ID, cust.Email, string(cust.Group))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		Customer:    ToCustomerResponse(cust),
	}, nil
}

// GetProfile returns the customer's account
func (s *Service) GetProfile(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	cust, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return ToCustomerResponse(cust), nil
}

// UpdateProfile changes profile fields; empty request fields are kept
func (s *Service) UpdateProfile(ctx context.Context, customerID uuid.UUID, req *UpdateProfileRequest) (*CustomerResponse, error) {
	cust, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != "" {
		cust.FirstName = req.FirstName
	}
	if req.LastName != "" {
		cust.LastName = req.LastName
	}
	if req.Phone != "" {
		cust.Phone = req.Phone
	}

	if err := s.customers.Save(ctx, cust); err != nil {
		return nil, fmt.Errorf("save customer: %w", err)
	}
	return ToCustomerResponse(cust), nil
}

// ChangePassword rotates the password after verifying the current one
func (s *Service) ChangePassword(ctx context.Context, customerID uuid.UUID, req *ChangePasswordRequest) error {
	cust, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return err
	}
	if !cust.CheckPassword(req.CurrentPassword) {
		return ErrInvalidCredentials
	}
	if err := cust.SetPassword(req.NewPassword); err != nil {
		return err
	}
	if err := s.customers.Save(ctx, cust); err != nil {
		return fmt.Errorf("save customer: %w", err)
	}
	return nil
}

// AddAddress stores a new address; the first one becomes the default
func (s *Service) AddAddress(ctx context.Context, customerID uuid.UUID, req *AddressRequest) (*CustomerResponse, error) {
	cust, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	addr := cust.AddAddress(customer.Address{
		FullName:    req.FullName,
		StreetLine1: req.StreetLine1,
		StreetLine2: req.StreetLine2,
		City:        req.City,
		Province:    req.Province,
		PostalCode:  req.PostalCode,
		CountryCode: strings.ToUpper(req.CountryCode),
		Phone:       req.Phone,
	})
	if req.IsDefault {
		s.setDefault(cust, addr.ID)
	}

	if err := s.customers.Save(ctx, cust); err != nil {
		return nil, fmt.Errorf("save customer: %w", err)
	}
	return ToCustomerResponse(cust), nil
}

// RemoveAddress deletes an address; a removed default falls over to the
// first remaining address
func (s *Service) RemoveAddress(ctx context.Context, customerID, addressID uuid.UUID) (*CustomerResponse, error) {
	cust, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	found := false
	wasDefault := false
	for i := range cust.Addresses {
		if cust.Addresses[i].ID == addressID {
			wasDefault = cust.Addresses[i].IsDefault
			cust.Addresses = append(cust.Addresses[:i], cust.Addresses[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return nil, shared.ErrNotFound
	}
	if wasDefault && len(cust.Addresses) > 0 {
		cust.Addresses[0].IsDefault = true
	}

	if err := s.customers.Save(ctx, cust); err != nil {
		return nil, fmt.Errorf("save customer: %w", err)
	}
	return ToCustomerResponse(cust), nil
}

// SetDefaultAddress marks one address as the default
func (s *Service) SetDefaultAddress(ctx context.Context, customerID, addressID uuid.UUID) (*CustomerResponse, error) {
	cust, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cust.Addresses {
		if cust.Addresses[i].ID == addressID {
			found = true
			break
		}
	}
	if !found {
		return nil, shared.ErrNotFound
	}
	s.setDefault(cust, addressID)

	if err := s.customers.Save(ctx, cust); err != nil {
		return nil, fmt.Errorf("save customer: %w", err)
	}
	return ToCustomerResponse(cust), nil
}

func (s *Service) setDefault(cust *customer.Customer, addressID uuid.UUID) {
	for i := range cust.Addresses {
		cust.Addresses[i].IsDefault = cust.Addresses[i].ID == addressID
	}
}
