package customer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/damneddesigns/storefront/internal/domain/customer"
	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/damneddesigns/storefront/internal/infrastructure/auth"
	"github.com/damneddesigns/storefront/internal/infrastructure/config"
)

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*customer.Customer
}

func newFakeCustomerRepo(customers ...*customer.Customer) *fakeCustomerRepo {
	repo := &fakeCustomerRepo{customers: make(map[uuid.UUID]*customer.Customer)}
	for _, c := range customers {
		repo.customers[c.ID] = c
	}
	return repo
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*customer.Customer, error) {
	if c, ok := r.customers[id]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCustomerRepo) FindByEmail(_ context.Context, email string) (*customer.Customer, error) {
	for _, c := range r.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCustomerRepo) FindAll(_ context.Context, _ shared.Filter) ([]customer.Customer, error) {
	return nil, nil
}

func (r *fakeCustomerRepo) Save(_ context.Context, c *customer.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.customers, id)
	return nil
}

func newTestService(repo *fakeCustomerRepo) *Service {
	tokens := auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "storefront-test",
	})
	return NewService(repo, tokens, zap.NewNop())
}

func TestService_Register(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := newTestService(repo)

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Email:     "Buyer@Example.com",
		FirstName: "Jo",
		LastName:  "Buyer",
		Password:  "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", resp.Email)
	assert.Equal(t, string(customer.GroupRetail), resp.Group)
	assert.Len(t, repo.customers, 1)
}

func TestService_RegisterDuplicateEmail(t *testing.T) {
	existing, err := customer.NewCustomer("buyer@example.com", "Jo", "Buyer", "hunter2hunter2")
	require.NoError(t, err)
	svc := newTestService(newFakeCustomerRepo(existing))

	_, err = svc.Register(context.Background(), &RegisterRequest{
		Email:     "buyer@example.com",
		FirstName: "Jo",
		LastName:  "Buyer",
		Password:  "hunter2hunter2",
	})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestService_Login(t *testing.T) {
	existing, err := customer.NewCustomer("buyer@example.com", "Jo", "Buyer", "hunter2hunter2")
	require.NoError(t, err)
	svc := newTestService(newFakeCustomerRepo(existing))

	resp, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "buyer@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, existing.ID.String(), resp.Customer.ID)
}

func TestService_LoginWrongPassword(t *testing.T) {
	existing, err := customer.NewCustomer("buyer@example.com", "Jo", "Buyer", "hunter2hunter2")
	require.NoError(t, err)
	svc := newTestService(newFakeCustomerRepo(existing))

	_, err = svc.Login(context.Background(), &LoginRequest{
		Email:    "buyer@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_LoginUnknownEmail(t *testing.T) {
	svc := newTestService(newFakeCustomerRepo())

	_, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "ghost@example.com",
		Password: "hunter2hunter2",
	})
	// same error as a wrong password, so account existence is not leaked
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_ChangePassword(t *testing.T) {
	existing, err := customer.NewCustomer("buyer@example.com", "Jo", "Buyer", "hunter2hunter2")
	require.NoError(t, err)
	svc := newTestService(newFakeCustomerRepo(existing))

	err = svc.ChangePassword(context.Background(), existing.ID, &ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "new-password-123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), existing.ID, &ChangePasswordRequest{
		CurrentPassword: "hunter2hunter2",
		NewPassword:     "new-password-123",
	})
	require.NoError(t, err)
	assert.True(t, existing.CheckPassword("new-password-123"))
}

func TestService_AddressBook(t *testing.T) {
	existing, err := customer.NewCustomer("buyer@example.com", "Jo", "Buyer", "hunter2hunter2")
	require.NoError(t, err)
	svc := newTestService(newFakeCustomerRepo(existing))

	resp, err := svc.AddAddress(context.Background(), existing.ID, &AddressRequest{
		FullName:    "Jo Buyer",
		StreetLine1: "1 Main St",
		City:        "Austin",
		Province:    "TX",
		PostalCode:  "78701",
		CountryCode: "us",
	})
	require.NoError(t, err)
	require.Len(t, resp.Addresses, 1)
	assert.Equal(t, "US", resp.Addresses[0].CountryCode)
	assert.True(t, resp.Addresses[0].IsDefault, "first address becomes the default")

	resp, err = svc.AddAddress(context.Background(), existing.ID, &AddressRequest{
		FullName:    "Jo Buyer",
		StreetLine1: "2 Side St",
		City:        "Austin",
		PostalCode:  "78702",
		CountryCode: "US",
		IsDefault:   true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Addresses, 2)
	assert.False(t, resp.Addresses[0].IsDefault)
	assert.True(t, resp.Addresses[1].IsDefault)

	defaultID, err := uuid.Parse(resp.Addresses[1].ID)
	require.NoError(t, err)
	resp, err = svc.RemoveAddress(context.Background(), existing.ID, defaultID)
	require.NoError(t, err)
	require.Len(t, resp.Addresses, 1)
	assert.True(t, resp.Addresses[0].IsDefault, "default falls over to the remaining address")
}

func TestService_UpdateProfileKeepsEmptyFields(t *testing.T) {
	existing, err := customer.NewCustomer("buyer@example.com", "Jo", "Buyer", "hunter2hunter2")
	require.NoError(t, err)
	svc := newTestService(newFakeCustomerRepo(existing))

	resp, err := svc.UpdateProfile(context.Background(), existing.ID, &UpdateProfileRequest{
		Phone: "+1 555 0100",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jo", resp.FirstName)
	assert.Equal(t, "+1 555 0100", resp.Phone)
}
