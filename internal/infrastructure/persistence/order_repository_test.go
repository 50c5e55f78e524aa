package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/damneddesigns/storefront/internal/domain/checkout"
	"github.com/damneddesigns/storefront/internal/domain/shared"
)

// newMockDB builds a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestGormOrderRepository_FindByCode(t *testing.T) {
	t.Run("finds existing order", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(gormDB)

		orderID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "code", "state", "customer_email"}).
			AddRow(orderID, "DD-0001", "ADDING_ITEMS", "buyer@example.com")

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE code = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("DD-0001", 1).
			WillReturnRows(rows)
		mock.ExpectQuery(`SELECT \* FROM "order_lines" WHERE "order_lines"\."order_id" = \$1`).
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

		order, err := repo.FindByCode(context.Background(), "DD-0001")
		require.NoError(t, err)
		assert.Equal(t, orderID, order.ID)
		assert.Equal(t, checkout.OrderStateAddingItems, order.State)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing order to not found", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(gormDB)

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE code = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("DD-MISSING", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByCode(context.Background(), "DD-MISSING")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormOrderRepository_FindActiveForCustomer(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(gormDB)

	customerID := uuid.New()
	orderID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "code", "state"}).
		AddRow(orderID, "DD-0002", "ADDING_ITEMS")

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE customer_id = \$1 AND state = \$2 ORDER BY created_at DESC,.* LIMIT .*`).
		WithArgs(customerID, "ADDING_ITEMS", 1).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT \* FROM "order_lines" WHERE "order_lines"\."order_id" = \$1`).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

	order, err := repo.FindActiveForCustomer(context.Background(), customerID)
	require.NoError(t, err)
	assert.Equal(t, "DD-0002", order.Code)
}

func TestGormOrderRepository_Count(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE state = \$1`).
		WithArgs("PAYMENT_SETTLED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	filter := shared.DefaultFilter()
	filter.Filters["state"] = "PAYMENT_SETTLED"

	count, err := repo.Count(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}
