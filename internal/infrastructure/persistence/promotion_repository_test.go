package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/damneddesigns/storefront/internal/domain/promotion"
	"github.com/damneddesigns/storefront/internal/domain/shared"
)

func TestGormPromotionRepository_FindByCouponCode(t *testing.T) {
	t.Run("matches case-insensitively", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormPromotionRepository(gormDB)

		promoID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "coupon_code", "name", "enabled"}).
			AddRow(promoID, "SUMMER20", "Summer Sale", true)

		mock.ExpectQuery(`SELECT \* FROM "promotions" WHERE upper\(coupon_code\) = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("SUMMER20", 1).
			WillReturnRows(rows)
		mock.ExpectQuery(`SELECT \* FROM "promotion_actions" WHERE "promotion_actions"\."promotion_id" = \$1`).
			WithArgs(promoID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "promotion_id"}))
		mock.ExpectQuery(`SELECT \* FROM "promotion_conditions" WHERE "promotion_conditions"\."promotion_id" = \$1`).
			WithArgs(promoID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "promotion_id"}))

		promo, err := repo.FindByCouponCode(context.Background(), "summer20")
		require.NoError(t, err)
		assert.Equal(t, "SUMMER20", promo.CouponCode)
		assert.True(t, promo.Enabled)
	})

	t.Run("maps missing coupon to not found", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormPromotionRepository(gormDB)

		mock.ExpectQuery(`SELECT \* FROM "promotions" WHERE upper\(coupon_code\) = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("NOPE", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByCouponCode(context.Background(), "nope")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormPromotionRepository_CountRedemptions(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormPromotionRepository(gormDB)

	promoID := uuid.New()
	customerID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "promotion_redemptions" WHERE promotion_id = \$1 AND customer_id = \$2`).
		WithArgs(promoID, customerID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountRedemptions(context.Background(), promoID, customerID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGormPromotionRepository_RecordRedemption(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormPromotionRepository(gormDB)

	redemption := promotion.NewRedemption(uuid.New(), uuid.New(), uuid.New())

	mock.ExpectExec(`INSERT INTO "promotion_redemptions"`).
		WithArgs(redemption.ID, redemption.PromotionID, redemption.CustomerID,
			redemption.OrderID, redemption.RedeemedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RecordRedemption(context.Background(), redemption))
	assert.NoError(t, mock.ExpectationsWereMet())
}
