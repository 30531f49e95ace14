package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/syncbridge/backend/internal/domain/order"
	"github.com/syncbridge/backend/internal/domain/shared"
)

// newMockOrderRepository creates a GormOrderRepository with a mocked SQL connection
func newMockOrderRepository(t *testing.T) (*GormOrderRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormOrderRepository(gormDB), mock, mockDB
}

func TestGormOrderRepository_FindByID(t *testing.T) {
	t.Run("finds existing order with items", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		channelID := uuid.New()
		itemID := uuid.New()

		orderRows := sqlmock.NewRows([]string{
			"id", "channel_id", "external_order_id", "order_number", "origin",
			"state", "sync_status", "total_amount", "currency", "payment_status",
		}).AddRow(
			orderID, channelID, "SW-1001", "10001", "PLATFORM",
			"PENDING", "PENDING", decimal.NewFromInt(42), "EUR", "PAID",
		)

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(orderID, 1).
			WillReturnRows(orderRows)

		itemRows := sqlmock.NewRows([]string{"id", "order_id", "sku", "name", "quantity", "unit_price"}).
			AddRow(itemID, orderID, "SKU-1", "Widget", decimal.NewFromInt(2), decimal.NewFromInt(21))

		mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE "order_items"\."order_id" = \$1`).
			WithArgs(orderID).
			WillReturnRows(itemRows)

		found, err := repo.FindByID(context.Background(), orderID)

		require.NoError(t, err)
		assert.Equal(t, orderID, found.ID)
		assert.Equal(t, "SW-1001", found.ExternalOrderID)
		assert.Equal(t, order.StatePending, found.State)
		require.Len(t, found.Items, 1)
		assert.Equal(t, "SKU-1", found.Items[0].SKU)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing order to ErrNotFound", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(orderID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByID(context.Background(), orderID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_FindByExternalID(t *testing.T) {
	t.Run("maps missing order to ErrNotFound", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		channelID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE channel_id = \$1 AND external_order_id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(channelID, "SW-404", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByExternalID(context.Background(), channelID, "SW-404")

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_ExistsByExternalID(t *testing.T) {
	t.Run("reports existing pair", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		channelID := uuid.New()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE channel_id = \$1 AND external_order_id = \$2`).
			WithArgs(channelID, "SW-1001").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByExternalID(context.Background(), channelID, "SW-1001")

		require.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports unknown pair", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		channelID := uuid.New()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE channel_id = \$1 AND external_order_id = \$2`).
			WithArgs(channelID, "SW-404").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsByExternalID(context.Background(), channelID, "SW-404")

		require.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
