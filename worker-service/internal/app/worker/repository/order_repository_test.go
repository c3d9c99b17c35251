package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"berrymarket/worker-service/internal/app/worker/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OrderRepositoryTestSuite тестовый suite для PostgreSQL repository
type OrderRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  OrderRepository
	sqlDB *sql.DB
}

func TestOrderRepositorySuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryTestSuite))
}

func (s *OrderRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)

	s.repo = NewOrderRepository(s.db)
}

func (s *OrderRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

// ===================== FindPendingOrderIDs Tests =====================

func (s *OrderRepositoryTestSuite) TestFindPendingOrderIDs_FiltersAndOrders() {
	ctx := context.Background()
	productID := uuid.New()
	firstID := uuid.New()
	secondID := uuid.New()

	// Предикат: только этот товар, только pending, только не удаленные
	s.mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT "id" FROM "orders" WHERE product_id = $1 AND payment_status = $2 AND is_deleted = $3 ORDER BY created_at ASC`)).
		WithArgs(productID, string(entity.PaymentStatusPending), false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(firstID).AddRow(secondID))

	// Act
	ids, err := s.repo.FindPendingOrderIDs(ctx, productID)

	// Assert
	s.NoError(err)
	s.Equal([]uuid.UUID{firstID, secondID}, ids)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *OrderRepositoryTestSuite) TestFindPendingOrderIDs_EmptyIsNotError() {
	ctx := context.Background()
	productID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT "id" FROM "orders" WHERE product_id = $1 AND payment_status = $2 AND is_deleted = $3 ORDER BY created_at ASC`)).
		WithArgs(productID, string(entity.PaymentStatusPending), false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	// Act
	ids, err := s.repo.FindPendingOrderIDs(ctx, productID)

	// Assert
	s.NoError(err)
	s.Empty(ids)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *OrderRepositoryTestSuite) TestFindPendingOrderIDs_DBError() {
	ctx := context.Background()
	productID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "orders"`)).
		WithArgs(productID, string(entity.PaymentStatusPending), false).
		WillReturnError(sql.ErrConnDone)

	// Act
	ids, err := s.repo.FindPendingOrderIDs(ctx, productID)

	// Assert
	s.Error(err)
	s.Nil(ids)
}

// ===================== GetByIDs Tests =====================

func (s *OrderRepositoryTestSuite) TestGetByIDs_ExcludesSoftDeleted() {
	ctx := context.Background()
	productID := uuid.New()
	order := entity.Order{
		ID:            uuid.New(),
		ProductID:     productID,
		PaymentStatus: entity.PaymentStatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE id IN ($1) AND is_deleted = $2`)).
		WithArgs(order.ID, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "payment_status", "created_at", "is_deleted"}).
			AddRow(order.ID, order.ProductID, order.PaymentStatus, order.CreatedAt, false))

	// Act
	orders, err := s.repo.GetByIDs(ctx, []uuid.UUID{order.ID})

	// Assert
	s.NoError(err)
	s.Len(orders, 1)
	s.Equal(order.ID, orders[0].ID)
	s.Equal(entity.PaymentStatusPending, orders[0].PaymentStatus)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *OrderRepositoryTestSuite) TestGetByIDs_EmptyInputSkipsQuery() {
	// Act
	orders, err := s.repo.GetByIDs(context.Background(), nil)

	// Assert
	s.NoError(err)
	s.Nil(orders)

	// Запрос к базе не выполнялся
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== PurgeSoftDeleted Tests =====================

func (s *OrderRepositoryTestSuite) TestPurgeSoftDeleted_ReturnsAffectedCount() {
	ctx := context.Background()
	cutoff := time.Now().UTC().AddDate(0, 0, -30)

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "orders" WHERE is_deleted = $1 AND deleted_at < $2`)).
		WithArgs(true, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))
	s.mock.ExpectCommit()

	// Act
	purged, err := s.repo.PurgeSoftDeleted(ctx, cutoff)

	// Assert
	s.NoError(err)
	s.Equal(int64(3), purged)

	s.NoError(s.mock.ExpectationsWereMet())
}
