package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"berrymarket/market-service/internal/app/market/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ProductRepositoryTestSuite тестовый suite для PostgreSQL repository
type ProductRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  ProductRepository
	sqlDB *sql.DB
}

func TestProductRepositorySuite(t *testing.T) {
	suite.Run(t, new(ProductRepositoryTestSuite))
}

func (s *ProductRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)

	s.repo = NewProductRepository(s.db)
}

func (s *ProductRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

func productRows(p *entity.Product) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "is_deleted", "deleted_at", "row_version",
		"name", "description", "price", "stock", "category_id",
	}).AddRow(
		p.ID, p.CreatedAt, p.UpdatedAt, p.IsDeleted, p.DeletedAt, p.RowVersion,
		p.Name, p.Description, p.Price, p.Stock, p.CategoryID,
	)
}

// ===================== GetByID Tests =====================

func (s *ProductRepositoryTestSuite) TestGetByID_Success() {
	ctx := context.Background()
	product := &entity.Product{
		Base:        entity.NewBase(),
		Name:        "Laptop",
		Description: "High-performance laptop",
		Price:       1299.99,
		Stock:       5,
		CategoryID:  uuid.New(),
	}

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE id = $1 AND is_deleted = $2`)).
		WithArgs(product.ID, false, 1).
		WillReturnRows(productRows(product))

	// Act
	got, err := s.repo.GetByID(ctx, product.ID)

	// Assert
	s.NoError(err)
	s.NotNil(got)
	s.Equal(product.ID, got.ID)
	s.Equal("Laptop", got.Name)
	s.Equal(1299.99, got.Price)
	s.Equal(5, got.Stock)
	s.Equal(int64(1), got.RowVersion)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestGetByID_NotFound() {
	ctx := context.Background()
	productID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE id = $1 AND is_deleted = $2`)).
		WithArgs(productID, false, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	got, err := s.repo.GetByID(ctx, productID)

	// Assert
	s.Nil(got)
	s.ErrorIs(err, ErrProductNotFound)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Update Tests =====================

func (s *ProductRepositoryTestSuite) TestUpdate_Success() {
	ctx := context.Background()
	product := &entity.Product{
		Base:       entity.NewBase(),
		Name:       "Laptop",
		Price:      999.99,
		Stock:      3,
		CategoryID: uuid.New(),
	}
	before := product.UpdatedAt

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.Update(ctx, product, 1)

	// Assert
	s.NoError(err)
	// Версия строки и updated_at отражают примененную запись
	s.Equal(int64(2), product.RowVersion)
	s.False(product.UpdatedAt.Before(before))

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestUpdate_StaleVersion() {
	// Строка существует, но версия не совпала - конфликт, не not found
	ctx := context.Background()
	product := &entity.Product{
		Base:       entity.NewBase(),
		Name:       "Laptop",
		Price:      999.99,
		CategoryID: uuid.New(),
	}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "products" WHERE id = $1 AND is_deleted = $2`)).
		WithArgs(product.ID, false).
		WillReturnRows(countRows)

	// Act
	err := s.repo.Update(ctx, product, 1)

	// Assert
	s.ErrorIs(err, ErrConcurrencyConflict)
	s.Equal(int64(1), product.RowVersion)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestUpdate_RowMissing() {
	// Строки нет (или она мягко удалена) - not found
	ctx := context.Background()
	product := &entity.Product{
		Base:       entity.NewBase(),
		Name:       "Laptop",
		Price:      999.99,
		CategoryID: uuid.New(),
	}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(0)
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "products" WHERE id = $1 AND is_deleted = $2`)).
		WithArgs(product.ID, false).
		WillReturnRows(countRows)

	// Act
	err := s.repo.Update(ctx, product, 1)

	// Assert
	s.ErrorIs(err, ErrProductNotFound)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestUpdate_DBError() {
	ctx := context.Background()
	product := &entity.Product{
		Base:       entity.NewBase(),
		Name:       "Laptop",
		CategoryID: uuid.New(),
	}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WillReturnError(sql.ErrConnDone)
	s.mock.ExpectRollback()

	// Act
	err := s.repo.Update(ctx, product, 1)

	// Assert
	s.Error(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== SoftDelete Tests =====================

func (s *ProductRepositoryTestSuite) TestSoftDelete_Success() {
	ctx := context.Background()
	productID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.SoftDelete(ctx, productID, 1)

	// Assert
	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestSoftDelete_StaleVersion() {
	ctx := context.Background()
	productID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "products" WHERE id = $1 AND is_deleted = $2`)).
		WithArgs(productID, false).
		WillReturnRows(countRows)

	// Act
	err := s.repo.SoftDelete(ctx, productID, 1)

	// Assert
	s.ErrorIs(err, ErrConcurrencyConflict)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== NewProductRepository Tests =====================

func TestNewProductRepository(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	dialector := postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	require.NoError(t, err)

	// Act
	repo := NewProductRepository(db)

	// Assert
	assert.NotNil(t, repo)
}
