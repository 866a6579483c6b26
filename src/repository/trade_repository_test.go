package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestTradeRepositoryFindOpen(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &TradeRepository{db: mockDB}

	createdAt := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "stock_name", "buy_price", "quantity", "created_at", "updated_at"}).
		AddRow(2, "TCS", 3500.0, 5.0, createdAt.Add(24*time.Hour), createdAt.Add(24*time.Hour)).
		AddRow(1, "INFY", 1450.0, 10.0, createdAt, createdAt)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trades" WHERE buy_date IS NOT NULL AND quantity > $1 ORDER BY created_at DESC`)).
		WithArgs(0).
		WillReturnRows(rows)

	trades, err := repo.FindOpen(context.Background())
	if err != nil {
		t.Fatalf("unexpected error fetching open trades: %v", err)
	}

	if len(trades) != 2 {
		t.Fatalf("expected 2 open trades, got %d", len(trades))
	}

	if trades[0].StockName != "TCS" || trades[1].StockName != "INFY" {
		t.Fatalf("trades not returned in expected order: %+v", trades)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestTradeRepositoryFindAll(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &TradeRepository{db: mockDB}

	rows := sqlmock.NewRows([]string{"id", "stock_name", "quantity"}).
		AddRow(1, "INFY", 0.0)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trades" ORDER BY created_at DESC`)).
		WillReturnRows(rows)

	trades, err := repo.FindAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error fetching trades: %v", err)
	}

	if len(trades) != 1 || trades[0].StockName != "INFY" {
		t.Fatalf("unexpected trades returned: %+v", trades)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestTradeRepositoryFindByIDNotFound(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &TradeRepository{db: mockDB}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trades" WHERE "trades"."id" = $1 ORDER BY "trades"."id" LIMIT $2`)).
		WithArgs(42, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	trade, err := repo.FindByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trade != nil {
		t.Fatalf("expected nil trade for missing id, got %+v", trade)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestTradeRepositoryDeleteAll(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &TradeRepository{db: mockDB}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "trades" WHERE 1 = 1`)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	if err := repo.DeleteAll(context.Background()); err != nil {
		t.Fatalf("unexpected error deleting trades: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestSoldTradeRepositoryFindByOriginalTradeID(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &SoldTradeRepository{db: mockDB}

	rows := sqlmock.NewRows([]string{"id", "stock_name", "quantity", "original_trade_id"}).
		AddRow(1, "INFY", 4.0, 7).
		AddRow(2, "INFY", 6.0, 7)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sold_trades" WHERE original_trade_id = $1 ORDER BY id ASC`)).
		WithArgs(uint(7)).
		WillReturnRows(rows)

	soldTrades, err := repo.FindByOriginalTradeID(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error fetching sold trades: %v", err)
	}

	if len(soldTrades) != 2 {
		t.Fatalf("expected 2 sold trades, got %d", len(soldTrades))
	}

	if soldTrades[0].Quantity+soldTrades[1].Quantity != 10 {
		t.Fatalf("unexpected sold quantities: %+v", soldTrades)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to open gorm DB with sqlmock: %v", err)
	}

	return gdb, mock
}
