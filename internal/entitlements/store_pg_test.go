package entitlements

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreConsumeFreeIncrements(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPGStore(db)

	mock.ExpectQuery("UPDATE entitlements").
		WithArgs("user-1", FreeLimit).
		WillReturnRows(sqlmock.NewRows([]string{"plan", "free_usage"}).AddRow("free", 3))

	snap, err := store.ConsumeFree(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ConsumeFree: %v", err)
	}
	if snap.FreeUsage != 3 {
		t.Fatalf("expected free_usage 3, got %d", snap.FreeUsage)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreConsumeFreeAtLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPGStore(db)

	// The guarded UPDATE matches no rows once the counter is at the limit.
	mock.ExpectQuery("UPDATE entitlements").
		WithArgs("user-1", FreeLimit).
		WillReturnError(sql.ErrNoRows)

	_, err = store.ConsumeFree(context.Background(), "user-1")
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreGetCreatesDefaultRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPGStore(db)

	mock.ExpectQuery("SELECT plan, free_usage FROM entitlements").
		WithArgs("user-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO entitlements").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT plan, free_usage FROM entitlements").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"plan", "free_usage"}).AddRow("free", 0))

	snap, err := store.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if snap.Plan != PlanFree || snap.FreeUsage != 0 {
		t.Fatalf("expected fresh free snapshot, got %+v", snap)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
