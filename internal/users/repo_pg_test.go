package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

var userColumns = []string{"id", "email", "hashed_password", "is_active", "created_at", "updated_at"}

func TestPGRepoCreate(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer database.Close()

	now := time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice@example.com", "hash").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(1), "alice@example.com", "hash", true, now, nil))

	repo := &PGRepo{DB: database}
	user, err := repo.Create(context.Background(), "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID != 1 || !user.IsActive || user.UpdatedAt != nil {
		t.Fatalf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoCreateDuplicate(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer database.Close()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice@example.com", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	repo := &PGRepo{DB: database}
	if _, err := repo.Create(context.Background(), "alice@example.com", "hash"); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestPGRepoGetByEmailNotFound(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer database.Close()

	mock.ExpectQuery("SELECT id, email, hashed_password").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	repo := &PGRepo{DB: database}
	if _, err := repo.GetByEmail(context.Background(), "ghost@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoGetByIDScansUpdatedAt(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer database.Close()

	created := time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	mock.ExpectQuery("SELECT id, email, hashed_password").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(5), "bob@example.com", "hash", false, created, updated))

	repo := &PGRepo{DB: database}
	user, err := repo.GetByID(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if user.IsActive {
		t.Fatalf("expected inactive user")
	}
	if user.UpdatedAt == nil || !user.UpdatedAt.Equal(updated) {
		t.Fatalf("unexpected updated_at: %v", user.UpdatedAt)
	}
}
