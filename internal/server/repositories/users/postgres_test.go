package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MohamedLemine13/JobPortal/internal/common"
	"github.com/MohamedLemine13/JobPortal/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func userRows(u *models.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "role", "is_verified",
		"failed_login_attempts", "locked_until", "last_login_at", "created_at",
	}).AddRow(u.ID, u.Email, u.PasswordHash, u.Role.String(), u.IsVerified,
		u.FailedLoginAttempts, timeOrNil(u.LockedUntil), timeOrNil(u.LastLoginAt), u.CreatedAt)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+users\b.*RETURNING\s+created_at\s*$`

	created := time.Now()
	mock.ExpectQuery(q).
		WithArgs(sqlmock.AnyArg(), "alice@example.com", "$2a$10$digest", "JOB_SEEKER", true).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	u := &models.User{
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$digest",
		Role:         models.RoleJobSeeker,
		IsVerified:   true,
	}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID == "" {
		t.Fatalf("expected generated id")
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at not scanned: %v", got.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+users\b`

	mock.ExpectQuery(q).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &models.User{Email: "dup@example.com", Role: models.RoleJobSeeker})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`

	want := &models.User{
		ID:           "u1",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Role:         models.RoleEmployer,
		IsVerified:   true,
		CreatedAt:    time.Now(),
	}
	mock.ExpectQuery(q).WithArgs("alice@example.com").WillReturnRows(userRows(want))

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "u1" || got.Role != models.RoleEmployer || got.LockedUntil != nil {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).WithArgs("missing@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "missing@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestGetByEmailForUpdate_LocksRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s+FOR\s+UPDATE\s*$`

	lock := time.Now().Add(10 * time.Minute)
	want := &models.User{
		ID: "u2", Email: "bob@example.com", Role: models.RoleJobSeeker,
		FailedLoginAttempts: 5, LockedUntil: &lock, CreatedAt: time.Now(),
	}
	mock.ExpectQuery(q).WithArgs("bob@example.com").WillReturnRows(userRows(want))

	got, err := repo.GetByEmailForUpdate(context.Background(), "bob@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FailedLoginAttempts != 5 || got.LockedUntil == nil {
		t.Fatalf("lockout columns not scanned: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestExistsByEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\)\s*$`
	mock.ExpectQuery(q).WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Fatalf("expected exists=true")
	}
}

func TestSave_UpdatesMutableColumns(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2,.*WHERE\s+id\s*=\s*\$1\s*$`

	lock := time.Now().Add(15 * time.Minute)
	u := &models.User{
		ID: "u1", PasswordHash: "newhash", IsVerified: true,
		FailedLoginAttempts: 5, LockedUntil: &lock,
	}
	mock.ExpectExec(q).
		WithArgs("u1", "newhash", true, 5, lock, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Save(context.Background(), u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSave_MissingRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+users\b`
	mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Save(context.Background(), &models.User{ID: "ghost"})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound for missing row, got %v", err)
	}
}
