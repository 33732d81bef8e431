package sessions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/MohamedLemine13/JobPortal/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+sessions\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*$`

	expires := time.Now().Add(7 * 24 * time.Hour)
	mock.ExpectExec(q).
		WithArgs(sqlmock.AnyArg(), "u1", "digest123", expires).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.Create(context.Background(), "u1", "digest123", expires)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated session id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+sessions\b`
	mock.ExpectExec(q).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), "u1", "digest123", time.Now())
	if err == nil {
		t.Fatalf("expected wrapped db error")
	}
}

func TestFindByTokenHash_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,\s*user_id,\s*token_hash,\s*expires_at,\s*revoked_at,\s*created_at\s+FROM\s+sessions\s+WHERE\s+token_hash\s*=\s*\$1\s*$`

	expires := time.Now().Add(time.Hour)
	created := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "revoked_at", "created_at"}).
		AddRow("s1", "u1", "digest123", expires, nil, created)

	mock.ExpectQuery(q).WithArgs("digest123").WillReturnRows(rows)

	got, err := repo.FindByTokenHash(context.Background(), "digest123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "s1" || got.UserID != "u1" || got.RevokedAt != nil {
		t.Fatalf("unexpected row: %+v", got)
	}
	if !got.IsValid(time.Now()) {
		t.Fatalf("unrevoked unexpired session must be valid")
	}
}

func TestFindByTokenHash_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,.*FROM\s+sessions\b`
	mock.ExpectQuery(q).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByTokenHash(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestRevokeAllByUserID_OnlyValidRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+sessions\s+SET\s+revoked_at\s*=\s*\$2\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+revoked_at\s+IS\s+NULL\s*$`

	now := time.Now()
	mock.ExpectExec(q).WithArgs("u1", now).WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.RevokeAllByUserID(context.Background(), "u1", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRevokeAllByUserID_NothingToRevoke(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+sessions\b`
	now := time.Now()
	mock.ExpectExec(q).WithArgs("u1", now).WillReturnResult(sqlmock.NewResult(0, 0))

	// Zero affected rows is still success: revocation is idempotent.
	if err := repo.RevokeAllByUserID(context.Background(), "u1", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHasValidSession(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+EXISTS\b.*revoked_at\s+IS\s+NULL\s+AND\s+expires_at\s*>\s*\$2.*$`
	now := time.Now()
	mock.ExpectQuery(q).WithArgs("u1", now).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.HasValidSession(context.Background(), "u1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected no valid session")
	}
}

func TestDeleteExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*DELETE\s+FROM\s+sessions\s+WHERE\s+expires_at\s*<\s*\$1\s*$`
	now := time.Now()
	mock.ExpectExec(q).WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 42))

	n, err := repo.DeleteExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 42 {
		t.Fatalf("expected 42 deleted rows, got %d", n)
	}
}
