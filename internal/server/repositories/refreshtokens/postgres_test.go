package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func sampleRecord() *models.RefreshToken {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return &models.RefreshToken{
		ID:        "rid-1",
		UserID:    "u1",
		Token:     "tok123",
		ExpiresAt: now.Add(7 * 24 * time.Hour),
		CreatedAt: now,
	}
}

const insertQuery = `(?s)^\s*INSERT\s+INTO\s+refresh_tokens\s*\(id,\s*user_id,\s*token,\s*expires_at,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*ON\s+CONFLICT\s*\(id\)\s*DO\s+NOTHING\s*$`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rt := sampleRecord()
	mock.ExpectExec(insertQuery).
		WithArgs(rt.ID, rt.UserID, rt.Token, rt.ExpiresAt, rt.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), rt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DuplicateID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rt := sampleRecord()
	mock.ExpectExec(insertQuery).
		WithArgs(rt.ID, rt.UserID, rt.Token, rt.ExpiresAt, rt.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Create(context.Background(), rt)
	if !errors.Is(err, common.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rt := sampleRecord()
	mock.ExpectExec(insertQuery).
		WithArgs(rt.ID, rt.UserID, rt.Token, rt.ExpiresAt, rt.CreatedAt).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), rt)
	if err == nil || !regexp.MustCompile(`error performing sql request: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

const selectQuery = `(?s)^\s*SELECT\s+id,\s*user_id,\s*token,\s*expires_at,\s*revoked_at,\s*created_at\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1\s+AND\s+revoked_at\s+IS\s+NULL\s+FOR\s+UPDATE\s*$`

func TestFindActiveByToken_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rt := sampleRecord()
	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "revoked_at", "created_at"}).
		AddRow(rt.ID, rt.UserID, rt.Token, rt.ExpiresAt, nil, rt.CreatedAt)

	mock.ExpectQuery(selectQuery).WithArgs("tok123").WillReturnRows(rows)

	got, err := repo.FindActiveByToken(context.Background(), "tok123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != rt.ID || got.UserID != "u1" || !got.ExpiresAt.Equal(rt.ExpiresAt) || got.RevokedAt != nil {
		t.Fatalf("unexpected row: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindActiveByToken_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActiveByToken(context.Background(), "nope")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestFindActiveByToken_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).WithArgs("tok").WillReturnError(errors.New("boom"))

	_, err := repo.FindActiveByToken(context.Background(), "tok")
	if err == nil || !regexp.MustCompile(`db error: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestRevokeByToken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Now()
	q := `(?s)^\s*UPDATE\s+refresh_tokens\s+SET\s+revoked_at\s*=\s*\$2\s+WHERE\s+token\s*=\s*\$1\s+AND\s+revoked_at\s+IS\s+NULL\s*$`

	mock.ExpectExec(q).WithArgs("tok123", at).WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.RevokeByToken(context.Background(), "tok123", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec(q).WithArgs("tok123", at).WillReturnError(errors.New("fail"))
	err := repo.RevokeByToken(context.Background(), "tok123", at)
	if err == nil || !regexp.MustCompile(`db error: .*fail`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRevokeByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Now()
	q := `(?s)^\s*UPDATE\s+refresh_tokens\s+SET\s+revoked_at\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1\s+AND\s+revoked_at\s+IS\s+NULL\s*$`

	mock.ExpectExec(q).WithArgs("rid-1", at).WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.RevokeByID(context.Background(), "rid-1", at)
	if err != nil || !ok {
		t.Fatalf("expected first revoke to win, got ok=%v err=%v", ok, err)
	}

	mock.ExpectExec(q).WithArgs("rid-1", at).WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.RevokeByID(context.Background(), "rid-1", at)
	if err != nil || ok {
		t.Fatalf("expected second revoke to lose, got ok=%v err=%v", ok, err)
	}

	mock.ExpectExec(q).WithArgs("rid-1", at).WillReturnError(errors.New("down"))
	if _, err := repo.RevokeByID(context.Background(), "rid-1", at); err == nil {
		t.Fatalf("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
