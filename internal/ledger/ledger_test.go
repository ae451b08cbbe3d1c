package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var creationCols = []string{"id", "user_id", "prompt", "content", "type", "publish", "created_at", "updated_at"}

func newMock(t *testing.T) (*Ledger, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	return New(db), mock, func() { db.Close() }
}

func TestAppendRoundTrip(t *testing.T) {
	l, mock, done := newMock(t)
	defer done()

	now := time.Now()
	mock.ExpectExec(`INSERT INTO creations`).
		WithArgs(int64(1), "write about cats", "<text>", "article").
		WillReturnResult(sqlmock.NewResult(17, 1))
	mock.ExpectQuery(`SELECT .+ FROM creations WHERE id`).
		WithArgs(int64(17)).
		WillReturnRows(sqlmock.NewRows(creationCols).
			AddRow(17, 1, "write about cats", "<text>", "article", false, now, now))

	c, err := l.Append(context.Background(), 1, "write about cats", "<text>", "article")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	// Caller-supplied fields survive the round trip; the store assigns
	// id, timestamps, and publish=false.
	if c.ID != 17 {
		t.Errorf("id = %d, want 17", c.ID)
	}
	if c.UserID != 1 || c.Prompt != "write about cats" || c.Content != "<text>" || c.Type != "article" {
		t.Errorf("stored fields differ from input: %+v", c)
	}
	if c.Publish {
		t.Error("new creation has publish=true, want false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestAppendInsertFailureProducesNoCreation(t *testing.T) {
	l, mock, done := newMock(t)
	defer done()

	mock.ExpectExec(`INSERT INTO creations`).
		WillReturnError(errors.New("connection reset"))

	if _, err := l.Append(context.Background(), 1, "p", "c", "article"); err == nil {
		t.Fatal("Append succeeded, want error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListByOwnerOrdersNewestFirst(t *testing.T) {
	l, mock, done := newMock(t)
	defer done()

	newer := time.Now()
	older := newer.Add(-time.Hour)
	mock.ExpectQuery(`SELECT .+ FROM creations WHERE user_id = \? ORDER BY created_at DESC`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(creationCols).
			AddRow(2, 1, "second", "b", "article", false, newer, newer).
			AddRow(1, 1, "first", "a", "article", false, older, older))

	got, err := l.ListByOwner(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d creations, want 2", len(got))
	}
	if got[0].ID != 2 || got[1].ID != 1 {
		t.Errorf("order = [%d, %d], want [2, 1]", got[0].ID, got[1].ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListPublishedFiltersOnFlag(t *testing.T) {
	l, mock, done := newMock(t)
	defer done()

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM creations WHERE publish = TRUE ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(creationCols).
			AddRow(3, 2, "shared", "x", "image", true, now, now))

	got, err := l.ListPublished(context.Background())
	if err != nil {
		t.Fatalf("ListPublished: %v", err)
	}
	for _, c := range got {
		if !c.Publish {
			t.Errorf("published feed contains unpublished creation %d", c.ID)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestTogglePublish(t *testing.T) {
	l, mock, done := newMock(t)
	defer done()

	mock.ExpectExec(`UPDATE creations SET publish = NOT publish`).
		WithArgs(int64(3), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT publish FROM creations`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"publish"}).AddRow(true))

	publish, err := l.TogglePublish(context.Background(), 3, 1)
	if err != nil {
		t.Fatalf("TogglePublish: %v", err)
	}
	if !publish {
		t.Error("publish = false, want true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestTogglePublishWrongOwner(t *testing.T) {
	l, mock, done := newMock(t)
	defer done()

	mock.ExpectExec(`UPDATE creations SET publish = NOT publish`).
		WithArgs(int64(3), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := l.TogglePublish(context.Background(), 3, 99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
