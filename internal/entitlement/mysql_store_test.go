package entitlement

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// metadataMatcher matches a JSON metadata argument by decoded content,
// since map marshaling does not promise key order.
type metadataMatcher map[string]any

func (m metadataMatcher) Match(v driver.Value) bool {
	var raw string
	switch s := v.(type) {
	case string:
		raw = s
	case []byte:
		raw = string(s)
	default:
		return false
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		return false
	}
	return reflect.DeepEqual(map[string]any(m), got)
}

const subscriptionQuery = `FROM user_subscriptions us`

func TestGetPlanAndUsagePremium(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(subscriptionQuery).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	store := NewMySQLStore(db)
	plan, _, err := store.GetPlanAndUsage(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetPlanAndUsage: %v", err)
	}
	if plan != PlanPremium {
		t.Errorf("plan = %q, want premium", plan)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetPlanAndUsageFree(t *testing.T) {
	tests := []struct {
		name     string
		metadata any // nil means SQL NULL
		want     Usage
	}{
		{"no metadata at all", nil, Usage{}},
		{"empty bag", `{}`, Usage{}},
		{"stored counter", `{"free_usage": 4}`, Usage{Count: 4, Present: true}},
		{"stored zero is present", `{"free_usage": 0}`, Usage{Count: 0, Present: true}},
		{"non-numeric counter treated as absent", `{"free_usage": "lots"}`, Usage{}},
		{"sibling keys ignored", `{"theme": "dark", "free_usage": 2}`, Usage{Count: 2, Present: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
			if err != nil {
				t.Fatal(err)
			}
			defer db.Close()

			mock.ExpectQuery(subscriptionQuery).
				WithArgs(int64(5)).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
			mock.ExpectQuery(`SELECT private_metadata FROM users`).
				WithArgs(int64(5)).
				WillReturnRows(sqlmock.NewRows([]string{"private_metadata"}).AddRow(tt.metadata))

			store := NewMySQLStore(db)
			plan, usage, err := store.GetPlanAndUsage(context.Background(), 5)
			if err != nil {
				t.Fatalf("GetPlanAndUsage: %v", err)
			}
			if plan != PlanFree {
				t.Errorf("plan = %q, want free", plan)
			}
			if usage != tt.want {
				t.Errorf("usage = %+v, want %+v", usage, tt.want)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestInitUsagePreservesSiblingMetadata(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT private_metadata FROM users`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"private_metadata"}).AddRow(`{"theme":"dark"}`))
	mock.ExpectExec(`UPDATE users SET private_metadata`).
		WithArgs(metadataMatcher{"free_usage": float64(0), "theme": "dark"}, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewMySQLStore(db)
	if err := store.InitUsage(context.Background(), 9); err != nil {
		t.Fatalf("InitUsage: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestIncrementUsage(t *testing.T) {
	tests := []struct {
		name     string
		metadata any
		want     float64
	}{
		{"increments stored counter", `{"free_usage": 3}`, 4},
		{"missing counter increments from zero", `{}`, 1},
		{"null bag increments from zero", nil, 1},
		{"non-numeric counter increments from zero", `{"free_usage": []}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
			if err != nil {
				t.Fatal(err)
			}
			defer db.Close()

			mock.ExpectQuery(`SELECT private_metadata FROM users`).
				WithArgs(int64(9)).
				WillReturnRows(sqlmock.NewRows([]string{"private_metadata"}).AddRow(tt.metadata))
			mock.ExpectExec(`UPDATE users SET private_metadata`).
				WithArgs(metadataMatcher{"free_usage": tt.want}, int64(9)).
				WillReturnResult(sqlmock.NewResult(0, 1))

			store := NewMySQLStore(db)
			if err := store.IncrementUsage(context.Background(), 9); err != nil {
				t.Fatalf("IncrementUsage: %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}
