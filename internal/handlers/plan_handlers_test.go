package handlers_test

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/quickai/quickai-golang/internal/entitlement"
	"github.com/quickai/quickai-golang/internal/handlers"
)

func newPlanRouter(t *testing.T, store *memStore) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	h := &handlers.Handlers{DB: db, Resolver: entitlement.NewResolver(store)}
	router := gin.New()
	router.GET("/api/plans", h.GetPlans)
	router.GET("/api/user/plan", func(c *gin.Context) { c.Set("userID", int64(1)); h.GetMyPlan(c) })
	return router, mock
}

func TestGetPlans(t *testing.T) {
	router, mock := newPlanRouter(t, &memStore{plan: entitlement.PlanFree})

	now := time.Now()
	mock.ExpectQuery(`FROM plans WHERE is_public = TRUE`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "description", "price", "duration_days", "is_public", "created_at", "updated_at"}).
			AddRow(1, "premium", "Unlimited AI actions", 20.00, 30, true, now, now))

	req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool `json:"success"`
		Data    []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || len(resp.Data) != 1 || resp.Data[0].Name != "premium" {
		t.Errorf("response = %+v, want the premium plan", resp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetMyPlanFreeTier(t *testing.T) {
	store := &memStore{plan: entitlement.PlanFree, usage: entitlement.Usage{Count: 3, Present: true}}
	router, mock := newPlanRouter(t, store)

	mock.ExpectQuery(`FROM user_subscriptions us`).
		WithArgs(int64(1)).
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/api/user/plan", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data struct {
			Plan      string `json:"plan"`
			FreeUsage int    `json:"freeUsage"`
			FreeLimit int    `json:"freeLimit"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Plan != "free" || resp.Data.FreeUsage != 3 || resp.Data.FreeLimit != entitlement.FreeLimit {
		t.Errorf("data = %+v, want free/3/%d", resp.Data, entitlement.FreeLimit)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetMyPlanPremium(t *testing.T) {
	store := &memStore{plan: entitlement.PlanPremium}
	router, mock := newPlanRouter(t, store)

	now := time.Now()
	mock.ExpectQuery(`FROM user_subscriptions us`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "plan_id", "status", "expires_at", "created_at", "updated_at", "name"}).
			AddRow(4, 1, 1, "active", now.Add(24*time.Hour), now, now, "premium"))

	req := httptest.NewRequest(http.MethodGet, "/api/user/plan", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data struct {
			Plan         string `json:"plan"`
			Subscription *struct {
				PlanName string `json:"planName"`
			} `json:"subscription"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Plan != "premium" || resp.Data.Subscription == nil || resp.Data.Subscription.PlanName != "premium" {
		t.Errorf("data = %+v, want premium with subscription", resp.Data)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
