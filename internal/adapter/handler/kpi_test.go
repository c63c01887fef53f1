package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	usecaseErrors "github.com/johnquangdev/call-insights/internal/usecase/errors"
)

func TestKPIRoutesManagerOnly(t *testing.T) {
	ts := newTestServer(t)

	if rec := ts.do(http.MethodGet, "/api/kpi", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/api/kpi", "rep-token", ""); rec.Code != http.StatusForbidden {
		t.Errorf("sales rep: got %d", rec.Code)
	}
}

func TestKPIDashboard(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/kpi?from=2024-01&to=2024-06", "manager-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["total_revenue"] != float64(40) {
		t.Errorf("total_revenue: got %v", body["total_revenue"])
	}
	board, _ := body["leaderboard"].([]interface{})
	if len(board) != 1 {
		t.Fatalf("leaderboard: got %v", body["leaderboard"])
	}
	if rate := board[0].(map[string]interface{})["success_rate"]; rate != float64(25) {
		t.Errorf("success_rate: got %v", rate)
	}

	if ts.kpi.gotOrg != testOrgID {
		t.Errorf("dashboard scoped to %s", ts.kpi.gotOrg)
	}
	if ts.kpi.gotRange.From == nil || !ts.kpi.gotRange.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from: got %v", ts.kpi.gotRange.From)
	}

	if rec := ts.do(http.MethodGet, "/api/kpi?from=2024-06&to=2024-01", "manager-token", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("reversed range: got %d", rec.Code)
	}
}

func TestKPIDashboardQueryFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.kpi.err = errors.New("connection reset")

	rec := ts.do(http.MethodGet, "/api/kpi", "manager-token", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", rec.Code)
	}
	if msg := decodeBody(t, rec)["message"]; msg != "Database query failed" {
		t.Errorf("message: got %v", msg)
	}
}

func TestKPIExport(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/kpi/export", "manager-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("content type: got %q", ct)
	}
}

func TestKPIRecordProductSales(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		recordErr error
		status    int
	}{
		{"valid", `{"product_name":"Widget","month":"2024-03","units_sold":5,"total_revenue":50}`, nil, http.StatusCreated},
		{"missing month", `{"product_name":"Widget"}`, nil, http.StatusBadRequest},
		{"rating out of range", `{"product_name":"Widget","month":"2024-03","rating":9}`, nil, http.StatusBadRequest},
		{"duplicate month", `{"product_name":"Widget","month":"2024-03"}`, fmt.Errorf("%w: widget", usecaseErrors.ErrAlreadyExists), http.StatusConflict},
		{"store down", `{"product_name":"Widget","month":"2024-03"}`, errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.kpi.recordErr = tt.recordErr
			rec := ts.do(http.MethodPost, "/api/kpi/products", "manager-token", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status: got %d body %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestKPIRecordRepPerformance(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/kpi/reps", "manager-token", `{"sales_rep_name":"Sam Lee","month":"2024-03","total_calls":3,"successful_calls":5}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("more successes than calls: got %d", rec.Code)
	}

	rec = ts.do(http.MethodPost, "/api/kpi/reps", "manager-token", `{"sales_rep_name":"Sam Lee","month":"2024-03","total_calls":10,"successful_calls":2,"revenue_generated":500}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody(t, rec)["rep_name"]; got != "Sam Lee" {
		t.Errorf("rep_name: got %v", got)
	}

	ts.kpi.recordErr = usecaseErrors.ErrForeignOrganization
	rec = ts.do(http.MethodPost, "/api/kpi/reps", "manager-token", `{"sales_rep_id":8,"month":"2024-03"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign rep: got %d", rec.Code)
	}
}

func TestToAppErrorAlreadyExists(t *testing.T) {
	got := toAppError(fmt.Errorf("%w: widget 2024-03", usecaseErrors.ErrAlreadyExists))
	if got.HTTPCode != http.StatusConflict || got.Message != "Resource already exists" {
		t.Errorf("toAppError() = %d %q", got.HTTPCode, got.Message)
	}
}
