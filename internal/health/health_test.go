package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/sales/internal/storage/memory"
)

func TestHandlerHealthyWithRepositoryChecker(t *testing.T) {
	handler := NewHandler("1.2.3")
	handler.RegisterChecker("repository", NewRepositoryChecker(memory.NewSaleRepository()))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var report Report
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Status != StatusHealthy {
		t.Errorf("report status = %q, want %q", report.Status, StatusHealthy)
	}
	if report.Version != "1.2.3" {
		t.Errorf("report version = %q, want 1.2.3", report.Version)
	}

	check, ok := report.Checks["repository"]
	if !ok {
		t.Fatal("repository check missing from report")
	}
	if check.Status != StatusHealthy {
		t.Errorf("repository check status = %q, want %q", check.Status, StatusHealthy)
	}
}

// failingPinger имитирует недоступную базу продаж.
type failingPinger struct{}

func (failingPinger) Ping(context.Context) error {
	return errors.New("connection refused")
}

func TestHandlerUnhealthyStoreGives503(t *testing.T) {
	handler := NewHandler("dev")
	handler.RegisterChecker("repository", NewRepositoryChecker(memory.NewSaleRepository()))
	handler.RegisterChecker("postgres", NewStoreChecker(failingPinger{}, time.Second))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	var report Report
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Status != StatusUnhealthy {
		t.Errorf("report status = %q, want %q", report.Status, StatusUnhealthy)
	}
	if report.Checks["postgres"].Message == "" {
		t.Error("postgres check should carry the ping error message")
	}
}

func TestReadinessHandler(t *testing.T) {
	handler := NewHandler("dev")
	handler.RegisterChecker("repository", NewRepositoryChecker(memory.NewSaleRepository()))

	w := httptest.NewRecorder()
	handler.ReadinessHandler(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("ready status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "ready" {
		t.Errorf("ready body = %q, want ready", w.Body.String())
	}

	handler.RegisterChecker("postgres", NewStoreChecker(failingPinger{}, time.Second))

	w = httptest.NewRecorder()
	handler.ReadinessHandler(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("not-ready status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestLivenessHandler(t *testing.T) {
	w := httptest.NewRecorder()
	LivenessHandler(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "ok" {
		t.Errorf("body = %q, want ok", w.Body.String())
	}
}

func TestSimpleCheckerReportsError(t *testing.T) {
	checker := NewSimpleChecker("kafka", func() error {
		return errors.New("broker unavailable")
	})

	check := checker.Check()
	if check.Status != StatusUnhealthy {
		t.Errorf("status = %q, want %q", check.Status, StatusUnhealthy)
	}
	if check.Message != "broker unavailable" {
		t.Errorf("message = %q, want broker unavailable", check.Message)
	}
	if check.Name != "kafka" {
		t.Errorf("name = %q, want kafka", check.Name)
	}
}
