package reportserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"menuforge/internal/report"
)

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestListAndFetchReports(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	if _, err := report.NewWriter(dir).Write(report.ReconcileFile, map[string]int{"exact-match": 2}); err != nil {
		t.Fatal(err)
	}

	r := NewRouter(dir)

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}

	var list struct {
		Reports []string `json:"reports"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Reports) != 1 || list.Reports[0] != report.ReconcileFile {
		t.Fatalf("reports = %v", list.Reports)
	}

	req = httptest.NewRequest(http.MethodGet, "/reports/"+report.ReconcileFile, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("fetch status = %d", w.Code)
	}
}

func TestFetchRejectsNonReportNames(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(t.TempDir())

	for path, want := range map[string]int{
		"/reports/missing.json": http.StatusNotFound,
		"/reports/secrets.txt":  http.StatusBadRequest,
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("%s: status = %d, want %d", path, w.Code, want)
		}
	}
}
