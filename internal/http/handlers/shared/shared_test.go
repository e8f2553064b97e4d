package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestParseTimeFormats(t *testing.T) {
	got, err := ParseTime("2024-05-01")
	if err != nil || !got.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date parse failed: %v %v", got, err)
	}
	got, err = ParseTime("2024-05-01T09:00:00+09:00")
	if err != nil || !got.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("rfc3339 parse failed: %v %v", got, err)
	}
	if _, err := ParseTime("05/01/2024"); err == nil {
		t.Fatalf("expected error for unsupported layout")
	}
	empty, err := ParseTimeNullable("  ")
	if err != nil || empty != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestNormalizePagination(t *testing.T) {
	page, size := NormalizePagination(0, 0)
	if page != 1 || size != 20 {
		t.Fatalf("defaults want 1/20 got %d/%d", page, size)
	}
	if _, size = NormalizePagination(2, 500); size != 100 {
		t.Fatalf("page size should cap at 100, got %d", size)
	}
}

type strictBody struct {
	Reason string `json:"reason" binding:"required"`
}

type optionalBody struct {
	Recalculate bool `json:"recalculate"`
}

func newJSONContext(body string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestBindJSONStrict(t *testing.T) {
	var ok strictBody
	if err := BindJSONStrict(newJSONContext(`{"reason":"audit"}`), &ok); err != nil || ok.Reason != "audit" {
		t.Fatalf("expected bind success, got %v %+v", err, ok)
	}
	if err := BindJSONStrict(newJSONContext(`{"reason":"audit","extra":1}`), &strictBody{}); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if err := BindJSONStrict(newJSONContext(``), &strictBody{}); err == nil {
		t.Fatalf("expected required validation error on empty body")
	}
	var optional optionalBody
	if err := BindJSONStrict(newJSONContext(``), &optional); err != nil || optional.Recalculate {
		t.Fatalf("empty body should bind to zero value, got %v", err)
	}
}

func TestParsePathUint64(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	if id, ok := ParsePathUint64(c, "id"); !ok || id != 42 {
		t.Fatalf("expected 42, got %d %v", id, ok)
	}

	c.Params = gin.Params{{Key: "id", Value: "0"}}
	if _, ok := ParsePathUint64(c, "id"); ok {
		t.Fatalf("expected zero id rejected")
	}
	if !strings.Contains(w.Body.String(), `"status_code":400`) {
		t.Fatalf("expected bad request body, got %s", w.Body.String())
	}
}
