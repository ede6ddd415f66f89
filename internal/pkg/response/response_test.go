package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestInternalErrorDefaultMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	InternalError(rec)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error == nil || resp.Error.Message != "An unexpected error occurred" {
		t.Errorf("unexpected error payload: %+v", resp.Error)
	}
}

func TestInternalErrorCustomMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	InternalError(rec, "Failed to create material")

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp.Error == nil || resp.Error.Message != "Failed to create material" {
		t.Errorf("unexpected error payload: %+v", resp.Error)
	}
	if resp.Error != nil && resp.Error.Code != "INTERNAL_ERROR" {
		t.Errorf("expected code INTERNAL_ERROR, got %s", resp.Error.Code)
	}
}

func TestWithMetaIncludesPagination(t *testing.T) {
	rec := httptest.NewRecorder()
	WithMeta(rec, []string{"a", "b"}, Meta{Total: 2, Page: 1, Limit: 20, Pages: 1})

	resp := decode(t, rec)
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Meta == nil || resp.Meta.Total != 2 || resp.Meta.Limit != 20 {
		t.Errorf("unexpected meta: %+v", resp.Meta)
	}
}
