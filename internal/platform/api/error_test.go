package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestWriteError_Envelope(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, http.StatusConflict, "ALREADY_FOLLOWING", "already following", "rid-1", map[string]any{"user_id": "u2"})

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Code != "ALREADY_FOLLOWING" || resp.Error.RequestID != "rid-1" || resp.Error.Details["user_id"] != "u2" {
		t.Fatalf("unexpected envelope: %+v", resp.Error)
	}
}

func TestInternal_HidesDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	Internal(rr, "")

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Code != "INTERNAL" {
		t.Fatalf("expected INTERNAL, got %q", resp.Error.Code)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[codes.Code]int{
		codes.InvalidArgument:  http.StatusBadRequest,
		codes.Unauthenticated:  http.StatusUnauthorized,
		codes.PermissionDenied: http.StatusForbidden,
		codes.NotFound:         http.StatusNotFound,
		codes.AlreadyExists:    http.StatusConflict,
		codes.Canceled:         http.StatusServiceUnavailable,
		codes.DeadlineExceeded: http.StatusServiceUnavailable,
		codes.Internal:         http.StatusInternalServerError,
		codes.Unknown:          http.StatusInternalServerError,
	}
	for c, want := range cases {
		if got := HTTPStatus(c); got != want {
			t.Fatalf("%s: expected %d, got %d", c, want, got)
		}
	}
}
