package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/movie-platform/services/social/internal/social"
)

func TestWriteError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&social.Error{Kind: social.KindNotFound, Code: "comment_not_found", Message: "comment not found"}, http.StatusNotFound},
		{&social.Error{Kind: social.KindConflict, Code: "already_following", Message: "x"}, http.StatusConflict},
		{&social.Error{Kind: social.KindForbidden, Code: "blocked", Message: "x"}, http.StatusForbidden},
		{&social.Error{Kind: social.KindValidation, Code: "invalid_score", Message: "x"}, http.StatusBadRequest},
		{&social.Error{Kind: social.KindUnexpected, Code: "internal", Message: "x", Err: errors.New("db")}, http.StatusInternalServerError},
		{&social.Error{Kind: social.KindUnexpected, Code: "internal", Message: "x", Err: context.Canceled}, http.StatusServiceUnavailable},
		{errors.New("not a core error"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		writeError(rr, "rid-1", tc.err)
		if rr.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, rr.Code)
		}
	}
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, "rid-42", &social.Error{Kind: social.KindNotFound, Code: "rating_not_found", Message: "rating not found"})

	e := decodeError(t, rr)
	if e.RequestID != "rid-42" || e.Code != "RATING_NOT_FOUND" || e.Message != "rating not found" {
		t.Fatalf("unexpected error body %+v", e)
	}
}
