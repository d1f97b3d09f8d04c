package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/internal/platform/httpserver"
	"github.com/example/movie-platform/services/social/internal/social"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

// decodeJSON reads up to maxRequestBodyBytes from r.Body and decodes JSON into dst.
// On failure it writes a 400 response and returns false.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, rid string, dst *T) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(dst); err != nil {
		api.BadRequest(w, "INVALID_JSON", "Invalid JSON", rid)
		return false
	}
	return true
}

func requestID(r *http.Request) string {
	return httpserver.RequestIDFromContext(r.Context())
}

// callerID returns the authenticated user or writes 401.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(uid) == "" {
		api.Unauthorized(w, "authentication required", requestID(r))
		return "", false
	}
	return uid, true
}

// pathID returns a required string URL param or writes 400.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := strings.TrimSpace(chi.URLParam(r, name))
	if v == "" {
		api.BadRequest(w, "MISSING_ID", name+" is required", requestID(r))
		return "", false
	}
	return v, true
}

// commentID parses the {comment_id} URL param or writes 400.
func commentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "comment_id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		api.BadRequest(w, "INVALID_ID", "comment_id must be a positive integer", requestID(r))
		return 0, false
	}
	return id, true
}

// pageRequest reads ?page= and ?page_size=. Bad values fall back to defaults.
func pageRequest(r *http.Request) social.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(strings.TrimSpace(q.Get("page")))
	size, _ := strconv.Atoi(strings.TrimSpace(q.Get("page_size")))
	return social.PageRequest{Page: page, PageSize: size}
}

type pageResponse[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Total    int  `json:"total"`
	HasNext  bool `json:"has_next"`
}

func writePage[T any](w http.ResponseWriter, p social.Page[T]) {
	api.WriteJSON(w, http.StatusOK, pageResponse[T]{
		Items:    p.Items,
		Page:     p.Page,
		PageSize: p.PageSize,
		Total:    p.Total,
		HasNext:  p.HasNext(),
	})
}
