package handlers

import (
	"net/http"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/services/social/internal/social"
	"github.com/example/movie-platform/services/social/internal/store"
)

type commentRequest struct {
	Content string `json:"content"`
}

type commentCreatedResponse struct {
	ID       int64  `json:"id"`
	Depth    int    `json:"depth"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

func created(c store.Comment) commentCreatedResponse {
	return commentCreatedResponse{ID: c.ID, Depth: c.Depth, ParentID: c.ParentID}
}

// CreateComment handles POST /v1/subjects/{subject_type}/{subject_id}/comments
func CreateComment(t *social.CommentThread) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := requestID(r)
		uid, ok := callerID(w, r)
		if !ok {
			return
		}
		subjectType, ok := pathID(w, r, "subject_type")
		if !ok {
			return
		}
		subjectID, ok := pathID(w, r, "subject_id")
		if !ok {
			return
		}
		var req commentRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}

		c, err := t.CreateComment(r.Context(), uid, subjectType, subjectID, req.Content)
		if err != nil {
			writeError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, created(c))
	}
}

// ListRootComments handles GET /v1/subjects/{subject_type}/{subject_id}/comments
func ListRootComments(t *social.CommentThread) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectType, ok := pathID(w, r, "subject_type")
		if !ok {
			return
		}
		subjectID, ok := pathID(w, r, "subject_id")
		if !ok {
			return
		}
		page, err := t.ListRootComments(r.Context(), subjectType, subjectID, pageRequest(r))
		if err != nil {
			writeError(w, requestID(r), err)
			return
		}
		writePage(w, page)
	}
}

// GetComment handles GET /v1/comments/{comment_id}
func GetComment(t *social.CommentThread) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := commentID(w, r)
		if !ok {
			return
		}
		view, err := t.GetComment(r.Context(), id)
		if err != nil {
			writeError(w, requestID(r), err)
			return
		}
		api.WriteJSON(w, http.StatusOK, view)
	}
}

// ReplyToComment handles POST /v1/comments/{comment_id}/replies
func ReplyToComment(t *social.CommentThread) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := requestID(r)
		uid, ok := callerID(w, r)
		if !ok {
			return
		}
		parentID, ok := commentID(w, r)
		if !ok {
			return
		}
		var req commentRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}

		c, err := t.ReplyToComment(r.Context(), uid, parentID, req.Content)
		if err != nil {
			writeError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, created(c))
	}
}

// ListReplies handles GET /v1/comments/{comment_id}/replies
func ListReplies(t *social.CommentThread) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := commentID(w, r)
		if !ok {
			return
		}
		page, err := t.ListReplies(r.Context(), id, pageRequest(r))
		if err != nil {
			writeError(w, requestID(r), err)
			return
		}
		writePage(w, page)
	}
}

// UpdateComment handles PUT /v1/comments/{comment_id}
func UpdateComment(t *social.CommentThread) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := requestID(r)
		uid, ok := callerID(w, r)
		if !ok {
			return
		}
		id, ok := commentID(w, r)
		if !ok {
			return
		}
		var req commentRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}

		if _, err := t.UpdateComment(r.Context(), uid, id, req.Content); err != nil {
			writeError(w, rid, err)
			return
		}
		view, err := t.GetComment(r.Context(), id)
		if err != nil {
			writeError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, view)
	}
}

// DeleteComment handles DELETE /v1/comments/{comment_id}
func DeleteComment(t *social.CommentThread) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := callerID(w, r)
		if !ok {
			return
		}
		id, ok := commentID(w, r)
		if !ok {
			return
		}
		if err := t.DeleteComment(r.Context(), uid, id); err != nil {
			writeError(w, requestID(r), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
