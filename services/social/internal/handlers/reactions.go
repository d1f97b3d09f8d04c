package handlers

import (
	"net/http"
	"strings"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/services/social/internal/social"
	"github.com/example/movie-platform/services/social/internal/store"
)

type reactionRequest struct {
	Kind string `json:"kind"`
}

type userReactionResponse struct {
	Reaction *store.Reaction `json:"reaction"`
}

// SetReaction handles PUT /v1/comments/{comment_id}/reaction
func SetReaction(s *social.ReactionStore) http.HandlerFunc {
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
		var req reactionRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}

		kind := store.ReactionKind(strings.ToLower(strings.TrimSpace(req.Kind)))
		reaction, err := s.AddOrUpdateReaction(r.Context(), uid, id, kind)
		if err != nil {
			writeError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, reaction)
	}
}

// RemoveReaction handles DELETE /v1/comments/{comment_id}/reaction
func RemoveReaction(s *social.ReactionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := callerID(w, r)
		if !ok {
			return
		}
		id, ok := commentID(w, r)
		if !ok {
			return
		}
		if err := s.RemoveReaction(r.Context(), uid, id); err != nil {
			writeError(w, requestID(r), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetMyReaction handles GET /v1/comments/{comment_id}/reaction
func GetMyReaction(s *social.ReactionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := callerID(w, r)
		if !ok {
			return
		}
		id, ok := commentID(w, r)
		if !ok {
			return
		}
		reaction, err := s.GetUserReaction(r.Context(), uid, id)
		if err != nil {
			writeError(w, requestID(r), err)
			return
		}
		api.WriteJSON(w, http.StatusOK, userReactionResponse{Reaction: reaction})
	}
}

// GetReactions handles GET /v1/comments/{comment_id}/reactions
func GetReactions(s *social.ReactionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := commentID(w, r)
		if !ok {
			return
		}
		agg, err := s.GetAggregate(r.Context(), id)
		if err != nil {
			writeError(w, requestID(r), err)
			return
		}
		api.WriteJSON(w, http.StatusOK, agg)
	}
}
