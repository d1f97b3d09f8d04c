package handlers

import (
	"net/http"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/services/social/internal/social"
)

type relationshipResponse struct {
	Following  bool                `json:"following"`
	FollowedBy bool                `json:"followed_by"`
	Blocked    bool                `json:"blocked"`
	Counts     social.FollowCounts `json:"counts"`
}

// Follow handles POST /v1/users/{user_id}/follow
func Follow(g *social.RelationshipGraph) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := requestID(r)
		uid, ok := callerID(w, r)
		if !ok {
			return
		}
		target, ok := pathID(w, r, "user_id")
		if !ok {
			return
		}
		if err := g.Follow(r.Context(), uid, target); err != nil {
			writeError(w, rid, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Unfollow handles DELETE /v1/users/{user_id}/follow
func Unfollow(g *social.RelationshipGraph) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := requestID(r)
		uid, ok := callerID(w, r)
		if !ok {
			return
		}
		target, ok := pathID(w, r, "user_id")
		if !ok {
			return
		}
		if err := g.Unfollow(r.Context(), uid, target); err != nil {
			writeError(w, rid, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Block handles POST /v1/users/{user_id}/block
func Block(g *social.RelationshipGraph) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := requestID(r)
		uid, ok := callerID(w, r)
		if !ok {
			return
		}
		target, ok := pathID(w, r, "user_id")
		if !ok {
			return
		}
		if err := g.Block(r.Context(), uid, target); err != nil {
			writeError(w, rid, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Unblock handles DELETE /v1/users/{user_id}/block
func Unblock(g *social.RelationshipGraph) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := requestID(r)
		uid, ok := callerID(w, r)
		if !ok {
			return
		}
		target, ok := pathID(w, r, "user_id")
		if !ok {
			return
		}
		if err := g.Unblock(r.Context(), uid, target); err != nil {
			writeError(w, rid, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListFollowers handles GET /v1/users/{user_id}/followers
func ListFollowers(g *social.RelationshipGraph) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r, "user_id")
		if !ok {
			return
		}
		page, err := g.ListFollowers(r.Context(), userID, pageRequest(r))
		if err != nil {
			writeError(w, requestID(r), err)
			return
		}
		writePage(w, page)
	}
}

// ListFollowing handles GET /v1/users/{user_id}/following
func ListFollowing(g *social.RelationshipGraph) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r, "user_id")
		if !ok {
			return
		}
		page, err := g.ListFollowing(r.Context(), userID, pageRequest(r))
		if err != nil {
			writeError(w, requestID(r), err)
			return
		}
		writePage(w, page)
	}
}

// ListMyBlocked handles GET /v1/me/blocked
func ListMyBlocked(g *social.RelationshipGraph) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := callerID(w, r)
		if !ok {
			return
		}
		page, err := g.ListBlocked(r.Context(), uid, pageRequest(r))
		if err != nil {
			writeError(w, requestID(r), err)
			return
		}
		writePage(w, page)
	}
}

// ListBlocked handles GET /v1/admin/users/{user_id}/blocked
func ListBlocked(g *social.RelationshipGraph) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r, "user_id")
		if !ok {
			return
		}
		page, err := g.ListBlocked(r.Context(), userID, pageRequest(r))
		if err != nil {
			writeError(w, requestID(r), err)
			return
		}
		writePage(w, page)
	}
}

// Relationship handles GET /v1/users/{user_id}/relationship and reports how
// the caller relates to the user.
func Relationship(g *social.RelationshipGraph) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := requestID(r)
		uid, ok := callerID(w, r)
		if !ok {
			return
		}
		target, ok := pathID(w, r, "user_id")
		if !ok {
			return
		}

		ctx := r.Context()
		var resp relationshipResponse
		var err error
		if resp.Following, err = g.IsFollowing(ctx, uid, target); err != nil {
			writeError(w, rid, err)
			return
		}
		if resp.FollowedBy, err = g.IsFollowing(ctx, target, uid); err != nil {
			writeError(w, rid, err)
			return
		}
		if resp.Blocked, err = g.IsBlocked(ctx, uid, target); err != nil {
			writeError(w, rid, err)
			return
		}
		if resp.Counts, err = g.Counts(ctx, target); err != nil {
			writeError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, resp)
	}
}
