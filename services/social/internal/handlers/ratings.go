package handlers

import (
	"net/http"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/services/social/internal/social"
	"github.com/example/movie-platform/services/social/internal/store"
)

type rateRequest struct {
	Score int `json:"score"`
}

type userRatingResponse struct {
	Rating *store.Rating `json:"rating"`
}

// GetRatings handles GET /v1/movies/{movie_id}/ratings
func GetRatings(s *social.RatingStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movieID, ok := pathID(w, r, "movie_id")
		if !ok {
			return
		}
		agg, err := s.GetAggregate(r.Context(), movieID)
		if err != nil {
			writeError(w, requestID(r), err)
			return
		}
		api.WriteJSON(w, http.StatusOK, agg)
	}
}

// PutRating handles PUT /v1/movies/{movie_id}/rating
func PutRating(s *social.RatingStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := requestID(r)
		uid, ok := callerID(w, r)
		if !ok {
			return
		}
		movieID, ok := pathID(w, r, "movie_id")
		if !ok {
			return
		}
		var req rateRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}

		rating, err := s.UpsertRating(r.Context(), uid, movieID, req.Score)
		if err != nil {
			writeError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, rating)
	}
}

// DeleteRating handles DELETE /v1/movies/{movie_id}/rating
func DeleteRating(s *social.RatingStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := callerID(w, r)
		if !ok {
			return
		}
		movieID, ok := pathID(w, r, "movie_id")
		if !ok {
			return
		}
		if err := s.DeleteRating(r.Context(), uid, movieID); err != nil {
			writeError(w, requestID(r), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetMyRating handles GET /v1/movies/{movie_id}/rating
func GetMyRating(s *social.RatingStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := callerID(w, r)
		if !ok {
			return
		}
		movieID, ok := pathID(w, r, "movie_id")
		if !ok {
			return
		}
		rating, err := s.GetUserRating(r.Context(), uid, movieID)
		if err != nil {
			writeError(w, requestID(r), err)
			return
		}
		api.WriteJSON(w, http.StatusOK, userRatingResponse{Rating: rating})
	}
}
