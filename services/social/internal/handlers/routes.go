package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/services/social/internal/social"
)

// Services bundles the core components exposed over HTTP.
type Services struct {
	Graph     *social.RelationshipGraph
	Comments  *social.CommentThread
	Reactions *social.ReactionStore
	Ratings   *social.RatingStore
}

// Mount registers the /v1 routes. Reads of public data need no token;
// everything tied to the caller goes through auth.RequireUser.
func Mount(r chi.Router, s Services, verifier auth.JWTVerifier) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/users/{user_id}/followers", ListFollowers(s.Graph))
		r.Get("/users/{user_id}/following", ListFollowing(s.Graph))
		r.Get("/subjects/{subject_type}/{subject_id}/comments", ListRootComments(s.Comments))
		r.Get("/comments/{comment_id}", GetComment(s.Comments))
		r.Get("/comments/{comment_id}/replies", ListReplies(s.Comments))
		r.Get("/comments/{comment_id}/reactions", GetReactions(s.Reactions))
		r.Get("/movies/{movie_id}/ratings", GetRatings(s.Ratings))

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser(verifier))

			r.Get("/users/{user_id}/relationship", Relationship(s.Graph))
			r.Post("/users/{user_id}/follow", Follow(s.Graph))
			r.Delete("/users/{user_id}/follow", Unfollow(s.Graph))
			r.Post("/users/{user_id}/block", Block(s.Graph))
			r.Delete("/users/{user_id}/block", Unblock(s.Graph))
			r.Get("/me/blocked", ListMyBlocked(s.Graph))

			r.Post("/subjects/{subject_type}/{subject_id}/comments", CreateComment(s.Comments))
			r.Post("/comments/{comment_id}/replies", ReplyToComment(s.Comments))
			r.Put("/comments/{comment_id}", UpdateComment(s.Comments))
			r.Delete("/comments/{comment_id}", DeleteComment(s.Comments))

			r.Get("/comments/{comment_id}/reaction", GetMyReaction(s.Reactions))
			r.Put("/comments/{comment_id}/reaction", SetReaction(s.Reactions))
			r.Delete("/comments/{comment_id}/reaction", RemoveReaction(s.Reactions))

			r.Get("/movies/{movie_id}/rating", GetMyRating(s.Ratings))
			r.Put("/movies/{movie_id}/rating", PutRating(s.Ratings))
			r.Delete("/movies/{movie_id}/rating", DeleteRating(s.Ratings))

			r.With(auth.RequireAdmin).Get("/admin/users/{user_id}/blocked", ListBlocked(s.Graph))
		})
	})
}
