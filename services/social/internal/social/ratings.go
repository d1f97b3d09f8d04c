package social

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/example/movie-platform/services/social/internal/store"
)

// RatingStore owns the single score a user holds on a movie.
type RatingStore struct {
	base
	store  store.RatingStore
	movies store.MovieCatalog
}

// NewRatingStore builds a rating component. A nil catalog skips the movie
// existence check.
func NewRatingStore(rs store.RatingStore, movies store.MovieCatalog, opts Options) *RatingStore {
	return &RatingStore{base: newBase(opts, "ratings"), store: rs, movies: movies}
}

// RatingAggregate summarises every rating of one movie. Distribution always
// has the keys 1 through 10.
type RatingAggregate struct {
	Average      float64     `json:"average"`
	Total        int         `json:"total"`
	Distribution map[int]int `json:"distribution"`
}

func (s *RatingStore) UpsertRating(ctx context.Context, userID, movieID string, score int) (store.Rating, error) {
	if score < store.MinScore || score > store.MaxScore {
		return store.Rating{}, invalid("invalid_score", "score must be between 1 and 10")
	}
	userID, movieID = normID(userID), normID(movieID)
	if movieID == "" {
		return store.Rating{}, invalid("invalid_movie", "movie id is required")
	}
	if s.movies != nil {
		ok, err := s.movies.MovieExists(ctx, movieID)
		if err != nil {
			return store.Rating{}, s.passthrough("upsert rating", err)
		}
		if !ok {
			return store.Rating{}, notFound("movie_not_found", "movie not found")
		}
	}

	r, created, err := s.upsert(ctx, userID, movieID, score)
	if errors.Is(err, store.ErrDuplicate) {
		// A concurrent first insert won; the row now exists and can be updated.
		r, created, err = s.upsert(ctx, userID, movieID, score)
	}
	if errors.Is(err, store.ErrDuplicate) {
		return store.Rating{}, conflict("rating_conflict", "rating was modified concurrently")
	}
	if err != nil {
		return store.Rating{}, s.passthrough("upsert rating", err)
	}

	s.log.Debug("rating set",
		zap.String("user_id", userID),
		zap.String("movie_id", movieID),
		zap.Int("score", score),
		zap.Bool("created", created),
	)
	s.publish("social.rating.set", "rating_set", userID, map[string]any{
		"movie_id": movieID,
		"score":    score,
		"created":  created,
	})
	return r, nil
}

func (s *RatingStore) upsert(ctx context.Context, userID, movieID string, score int) (store.Rating, bool, error) {
	var (
		result  store.Rating
		created bool
	)
	err := s.store.InTx(ctx, func(tx store.RatingTx) error {
		created = false
		existing, err := tx.GetForUpdate(ctx, userID, movieID)
		if errors.Is(err, store.ErrNotFound) {
			result, err = tx.Insert(ctx, store.Rating{
				UserID:    userID,
				MovieID:   movieID,
				Score:     score,
				CreatedAt: s.now(),
			})
			created = err == nil
			return err
		}
		if err != nil {
			return err
		}
		now := s.now()
		if err := tx.UpdateScore(ctx, existing.ID, score, now); err != nil {
			return err
		}
		existing.Score = score
		existing.UpdatedAt = &now
		result = existing
		return nil
	})
	return result, created, err
}

func (s *RatingStore) DeleteRating(ctx context.Context, userID, movieID string) error {
	userID, movieID = normID(userID), normID(movieID)
	err := s.store.InTx(ctx, func(tx store.RatingTx) error {
		deleted, err := tx.Delete(ctx, userID, movieID)
		if err != nil {
			return err
		}
		if !deleted {
			return notFound("rating_not_found", "rating not found")
		}
		return nil
	})
	if err != nil {
		return s.passthrough("delete rating", err)
	}

	s.log.Debug("rating deleted", zap.String("user_id", userID), zap.String("movie_id", movieID))
	s.publish("social.rating.deleted", "rating_deleted", userID, map[string]any{"movie_id": movieID})
	return nil
}

// GetAggregate returns average 0, total 0 and an all-zero distribution for
// an unrated movie.
func (s *RatingStore) GetAggregate(ctx context.Context, movieID string) (RatingAggregate, error) {
	counts, err := s.store.Distribution(ctx, normID(movieID))
	if err != nil {
		return RatingAggregate{}, s.passthrough("rating aggregate", err)
	}
	return aggregate(counts), nil
}

func aggregate(counts map[int]int) RatingAggregate {
	agg := RatingAggregate{Distribution: make(map[int]int, store.MaxScore)}
	sum := 0
	for score := store.MinScore; score <= store.MaxScore; score++ {
		n := counts[score]
		agg.Distribution[score] = n
		agg.Total += n
		sum += score * n
	}
	if agg.Total > 0 {
		agg.Average = math.Round(float64(sum)/float64(agg.Total)*100) / 100
	}
	return agg
}

// GetUserRating returns nil, nil when the user has not rated the movie.
func (s *RatingStore) GetUserRating(ctx context.Context, userID, movieID string) (*store.Rating, error) {
	r, err := s.store.Get(ctx, normID(userID), normID(movieID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.passthrough("get rating", err)
	}
	return &r, nil
}
