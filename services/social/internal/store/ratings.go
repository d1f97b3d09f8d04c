package store

import (
	"context"
	"time"
)

const (
	MinScore = 1
	MaxScore = 10
)

// Rating is the single score a user holds on a movie.
type Rating struct {
	ID        int64      `json:"id"`
	UserID    string     `json:"user_id"`
	MovieID   string     `json:"movie_id"`
	Score     int        `json:"score"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type RatingTx interface {
	GetForUpdate(ctx context.Context, userID, movieID string) (Rating, error)
	// Insert returns ErrDuplicate when (user, movie) already has a row.
	Insert(ctx context.Context, r Rating) (Rating, error)
	UpdateScore(ctx context.Context, id int64, score int, updatedAt time.Time) error
	Delete(ctx context.Context, userID, movieID string) (bool, error)
}

// RatingStore defines the contract for movie rating persistence.
type RatingStore interface {
	InTx(ctx context.Context, fn func(RatingTx) error) error

	Get(ctx context.Context, userID, movieID string) (Rating, error)
	// Distribution returns score -> count for scores that have ratings.
	Distribution(ctx context.Context, movieID string) (map[int]int, error)
}
