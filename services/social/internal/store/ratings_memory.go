package store

import (
	"context"
	"time"
)

// MemoryRatingStore implements RatingStore over Memory.
type MemoryRatingStore struct {
	db *Memory
}

type memRatingTx struct {
	s *memState
}

func (s *MemoryRatingStore) InTx(ctx context.Context, fn func(RatingTx) error) error {
	return s.db.inTx(ctx, func(st *memState) error {
		return fn(memRatingTx{s: st})
	})
}

func (tx memRatingTx) GetForUpdate(_ context.Context, userID, movieID string) (Rating, error) {
	r, ok := tx.s.ratings[ratingKey{userID, movieID}]
	if !ok {
		return Rating{}, ErrNotFound
	}
	return r, nil
}

func (tx memRatingTx) Insert(_ context.Context, r Rating) (Rating, error) {
	k := ratingKey{r.UserID, r.MovieID}
	if _, ok := tx.s.ratings[k]; ok {
		return Rating{}, ErrDuplicate
	}
	tx.s.nextRatingID++
	r.ID = tx.s.nextRatingID
	tx.s.ratings[k] = r
	return r, nil
}

func (tx memRatingTx) UpdateScore(_ context.Context, id int64, score int, updatedAt time.Time) error {
	for k, r := range tx.s.ratings {
		if r.ID == id {
			r.Score = score
			r.UpdatedAt = &updatedAt
			tx.s.ratings[k] = r
			return nil
		}
	}
	return ErrNotFound
}

func (tx memRatingTx) Delete(_ context.Context, userID, movieID string) (bool, error) {
	k := ratingKey{userID, movieID}
	if _, ok := tx.s.ratings[k]; !ok {
		return false, nil
	}
	delete(tx.s.ratings, k)
	return true, nil
}

func (s *MemoryRatingStore) Get(ctx context.Context, userID, movieID string) (Rating, error) {
	var r Rating
	err := s.db.read(ctx, func(st *memState) error {
		var ok bool
		if r, ok = st.ratings[ratingKey{userID, movieID}]; !ok {
			return ErrNotFound
		}
		return nil
	})
	return r, err
}

func (s *MemoryRatingStore) Distribution(ctx context.Context, movieID string) (map[int]int, error) {
	out := make(map[int]int)
	err := s.db.read(ctx, func(st *memState) error {
		for k, r := range st.ratings {
			if k.movieID == movieID {
				out[r.Score]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
