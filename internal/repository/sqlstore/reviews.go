package sqlstore

import (
	"github.com/doug-martin/goqu/v9"

	"hbnb/internal/domain"
	"hbnb/internal/repository"
)

func NewReviewRepository(db *DB) repository.ReviewRepository {
	return &table[*domain.Review, domain.ReviewPatch]{
		db:      db,
		name:    "reviews",
		kind:    "review",
		columns: []any{"text", "rating", "user_id", "place_id"},
		attrs: map[string]attribute{
			"id":       column("id"),
			"user_id":  column("user_id"),
			"place_id": column("place_id"),
		},
		record: func(r *domain.Review) goqu.Record {
			return goqu.Record{
				"text":     r.Text,
				"rating":   r.Rating,
				"user_id":  r.UserID,
				"place_id": r.PlaceID,
			}
		},
		scan: func(s scanner) (*domain.Review, error) {
			var r domain.Review
			err := s.Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt, &r.Text, &r.Rating, &r.UserID, &r.PlaceID)
			return &r, err
		},
	}
}
