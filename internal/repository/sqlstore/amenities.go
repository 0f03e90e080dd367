package sqlstore

import (
	"github.com/doug-martin/goqu/v9"

	"hbnb/internal/domain"
	"hbnb/internal/repository"
)

func NewAmenityRepository(db *DB) repository.AmenityRepository {
	return &table[*domain.Amenity, domain.AmenityPatch]{
		db:      db,
		name:    "amenities",
		kind:    "amenity",
		columns: []any{"name", "description"},
		attrs: map[string]attribute{
			"id":   column("id"),
			"name": keyColumn("name_key"),
		},
		record: func(a *domain.Amenity) goqu.Record {
			return goqu.Record{
				"name":        a.Name,
				"name_key":    domain.FoldKey(a.Name),
				"description": a.Description,
			}
		},
		scan: func(s scanner) (*domain.Amenity, error) {
			var a domain.Amenity
			err := s.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.Name, &a.Description)
			return &a, err
		},
	}
}
