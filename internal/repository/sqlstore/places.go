package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"hbnb/internal/apperrors"
	"hbnb/internal/domain"
	"hbnb/internal/repository"
)

const placeAmenitiesTable = "place_amenities"

func NewPlaceRepository(db *DB) repository.PlaceRepository {
	return &table[*domain.Place, domain.PlacePatch]{
		db:      db,
		name:    "places",
		kind:    "place",
		columns: []any{"title", "description", "price", "latitude", "longitude", "owner_id"},
		attrs: map[string]attribute{
			"id":         column("id"),
			"owner_id":   column("owner_id"),
			"title":      column("title"),
			"amenity_id": withAmenity,
		},
		record: func(p *domain.Place) goqu.Record {
			return goqu.Record{
				"title":       p.Title,
				"description": p.Description,
				"price":       p.Price,
				"latitude":    nullFloat(p.Latitude),
				"longitude":   nullFloat(p.Longitude),
				"owner_id":    p.OwnerID,
			}
		},
		scan: func(s scanner) (*domain.Place, error) {
			var (
				p        domain.Place
				lat, lon sql.NullFloat64
			)
			if err := s.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt,
				&p.Title, &p.Description, &p.Price, &lat, &lon, &p.OwnerID); err != nil {
				return nil, err
			}
			if lat.Valid {
				p.Latitude = &lat.Float64
			}
			if lon.Valid {
				p.Longitude = &lon.Float64
			}
			p.AmenityIDs = []string{}
			return &p, nil
		},
		load: func(ctx context.Context, q querier, places []*domain.Place) error {
			return loadPlaceAmenities(ctx, db, q, places)
		},
		save: func(ctx context.Context, q querier, place *domain.Place) error {
			return savePlaceAmenities(ctx, db, q, place)
		},
	}
}

func withAmenity(d goqu.DialectWrapper, value any) (exp.Expression, bool) {
	id, ok := value.(string)
	if !ok {
		return nil, false
	}
	linked := d.From(placeAmenitiesTable).Select("place_id").Where(goqu.C("amenity_id").Eq(id))
	return goqu.C("id").In(linked), true
}

func loadPlaceAmenities(ctx context.Context, db *DB, q querier, places []*domain.Place) error {
	byID := make(map[string]*domain.Place, len(places))
	ids := make([]string, 0, len(places))
	for _, p := range places {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	query, args, err := db.dialect.From(placeAmenitiesTable).Prepared(true).
		Select("place_id", "amenity_id").
		Where(goqu.C("place_id").In(ids)).
		Order(goqu.C("place_id").Asc(), goqu.C("position").Asc()).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build place amenities select: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("select place amenities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var placeID, amenityID string
		if err := rows.Scan(&placeID, &amenityID); err != nil {
			return fmt.Errorf("scan place amenity: %w", err)
		}
		if p, ok := byID[placeID]; ok {
			p.AmenityIDs = append(p.AmenityIDs, amenityID)
		}
	}
	return rows.Err()
}

// savePlaceAmenities replaces the stored links with place.AmenityIDs.
func savePlaceAmenities(ctx context.Context, db *DB, q querier, place *domain.Place) error {
	query, args, err := db.dialect.Delete(placeAmenitiesTable).Prepared(true).
		Where(goqu.C("place_id").Eq(place.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build place amenities delete: %w", err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear place amenities: %w", err)
	}
	if len(place.AmenityIDs) == 0 {
		return nil
	}

	rows := make([]any, 0, len(place.AmenityIDs))
	for i, id := range place.AmenityIDs {
		rows = append(rows, goqu.Record{"place_id": place.ID, "amenity_id": id, "position": i})
	}
	query, args, err = db.dialect.Insert(placeAmenitiesTable).Prepared(true).Rows(rows...).ToSQL()
	if err != nil {
		return fmt.Errorf("build place amenities insert: %w", err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("amenity not found")
		}
		return fmt.Errorf("insert place amenities: %w", err)
	}
	return nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
