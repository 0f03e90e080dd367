package sqlstore

import "hbnb/internal/repository"

// NewSet returns repositories for every entity kind backed by db.
func NewSet(db *DB) repository.Set {
	return repository.Set{
		Users:     NewUserRepository(db),
		Places:    NewPlaceRepository(db),
		Reviews:   NewReviewRepository(db),
		Amenities: NewAmenityRepository(db),
	}
}
