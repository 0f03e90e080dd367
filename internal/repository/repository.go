package repository

import (
	"context"

	"hbnb/internal/domain"
)

// Repository is the storage contract shared by every backend.
//
// Lookups of unknown ids return a nil entity and a nil error; Delete of an
// unknown id returns false. Add assigns the id and both timestamps.
type Repository[T any, P any] interface {
	Get(ctx context.Context, id string) (T, error)
	GetByAttribute(ctx context.Context, attr string, value any) (T, error)
	GetAll(ctx context.Context) ([]T, error)
	FindAll(ctx context.Context, attr string, value any) ([]T, error)
	Add(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, id string, patch P) (T, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type (
	UserRepository    = Repository[*domain.User, domain.UserPatch]
	PlaceRepository   = Repository[*domain.Place, domain.PlacePatch]
	ReviewRepository  = Repository[*domain.Review, domain.ReviewPatch]
	AmenityRepository = Repository[*domain.Amenity, domain.AmenityPatch]
)

// Set bundles one repository per entity kind from the same backend.
type Set struct {
	Users     UserRepository
	Places    PlaceRepository
	Reviews   ReviewRepository
	Amenities AmenityRepository
}
