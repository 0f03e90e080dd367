package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"hbnb/internal/apperrors"
	"hbnb/internal/auth"
	"hbnb/internal/domain"
	"hbnb/internal/repository"
)

type CreatePlaceInput struct {
	Title       string
	Description string
	Price       float64
	Latitude    *float64
	Longitude   *float64
	AmenityIDs  []string
}

// PlaceDetail is a place with its amenities resolved.
type PlaceDetail struct {
	*domain.Place
	Amenities []*domain.Amenity
}

// PlaceService coordinates place listings and their photos.
type PlaceService interface {
	Create(ctx context.Context, caller auth.Principal, in CreatePlaceInput) (*PlaceDetail, error)
	Get(ctx context.Context, id string) (*PlaceDetail, error)
	List(ctx context.Context) ([]*PlaceDetail, error)
	ListByAmenity(ctx context.Context, amenityID string) ([]*PlaceDetail, error)
	// Update ignores patch.OwnerID; ownership only changes through Transfer.
	Update(ctx context.Context, caller auth.Principal, id string, patch domain.PlacePatch) (*PlaceDetail, error)
	Transfer(ctx context.Context, caller auth.Principal, id, ownerID string) (*PlaceDetail, error)
	Delete(ctx context.Context, caller auth.Principal, id string) error
	AddPhoto(ctx context.Context, caller auth.Principal, placeID string, upload PhotoUpload) (*domain.Photo, error)
	ListPhotos(ctx context.Context, placeID string) ([]*domain.Photo, error)
}

type placeService struct {
	repos  repository.Set
	photos *PhotoStore
	logger *logrus.Logger
}

func (s *placeService) Create(ctx context.Context, caller auth.Principal, in CreatePlaceInput) (*PlaceDetail, error) {
	if err := auth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	place, err := domain.NewPlace(in.Title, in.Description, in.Price, in.Latitude, in.Longitude, caller.UserID, in.AmenityIDs)
	if err != nil {
		return nil, err
	}

	owner, err := s.repos.Users.Get(ctx, caller.UserID)
	if err != nil {
		return nil, storeError("get owner", err)
	}
	if owner == nil {
		return nil, apperrors.NotFound("owner not found")
	}
	if err := s.ensureAmenities(ctx, place.AmenityIDs); err != nil {
		return nil, err
	}

	stored, err := s.repos.Places.Add(ctx, place)
	if err != nil {
		return nil, storeError("add place", err)
	}
	return s.detail(ctx, stored)
}

func (s *placeService) Get(ctx context.Context, id string) (*PlaceDetail, error) {
	place, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, place)
}

func (s *placeService) List(ctx context.Context) ([]*PlaceDetail, error) {
	places, err := s.repos.Places.GetAll(ctx)
	if err != nil {
		return nil, storeError("list places", err)
	}
	return s.details(ctx, places)
}

func (s *placeService) ListByAmenity(ctx context.Context, amenityID string) ([]*PlaceDetail, error) {
	amenity, err := s.repos.Amenities.Get(ctx, amenityID)
	if err != nil {
		return nil, storeError("get amenity", err)
	}
	if amenity == nil {
		return nil, apperrors.NotFound("amenity not found")
	}
	places, err := s.repos.Places.FindAll(ctx, "amenity_id", amenityID)
	if err != nil {
		return nil, storeError("list places by amenity", err)
	}
	return s.details(ctx, places)
}

func (s *placeService) Update(ctx context.Context, caller auth.Principal, id string, patch domain.PlacePatch) (*PlaceDetail, error) {
	place, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrAdmin(caller, place.OwnerID); err != nil {
		return nil, err
	}

	patch.OwnerID = nil
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.AmenityIDs != nil {
		if err := s.ensureAmenities(ctx, domain.UniqueIDs(*patch.AmenityIDs)); err != nil {
			return nil, err
		}
	}
	return s.update(ctx, id, patch)
}

func (s *placeService) Transfer(ctx context.Context, caller auth.Principal, id, ownerID string) (*PlaceDetail, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	patch := domain.PlacePatch{OwnerID: &ownerID}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	owner, err := s.repos.Users.Get(ctx, ownerID)
	if err != nil {
		return nil, storeError("get owner", err)
	}
	if owner == nil {
		return nil, apperrors.NotFound("owner not found")
	}
	return s.update(ctx, id, patch)
}

func (s *placeService) Delete(ctx context.Context, caller auth.Principal, id string) error {
	place, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireOwnerOrAdmin(caller, place.OwnerID); err != nil {
		return err
	}
	return s.deletePlace(ctx, id)
}

// deletePlace removes the place with its reviews and photos.
func (s *placeService) deletePlace(ctx context.Context, id string) error {
	reviews, err := s.repos.Reviews.FindAll(ctx, "place_id", id)
	if err != nil {
		return storeError("list place reviews", err)
	}
	for _, review := range reviews {
		if _, err := s.repos.Reviews.Delete(ctx, review.ID); err != nil {
			return storeError("delete review", err)
		}
	}

	ok, err := s.repos.Places.Delete(ctx, id)
	if err != nil {
		return storeError("delete place", err)
	}
	if !ok {
		return apperrors.NotFound("place not found")
	}

	if s.photos != nil {
		if err := s.photos.deleteAll(ctx, id); err != nil {
			s.logger.WithError(err).WithField("place_id", id).Warn("delete place photos")
		}
	}
	return nil
}

func (s *placeService) find(ctx context.Context, id string) (*domain.Place, error) {
	place, err := s.repos.Places.Get(ctx, id)
	if err != nil {
		return nil, storeError("get place", err)
	}
	if place == nil {
		return nil, apperrors.NotFound("place not found")
	}
	return place, nil
}

func (s *placeService) update(ctx context.Context, id string, patch domain.PlacePatch) (*PlaceDetail, error) {
	updated, err := s.repos.Places.Update(ctx, id, patch)
	if err != nil {
		return nil, storeError("update place", err)
	}
	if updated == nil {
		return nil, apperrors.NotFound("place not found")
	}
	return s.detail(ctx, updated)
}

func (s *placeService) ensureAmenities(ctx context.Context, ids []string) error {
	for _, id := range ids {
		amenity, err := s.repos.Amenities.Get(ctx, id)
		if err != nil {
			return storeError("get amenity", err)
		}
		if amenity == nil {
			return apperrors.NotFound("amenity %s not found", id)
		}
	}
	return nil
}

func (s *placeService) detail(ctx context.Context, place *domain.Place) (*PlaceDetail, error) {
	out := &PlaceDetail{Place: place, Amenities: make([]*domain.Amenity, 0, len(place.AmenityIDs))}
	for _, id := range place.AmenityIDs {
		amenity, err := s.repos.Amenities.Get(ctx, id)
		if err != nil {
			return nil, storeError("get amenity", err)
		}
		if amenity != nil {
			out.Amenities = append(out.Amenities, amenity)
		}
	}
	return out, nil
}

func (s *placeService) details(ctx context.Context, places []*domain.Place) ([]*PlaceDetail, error) {
	out := make([]*PlaceDetail, 0, len(places))
	for _, place := range places {
		d, err := s.detail(ctx, place)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
