package service

import (
	"context"
	"strings"

	"hbnb/internal/apperrors"
	"hbnb/internal/auth"
	"hbnb/internal/domain"
	"hbnb/internal/repository"
)

type AmenityService interface {
	Create(ctx context.Context, caller auth.Principal, name, description string) (*domain.Amenity, error)
	Get(ctx context.Context, id string) (*domain.Amenity, error)
	List(ctx context.Context) ([]*domain.Amenity, error)
	Update(ctx context.Context, caller auth.Principal, id string, patch domain.AmenityPatch) (*domain.Amenity, error)
	// Delete fails with a conflict while any place still lists the amenity.
	Delete(ctx context.Context, caller auth.Principal, id string) error
}

type amenityService struct {
	repos repository.Set
}

func (s *amenityService) Create(ctx context.Context, caller auth.Principal, name, description string) (*domain.Amenity, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	amenity, err := domain.NewAmenity(name, description)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, amenity.Name, ""); err != nil {
		return nil, err
	}

	stored, err := s.repos.Amenities.Add(ctx, amenity)
	if err != nil {
		return nil, storeError("add amenity", err)
	}
	return stored, nil
}

func (s *amenityService) Get(ctx context.Context, id string) (*domain.Amenity, error) {
	return s.find(ctx, id)
}

func (s *amenityService) List(ctx context.Context) ([]*domain.Amenity, error) {
	amenities, err := s.repos.Amenities.GetAll(ctx)
	if err != nil {
		return nil, storeError("list amenities", err)
	}
	return amenities, nil
}

func (s *amenityService) Update(ctx context.Context, caller auth.Principal, id string, patch domain.AmenityPatch) (*domain.Amenity, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if err := s.ensureNameFree(ctx, strings.TrimSpace(*patch.Name), id); err != nil {
			return nil, err
		}
	}

	updated, err := s.repos.Amenities.Update(ctx, id, patch)
	if err != nil {
		return nil, storeError("update amenity", err)
	}
	if updated == nil {
		return nil, apperrors.NotFound("amenity not found")
	}
	return updated, nil
}

func (s *amenityService) Delete(ctx context.Context, caller auth.Principal, id string) error {
	if err := auth.RequireAdmin(caller); err != nil {
		return err
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	places, err := s.repos.Places.FindAll(ctx, "amenity_id", id)
	if err != nil {
		return storeError("list places by amenity", err)
	}
	if len(places) > 0 {
		return apperrors.Conflict("amenity is used by %d place(s)", len(places))
	}

	ok, err := s.repos.Amenities.Delete(ctx, id)
	if err != nil {
		return storeError("delete amenity", err)
	}
	if !ok {
		return apperrors.NotFound("amenity not found")
	}
	return nil
}

func (s *amenityService) find(ctx context.Context, id string) (*domain.Amenity, error) {
	amenity, err := s.repos.Amenities.Get(ctx, id)
	if err != nil {
		return nil, storeError("get amenity", err)
	}
	if amenity == nil {
		return nil, apperrors.NotFound("amenity not found")
	}
	return amenity, nil
}

func (s *amenityService) ensureNameFree(ctx context.Context, name, exceptID string) error {
	existing, err := s.repos.Amenities.GetByAttribute(ctx, "name", name)
	if err != nil {
		return storeError("find amenity by name", err)
	}
	if existing != nil && existing.ID != exceptID {
		return apperrors.Conflict("amenity %q already exists", existing.Name)
	}
	return nil
}
