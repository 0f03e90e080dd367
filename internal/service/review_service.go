package service

import (
	"context"

	"hbnb/internal/apperrors"
	"hbnb/internal/auth"
	"hbnb/internal/domain"
	"hbnb/internal/repository"
)

type CreateReviewInput struct {
	Text    string
	Rating  int
	PlaceID string
}

type ReviewService interface {
	Create(ctx context.Context, caller auth.Principal, in CreateReviewInput) (*domain.Review, error)
	Get(ctx context.Context, id string) (*domain.Review, error)
	List(ctx context.Context) ([]*domain.Review, error)
	ListByPlace(ctx context.Context, placeID string) ([]*domain.Review, error)
	Update(ctx context.Context, caller auth.Principal, id string, patch domain.ReviewPatch) (*domain.Review, error)
	Delete(ctx context.Context, caller auth.Principal, id string) error
}

type reviewService struct {
	repos repository.Set
}

// Create checks, in order: input, place existence, author existence,
// self-review and an existing review by the same author.
func (s *reviewService) Create(ctx context.Context, caller auth.Principal, in CreateReviewInput) (*domain.Review, error) {
	if err := auth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	review, err := domain.NewReview(in.Text, in.Rating, caller.UserID, in.PlaceID)
	if err != nil {
		return nil, err
	}

	place, err := s.repos.Places.Get(ctx, in.PlaceID)
	if err != nil {
		return nil, storeError("get place", err)
	}
	if place == nil {
		return nil, apperrors.NotFound("place not found")
	}
	author, err := s.repos.Users.Get(ctx, caller.UserID)
	if err != nil {
		return nil, storeError("get user", err)
	}
	if author == nil {
		return nil, apperrors.NotFound("user not found")
	}
	if place.OwnerID == caller.UserID {
		return nil, apperrors.Forbidden("you cannot review your own place")
	}

	existing, err := s.repos.Reviews.FindAll(ctx, "place_id", place.ID)
	if err != nil {
		return nil, storeError("list place reviews", err)
	}
	for _, r := range existing {
		if r.UserID == caller.UserID {
			return nil, apperrors.Conflict("you have already reviewed this place")
		}
	}

	stored, err := s.repos.Reviews.Add(ctx, review)
	if err != nil {
		return nil, storeError("add review", err)
	}
	return stored, nil
}

func (s *reviewService) Get(ctx context.Context, id string) (*domain.Review, error) {
	return s.find(ctx, id)
}

func (s *reviewService) List(ctx context.Context) ([]*domain.Review, error) {
	reviews, err := s.repos.Reviews.GetAll(ctx)
	if err != nil {
		return nil, storeError("list reviews", err)
	}
	return reviews, nil
}

func (s *reviewService) ListByPlace(ctx context.Context, placeID string) ([]*domain.Review, error) {
	place, err := s.repos.Places.Get(ctx, placeID)
	if err != nil {
		return nil, storeError("get place", err)
	}
	if place == nil {
		return nil, apperrors.NotFound("place not found")
	}
	reviews, err := s.repos.Reviews.FindAll(ctx, "place_id", placeID)
	if err != nil {
		return nil, storeError("list place reviews", err)
	}
	return reviews, nil
}

func (s *reviewService) Update(ctx context.Context, caller auth.Principal, id string, patch domain.ReviewPatch) (*domain.Review, error) {
	review, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrAdmin(caller, review.UserID); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repos.Reviews.Update(ctx, id, patch)
	if err != nil {
		return nil, storeError("update review", err)
	}
	if updated == nil {
		return nil, apperrors.NotFound("review not found")
	}
	return updated, nil
}

func (s *reviewService) Delete(ctx context.Context, caller auth.Principal, id string) error {
	review, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireOwnerOrAdmin(caller, review.UserID); err != nil {
		return err
	}
	ok, err := s.repos.Reviews.Delete(ctx, id)
	if err != nil {
		return storeError("delete review", err)
	}
	if !ok {
		return apperrors.NotFound("review not found")
	}
	return nil
}

func (s *reviewService) find(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.repos.Reviews.Get(ctx, id)
	if err != nil {
		return nil, storeError("get review", err)
	}
	if review == nil {
		return nil, apperrors.NotFound("review not found")
	}
	return review, nil
}
