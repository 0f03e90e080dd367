package service

import (
	"io"

	"github.com/sirupsen/logrus"

	"hbnb/internal/apperrors"
	"hbnb/internal/auth"
	"hbnb/internal/repository"
)

// Facade is the only entry point handlers use. Each method is its own unit
// of work; cascades are performed here so every backend behaves the same.
type Facade struct {
	Users     UserService
	Places    PlaceService
	Reviews   ReviewService
	Amenities AmenityService
	Auth      AuthService
}

type Options struct {
	Tokens *auth.TokenManager
	// Photos is nil when no bucket is configured.
	Photos *PhotoStore
	Logger *logrus.Logger
}

func NewFacade(repos repository.Set, opts Options) *Facade {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	places := &placeService{repos: repos, photos: opts.Photos, logger: logger}
	return &Facade{
		Users:     &userService{repos: repos, places: places},
		Places:    places,
		Reviews:   &reviewService{repos: repos},
		Amenities: &amenityService{repos: repos},
		Auth:      &authService{users: repos.Users, tokens: opts.Tokens},
	}
}

// storeError keeps typed errors from the store (conflicts) and hides the rest
// behind an internal error.
func storeError(op string, err error) error {
	if apperrors.KindOf(err) != apperrors.KindInternal {
		return err
	}
	return apperrors.Internal(op, err)
}
