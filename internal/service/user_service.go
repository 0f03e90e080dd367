package service

import (
	"context"

	"hbnb/internal/apperrors"
	"hbnb/internal/auth"
	"hbnb/internal/domain"
	"hbnb/internal/repository"
)

type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	IsAdmin   bool
}

// UpdateUserInput carries a profile update. Nil fields are left untouched.
type UpdateUserInput struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
}

// UserService describes user lifecycle operations.
type UserService interface {
	Create(ctx context.Context, caller auth.Principal, in CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, caller auth.Principal, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, caller auth.Principal, email string) (*domain.User, error)
	List(ctx context.Context, caller auth.Principal) ([]*domain.User, error)
	Update(ctx context.Context, caller auth.Principal, id string, in UpdateUserInput) (*domain.User, error)
	SetAdmin(ctx context.Context, caller auth.Principal, id string, isAdmin bool) (*domain.User, error)
	Delete(ctx context.Context, caller auth.Principal, id string) error
	// EnsureAdmin creates the account as an admin, or promotes it when the
	// email is already registered. created reports which happened.
	EnsureAdmin(ctx context.Context, in CreateUserInput) (user *domain.User, created bool, err error)
}

type userService struct {
	repos  repository.Set
	places *placeService
}

func (s *userService) Create(ctx context.Context, caller auth.Principal, in CreateUserInput) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	user, err := domain.NewUser(email, "", in.FirstName, in.LastName, in.IsAdmin && caller.IsAdmin)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Internal("hash password", err)
	}
	user.PasswordHash = hash

	stored, err := s.repos.Users.Add(ctx, user)
	if err != nil {
		return nil, storeError("add user", err)
	}
	return sanitizeUser(stored), nil
}

func (s *userService) Get(ctx context.Context, caller auth.Principal, id string) (*domain.User, error) {
	if err := auth.RequireOwnerOrAdmin(caller, id); err != nil {
		return nil, err
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) GetByEmail(ctx context.Context, caller auth.Principal, email string) (*domain.User, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	user, err := s.repos.Users.GetByAttribute(ctx, "email", domain.NormalizeEmail(email))
	if err != nil {
		return nil, storeError("find user by email", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}
	return sanitizeUser(user), nil
}

func (s *userService) List(ctx context.Context, caller auth.Principal) ([]*domain.User, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	users, err := s.repos.Users.GetAll(ctx)
	if err != nil {
		return nil, storeError("list users", err)
	}
	out := make([]*domain.User, 0, len(users))
	for _, u := range users {
		out = append(out, sanitizeUser(u))
	}
	return out, nil
}

func (s *userService) Update(ctx context.Context, caller auth.Principal, id string, in UpdateUserInput) (*domain.User, error) {
	if err := auth.RequireOwnerOrAdmin(caller, id); err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	patch := domain.UserPatch{FirstName: in.FirstName, LastName: in.LastName}
	if in.Email != nil {
		email := domain.NormalizeEmail(*in.Email)
		patch.Email = &email
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if in.Password != nil {
		if err := domain.ValidatePassword(*in.Password); err != nil {
			return nil, err
		}
	}
	if patch.Email != nil {
		if err := s.ensureEmailFree(ctx, *patch.Email, id); err != nil {
			return nil, err
		}
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, apperrors.Internal("hash password", err)
		}
		patch.PasswordHash = &hash
	}

	return s.update(ctx, id, patch)
}

func (s *userService) SetAdmin(ctx context.Context, caller auth.Principal, id string, isAdmin bool) (*domain.User, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return s.update(ctx, id, domain.UserPatch{IsAdmin: &isAdmin})
}

func (s *userService) Delete(ctx context.Context, caller auth.Principal, id string) error {
	if err := auth.RequireAdmin(caller); err != nil {
		return err
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	owned, err := s.repos.Places.FindAll(ctx, "owner_id", id)
	if err != nil {
		return storeError("list owned places", err)
	}
	for _, place := range owned {
		if err := s.places.deletePlace(ctx, place.ID); err != nil {
			return err
		}
	}

	written, err := s.repos.Reviews.FindAll(ctx, "user_id", id)
	if err != nil {
		return storeError("list user reviews", err)
	}
	for _, review := range written {
		if _, err := s.repos.Reviews.Delete(ctx, review.ID); err != nil {
			return storeError("delete review", err)
		}
	}

	ok, err := s.repos.Users.Delete(ctx, id)
	if err != nil {
		return storeError("delete user", err)
	}
	if !ok {
		return apperrors.NotFound("user not found")
	}
	return nil
}

func (s *userService) EnsureAdmin(ctx context.Context, in CreateUserInput) (*domain.User, bool, error) {
	email := domain.NormalizeEmail(in.Email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, false, err
	}
	existing, err := s.repos.Users.GetByAttribute(ctx, "email", email)
	if err != nil {
		return nil, false, storeError("find user by email", err)
	}
	if existing != nil {
		if existing.IsAdmin {
			return sanitizeUser(existing), false, nil
		}
		promoted, err := s.update(ctx, existing.ID, domain.UserPatch{IsAdmin: ptr(true)})
		return promoted, false, err
	}

	in.IsAdmin = true
	user, err := s.Create(ctx, auth.Principal{IsAdmin: true}, in)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *userService) find(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repos.Users.Get(ctx, id)
	if err != nil {
		return nil, storeError("get user", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}
	return user, nil
}

func (s *userService) update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	updated, err := s.repos.Users.Update(ctx, id, patch)
	if err != nil {
		return nil, storeError("update user", err)
	}
	if updated == nil {
		return nil, apperrors.NotFound("user not found")
	}
	return sanitizeUser(updated), nil
}

// ensureEmailFree fails with a conflict when another user holds email.
func (s *userService) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	existing, err := s.repos.Users.GetByAttribute(ctx, "email", email)
	if err != nil {
		return storeError("find user by email", err)
	}
	if existing != nil && existing.ID != exceptID {
		return apperrors.Conflict("email already registered")
	}
	return nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := user.Clone()
	clean.PasswordHash = ""
	return clean
}

func ptr[T any](v T) *T { return &v }
