package auth

import "hbnb/internal/apperrors"

// Principal is the caller of a facade operation. The zero value is anonymous.
type Principal struct {
	UserID  string
	IsAdmin bool
}

func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

// RequireAuthenticated fails for anonymous callers.
func RequireAuthenticated(p Principal) error {
	if !p.Authenticated() {
		return apperrors.Unauthorized("authentication required")
	}
	return nil
}

func RequireAdmin(p Principal) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if !p.IsAdmin {
		return apperrors.Forbidden("admin privileges required")
	}
	return nil
}

// RequireOwnerOrAdmin allows admins and the user identified by ownerID.
func RequireOwnerOrAdmin(p Principal, ownerID string) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if !p.IsAdmin && p.UserID != ownerID {
		return apperrors.Forbidden("unauthorized action")
	}
	return nil
}
