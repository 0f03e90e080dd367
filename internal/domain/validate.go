package domain

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"hbnb/internal/apperrors"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxNameLength     = 50
	MaxEmailLength    = 254
	MaxTitleLength    = 128
	MaxTextLength     = 1024
	MaxAmenityNameLen = 50
	MinRating         = 1
	MaxRating         = 5
	MinLatitude       = -90.0
	MaxLatitude       = 90.0
	MinLongitude      = -180.0
	MaxLongitude      = 180.0
)

var validate = validator.New()

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return FoldKey(email)
}

// ValidateEmail accepts local@domain.tld shaped addresses.
func ValidateEmail(email string) error {
	if email == "" {
		return apperrors.Validation("email is required")
	}
	if len(email) > MaxEmailLength {
		return apperrors.Validation("email must be at most %d characters", MaxEmailLength)
	}
	if err := validate.Var(email, "email"); err != nil {
		return apperrors.Validation("invalid email format")
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	if dot := strings.LastIndex(domain, "."); dot <= 0 || dot == len(domain)-1 {
		return apperrors.Validation("invalid email format")
	}
	return nil
}

func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n == 0 {
		return apperrors.Validation("password is required")
	}
	if n < MinPasswordLength || n > MaxPasswordLength {
		return apperrors.Validation("password must be between %d and %d characters", MinPasswordLength, MaxPasswordLength)
	}
	return nil
}

func validatePersonName(field, name string) error {
	if utf8.RuneCountInString(name) > MaxNameLength {
		return apperrors.Validation("%s must be at most %d characters", field, MaxNameLength)
	}
	return nil
}

func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperrors.Validation("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return apperrors.Validation("title must be at most %d characters", MaxTitleLength)
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxTextLength {
		return apperrors.Validation("description must be at most %d characters", MaxTextLength)
	}
	return nil
}

func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return apperrors.Validation("price must be a positive number")
	}
	return nil
}

func ValidateLatitude(lat float64) error {
	if math.IsNaN(lat) || lat < MinLatitude || lat > MaxLatitude {
		return apperrors.Validation("latitude must be between -90 and 90")
	}
	return nil
}

func ValidateLongitude(lon float64) error {
	if math.IsNaN(lon) || lon < MinLongitude || lon > MaxLongitude {
		return apperrors.Validation("longitude must be between -180 and 180")
	}
	return nil
}

func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return apperrors.Validation("rating must be an integer between %d and %d", MinRating, MaxRating)
	}
	return nil
}

func ValidateReviewText(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.Validation("review text is required")
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return apperrors.Validation("review text must be at most %d characters", MaxTextLength)
	}
	return nil
}

// ValidateAmenityName checks the name as it will be stored, without surrounding spaces.
func ValidateAmenityName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.Validation("amenity name is required")
	}
	if utf8.RuneCountInString(name) > MaxAmenityNameLen {
		return apperrors.Validation("amenity name must be at most %d characters", MaxAmenityNameLen)
	}
	return nil
}

func validateID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.Validation("%s is required", field)
	}
	return nil
}
