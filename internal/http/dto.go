package http

import (
	"time"

	"hbnb/internal/domain"
	"hbnb/internal/service"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type createUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
}

type updateUserRequest struct {
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type setAdminRequest struct {
	IsAdmin *bool `json:"is_admin" binding:"required"`
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type createPlaceRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" binding:"required"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	AmenityIDs  []string `json:"amenity_ids"`
}

type updatePlaceRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	AmenityIDs  *[]string `json:"amenity_ids"`
}

type transferPlaceRequest struct {
	OwnerID string `json:"owner_id" binding:"required"`
}

type amenitySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type placeResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Price       float64          `json:"price"`
	Latitude    *float64         `json:"latitude"`
	Longitude   *float64         `json:"longitude"`
	OwnerID     string           `json:"owner_id"`
	Amenities   []amenitySummary `json:"amenities"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
}

type photoResponse struct {
	Key          string  `json:"key"`
	URL          string  `json:"url"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

type createReviewRequest struct {
	Text    string `json:"text"`
	Rating  *int   `json:"rating" binding:"required"`
	PlaceID string `json:"place_id" binding:"required"`
}

type updateReviewRequest struct {
	Text   *string `json:"text"`
	Rating *int    `json:"rating"`
}

type reviewResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Rating    int    `json:"rating"`
	UserID    string `json:"user_id"`
	PlaceID   string `json:"place_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type amenityRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateAmenityRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type amenityResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsAdmin:   u.IsAdmin,
		CreatedAt: formatTime(u.CreatedAt),
		UpdatedAt: formatTime(u.UpdatedAt),
	}
}

func toPlaceResponse(p *service.PlaceDetail) placeResponse {
	amenities := make([]amenitySummary, 0, len(p.Amenities))
	for _, a := range p.Amenities {
		amenities = append(amenities, amenitySummary{ID: a.ID, Name: a.Name})
	}
	return placeResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		OwnerID:     p.OwnerID,
		Amenities:   amenities,
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}

func toPhotoResponse(p *domain.Photo) photoResponse {
	resp := photoResponse{Key: p.Key, URL: p.URL, Size: p.Size}
	if p.LastModified != nil {
		ts := formatTime(*p.LastModified)
		resp.LastModified = &ts
	}
	return resp
}

func toReviewResponse(r *domain.Review) reviewResponse {
	return reviewResponse{
		ID:        r.ID,
		Text:      r.Text,
		Rating:    r.Rating,
		UserID:    r.UserID,
		PlaceID:   r.PlaceID,
		CreatedAt: formatTime(r.CreatedAt),
		UpdatedAt: formatTime(r.UpdatedAt),
	}
}

func toAmenityResponse(a *domain.Amenity) amenityResponse {
	return amenityResponse{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		CreatedAt:   formatTime(a.CreatedAt),
		UpdatedAt:   formatTime(a.UpdatedAt),
	}
}

// mapAll converts a slice with fn, always yielding a non-nil slice.
func mapAll[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
