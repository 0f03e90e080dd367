// Package repotest holds the behaviour every repository backend must share.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hbnb/internal/domain"
	"hbnb/internal/repository"
)

// Run exercises the repository contract against sets produced by newSet.
// newSet must return an empty, isolated set on every call.
func Run(t *testing.T, newSet func(t *testing.T) repository.Set) {
	t.Run("UserRoundTrip", func(t *testing.T) { testUserRoundTrip(t, newSet(t)) })
	t.Run("UpdateAndDeleteUnknown", func(t *testing.T) { testUnknownIDs(t, newSet(t)) })
	t.Run("AttributeLookups", func(t *testing.T) { testAttributeLookups(t, newSet(t)) })
	t.Run("PlaceAmenities", func(t *testing.T) { testPlaceAmenities(t, newSet(t)) })
	t.Run("Reviews", func(t *testing.T) { testReviews(t, newSet(t)) })
	t.Run("GetAllOrder", func(t *testing.T) { testGetAllOrder(t, newSet(t)) })
}

func ptr[T any](v T) *T { return &v }

func addUser(t *testing.T, repos repository.Set, email string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(email, "hash", "Ada", "Lovelace", false)
	require.NoError(t, err)
	stored, err := repos.Users.Add(context.Background(), u)
	require.NoError(t, err)
	return stored
}

func testUserRoundTrip(t *testing.T, repos repository.Set) {
	ctx := context.Background()
	u, err := domain.NewUser("ada@example.com", "hash", "Ada", "Lovelace", true)
	require.NoError(t, err)

	stored, err := repos.Users.Add(ctx, u)
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)
	assert.Equal(t, stored.ID, u.ID, "Add writes the assigned id back")
	assert.Equal(t, stored.CreatedAt, stored.UpdatedAt)
	assert.False(t, stored.CreatedAt.IsZero())

	got, err := repos.Users.Get(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "Lovelace", got.LastName)
	assert.True(t, got.IsAdmin)
	assert.True(t, stored.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, got.CreatedAt.Equal(got.UpdatedAt))

	updated, err := repos.Users.Update(ctx, stored.ID, domain.UserPatch{FirstName: ptr("Augusta")})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Augusta", updated.FirstName)
	assert.Equal(t, "Lovelace", updated.LastName)
	assert.True(t, updated.UpdatedAt.After(got.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(got.CreatedAt))

	again, err := repos.Users.Update(ctx, stored.ID, domain.UserPatch{LastName: ptr("King")})
	require.NoError(t, err)
	assert.True(t, again.UpdatedAt.After(updated.UpdatedAt))

	got, err = repos.Users.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "King", got.LastName)

	ok, err := repos.Users.Delete(ctx, stored.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = repos.Users.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testUnknownIDs(t *testing.T, repos repository.Set) {
	ctx := context.Background()

	got, err := repos.Places.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	updated, err := repos.Amenities.Update(ctx, "missing", domain.AmenityPatch{Name: ptr("Pool")})
	require.NoError(t, err)
	assert.Nil(t, updated)

	ok, err := repos.Reviews.Delete(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func testAttributeLookups(t *testing.T, repos repository.Set) {
	ctx := context.Background()
	addUser(t, repos, "first@example.com")
	second := addUser(t, repos, "second@example.com")

	got, err := repos.Users.GetByAttribute(ctx, "email", "SECOND@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)

	none, err := repos.Users.GetByAttribute(ctx, "email", "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = repos.Users.GetByAttribute(ctx, "password_hash", "hash")
	assert.Error(t, err)

	wifi, err := repos.Amenities.Add(ctx, &domain.Amenity{Name: "WiFi"})
	require.NoError(t, err)
	found, err := repos.Amenities.GetByAttribute(ctx, "name", "wifi")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, wifi.ID, found.ID)

	cafe, err := repos.Amenities.Add(ctx, &domain.Amenity{Name: "CAFÉ"})
	require.NoError(t, err)
	for _, name := range []string{"CAFÉ", "café", " Café "} {
		found, err = repos.Amenities.GetByAttribute(ctx, "name", name)
		require.NoError(t, err)
		require.NotNil(t, found, name)
		assert.Equal(t, cafe.ID, found.ID, name)
	}
}

func testPlaceAmenities(t *testing.T, repos repository.Set) {
	ctx := context.Background()
	owner := addUser(t, repos, "owner@example.com")

	wifi, err := repos.Amenities.Add(ctx, &domain.Amenity{Name: "WiFi"})
	require.NoError(t, err)
	pool, err := repos.Amenities.Add(ctx, &domain.Amenity{Name: "Pool", Description: "heated"})
	require.NoError(t, err)

	place, err := domain.NewPlace("Loft", "sunny", 120.5, ptr(48.85), nil, owner.ID, []string{pool.ID, wifi.ID})
	require.NoError(t, err)
	stored, err := repos.Places.Add(ctx, place)
	require.NoError(t, err)

	got, err := repos.Places.Get(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Loft", got.Title)
	assert.Equal(t, "sunny", got.Description)
	assert.Equal(t, 120.5, got.Price)
	require.NotNil(t, got.Latitude)
	assert.Equal(t, 48.85, *got.Latitude)
	assert.Nil(t, got.Longitude)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.Equal(t, []string{pool.ID, wifi.ID}, got.AmenityIDs)

	withWifi, err := repos.Places.FindAll(ctx, "amenity_id", wifi.ID)
	require.NoError(t, err)
	require.Len(t, withWifi, 1)
	assert.Equal(t, stored.ID, withWifi[0].ID)

	updated, err := repos.Places.Update(ctx, stored.ID, domain.PlacePatch{AmenityIDs: &[]string{pool.ID}, Price: ptr(99.0)})
	require.NoError(t, err)
	assert.Equal(t, []string{pool.ID}, updated.AmenityIDs)
	assert.Equal(t, 99.0, updated.Price)

	withWifi, err = repos.Places.FindAll(ctx, "amenity_id", wifi.ID)
	require.NoError(t, err)
	assert.Empty(t, withWifi)

	owned, err := repos.Places.FindAll(ctx, "owner_id", owner.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}

func testReviews(t *testing.T, repos repository.Set) {
	ctx := context.Background()
	owner := addUser(t, repos, "owner@example.com")
	guest := addUser(t, repos, "guest@example.com")

	place, err := domain.NewPlace("Cabin", "", 80, nil, nil, owner.ID, nil)
	require.NoError(t, err)
	place, err = repos.Places.Add(ctx, place)
	require.NoError(t, err)

	review, err := domain.NewReview("Great", 5, guest.ID, place.ID)
	require.NoError(t, err)
	stored, err := repos.Reviews.Add(ctx, review)
	require.NoError(t, err)

	byPlace, err := repos.Reviews.FindAll(ctx, "place_id", place.ID)
	require.NoError(t, err)
	require.Len(t, byPlace, 1)
	assert.Equal(t, stored.ID, byPlace[0].ID)
	assert.Equal(t, 5, byPlace[0].Rating)
	assert.Equal(t, guest.ID, byPlace[0].UserID)

	updated, err := repos.Reviews.Update(ctx, stored.ID, domain.ReviewPatch{Rating: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Rating)
	assert.Equal(t, "Great", updated.Text)

	byUser, err := repos.Reviews.FindAll(ctx, "user_id", owner.ID)
	require.NoError(t, err)
	assert.Empty(t, byUser)
}

func testGetAllOrder(t *testing.T, repos repository.Set) {
	ctx := context.Background()
	names := []string{"Alpha", "Bravo", "Charlie"}
	for _, name := range names {
		_, err := repos.Amenities.Add(ctx, &domain.Amenity{Name: name})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	all, err := repos.Amenities.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(names))
	for i, a := range all {
		assert.Equal(t, names[i], a.Name)
	}
}
