package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hbnb/internal/apperrors"
	"hbnb/internal/auth"
	"hbnb/internal/domain"
	"hbnb/internal/repository"
	"hbnb/internal/repository/memory"
	"hbnb/internal/repository/sqlstore"
	"hbnb/internal/storage"
)

var backends = map[string]func(t *testing.T) repository.Set{
	"memory": func(t *testing.T) repository.Set { return memory.NewSet() },
	"sqlite": func(t *testing.T) repository.Set {
		db, err := sqlstore.Open(sqlstore.DriverSQLite, ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		require.NoError(t, db.Init(context.Background()))
		return sqlstore.NewSet(db)
	},
}

type fixture struct {
	facade *Facade
	photos *storage.MemoryService
	admin  auth.Principal
}

func newFixture(t *testing.T, repos repository.Set) *fixture {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	photos := storage.NewMemoryService()
	facade := NewFacade(repos, Options{
		Tokens: tokens,
		Photos: &PhotoStore{Storage: photos, Bucket: "hbnb", KeyPrefix: "places", URLExpiry: time.Minute},
	})

	admin, created, err := facade.Users.EnsureAdmin(context.Background(), CreateUserInput{
		Email: "admin@example.com", Password: "adminpass", FirstName: "Ad", LastName: "Min",
	})
	require.NoError(t, err)
	require.True(t, created)
	return &fixture{facade: facade, photos: photos, admin: auth.Principal{UserID: admin.ID, IsAdmin: true}}
}

func (f *fixture) register(t *testing.T, email string) auth.Principal {
	t.Helper()
	u, err := f.facade.Users.Create(context.Background(), auth.Principal{}, CreateUserInput{
		Email: email, Password: "secret123", FirstName: "A", LastName: "B",
	})
	require.NoError(t, err)
	return auth.Principal{UserID: u.ID}
}

func (f *fixture) place(t *testing.T, owner auth.Principal, amenityIDs ...string) *PlaceDetail {
	t.Helper()
	p, err := f.facade.Places.Create(context.Background(), owner, CreatePlaceInput{
		Title: "Loft", Price: 100, Latitude: ptr(48.8), Longitude: ptr(2.3), AmenityIDs: amenityIDs,
	})
	require.NoError(t, err)
	return p
}

func assertKind(t *testing.T, kind apperrors.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperrors.KindOf(err), "got %v", err)
}

func forEachBackend(t *testing.T, fn func(t *testing.T, f *fixture)) {
	for name, newSet := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, newFixture(t, newSet(t)))
		})
	}
}

func TestUserLifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		created, err := f.facade.Users.Create(ctx, auth.Principal{}, CreateUserInput{
			Email: " A@B.com ", Password: "secret123", FirstName: "A", LastName: "B", IsAdmin: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", created.Email)
		assert.Empty(t, created.PasswordHash)
		assert.False(t, created.IsAdmin, "anonymous callers cannot self-promote")
		assert.Equal(t, created.CreatedAt, created.UpdatedAt)

		self := auth.Principal{UserID: created.ID}
		got, err := f.facade.Users.Get(ctx, self, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "A", got.FirstName)

		updated, err := f.facade.Users.Update(ctx, self, created.ID, UpdateUserInput{FirstName: ptr("Alice")})
		require.NoError(t, err)
		assert.Equal(t, "Alice", updated.FirstName)
		assert.True(t, updated.UpdatedAt.After(got.UpdatedAt))

		token, err := f.facade.Auth.Login(ctx, "a@b.com", "secret123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		me, err := f.facade.Auth.Me(ctx, self)
		require.NoError(t, err)
		assert.Equal(t, "Alice", me.FirstName)
		assert.Empty(t, me.PasswordHash)
	})
}

func TestDuplicateEmailLeavesExistingUserUnchanged(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		first := f.register(t, "a@b.com")

		_, err := f.facade.Users.Create(ctx, auth.Principal{}, CreateUserInput{
			Email: "A@b.com", Password: "other1234", FirstName: "X", LastName: "Y",
		})
		assertKind(t, apperrors.KindConflict, err)

		users, err := f.facade.Users.List(ctx, f.admin)
		require.NoError(t, err)
		assert.Len(t, users, 2)

		got, err := f.facade.Users.Get(ctx, f.admin, first.UserID)
		require.NoError(t, err)
		assert.Equal(t, "A", got.FirstName)

		other := f.register(t, "c@d.com")
		_, err = f.facade.Users.Update(ctx, other, other.UserID, UpdateUserInput{Email: ptr("a@b.com")})
		assertKind(t, apperrors.KindConflict, err)

		_, err = f.facade.Users.Update(ctx, first, first.UserID, UpdateUserInput{Email: ptr("A@B.COM")})
		assert.NoError(t, err, "keeping your own email is not a conflict")
	})
}

func TestUserValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memory.NewSet())

	cases := map[string]CreateUserInput{
		"bad email":      {Email: "plain", Password: "secret123", FirstName: "A", LastName: "B"},
		"short password": {Email: "a@b.com", Password: "short", FirstName: "A", LastName: "B"},
		"long password":  {Email: "a@b.com", Password: strings.Repeat("p", 129), FirstName: "A", LastName: "B"},
		"long name":      {Email: "a@b.com", Password: "secret123", FirstName: strings.Repeat("n", 51), LastName: "B"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.facade.Users.Create(ctx, auth.Principal{}, in)
			assertKind(t, apperrors.KindValidation, err)
		})
	}

	_, err := f.facade.Users.Create(ctx, auth.Principal{}, CreateUserInput{
		Email: "max@b.com", Password: strings.Repeat("p", 128), FirstName: "A", LastName: "B",
	})
	assert.NoError(t, err)
}

func TestUserAuthorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memory.NewSet())
	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")

	_, err := f.facade.Users.Get(ctx, bob, alice.UserID)
	assertKind(t, apperrors.KindForbidden, err)
	_, err = f.facade.Users.Update(ctx, bob, alice.UserID, UpdateUserInput{FirstName: ptr("Mallory")})
	assertKind(t, apperrors.KindForbidden, err)
	_, err = f.facade.Users.List(ctx, alice)
	assertKind(t, apperrors.KindForbidden, err)
	_, err = f.facade.Users.List(ctx, auth.Principal{})
	assertKind(t, apperrors.KindUnauthorized, err)
	assertKind(t, apperrors.KindForbidden, f.facade.Users.Delete(ctx, alice, bob.UserID))
	_, err = f.facade.Users.SetAdmin(ctx, alice, alice.UserID, true)
	assertKind(t, apperrors.KindForbidden, err)

	got, err := f.facade.Users.Get(ctx, alice, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.FirstName)

	promoted, err := f.facade.Users.SetAdmin(ctx, f.admin, alice.UserID, true)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)

	byEmail, err := f.facade.Users.GetByEmail(ctx, f.admin, "BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, bob.UserID, byEmail.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memory.NewSet())
	f.register(t, "a@b.com")

	_, err := f.facade.Auth.Login(ctx, "a@b.com", "wrong-password")
	assertKind(t, apperrors.KindUnauthorized, err)
	_, err = f.facade.Auth.Login(ctx, "nobody@b.com", "secret123")
	assertKind(t, apperrors.KindUnauthorized, err)
}

func TestEnsureAdminPromotesExistingUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memory.NewSet())
	alice := f.register(t, "alice@example.com")

	user, created, err := f.facade.Users.EnsureAdmin(ctx, CreateUserInput{Email: "Alice@example.com", Password: "ignored1"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, alice.UserID, user.ID)
	assert.True(t, user.IsAdmin)

	_, err = f.facade.Auth.Login(ctx, "alice@example.com", "secret123")
	assert.NoError(t, err, "promotion keeps the existing password")
}

func TestPlaceValidationPersistsNothing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		owner := f.register(t, "owner@example.com")

		for name, in := range map[string]CreatePlaceInput{
			"negative price": {Title: "Loft", Price: -10},
			"bad latitude":   {Title: "Loft", Price: 10, Latitude: ptr(91.0), Longitude: ptr(0.0)},
			"bad longitude":  {Title: "Loft", Price: 10, Latitude: ptr(0.0), Longitude: ptr(-181.0)},
			"missing title":  {Price: 10},
		} {
			t.Run(name, func(t *testing.T) {
				_, err := f.facade.Places.Create(ctx, owner, in)
				assertKind(t, apperrors.KindValidation, err)
			})
		}

		places, err := f.facade.Places.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, places)

		_, err = f.facade.Places.Create(ctx, auth.Principal{}, CreatePlaceInput{Title: "Loft", Price: 10})
		assertKind(t, apperrors.KindUnauthorized, err)

		_, err = f.facade.Places.Create(ctx, owner, CreatePlaceInput{Title: "Loft", Price: 10, AmenityIDs: []string{"missing"}})
		assertKind(t, apperrors.KindNotFound, err)
	})
}

func TestPlaceLifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		owner := f.register(t, "owner@example.com")
		stranger := f.register(t, "stranger@example.com")

		wifi, err := f.facade.Amenities.Create(ctx, f.admin, "WiFi", "")
		require.NoError(t, err)
		pool, err := f.facade.Amenities.Create(ctx, f.admin, "Pool", "")
		require.NoError(t, err)

		created := f.place(t, owner, wifi.ID, wifi.ID)
		assert.Equal(t, owner.UserID, created.OwnerID)
		require.Len(t, created.Amenities, 1)
		assert.Equal(t, "WiFi", created.Amenities[0].Name)

		got, err := f.facade.Places.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Loft", got.Title)
		assert.Equal(t, 100.0, got.Price)
		assert.True(t, got.CreatedAt.Equal(got.UpdatedAt))

		_, err = f.facade.Places.Update(ctx, stranger, created.ID, domain.PlacePatch{Title: ptr("Mine now")})
		assertKind(t, apperrors.KindForbidden, err)

		updated, err := f.facade.Places.Update(ctx, owner, created.ID, domain.PlacePatch{
			Title:      ptr("Sunny Loft"),
			OwnerID:    ptr(stranger.UserID),
			AmenityIDs: &[]string{pool.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, "Sunny Loft", updated.Title)
		assert.Equal(t, owner.UserID, updated.OwnerID, "owner only changes through transfer")
		assert.True(t, updated.UpdatedAt.After(got.UpdatedAt))

		byPool, err := f.facade.Places.ListByAmenity(ctx, pool.ID)
		require.NoError(t, err)
		require.Len(t, byPool, 1)
		_, err = f.facade.Places.ListByAmenity(ctx, "missing")
		assertKind(t, apperrors.KindNotFound, err)

		_, err = f.facade.Places.Update(ctx, f.admin, created.ID, domain.PlacePatch{Price: ptr(0.0)})
		assertKind(t, apperrors.KindValidation, err)

		_, err = f.facade.Places.Transfer(ctx, owner, created.ID, stranger.UserID)
		assertKind(t, apperrors.KindForbidden, err)
		_, err = f.facade.Places.Transfer(ctx, f.admin, created.ID, "missing")
		assertKind(t, apperrors.KindNotFound, err)
		moved, err := f.facade.Places.Transfer(ctx, f.admin, created.ID, stranger.UserID)
		require.NoError(t, err)
		assert.Equal(t, stranger.UserID, moved.OwnerID)

		assertKind(t, apperrors.KindForbidden, f.facade.Places.Delete(ctx, owner, created.ID))
		require.NoError(t, f.facade.Places.Delete(ctx, stranger, created.ID))
		_, err = f.facade.Places.Get(ctx, created.ID)
		assertKind(t, apperrors.KindNotFound, err)
	})
}

func TestReviewRules(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		owner := f.register(t, "owner@example.com")
		guest := f.register(t, "guest@example.com")
		own := f.place(t, owner)
		other := f.place(t, guest)

		_, err := f.facade.Reviews.Create(ctx, owner, CreateReviewInput{Text: "Mine is great", Rating: 5, PlaceID: own.ID})
		assertKind(t, apperrors.KindForbidden, err)

		review, err := f.facade.Reviews.Create(ctx, owner, CreateReviewInput{Text: "Great", Rating: 5, PlaceID: other.ID})
		require.NoError(t, err)
		assert.Equal(t, owner.UserID, review.UserID)

		_, err = f.facade.Reviews.Create(ctx, owner, CreateReviewInput{Text: "Again", Rating: 4, PlaceID: other.ID})
		assertKind(t, apperrors.KindConflict, err)

		_, err = f.facade.Reviews.Create(ctx, guest, CreateReviewInput{Text: "Ghost", Rating: 3, PlaceID: "missing"})
		assertKind(t, apperrors.KindNotFound, err)

		for _, rating := range []int{0, 6, -1} {
			_, err = f.facade.Reviews.Create(ctx, guest, CreateReviewInput{Text: "Bad", Rating: rating, PlaceID: own.ID})
			assertKind(t, apperrors.KindValidation, err)
		}
		byPlace, err := f.facade.Reviews.ListByPlace(ctx, own.ID)
		require.NoError(t, err)
		assert.Empty(t, byPlace, "rejected reviews are not persisted")

		_, err = f.facade.Reviews.Update(ctx, guest, review.ID, domain.ReviewPatch{Rating: ptr(1)})
		assertKind(t, apperrors.KindForbidden, err)
		_, err = f.facade.Reviews.Update(ctx, owner, review.ID, domain.ReviewPatch{Rating: ptr(9)})
		assertKind(t, apperrors.KindValidation, err)
		updated, err := f.facade.Reviews.Update(ctx, owner, review.ID, domain.ReviewPatch{Rating: ptr(4)})
		require.NoError(t, err)
		assert.Equal(t, 4, updated.Rating)
		assert.True(t, updated.UpdatedAt.After(review.UpdatedAt))

		assertKind(t, apperrors.KindForbidden, f.facade.Reviews.Delete(ctx, guest, review.ID))
		require.NoError(t, f.facade.Reviews.Delete(ctx, f.admin, review.ID))
		_, err = f.facade.Reviews.Get(ctx, review.ID)
		assertKind(t, apperrors.KindNotFound, err)
	})
}

func TestPlaceDeleteCascadesToReviews(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		owner := f.register(t, "owner@example.com")
		guest := f.register(t, "guest@example.com")
		place := f.place(t, owner)

		review, err := f.facade.Reviews.Create(ctx, guest, CreateReviewInput{Text: "Great", Rating: 5, PlaceID: place.ID})
		require.NoError(t, err)

		require.NoError(t, f.facade.Places.Delete(ctx, owner, place.ID))

		_, err = f.facade.Reviews.Get(ctx, review.ID)
		assertKind(t, apperrors.KindNotFound, err)
		_, err = f.facade.Reviews.ListByPlace(ctx, place.ID)
		assertKind(t, apperrors.KindNotFound, err)
	})
}

func TestUserDeleteCascades(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		owner := f.register(t, "owner@example.com")
		guest := f.register(t, "guest@example.com")
		ownersPlace := f.place(t, owner)
		guestsPlace := f.place(t, guest)

		onOwners, err := f.facade.Reviews.Create(ctx, guest, CreateReviewInput{Text: "Nice", Rating: 4, PlaceID: ownersPlace.ID})
		require.NoError(t, err)
		byOwner, err := f.facade.Reviews.Create(ctx, owner, CreateReviewInput{Text: "Cosy", Rating: 5, PlaceID: guestsPlace.ID})
		require.NoError(t, err)

		require.NoError(t, f.facade.Users.Delete(ctx, f.admin, owner.UserID))

		_, err = f.facade.Places.Get(ctx, ownersPlace.ID)
		assertKind(t, apperrors.KindNotFound, err)
		_, err = f.facade.Reviews.Get(ctx, onOwners.ID)
		assertKind(t, apperrors.KindNotFound, err)
		_, err = f.facade.Reviews.Get(ctx, byOwner.ID)
		assertKind(t, apperrors.KindNotFound, err)
		_, err = f.facade.Places.Get(ctx, guestsPlace.ID)
		assert.NoError(t, err)

		assertKind(t, apperrors.KindNotFound, f.facade.Users.Delete(ctx, f.admin, owner.UserID))
	})
}

func TestAmenityRules(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		user := f.register(t, "user@example.com")

		_, err := f.facade.Amenities.Create(ctx, user, "WiFi", "")
		assertKind(t, apperrors.KindForbidden, err)

		wifi, err := f.facade.Amenities.Create(ctx, f.admin, "WiFi", "")
		require.NoError(t, err)
		_, err = f.facade.Amenities.Create(ctx, f.admin, " wifi ", "")
		assertKind(t, apperrors.KindConflict, err)
		_, err = f.facade.Amenities.Create(ctx, f.admin, "  ", "")
		assertKind(t, apperrors.KindValidation, err)

		_, err = f.facade.Amenities.Create(ctx, f.admin, "CAFÉ", "")
		require.NoError(t, err)
		_, err = f.facade.Amenities.Create(ctx, f.admin, "Café", "")
		assertKind(t, apperrors.KindConflict, err)

		pool, err := f.facade.Amenities.Create(ctx, f.admin, "Pool", "")
		require.NoError(t, err)
		_, err = f.facade.Amenities.Update(ctx, f.admin, pool.ID, domain.AmenityPatch{Name: ptr("WIFI")})
		assertKind(t, apperrors.KindConflict, err)
		renamed, err := f.facade.Amenities.Update(ctx, f.admin, pool.ID, domain.AmenityPatch{Name: ptr("pool")})
		require.NoError(t, err)
		assert.Equal(t, "pool", renamed.Name)

		place := f.place(t, user, wifi.ID)
		assertKind(t, apperrors.KindConflict, f.facade.Amenities.Delete(ctx, f.admin, wifi.ID))

		_, err = f.facade.Places.Update(ctx, user, place.ID, domain.PlacePatch{AmenityIDs: &[]string{}})
		require.NoError(t, err)
		require.NoError(t, f.facade.Amenities.Delete(ctx, f.admin, wifi.ID))
		_, err = f.facade.Amenities.Get(ctx, wifi.ID)
		assertKind(t, apperrors.KindNotFound, err)
	})
}

func TestPhotos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memory.NewSet())
	owner := f.register(t, "owner@example.com")
	stranger := f.register(t, "stranger@example.com")
	place := f.place(t, owner)

	upload := func(name string, size int) PhotoUpload {
		return PhotoUpload{Filename: name, Size: int64(size), Body: bytes.NewReader(make([]byte, size))}
	}

	_, err := f.facade.Places.AddPhoto(ctx, stranger, place.ID, upload("a.jpg", 10))
	assertKind(t, apperrors.KindForbidden, err)
	_, err = f.facade.Places.AddPhoto(ctx, owner, place.ID, upload("a.gif", 10))
	assertKind(t, apperrors.KindValidation, err)
	_, err = f.facade.Places.AddPhoto(ctx, owner, place.ID, upload("a.jpg", MaxPhotoSize+1))
	assertKind(t, apperrors.KindValidation, err)
	_, err = f.facade.Places.AddPhoto(ctx, owner, "missing", upload("a.jpg", 10))
	assertKind(t, apperrors.KindNotFound, err)

	photo, err := f.facade.Places.AddPhoto(ctx, owner, place.ID, upload("Beach.PNG", 10))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(photo.Key, "places/"+place.ID+"/"))
	assert.True(t, strings.HasSuffix(photo.Key, ".png"))
	assert.NotEmpty(t, photo.URL)

	photos, err := f.facade.Places.ListPhotos(ctx, place.ID)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, photo.Key, photos[0].Key)
	assert.Equal(t, int64(10), photos[0].Size)

	require.NoError(t, f.facade.Places.Delete(ctx, owner, place.ID))
	left, err := f.photos.ListObjects(ctx, "hbnb", "places/")
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestPhotosUnavailableWithoutStore(t *testing.T) {
	ctx := context.Background()
	facade := NewFacade(memory.NewSet(), Options{})
	_, err := facade.Places.ListPhotos(ctx, "any")
	assertKind(t, apperrors.KindUnavailable, err)
}
