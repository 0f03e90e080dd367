package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hbnb/internal/auth"
	"hbnb/internal/repository/memory"
	"hbnb/internal/service"
	"hbnb/internal/storage"
)

type testServer struct {
	router     *gin.Engine
	facade     *service.Facade
	adminToken string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	facade := service.NewFacade(memory.NewSet(), service.Options{
		Tokens: tokens,
		Photos: &service.PhotoStore{Storage: storage.NewMemoryService(), Bucket: "hbnb", KeyPrefix: "places", URLExpiry: time.Minute},
		Logger: logger,
	})

	_, _, err = facade.Users.EnsureAdmin(context.Background(), service.CreateUserInput{
		Email: "admin@example.com", Password: "adminpass", FirstName: "Ad", LastName: "Min",
	})
	require.NoError(t, err)

	router := gin.New()
	NewHandler(facade, tokens, logger).RegisterRoutes(router)

	s := &testServer{router: router, facade: facade}
	s.adminToken = s.login(t, "admin@example.com", "adminpass")
	return s
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken
}

// signup registers a user and returns its id and a token.
func (s *testServer) signup(t *testing.T, email string) (string, string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/users/", "", gin.H{
		"email": email, "password": "secret123", "first_name": "A", "last_name": "B",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var user userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	return user.ID, s.login(t, email, "secret123")
}

func (s *testServer) createPlace(t *testing.T, token string, body gin.H) placeResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/places/", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var place placeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &place))
	return place
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateUserHidesPasswordAndRejectsDuplicate(t *testing.T) {
	s := newTestServer(t)
	body := gin.H{"email": "a@b.com", "password": "secret123", "first_name": "A", "last_name": "B"}

	rec := s.do(t, http.MethodPost, "/api/v1/users/", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	raw := decode[map[string]any](t, rec)
	assert.NotContains(t, raw, "password")
	assert.NotContains(t, raw, "password_hash")
	assert.Equal(t, "a@b.com", raw["email"])
	assert.Equal(t, raw["created_at"], raw["updated_at"])

	rec = s.do(t, http.MethodPost, "/api/v1/users/", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/users/", s.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]userResponse](t, rec), 2)
}

func TestUserEndpointsPolicy(t *testing.T) {
	s := newTestServer(t)
	aliceID, aliceToken := s.signup(t, "alice@example.com")
	bobID, bobToken := s.signup(t, "bob@example.com")

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/users/", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/users/", "garbage", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/v1/users/", aliceToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/v1/users/"+bobID, aliceToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, "/api/v1/users/"+bobID, aliceToken, gin.H{"first_name": "X"}).Code)

	rec := s.do(t, http.MethodPut, "/api/v1/users/"+aliceID, aliceToken, gin.H{"first_name": "Alice"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Alice", decode[userResponse](t, rec).FirstName)

	rec = s.do(t, http.MethodGet, "/api/v1/auth/me", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, bobID, decode[userResponse](t, rec).ID)

	rec = s.do(t, http.MethodGet, "/api/v1/users/?email=ALICE@example.com", s.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, aliceID, decode[[]userResponse](t, rec)[0].ID)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, "/api/v1/users/"+aliceID+"/admin", aliceToken, gin.H{"is_admin": true}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/api/v1/users/"+aliceID+"/admin", s.adminToken, gin.H{}).Code)
	rec = s.do(t, http.MethodPut, "/api/v1/users/"+aliceID+"/admin", s.adminToken, gin.H{"is_admin": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[userResponse](t, rec).IsAdmin)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/api/v1/users/"+aliceID, bobToken, nil).Code)
	rec = s.do(t, http.MethodDelete, "/api/v1/users/"+bobID, s.adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/users/"+bobID, s.adminToken, nil).Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "a@b.com")

	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "a@b.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", decode[map[string]string](t, rec)["error"])

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePlaceRejectsNegativePrice(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup(t, "owner@example.com")

	rec := s.do(t, http.MethodPost, "/api/v1/places/", token, gin.H{"title": "Loft", "price": -10, "latitude": 10, "longitude": 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/places/", "", gin.H{"title": "Loft", "price": 10})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/places/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]placeResponse](t, rec))
}

func TestPlaceEndpoints(t *testing.T) {
	s := newTestServer(t)
	ownerID, ownerToken := s.signup(t, "owner@example.com")
	strangerID, strangerToken := s.signup(t, "stranger@example.com")

	rec := s.do(t, http.MethodPost, "/api/v1/amenities/", s.adminToken, gin.H{"name": "WiFi"})
	require.Equal(t, http.StatusCreated, rec.Code)
	wifi := decode[amenityResponse](t, rec)

	place := s.createPlace(t, ownerToken, gin.H{
		"title": "Loft", "price": 120.5, "latitude": 48.85, "amenity_ids": []string{wifi.ID},
		"owner_id": strangerID,
	})
	assert.Equal(t, ownerID, place.OwnerID, "owner comes from the token")
	require.Len(t, place.Amenities, 1)
	assert.Equal(t, "WiFi", place.Amenities[0].Name)
	require.NotNil(t, place.Latitude)
	assert.Nil(t, place.Longitude)

	rec = s.do(t, http.MethodGet, "/api/v1/places/"+place.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Loft", decode[placeResponse](t, rec).Title)

	rec = s.do(t, http.MethodGet, "/api/v1/amenities/"+wifi.ID+"/places", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]placeResponse](t, rec), 1)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, "/api/v1/places/"+place.ID, strangerToken, gin.H{"title": "Mine"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/api/v1/places/"+place.ID, ownerToken, gin.H{"longitude": 200}).Code)

	rec = s.do(t, http.MethodPut, "/api/v1/places/"+place.ID, ownerToken, gin.H{"title": "Sunny Loft"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[placeResponse](t, rec)
	assert.Equal(t, "Sunny Loft", updated.Title)
	assert.NotEqual(t, place.UpdatedAt, updated.UpdatedAt)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, "/api/v1/places/"+place.ID+"/transfer", ownerToken, gin.H{"owner_id": strangerID}).Code)
	rec = s.do(t, http.MethodPut, "/api/v1/places/"+place.ID+"/transfer", s.adminToken, gin.H{"owner_id": strangerID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, strangerID, decode[placeResponse](t, rec).OwnerID)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/api/v1/places/"+place.ID, ownerToken, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/v1/places/"+place.ID, strangerToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/places/"+place.ID, "", nil).Code)
}

func TestReviewScenario(t *testing.T) {
	s := newTestServer(t)
	_, ownerToken := s.signup(t, "owner@example.com")
	_, otherToken := s.signup(t, "other@example.com")
	own := s.createPlace(t, ownerToken, gin.H{"title": "Mine", "price": 50})
	other := s.createPlace(t, otherToken, gin.H{"title": "Theirs", "price": 70})

	rec := s.do(t, http.MethodPost, "/api/v1/reviews/", ownerToken, gin.H{"text": "Great", "rating": 5, "place_id": own.ID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body := gin.H{"text": "Great", "rating": 5, "place_id": other.ID}
	rec = s.do(t, http.MethodPost, "/api/v1/reviews/", ownerToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	review := decode[reviewResponse](t, rec)
	assert.Equal(t, 5, review.Rating)

	rec = s.do(t, http.MethodPost, "/api/v1/reviews/", ownerToken, body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/reviews/", otherToken, gin.H{"text": "Meh", "rating": 4.5, "place_id": own.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "non-integer rating")
	rec = s.do(t, http.MethodPost, "/api/v1/reviews/", otherToken, gin.H{"text": "Meh", "rating": 6, "place_id": own.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/v1/reviews/", otherToken, gin.H{"text": "Meh", "rating": 3, "place_id": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/reviews/place/"+other.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]reviewResponse](t, rec), 1)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, "/api/v1/reviews/"+review.ID, otherToken, gin.H{"rating": 1}).Code)
	rec = s.do(t, http.MethodPut, "/api/v1/reviews/"+review.ID, ownerToken, gin.H{"rating": 4})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, decode[reviewResponse](t, rec).Rating)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/v1/places/"+other.ID, otherToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/reviews/"+review.ID, "", nil).Code)
}

func TestAmenityScenario(t *testing.T) {
	s := newTestServer(t)
	_, userToken := s.signup(t, "user@example.com")

	rec := s.do(t, http.MethodPost, "/api/v1/amenities/", userToken, gin.H{"name": "WiFi"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/amenities/", s.adminToken, gin.H{"name": "WiFi"})
	require.Equal(t, http.StatusCreated, rec.Code)
	wifi := decode[amenityResponse](t, rec)

	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, "/api/v1/amenities/", s.adminToken, gin.H{"name": "wifi"}).Code)

	s.createPlace(t, userToken, gin.H{"title": "Loft", "price": 10, "amenity_ids": []string{wifi.ID}})
	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodDelete, "/api/v1/amenities/"+wifi.ID, s.adminToken, nil).Code)

	rec = s.do(t, http.MethodPut, "/api/v1/amenities/"+wifi.ID, s.adminToken, gin.H{"description": "fast"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fast", decode[amenityResponse](t, rec).Description)

	rec = s.do(t, http.MethodGet, "/api/v1/amenities/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]amenityResponse](t, rec), 1)
}

func TestPhotoUpload(t *testing.T) {
	s := newTestServer(t)
	_, ownerToken := s.signup(t, "owner@example.com")
	place := s.createPlace(t, ownerToken, gin.H{"title": "Loft", "price": 10})

	upload := func(token, filename string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/places/"+place.ID+"/photos", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusBadRequest, upload(ownerToken, "notes.txt").Code)
	rec := upload(ownerToken, "view.jpg")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	photo := decode[photoResponse](t, rec)
	assert.Equal(t, int64(len("fake image bytes")), photo.Size)

	rec = s.do(t, http.MethodGet, "/api/v1/places/"+place.ID+"/photos", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	photos := decode[[]photoResponse](t, rec)
	require.Len(t, photos, 1)
	assert.Equal(t, photo.Key, photos[0].Key)
	assert.NotEmpty(t, photos[0].URL)

	rec = s.do(t, http.MethodPost, "/api/v1/places/"+place.ID+"/photos", ownerToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
