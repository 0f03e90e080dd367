package service

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"hbnb/internal/apperrors"
	"hbnb/internal/auth"
	"hbnb/internal/domain"
	"hbnb/internal/storage"
)

const MaxPhotoSize = 5 << 20

var photoContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// PhotoStore places photo objects under <KeyPrefix>/<place id>/ in Bucket.
type PhotoStore struct {
	Storage   storage.Service
	Bucket    string
	KeyPrefix string
	URLExpiry time.Duration
}

type PhotoUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

func (p *PhotoStore) prefix(placeID string) string {
	prefix := strings.Trim(p.KeyPrefix, "/")
	if prefix == "" {
		return placeID + "/"
	}
	return prefix + "/" + placeID + "/"
}

func (p *PhotoStore) photo(ctx context.Context, obj storage.ObjectInfo) (*domain.Photo, error) {
	url, err := p.Storage.GetObjectURL(ctx, p.Bucket, obj.Key, p.URLExpiry)
	if err != nil {
		return nil, apperrors.Internal("presign photo", err)
	}
	return &domain.Photo{Key: obj.Key, URL: url, Size: obj.Size, LastModified: obj.LastModified}, nil
}

func (p *PhotoStore) deleteAll(ctx context.Context, placeID string) error {
	return p.Storage.DeletePrefix(ctx, p.Bucket, p.prefix(placeID))
}

func (s *placeService) AddPhoto(ctx context.Context, caller auth.Principal, placeID string, upload PhotoUpload) (*domain.Photo, error) {
	if s.photos == nil {
		return nil, apperrors.Unavailable("photo storage is not configured")
	}
	place, err := s.find(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrAdmin(caller, place.OwnerID); err != nil {
		return nil, err
	}

	ext := strings.ToLower(path.Ext(upload.Filename))
	contentType, ok := photoContentTypes[ext]
	if !ok {
		return nil, apperrors.Validation("photo must be one of .jpg, .jpeg, .png or .webp")
	}
	if upload.Size <= 0 {
		return nil, apperrors.Validation("photo is empty")
	}
	if upload.Size > MaxPhotoSize {
		return nil, apperrors.Validation("photo must be at most %d bytes", MaxPhotoSize)
	}

	key := s.photos.prefix(placeID) + uuid.NewString() + ext
	if err := s.photos.Storage.Upload(ctx, s.photos.Bucket, key, io.LimitReader(upload.Body, MaxPhotoSize), contentType); err != nil {
		return nil, apperrors.Internal("upload photo", err)
	}

	now := time.Now().UTC()
	return s.photos.photo(ctx, storage.ObjectInfo{Key: key, Size: upload.Size, LastModified: &now})
}

func (s *placeService) ListPhotos(ctx context.Context, placeID string) ([]*domain.Photo, error) {
	if s.photos == nil {
		return nil, apperrors.Unavailable("photo storage is not configured")
	}
	if _, err := s.find(ctx, placeID); err != nil {
		return nil, err
	}

	objects, err := s.photos.Storage.ListObjects(ctx, s.photos.Bucket, s.photos.prefix(placeID))
	if err != nil {
		return nil, apperrors.Internal("list photos", err)
	}
	out := make([]*domain.Photo, 0, len(objects))
	for _, obj := range objects {
		photo, err := s.photos.photo(ctx, obj)
		if err != nil {
			return nil, err
		}
		out = append(out, photo)
	}
	return out, nil
}
