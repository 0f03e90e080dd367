package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryService keeps objects in process memory. It backs tests and local
// runs without an S3 endpoint.
type MemoryService struct {
	mu      sync.Mutex
	objects map[string]memoryObject
	now     func() time.Time
}

type memoryObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

func NewMemoryService() *MemoryService {
	return &MemoryService{objects: make(map[string]memoryObject), now: time.Now}
}

func objectPath(bucket, key string) string {
	return bucket + "/" + key
}

func (m *MemoryService) Upload(_ context.Context, bucket, key string, body io.Reader, contentType string) error {
	if bucket == "" {
		return errNoBucket
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectPath(bucket, key)] = memoryObject{data: data, contentType: contentType, modified: m.now().UTC()}
	return nil
}

func (m *MemoryService) ListObjects(_ context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	full := objectPath(bucket, prefix)
	var objects []ObjectInfo
	for path, obj := range m.objects {
		if !strings.HasPrefix(path, full) {
			continue
		}
		modified := obj.modified
		objects = append(objects, ObjectInfo{
			Key:          strings.TrimPrefix(path, bucket+"/"),
			Size:         int64(len(obj.data)),
			LastModified: &modified,
		})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (m *MemoryService) DeletePrefix(_ context.Context, bucket, prefix string) error {
	if strings.TrimSpace(prefix) == "" {
		return fmt.Errorf("prefix is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	full := objectPath(bucket, prefix)
	for path := range m.objects {
		if strings.HasPrefix(path, full) {
			delete(m.objects, path)
		}
	}
	return nil
}

func (m *MemoryService) GetObjectURL(_ context.Context, bucket, key string, expires time.Duration) (string, error) {
	u := url.URL{Scheme: "memory", Host: bucket, Path: "/" + key}
	u.RawQuery = url.Values{"expires": {expires.String()}}.Encode()
	return u.String(), nil
}

var _ Service = (*MemoryService)(nil)
