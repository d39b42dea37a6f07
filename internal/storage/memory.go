package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStorage is an in-process stand-in for S3, used when no bucket is configured
// and by tests. Its URLs point at BaseURL and accept nothing.
type MemoryStorage struct {
	BaseURL string

	mu      sync.Mutex
	deleted []string
	failing map[string]error
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{BaseURL: baseURL, failing: make(map[string]error)}
}

func (m *MemoryStorage) PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (string, map[string]string, error) {
	u := fmt.Sprintf("%s/%s?expires=%d", m.BaseURL, key, int64(ttl.Seconds()))
	return u, map[string]string{"Content-Type": contentType}, nil
}

func (m *MemoryStorage) ReadURL(ctx context.Context, key string) (string, error) {
	return m.BaseURL + "/" + key, nil
}

func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failing[key]; ok {
		return err
	}
	m.deleted = append(m.deleted, key)
	return nil
}

// FailDelete makes Delete of key return err.
func (m *MemoryStorage) FailDelete(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[key] = err
}

// Deleted returns the keys deleted so far, in order.
func (m *MemoryStorage) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
