package session

import (
	"sync"

	"github.com/gin-gonic/gin"
)

// MemoryStorage holds the token in process memory. It backs tests and any
// future single-user deployment; it is shared across requests, unlike the
// per-browser cookie storages.
type MemoryStorage struct {
	mu      sync.Mutex
	token   string
	present bool
}

func NewMemoryStorage() *MemoryStorage { return &MemoryStorage{} }

func (s *MemoryStorage) Read() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.present
}

func (s *MemoryStorage) Write(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.present = true
	return nil
}

func (s *MemoryStorage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.present = false
}

// NewStaticManager binds every request to the one given storage.
func NewStaticManager(storage TokenStorage) *Manager {
	return &Manager{newStorage: func(*gin.Context) TokenStorage { return storage }}
}
