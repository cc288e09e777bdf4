package session

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Fixed storage keys. TokenCookie carries the backend token in cookie mode;
// SessionIDCookie carries the opaque session id in redis mode.
const (
	TokenCookie     = "tp_token"
	SessionIDCookie = "tp_sid"
)

// CookieConfig controls cookie attributes shared by all storage backends.
type CookieConfig struct {
	Secure bool
	TTL    time.Duration
}

// Manager binds requests to the configured token storage.
type Manager struct {
	newStorage func(c *gin.Context) TokenStorage
}

func (m *Manager) Bind(c *gin.Context) *Store {
	return NewStore(m.newStorage(c))
}

// NewCookieManager keeps the token itself in an HTTP-only browser cookie.
// This is the default backend: no server-side state at all.
func NewCookieManager(cfg CookieConfig) *Manager {
	return &Manager{newStorage: func(c *gin.Context) TokenStorage {
		return &cookieStorage{c: c, cfg: cfg}
	}}
}

type cookieStorage struct {
	c   *gin.Context
	cfg CookieConfig

	// pending shadows the request cookie after a write or clear so reads
	// later in the same request see the new state. Set-Cookie only affects
	// the next request.
	pending *string
}

func (s *cookieStorage) Read() (string, bool) {
	if s.pending != nil {
		return *s.pending, *s.pending != ""
	}
	v, err := s.c.Cookie(TokenCookie)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (s *cookieStorage) Write(token string) error {
	s.c.SetCookie(TokenCookie, token, int(s.cfg.TTL.Seconds()), "/", "", s.cfg.Secure, true)
	s.pending = &token
	return nil
}

func (s *cookieStorage) Clear() {
	s.c.SetCookie(TokenCookie, "", -1, "/", "", s.cfg.Secure, true)
	empty := ""
	s.pending = &empty
}
