package session

import (
	"time"

	"github.com/gin-gonic/gin"
)

// TokenStorage holds at most one opaque token under a fixed key. A storage is
// bound to a single request; durability across requests (and browser
// restarts) is the implementation's concern.
type TokenStorage interface {
	Read() (string, bool)
	Write(token string) error
	Clear()
}

// User is the identity derived from the current token. It has no independent
// source of truth: change the token and the user changes with it.
type User struct {
	Email string
	Role  string
}

// Store exposes the current session. CurrentUser is a pure read; the
// invalidation side effect lives in InvalidateIfExpired so the guard can run
// it explicitly before any protected render.
type Store struct {
	storage TokenStorage
	now     func() time.Time
}

func NewStore(storage TokenStorage) *Store {
	return &Store{storage: storage, now: time.Now}
}

// Login persists the token. No validation beyond what decoding applies on
// later reads; a bad token simply yields an absent session.
func (s *Store) Login(token string) error {
	return s.storage.Write(token)
}

func (s *Store) Logout() {
	s.storage.Clear()
}

// Token returns the raw persisted token, for the Authorization header.
func (s *Store) Token() (string, bool) {
	return s.storage.Read()
}

// CurrentUser returns the decoded identity, or absent when there is no token,
// the token does not decode, or it has expired. The three cases are
// deliberately indistinguishable to the caller.
func (s *Store) CurrentUser() (User, bool) {
	tok, ok := s.storage.Read()
	if !ok {
		return User{}, false
	}
	claims, err := DecodeClaims(tok)
	if err != nil || claims.Expired(s.now()) {
		return User{}, false
	}
	return User{Email: claims.Subject, Role: claims.Role}, true
}

// InvalidateIfExpired clears the persisted token when one is present but no
// longer yields a session. Idempotent: once the storage is empty there is
// nothing left to clear.
func (s *Store) InvalidateIfExpired() {
	tok, ok := s.storage.Read()
	if !ok {
		return
	}
	claims, err := DecodeClaims(tok)
	if err != nil || claims.Expired(s.now()) {
		s.storage.Clear()
	}
}

// Binder builds a per-request Store over the configured storage backend.
type Binder interface {
	Bind(c *gin.Context) *Store
}

const ginStoreKey = "session_store"

// BindCached returns the request's store, binding it at most once so that
// writes and reads within one request observe each other.
func BindCached(c *gin.Context, b Binder) *Store {
	if v, ok := c.Get(ginStoreKey); ok {
		if s, ok := v.(*Store); ok && s != nil {
			return s
		}
	}
	s := b.Bind(c)
	c.Set(ginStoreKey, s)
	return s
}
