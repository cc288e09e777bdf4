package session

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// NewRedisManager keeps tokens server-side in redis; the browser only ever
// holds an opaque session id. The key expires with the configured TTL, so an
// abandoned session does not outlive its token by much.
func NewRedisManager(rdb *redis.Client, cfg CookieConfig) *Manager {
	return &Manager{newStorage: func(c *gin.Context) TokenStorage {
		return &redisStorage{c: c, rdb: rdb, cfg: cfg}
	}}
}

type redisStorage struct {
	c   *gin.Context
	rdb *redis.Client
	cfg CookieConfig

	pending *string
}

func (s *redisStorage) sid() (string, bool) {
	v, err := s.c.Cookie(SessionIDCookie)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (s *redisStorage) Read() (string, bool) {
	if s.pending != nil {
		return *s.pending, *s.pending != ""
	}
	sid, ok := s.sid()
	if !ok {
		return "", false
	}
	tok, err := s.rdb.Get(s.c.Request.Context(), redisKeyPrefix+sid).Result()
	if err != nil || tok == "" {
		// redis.Nil and transport errors both collapse to "no session";
		// the user re-authenticates either way.
		return "", false
	}
	return tok, true
}

func (s *redisStorage) Write(token string) error {
	sid, ok := s.sid()
	if !ok {
		sid = uuid.NewString()
	}
	if err := s.rdb.Set(s.c.Request.Context(), redisKeyPrefix+sid, token, s.cfg.TTL).Err(); err != nil {
		return err
	}
	s.c.SetCookie(SessionIDCookie, sid, int(s.cfg.TTL.Seconds()), "/", "", s.cfg.Secure, true)
	s.pending = &token
	return nil
}

func (s *redisStorage) Clear() {
	if sid, ok := s.sid(); ok {
		// Best effort; the TTL reaps the key if this fails.
		_ = s.rdb.Del(s.c.Request.Context(), redisKeyPrefix+sid).Err()
	}
	s.c.SetCookie(SessionIDCookie, "", -1, "/", "", s.cfg.Secure, true)
	empty := ""
	s.pending = &empty
}
