package memory

import (
	"context"
	"time"

	"queridoc-web/internal/entity"
	"queridoc-web/internal/pkg/logger"
	"queridoc-web/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps the serialized Session of each browser in process.
type SessionRepository struct {
	cache  *cache.Cache
	logger logger.ILogger
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(retention time.Duration, log logger.ILogger) *SessionRepository {
	// Expired items are purged every 10 minutes
	c := cache.New(retention, 10*time.Minute)
	return &SessionRepository{
		cache:  c,
		logger: log,
	}
}

func (r *SessionRepository) Load(_ context.Context, sid string) *entity.Session {
	x, found := r.cache.Get(contract.SessionKey(sid))
	if !found {
		return nil
	}
	raw, ok := x.([]byte)
	if !ok {
		r.logger.Warn("SessionRepository", "Discarding stored session of unexpected type", nil)
		return nil
	}
	session, err := contract.DecodeSession(raw)
	if err != nil {
		r.logger.Warn("SessionRepository", "Discarding malformed stored session", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return session
}

func (r *SessionRepository) Save(_ context.Context, sid string, session *entity.Session) error {
	raw, err := contract.EncodeSession(session)
	if err != nil {
		return err
	}
	r.cache.Set(contract.SessionKey(sid), raw, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Clear(_ context.Context, sid string) error {
	r.cache.Delete(contract.SessionKey(sid))
	return nil
}

// putRaw stores an arbitrary value under the session key.
func (r *SessionRepository) putRaw(sid string, value interface{}) {
	r.cache.Set(contract.SessionKey(sid), value, cache.DefaultExpiration)
}
