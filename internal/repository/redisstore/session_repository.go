package redisstore

import (
	"context"
	"errors"
	"time"

	"queridoc-web/internal/entity"
	"queridoc-web/internal/pkg/logger"
	"queridoc-web/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

// SessionRepository persists sessions in Redis so several web instances can
// share them.
type SessionRepository struct {
	rdb       *redis.Client
	retention time.Duration
	logger    logger.ILogger
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(rdb *redis.Client, retention time.Duration, log logger.ILogger) *SessionRepository {
	return &SessionRepository{
		rdb:       rdb,
		retention: retention,
		logger:    log,
	}
}

func (r *SessionRepository) Load(ctx context.Context, sid string) *entity.Session {
	raw, err := r.rdb.Get(ctx, contract.SessionKey(sid)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Error("SessionRepository", "Failed to read session from Redis", map[string]interface{}{"error": err})
		}
		return nil
	}
	session, err := contract.DecodeSession(raw)
	if err != nil {
		r.logger.Warn("SessionRepository", "Discarding malformed stored session", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return session
}

func (r *SessionRepository) Save(ctx context.Context, sid string, session *entity.Session) error {
	raw, err := contract.EncodeSession(session)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, contract.SessionKey(sid), raw, r.retention).Err()
}

func (r *SessionRepository) Clear(ctx context.Context, sid string) error {
	return r.rdb.Del(ctx, contract.SessionKey(sid)).Err()
}
