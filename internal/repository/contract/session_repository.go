package contract

import (
	"context"
	"encoding/json"
	"errors"

	"queridoc-web/internal/entity"
)

// SessionKeyPrefix namespaces the single persisted value per browser.
const SessionKeyPrefix = "docuquery_auth:"

// SessionRepository persists the Session of one browser, addressed by its
// session-id cookie.
type SessionRepository interface {
	// Load returns nil when nothing (or nothing readable) is stored. It never fails.
	Load(ctx context.Context, sid string) *entity.Session
	Save(ctx context.Context, sid string, session *entity.Session) error
	Clear(ctx context.Context, sid string) error
}

var ErrNilSession = errors.New("session must not be nil")

func SessionKey(sid string) string {
	return SessionKeyPrefix + sid
}

func EncodeSession(session *entity.Session) ([]byte, error) {
	if session == nil {
		return nil, ErrNilSession
	}
	return json.Marshal(session)
}

// DecodeSession rejects values that do not describe a usable session.
func DecodeSession(raw []byte) (*entity.Session, error) {
	var session entity.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	if session.Token == "" {
		return nil, errors.New("stored session has no token")
	}
	return &session, nil
}
