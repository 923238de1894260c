package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"queridoc-web/internal/entity"
	"queridoc-web/internal/pkg/logger"
	"queridoc-web/internal/repository/contract"
	"queridoc-web/pkg/events"
	"queridoc-web/pkg/identity"
)

// EventPublisher ships audit events. Implemented by the NATS publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IAuthService interface {
	// BeginLogin returns the provider URL and the state the callback must echo.
	BeginLogin() (url string, state string, err error)
	CompleteLogin(ctx context.Context, sid, code string) (*entity.Session, error)
	// Logout always clears the local session, whatever the provider says.
	Logout(ctx context.Context, sid string, session *entity.Session)
	// EndLocalSession drops the browser's session without calling the provider.
	EndLocalSession(ctx context.Context, sid string)
}

type authService struct {
	provider  identity.Provider
	sessions  contract.SessionRepository
	chat      IChatService
	publisher EventPublisher
	logger    logger.ILogger
	now       func() time.Time
}

// NewAuthService wires the login flow. publisher may be nil.
func NewAuthService(
	provider identity.Provider,
	sessions contract.SessionRepository,
	chat IChatService,
	publisher EventPublisher,
	log logger.ILogger,
) IAuthService {
	return &authService{
		provider:  provider,
		sessions:  sessions,
		chat:      chat,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

func (s *authService) BeginLogin() (string, string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	state := base64.RawURLEncoding.EncodeToString(b)
	return s.provider.LoginURL(state), state, nil
}

func (s *authService) CompleteLogin(ctx context.Context, sid, code string) (*entity.Session, error) {
	id, err := s.provider.SignIn(ctx, sid, code)
	if err != nil {
		s.logger.Warn("AuthService", "Login error", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	session := identity.ToSession(id)
	if err := s.sessions.Save(ctx, sid, session); err != nil {
		s.logger.Error("AuthService", "Failed to persist session", map[string]interface{}{"error": err})
		return nil, err
	}

	s.logger.Info("AuthService", "User signed in", map[string]interface{}{"email": session.Email})
	s.publish(ctx, events.NewSessionStarted(session.Email, s.now()))
	return session, nil
}

func (s *authService) Logout(ctx context.Context, sid string, session *entity.Session) {
	providerSignedOut := true
	email := ""
	if session != nil {
		email = session.Email
		if err := s.provider.SignOut(ctx, sid, email); err != nil {
			providerSignedOut = false
			s.logger.Warn("AuthService", "Logout error", map[string]interface{}{"error": err.Error(), "email": email})
		}
	}

	s.EndLocalSession(ctx, sid)

	if session != nil {
		s.publish(ctx, events.NewSessionEnded(email, providerSignedOut, s.now()))
	}
}

func (s *authService) EndLocalSession(ctx context.Context, sid string) {
	if err := s.sessions.Clear(ctx, sid); err != nil {
		s.logger.Error("AuthService", "Failed to clear session", map[string]interface{}{"error": err})
	}
	s.chat.Discard(sid)
}

func (s *authService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("AuthService", "Failed to publish audit event", map[string]interface{}{"error": err.Error(), "type": event.EventType()})
	}
}
