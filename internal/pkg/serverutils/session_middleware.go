package serverutils

import (
	"queridoc-web/internal/entity"
	"queridoc-web/internal/repository/contract"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	localSessionID     = "sid"
	localSession       = "session"
	localSessionConfig = "session_config"
)

type SessionConfig struct {
	CookieName string
	Secure     bool
	Sessions   contract.SessionRepository
}

// SessionMiddleware hydrates the browser's Session before any handler runs.
// Browsers without a valid session-id cookie get a fresh one.
func SessionMiddleware(cfg SessionConfig) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		ctx.Locals(localSessionConfig, cfg)

		sid := ctx.Cookies(cfg.CookieName)
		if _, err := uuid.Parse(sid); err != nil {
			sid = NewSessionID()
			setSessionCookie(ctx, cfg, sid)
		}

		ctx.Locals(localSessionID, sid)
		if session := cfg.Sessions.Load(ctx.UserContext(), sid); session != nil {
			ctx.Locals(localSession, session)
		}
		return ctx.Next()
	}
}

func NewSessionID() string {
	return uuid.NewString()
}

// SetSessionID moves the browser to sid for this response and every request
// after it. Called when the login state changes so an id planted before login
// is never the one that ends up authenticated.
func SetSessionID(ctx *fiber.Ctx, sid string) {
	cfg, ok := ctx.Locals(localSessionConfig).(SessionConfig)
	if !ok {
		return
	}
	setSessionCookie(ctx, cfg, sid)
	ctx.Locals(localSessionID, sid)
	ctx.Locals(localSession, nil)
}

func setSessionCookie(ctx *fiber.Ctx, cfg SessionConfig, sid string) {
	ctx.Cookie(&fiber.Cookie{
		Name:     cfg.CookieName,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// SessionID is the browser's session-id, set by SessionMiddleware.
func SessionID(ctx *fiber.Ctx) string {
	sid, _ := ctx.Locals(localSessionID).(string)
	return sid
}

// CurrentSession returns nil when nobody is logged in.
func CurrentSession(ctx *fiber.Ctx) *entity.Session {
	session, _ := ctx.Locals(localSession).(*entity.Session)
	return session
}

// RequireSession sends anonymous requests back to the landing page.
func RequireSession(ctx *fiber.Ctx) error {
	if CurrentSession(ctx) == nil {
		return ctx.Redirect("/", fiber.StatusSeeOther)
	}
	return ctx.Next()
}
