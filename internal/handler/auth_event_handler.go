package handler

import (
	"context"
	"encoding/json"

	"queridoc-web/internal/pkg/logger"
	"queridoc-web/internal/pkg/serverutils"
	"queridoc-web/internal/service"
	internalWS "queridoc-web/internal/websocket"
	"queridoc-web/pkg/identity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	localWsSID   = "ws_sid"
	localWsEmail = "ws_email"
)

type authPush struct {
	Type string `json:"type"`
}

var signedOutMessage, _ = json.Marshal(authPush{Type: "signed_out"})

// AuthEventHandler tells open pages when their user was signed out by the
// identity provider.
type AuthEventHandler struct {
	provider identity.Provider
	auth     service.IAuthService
	logger   logger.ILogger
}

func NewAuthEventHandler(provider identity.Provider, auth service.IAuthService, log logger.ILogger) *AuthEventHandler {
	return &AuthEventHandler{provider: provider, auth: auth, logger: log}
}

func (h *AuthEventHandler) RegisterRoutes(r fiber.Router) {
	r.Use("/ws/auth", h.upgrade)
	r.Get("/ws/auth", websocket.New(h.serve))
}

func (h *AuthEventHandler) upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	session := serverutils.CurrentSession(c)
	if session == nil {
		return fiber.ErrUnauthorized
	}
	c.Locals(localWsSID, serverutils.SessionID(c))
	c.Locals(localWsEmail, session.Email)
	return c.Next()
}

func (h *AuthEventHandler) serve(conn *websocket.Conn) {
	sid, _ := conn.Locals(localWsSID).(string)
	email, _ := conn.Locals(localWsEmail).(string)

	client := internalWS.NewClient(conn, email)
	sub, err := h.provider.OnAuthStateChanged(h.watch(sid, email, client.Push))
	if err != nil {
		h.logger.Error("AuthEventHandler", "Failed to subscribe to auth state", map[string]interface{}{"error": err})
		return
	}
	defer sub.Unsubscribe()

	client.Serve()
}

// watch returns the observer for one page. Only a sign-out of this browser's
// session ends it; the same user signed in elsewhere stays signed in.
func (h *AuthEventHandler) watch(sid, email string, push func([]byte) bool) func(identity.AuthState) {
	return func(state identity.AuthState) {
		if state.SignedIn() || state.Session != sid {
			return
		}
		h.auth.EndLocalSession(context.Background(), sid)
		if !push(signedOutMessage) {
			h.logger.Debug("AuthEventHandler", "Page gone before sign-out push", map[string]interface{}{"email": email})
		}
	}
}
