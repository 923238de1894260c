package controller

import (
	"time"

	"queridoc-web/internal/dto"
	"queridoc-web/internal/pkg/logger"
	"queridoc-web/internal/pkg/serverutils"
	"queridoc-web/internal/service"

	"github.com/gofiber/fiber/v2"
)

const stateCookie = "queridoc_oauth_state"

type IOAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
}

type oauthController struct {
	service      service.IAuthService
	secureCookie bool
	logger       logger.ILogger
}

func NewOAuthController(service service.IAuthService, secureCookie bool, log logger.ILogger) IOAuthController {
	return &oauthController{service: service, secureCookie: secureCookie, logger: log}
}

func (c *oauthController) RegisterRoutes(r fiber.Router) {
	r.Get("/auth/google", c.Login)
	r.Get("/auth/google/callback", c.Callback)
}

func (c *oauthController) Login(ctx *fiber.Ctx) error {
	url, state, err := c.service.BeginLogin()
	if err != nil {
		return err
	}

	c.setState(ctx, state, time.Now().Add(10*time.Minute))
	return ctx.Redirect(url)
}

func (c *oauthController) Callback(ctx *fiber.Ctx) error {
	var q dto.OAuthCallbackQuery
	if err := ctx.QueryParser(&q); err != nil {
		return fiber.ErrBadRequest
	}

	expected := ctx.Cookies(stateCookie)
	c.setState(ctx, "", time.Unix(0, 0))

	switch {
	case q.Error != "":
		c.logger.Warn("OAuthController", "Login error", map[string]interface{}{"reason": q.Error})
		return ctx.Redirect("/login?failed=1")
	case q.Code == "" || expected == "" || q.State != expected:
		c.logger.Warn("OAuthController", "Login error", map[string]interface{}{"reason": "state mismatch or missing code"})
		return ctx.Redirect("/login?failed=1")
	}

	previous := serverutils.SessionID(ctx)
	sid := serverutils.NewSessionID()
	if _, err := c.service.CompleteLogin(ctx.UserContext(), sid, q.Code); err != nil {
		return ctx.Redirect("/login?failed=1")
	}
	serverutils.SetSessionID(ctx, sid)
	c.service.EndLocalSession(ctx.UserContext(), previous)
	return ctx.Redirect("/")
}

func (c *oauthController) setState(ctx *fiber.Ctx, state string, expires time.Time) {
	ctx.Cookie(&fiber.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/google",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   c.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
