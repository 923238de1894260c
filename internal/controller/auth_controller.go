package controller

import (
	"queridoc-web/internal/pkg/serverutils"
	"queridoc-web/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Logout(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	r.Post("/logout", c.Logout)
}

// Logout always ends the local session, whatever the provider says, and
// hands the browser a fresh session-id.
func (c *authController) Logout(ctx *fiber.Ctx) error {
	c.service.Logout(ctx.UserContext(), serverutils.SessionID(ctx), serverutils.CurrentSession(ctx))
	serverutils.SetSessionID(ctx, serverutils.NewSessionID())
	return ctx.Redirect("/", fiber.StatusSeeOther)
}
