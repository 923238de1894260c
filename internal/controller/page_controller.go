package controller

import (
	"queridoc-web/internal/view"

	"github.com/gofiber/fiber/v2"
)

type IPageController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	Landing(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
}

type pageController struct {
	renderer *view.Renderer
}

func NewPageController(renderer *view.Renderer) IPageController {
	return &pageController{renderer: renderer}
}

func (c *pageController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	r.Get("/", guard, c.Landing)
	r.Get("/login", guard, c.Login)
}

func (c *pageController) Landing(ctx *fiber.Ctx) error {
	return renderPage(ctx, c.renderer, "landing.html", "", nil)
}

type loginPage struct {
	Failed bool
}

func (c *pageController) Login(ctx *fiber.Ctx) error {
	return renderPage(ctx, c.renderer, "login.html", "Login", loginPage{Failed: ctx.Query("failed") != ""})
}
