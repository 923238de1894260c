package controller

import (
	"queridoc-web/internal/dto"
	"queridoc-web/internal/pkg/serverutils"
	"queridoc-web/internal/service"
	"queridoc-web/internal/view"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	Page(ctx *fiber.Ctx) error
	Ask(ctx *fiber.Ctx) error
	Retry(ctx *fiber.Ctx) error
}

type chatController struct {
	service  service.IChatService
	renderer *view.Renderer
}

func NewChatController(service service.IChatService, renderer *view.Renderer) IChatController {
	return &chatController{service: service, renderer: renderer}
}

func (c *chatController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	r.Get("/ask", guard, c.Page)
	r.Post("/ask", serverutils.RequireSession, c.Ask)
	r.Post("/ask/retry", serverutils.RequireSession, c.Retry)
}

func (c *chatController) Page(ctx *fiber.Ctx) error {
	var req dto.SelectRequest
	if err := ctx.QueryParser(&req); err != nil || serverutils.ValidateStruct(&req) != nil {
		req.File = ""
	}

	session := serverutils.CurrentSession(ctx)
	snapshot := c.service.Mount(ctx.UserContext(), serverutils.SessionID(ctx), session.Token, req.File)
	return renderPage(ctx, c.renderer, "ask.html", "Ask", snapshot)
}

func (c *chatController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	// An empty question or a page without a document is ignored rather than reported.
	if err := serverutils.ValidateStruct(&req); err != nil {
		return ctx.Redirect("/ask#latest", fiber.StatusSeeOther)
	}

	session := serverutils.CurrentSession(ctx)
	// Failures are already recorded on the transcript.
	_ = c.service.Submit(ctx.UserContext(), serverutils.SessionID(ctx), session.Token, req.Filename, req.Question)
	return ctx.Redirect("/ask#latest", fiber.StatusSeeOther)
}

func (c *chatController) Retry(ctx *fiber.Ctx) error {
	var req dto.RetryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return ctx.Redirect("/ask#latest", fiber.StatusSeeOther)
	}

	session := serverutils.CurrentSession(ctx)
	_ = c.service.Retry(ctx.UserContext(), serverutils.SessionID(ctx), session.Token, req.Filename)
	return ctx.Redirect("/ask#latest", fiber.StatusSeeOther)
}
