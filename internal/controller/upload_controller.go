package controller

import (
	"queridoc-web/internal/pkg/serverutils"
	"queridoc-web/internal/service"
	"queridoc-web/internal/view"

	"github.com/gofiber/fiber/v2"
)

type IUploadController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	Page(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
}

type uploadController struct {
	service  service.IUploadService
	renderer *view.Renderer
}

func NewUploadController(service service.IUploadService, renderer *view.Renderer) IUploadController {
	return &uploadController{service: service, renderer: renderer}
}

func (c *uploadController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	r.Get("/upload", guard, c.Page)
	r.Post("/upload", serverutils.RequireSession, c.Upload)
}

func (c *uploadController) Page(ctx *fiber.Ctx) error {
	return renderPage(ctx, c.renderer, "upload.html", "Upload", service.UploadResult{})
}

func (c *uploadController) Upload(ctx *fiber.Ctx) error {
	// No file part is reported like an empty picker.
	file, err := ctx.FormFile("file")
	if err != nil {
		file = nil
	}

	session := serverutils.CurrentSession(ctx)
	result := c.service.Upload(ctx.UserContext(), session.Token, file)
	return renderPage(ctx, c.renderer, "upload.html", "Upload", result)
}
