package server

import (
	"errors"
	"log"

	"queridoc-web/internal/bootstrap"
	"queridoc-web/internal/config"
	"queridoc-web/internal/pkg/serverutils"
	"queridoc-web/internal/view"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:             25 * 1024 * 1024, // PDFs
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(container),
	})

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.SessionMiddleware(serverutils.SessionConfig{
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.CookieSecure,
		Sessions:   container.Sessions,
	}))

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	app.Get("/healthz", func(ctx *fiber.Ctx) error {
		return ctx.SendString("ok")
	})

	c.OAuthController.RegisterRoutes(app)
	c.AuthController.RegisterRoutes(app)
	c.AuthEventHandler.RegisterRoutes(app)

	c.PageController.RegisterRoutes(app, viewGuard)
	c.ChatController.RegisterRoutes(app, viewGuard)
	c.UploadController.RegisterRoutes(app, viewGuard)

	// Every other path is NotFound, which lands on "/".
	app.Use(viewGuard)
}

func errorHandler(c *bootstrap.Container) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Something went wrong. Please try again."

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			c.Logger.Error("Server", "Request failed", map[string]interface{}{
				"error":  err,
				"method": ctx.Method(),
				"path":   ctx.Path(),
			})
		}

		body, renderErr := c.Renderer.Render("error.html", view.PageData{Title: "Error", Data: message})
		if renderErr != nil {
			return ctx.Status(code).SendString(message)
		}
		ctx.Type("html", "utf-8")
		return ctx.Status(code).Send(body)
	}
}
