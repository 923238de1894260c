package controller

import (
	"queridoc-web/internal/pkg/serverutils"
	"queridoc-web/internal/view"

	"github.com/gofiber/fiber/v2"
)

// renderPage renders page inside the layout for the current session.
func renderPage(ctx *fiber.Ctx, r *view.Renderer, page, title string, data any) error {
	pd := view.PageData{
		Title:       title,
		CurrentPath: ctx.Path(),
		Data:        data,
	}
	if s := serverutils.CurrentSession(ctx); s != nil {
		pd.User = &view.User{Name: s.Name, FirstName: s.FirstName(), Email: s.Email}
	}

	body, err := r.Render(page, pd)
	if err != nil {
		return err
	}
	ctx.Type("html", "utf-8")
	return ctx.Send(body)
}
