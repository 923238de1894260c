package server

import (
	"strings"

	"queridoc-web/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type View int

const (
	ViewLanding View = iota
	ViewLogin
	ViewAsk
	ViewUpload
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewAsk:
		return "ask"
	case ViewUpload:
		return "upload"
	default:
		return "landing"
	}
}

// Route is the outcome of resolving a path. A non-empty Redirect means the
// View must not be shown.
type Route struct {
	View     View
	Redirect string
}

// Resolve maps a path and the login state to a view. Unknown paths, protected
// views without a session and /login with a session all go back to "/".
func Resolve(path string, hasSession bool) Route {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	switch path {
	case "/":
		return Route{View: ViewLanding}
	case "/login":
		if hasSession {
			return Route{View: ViewLanding, Redirect: "/"}
		}
		return Route{View: ViewLogin}
	case "/ask":
		if !hasSession {
			return Route{View: ViewLanding, Redirect: "/"}
		}
		return Route{View: ViewAsk}
	case "/upload":
		if !hasSession {
			return Route{View: ViewLanding, Redirect: "/"}
		}
		return Route{View: ViewUpload}
	default:
		return Route{View: ViewLanding, Redirect: "/"}
	}
}

// viewGuard applies Resolve to a page request.
func viewGuard(ctx *fiber.Ctx) error {
	route := Resolve(ctx.Path(), serverutils.CurrentSession(ctx) != nil)
	if route.Redirect != "" {
		return ctx.Redirect(route.Redirect, fiber.StatusFound)
	}
	return ctx.Next()
}
