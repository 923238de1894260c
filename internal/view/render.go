// Package view renders the HTML pages of the web client.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html
var templatesFS embed.FS

// PageData is handed to every page.
type PageData struct {
	Title       string
	CurrentPath string
	User        *User
	Year        int
	Data        any
}

// User is the navbar's view of the session.
type User struct {
	Name      string
	FirstName string
	Email     string
}

type Renderer struct {
	base *template.Template
	md   goldmark.Markdown
	sani *bluemonday.Policy
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{
		md:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
		sani: bluemonday.UGCPolicy(),
	}
	base, err := template.New("base").Funcs(r.funcs()).ParseFS(templatesFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parse base template: %w", err)
	}
	r.base = base
	return r, nil
}

// Render executes page (e.g. "ask.html") inside the base layout.
func (r *Renderer) Render(page string, data PageData) ([]byte, error) {
	// Clone so the "content" blocks of different pages do not collide.
	tmpl, err := r.base.Clone()
	if err != nil {
		return nil, fmt.Errorf("clone template: %w", err)
	}
	if _, err := tmpl.ParseFS(templatesFS, "templates/"+page); err != nil {
		return nil, fmt.Errorf("parse page template %s: %w", page, err)
	}

	if data.Year == 0 {
		data.Year = time.Now().Year()
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Markdown turns an answer into sanitized HTML.
func (r *Renderer) Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(r.sani.SanitizeBytes(buf.Bytes()))
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"markdown": r.Markdown,
		"avatarURL": func(name string) string {
			return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random"
		},
		"last": func(i, n int) bool { return i == n-1 },
	}
}
