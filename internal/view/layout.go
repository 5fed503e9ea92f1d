package view

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

// htmxScript is included in every page so module views can use hx-*
// attributes without any per-page wiring.
const htmxScript = `<script src="https://unpkg.com/htmx.org@1.9.12"></script>`

// Layout wraps body in the shared HTML shell: doctype, head with the page
// title and the htmx runtime, and an empty body for the content.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title>%s</head><body>`,
			html.EscapeString(title), htmxScript); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}
