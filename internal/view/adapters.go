package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"maragu.dev/gomponents"
)

// The render surface is templ-first: layouts are templ components and the
// renderer streams them with a request context. Gomponents trees slot in
// through these adapters, in either direction.

// gomponentComponent wraps a gomponents.Node as a templ.Component.
type gomponentComponent struct {
	node gomponents.Node
}

func (a gomponentComponent) Render(ctx context.Context, w io.Writer) error {
	return a.node.Render(w)
}

// FromGomponent converts a gomponents tree into a templ.Component so it can
// be rendered inside a templ layout.
func FromGomponent(node gomponents.Node) templ.Component {
	return gomponentComponent{node: node}
}

// templNode wraps a templ.Component as a gomponents.Node.
type templNode struct {
	component templ.Component
}

// Render satisfies gomponents.Node. Gomponents rendering carries no
// context, so the wrapped component runs under context.Background().
func (a templNode) Render(w io.Writer) error {
	return a.component.Render(context.Background(), w)
}

// ToGomponent converts a templ.Component into a gomponents.Node so it can
// be embedded in a pure gomponents view.
func ToGomponent(component templ.Component) gomponents.Node {
	return templNode{component: component}
}
