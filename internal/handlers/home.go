package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/nfrund/remora/internal/module"
	"github.com/nfrund/remora/internal/view"
)

// HomeHandler handles requests for the home page.
type HomeHandler struct {
	root *module.Node
}

// NewHomeHandler creates a new HomeHandler for the given application root.
func NewHomeHandler(root *module.Node) *HomeHandler {
	return &HomeHandler{root: root}
}

// HomeGet renders the home page: a short banner plus the modules mounted on
// the root, linking to each module's prefix.
func (h *HomeHandler) HomeGet(c echo.Context) error {
	items := []gomponents.Node{}
	for _, child := range h.root.Children() {
		items = append(items, moduleItem(child))
	}

	content := Div(
		Class("home"),
		H1(gomponents.Text("remora")),
		P(gomponents.Text("Mounted modules:")),
		Ul(Class("module-list"), gomponents.Group(items)),
	)

	page := view.Layout("remora", view.FromGomponent(content))

	// The 'name' parameter is ignored by the universal renderer; the
	// component is passed as 'data'.
	return c.Render(http.StatusOK, "", page)
}

// moduleItem renders one mounted module. Modules built on a Node expose the
// record children inherit, which carries the mount prefix.
func moduleItem(m module.Module) gomponents.Node {
	type configured interface {
		Config() module.Config
	}

	label := m.Name()
	if c, ok := m.(configured); ok {
		if prefix := c.Config().RouterPrefix; prefix != "" {
			return Li(A(Href(prefix), gomponents.Text(label+" ("+prefix+")")))
		}
	}
	return Li(gomponents.Text(label))
}
