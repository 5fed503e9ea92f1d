package status

import (
	"fmt"

	"github.com/a-h/templ"
	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"

	"github.com/nfrund/remora/internal/pubsub"
	"github.com/nfrund/remora/internal/view"
)

// Paths carries the request-time locations of the status endpoints; they
// depend on where the module is mounted.
type Paths struct {
	TreeFragment string
	WS           string
}

// StatusPage renders the full status UI: the module tree, refreshed by
// htmx, and a live feed of lifecycle events over the websocket.
func StatusPage(tree TreeNode, events []pubsub.LifecycleEvent, paths Paths) templ.Component {
	sections := []gomponents.Node{
		H1(gomponents.Text("Module status")),
		Div(
			ID("tree-wrap"),
			hx.Get(paths.TreeFragment),
			hx.Trigger("every 5s"),
			hx.Swap("innerHTML"),
			TreeView(tree),
		),
		H2(gomponents.Text("Lifecycle events")),
		eventList(events),
	}
	if paths.WS != "" {
		sections = append(sections, liveEventsScript(paths.WS))
	}

	content := Div(Class("status-page"), gomponents.Group(sections))
	return view.Layout("Status", view.FromGomponent(content))
}

// TreeView renders the module tree as nested lists. It is also served on
// its own as the fragment htmx polls.
func TreeView(tree TreeNode) gomponents.Node {
	return Div(Class("module-tree"), treeItem(tree))
}

func treeItem(node TreeNode) gomponents.Node {
	state := "stopped"
	if node.Started {
		state = "started"
	}

	label := []gomponents.Node{
		Span(Class("module-state module-"+state), gomponents.Text(state)),
		gomponents.Text(" "),
		Strong(gomponents.Text(node.Name)),
	}
	if node.Prefix != "" {
		label = append(label, gomponents.Text(" "), Code(gomponents.Text(node.Prefix)))
	}

	children := make([]gomponents.Node, 0, len(node.Children))
	for _, child := range node.Children {
		children = append(children, Li(treeItem(child)))
	}

	item := Div(Class("module-node"), gomponents.Group(label))
	if len(children) == 0 {
		return item
	}
	return Div(item, Ul(gomponents.Group(children)))
}

func eventList(events []pubsub.LifecycleEvent) gomponents.Node {
	items := make([]gomponents.Node, 0, len(events))
	for _, e := range events {
		text := fmt.Sprintf("%s %s %s", e.At.Format("15:04:05"), e.Event, e.Module)
		if e.Parent != "" {
			text += " (parent: " + e.Parent + ")"
		}
		items = append(items, Li(gomponents.Text(text)))
	}
	if len(items) == 0 {
		items = append(items, Li(Class("event-empty"), gomponents.Text("No events yet.")))
	}
	return Ul(ID("live-events"), Class("events"), gomponents.Group(items))
}

// liveEventsScript connects to the lifecycle stream and prepends incoming
// events to the list.
func liveEventsScript(wsPath string) gomponents.Node {
	js := fmt.Sprintf(`(function() {
	var list = document.getElementById("live-events");
	if (!list || !window.WebSocket) { return; }
	var proto = location.protocol === "https:" ? "wss://" : "ws://";
	var sock = new WebSocket(proto + location.host + %q);
	sock.onmessage = function(ev) {
		var item = document.createElement("li");
		try {
			var data = JSON.parse(ev.data);
			item.textContent = data.event + " " + data.module + (data.parent ? " (parent: " + data.parent + ")" : "");
		} catch (e) {
			item.textContent = ev.data;
		}
		list.prepend(item);
	};
})();`, wsPath)

	return Script(gomponents.Raw(js))
}
