package notes

import (
	"github.com/a-h/templ"
	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"

	"github.com/nfrund/remora/internal/domain"
	"github.com/nfrund/remora/internal/view"
)

// PageData carries everything the notes page needs to render.
type PageData struct {
	Notes   []domain.Note
	Flashes view.FlashData

	// FormPath is the classic form POST target; APIPath is where the htmx
	// enhancement posts instead. Both depend on where the module is
	// mounted, so the handler fills them in per request.
	FormPath string
	APIPath  string
}

// NotesPage renders the full notes UI: flash banner, create form and the
// recent notes.
func NotesPage(data PageData) templ.Component {
	content := Div(
		Class("notes-page"),
		H1(gomponents.Text("Notes")),
		view.ToGomponent(view.FlashBanner(data.Flashes)),
		noteForm(data),
		NotesList(data.Notes),
	)
	return view.Layout("Notes", view.FromGomponent(content))
}

// noteForm posts as a plain HTML form, and as an htmx request that swaps
// the rendered list in place when the htmx runtime is available.
func noteForm(data PageData) gomponents.Node {
	return Form(
		Class("note-form"),
		Method("post"),
		Action(data.FormPath),
		hx.Post(data.APIPath),
		hx.Target("#notes-list"),
		hx.Swap("outerHTML"),
		Input(Type("text"), Name("title"), Placeholder("Title"), Required()),
		Textarea(Name("body"), Placeholder("Write something...")),
		Button(Type("submit"), gomponents.Text("Add note")),
	)
}

// NotesList renders the notes as a list. It is also served on its own as
// the fragment htmx swaps in after a create.
func NotesList(notes []domain.Note) gomponents.Node {
	items := make([]gomponents.Node, 0, len(notes))
	for _, n := range notes {
		items = append(items, noteItem(n))
	}
	if len(items) == 0 {
		items = append(items, Li(Class("note-empty"), gomponents.Text("No notes yet.")))
	}
	return Ul(ID("notes-list"), Class("notes"), gomponents.Group(items))
}

func noteItem(n domain.Note) gomponents.Node {
	return Li(
		Class("note"),
		Strong(gomponents.Text(n.Title)),
		P(gomponents.Text(n.Body)),
	)
}
