package module

import (
	"context"
	"log/slog"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/surrealdb/surrealdb.go"

	"github.com/nfrund/remora/internal/logging"
	"github.com/nfrund/remora/internal/pubsub"
	"github.com/nfrund/remora/internal/registry"
)

// Module is the contract every attachable unit satisfies.
//
// *Node provides both methods, so embedding *Node is all a concrete module
// needs; override Start to register routes or kick off background work.
type Module interface {
	// Name returns a unique identifier for the module.
	Name() string

	// Start is called exactly once, when the module is activated. This is
	// the phase for registering routes and loading child modules.
	Start(ctx context.Context) error
}

// Node is the embeddable base of a module. It owns the module's identity
// (name), its slice of the routing surface, the shared handles it passes on
// to children, and the children themselves.
//
// A Node is built with New and stays inert until Activate runs its owner's
// Start. Loaders activate automatically unless told otherwise.
type Node struct {
	name     string
	router   Router
	db       *surrealdb.DB
	log      *slog.Logger
	owner    Module
	parent   Module
	children *registry.Collection[Module]
	events   pubsub.Publisher
	cfg      Config
	bound    bool
	started  atomic.Bool
}

// New builds an inert node for owner from cfg.
//
// The owner is the module the node is embedded in; New derives the name from
// its type when cfg.Name is empty, and records it as the parent handed to
// children. Passing a nil owner is fine as long as cfg.Name is set.
//
// When cfg.RouterPrefix is non-empty the node's router is a sub-router
// scoped to that prefix; otherwise the node uses cfg.Router itself.
func New(owner any, cfg Config) (*Node, error) {
	if cfg.Router == nil {
		return nil, ErrNoRouter
	}

	name := cfg.Name
	if name == "" {
		name = deriveName(owner)
	}
	if name == "" {
		return nil, ErrUnnamed
	}

	router := cfg.Router
	if cfg.RouterPrefix != "" {
		router = cfg.Router.Group(cfg.RouterPrefix)
	}

	n := &Node{
		name:     name,
		router:   router,
		db:       cfg.DB,
		log:      logging.Named(name),
		parent:   cfg.Parent,
		children: registry.NewCollection[Module](),
		events:   cfg.Events,
		bound:    true,
	}
	if m, ok := owner.(Module); ok {
		n.owner = m
	}

	// Children inherit the record as resolved, not as given: the effective
	// router, the resolved name, and no prefix of their own.
	retained := cfg
	retained.Name = name
	retained.Router = router
	n.cfg = retained

	return n, nil
}

// Name returns the module's unique identifier.
func (n *Node) Name() string { return n.name }

// Start is a no-op. Concrete modules override it.
func (n *Node) Start(ctx context.Context) error { return nil }

// Router returns the surface the module registers routes on. When the node
// was built with a RouterPrefix this is a sub-router scoped to that prefix.
func (n *Node) Router() Router { return n.router }

// DB returns the shared database handle, which may be nil.
func (n *Node) DB() *surrealdb.DB { return n.db }

// Log returns the module's logger. Every line carries the module's name.
func (n *Node) Log() *slog.Logger { return n.log }

// Parent returns the module this one was loaded by, or nil for a root.
func (n *Node) Parent() Module { return n.parent }

// Child returns the child stored under name.
func (n *Node) Child(name string) (Module, bool) {
	return n.children.Get(name)
}

// Children returns the loaded children in load order.
func (n *Node) Children() []Module {
	return n.children.Values()
}

// ChildNames returns the names of the loaded children in load order.
func (n *Node) ChildNames() []string {
	return n.children.Keys()
}

// Config returns a copy of the record children inherit from this node.
func (n *Node) Config() Config { return n.cfg }

// Started reports whether Activate has run.
func (n *Node) Started() bool { return n.started.Load() }

// Attachable reports whether the node was properly built with New. It is
// the structural half of the module capability test; types that cannot
// embed *Node may implement it themselves to take part in IsModule.
func (n *Node) Attachable() bool {
	return n != nil && n.bound
}

// base is the nominal half of the capability test: only types that embed
// *Node can expose it.
func (n *Node) base() *Node { return n }

// self returns the module identity handed to children as their parent: the
// owner when the node is embedded, the node itself otherwise.
func (n *Node) self() Module {
	if n.owner != nil {
		return n.owner
	}
	return n
}

func (n *Node) parentName() string {
	if n.parent == nil {
		return ""
	}
	return n.parent.Name()
}

// publishLifecycle emits a lifecycle event when the node carries a
// publisher. Publish failures are logged, never propagated; observability
// must not break loading.
func (n *Node) publishLifecycle(ctx context.Context, event, moduleName, parentName string) {
	if n.events == nil {
		return
	}

	msg, err := pubsub.NewLifecycleEvent(event, moduleName, parentName).Message()
	if err != nil {
		n.log.Warn("Failed to encode lifecycle event", "event", event, "error", err)
		return
	}
	if err := n.events.Publish(ctx, msg); err != nil {
		n.log.Warn("Failed to publish lifecycle event", "event", event, "error", err)
	}
}

// Activate runs m's Start exactly once. A second call returns
// ErrAlreadyStarted; a failed Start leaves the module stopped so the caller
// may retry. Modules not built on Node manage their own start bookkeeping
// and are started unconditionally.
func Activate(ctx context.Context, m Module) error {
	n := nodeOf(m)
	if n == nil {
		return m.Start(ctx)
	}

	if !n.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	if err := m.Start(ctx); err != nil {
		n.started.Store(false)
		return err
	}

	n.log.Debug("Module started")
	n.publishLifecycle(ctx, pubsub.EventStarted, n.name, n.parentName())
	return nil
}

// IsModule reports whether v can be attached as a child: it satisfies
// Module and passes the capability test, either by embedding a *Node built
// with New or by implementing Attachable itself.
func IsModule(v any) bool {
	m, ok := v.(Module)
	if !ok {
		return false
	}

	// A typed nil pointer satisfies the interface but would panic on any
	// promoted method call.
	rv := reflect.ValueOf(m)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return false
	}

	switch t := m.(type) {
	case interface{ base() *Node }:
		n := t.base()
		return n != nil && n.bound
	case interface{ Attachable() bool }:
		return t.Attachable()
	}
	return false
}

// nodeOf returns the *Node at the base of m, or nil when m is not built on
// one.
func nodeOf(m Module) *Node {
	if b, ok := m.(interface{ base() *Node }); ok {
		return b.base()
	}
	return nil
}

// deriveName turns an owner into a module name: the concrete type's name,
// any "Module" suffix dropped, lowercased. *notes.NotesModule and
// *notes.Notes both come out as "notes".
func deriveName(owner any) string {
	if owner == nil {
		return ""
	}

	t := reflect.TypeOf(owner)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	name := t.Name()
	if name == "" {
		// Anonymous types have no usable identity.
		return ""
	}

	if trimmed := strings.TrimSuffix(name, "Module"); trimmed != "" {
		name = trimmed
	}
	return strings.ToLower(name)
}
