package module

import (
	"context"
	"fmt"
	"reflect"

	"github.com/nfrund/remora/internal/pubsub"
)

var (
	configType = reflect.TypeOf(Config{})
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

// LoadChild attaches v to the node as a child module and returns it.
//
// v is either a ready module instance, which is attached as-is, or a module
// factory: any func taking a Config and returning a module, optionally with
// an error. A factory is invoked with the node's own record (name cleared,
// prefix cleared, parent set to this module) with opts applied on top, so
// an option always beats the inherited value. Options are ignored for ready
// instances, whose construction already happened elsewhere.
//
// Children are stored by name; loading a second child with the same name
// replaces the first silently. When the effective config asks for AutoStart
// the child is activated before LoadChild returns, and a child whose Start
// fails is detached again.
//
// Anything that is neither a module nor a factory fails with
// *InvalidArgumentError; a factory result that fails the capability test
// fails with *InvalidModuleError.
func (n *Node) LoadChild(ctx context.Context, v any, opts ...Option) (Module, error) {
	if IsModule(v) {
		return n.attach(ctx, v.(Module))
	}

	fv := reflect.ValueOf(v)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return nil, &InvalidArgumentError{TypeName: typeName(v)}
	}

	child, err := n.construct(fv, opts...)
	if err != nil {
		return nil, err
	}
	return n.attach(ctx, child)
}

// LoadChildren loads each element of items in order, applying the same
// options to every factory. It stops at the first failure, returning the
// children loaded so far alongside the error.
func (n *Node) LoadChildren(ctx context.Context, items []any, opts ...Option) ([]Module, error) {
	loaded := make([]Module, 0, len(items))
	for i, item := range items {
		m, err := n.LoadChild(ctx, item, opts...)
		if err != nil {
			return loaded, fmt.Errorf("loading child %d of %d: %w", i+1, len(items), err)
		}
		loaded = append(loaded, m)
	}
	return loaded, nil
}

// childConfig synthesizes the record a child is constructed from: this
// node's own record with the identity fields reset, then the caller's
// overrides.
func (n *Node) childConfig(opts ...Option) Config {
	cfg := n.cfg
	cfg.Name = ""
	cfg.RouterPrefix = ""
	cfg.Parent = n.self()

	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// construct invokes a factory with a synthesized child config and vets the
// result. Accepted shapes are func(Config) T and func(Config) (T, error)
// for any T that passes the capability test.
func (n *Node) construct(fv reflect.Value, opts ...Option) (Module, error) {
	ft := fv.Type()

	validShape := ft.NumIn() == 1 && ft.In(0) == configType &&
		(ft.NumOut() == 1 || (ft.NumOut() == 2 && ft.Out(1) == errorType))
	if !validShape {
		return nil, &InvalidArgumentError{TypeName: ft.String()}
	}

	cfg := n.childConfig(opts...)
	results := fv.Call([]reflect.Value{reflect.ValueOf(cfg)})

	if ft.NumOut() == 2 && !results[1].IsNil() {
		return nil, fmt.Errorf("module factory: %w", results[1].Interface().(error))
	}

	child := results[0].Interface()
	if !IsModule(child) {
		return nil, &InvalidModuleError{TypeName: typeName(child)}
	}
	return child.(Module), nil
}

// attach wires m into the tree: parent pointer, children entry, lifecycle
// event, and activation when its config asks for it.
func (n *Node) attach(ctx context.Context, m Module) (Module, error) {
	autostart := false
	if c := nodeOf(m); c != nil {
		c.parent = n.self()
		c.cfg.Parent = n.self()
		autostart = c.cfg.AutoStart && !c.started.Load()
	}

	name := m.Name()
	n.children.Set(name, m)
	n.log.Debug("Loaded child module", "child", name)
	n.publishLifecycle(ctx, pubsub.EventLoaded, name, n.name)

	if autostart {
		if err := Activate(ctx, m); err != nil {
			n.children.Delete(name)
			return nil, fmt.Errorf("starting module %q: %w", name, err)
		}
	}

	return m, nil
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
