package module_test

import (
	"context"
	"errors"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/remora/internal/module"
	"github.com/nfrund/remora/internal/pubsub"
)

func newParent(t *testing.T, opts ...module.Option) *testModule {
	t.Helper()

	cfg := module.DefaultConfig(echo.New())
	cfg.Name = "parent"
	for _, opt := range opts {
		opt(&cfg)
	}

	m, err := newTestModule(cfg)
	require.NoError(t, err)
	return m
}

func TestLoadChildFactory(t *testing.T) {
	ctx := context.Background()

	t.Run("constructs, attaches and autostarts", func(t *testing.T) {
		parent := newParent(t)

		child, err := parent.LoadChild(ctx, newTestModule, module.WithName("child"))
		require.NoError(t, err)

		tm, ok := child.(*testModule)
		require.True(t, ok)
		assert.Equal(t, "child", child.Name())
		assert.Same(t, parent, tm.Parent(), "the parent handed to the child must be the loading module itself")
		assert.True(t, tm.Started(), "autostart must have run by the time LoadChild returns")
		assert.Equal(t, 1, tm.startCalls)

		got, ok := parent.Child("child")
		require.True(t, ok)
		assert.Same(t, child, got)
	})

	t.Run("child inherits the parent's record", func(t *testing.T) {
		pub := &capturePublisher{}
		parent := newParent(t, module.WithEvents(pub))

		child, err := parent.LoadChild(ctx, newTestModule, module.WithName("heir"))
		require.NoError(t, err)

		cfg := child.(*testModule).Config()
		assert.Same(t, parent.Router(), cfg.Router, "children nest on the parent's effective router")
		assert.True(t, cfg.AutoStart)
		assert.Equal(t, pub, cfg.Events, "the events publisher flows down the tree")
		assert.Empty(t, cfg.RouterPrefix, "a prefix never leaks from parent to child")
	})

	t.Run("options override the inherited record", func(t *testing.T) {
		parent := newParent(t)

		child, err := parent.LoadChild(ctx, newTestModule,
			module.WithName("quiet"),
			module.WithAutoStart(false),
			module.WithRouterPrefix("/quiet"),
		)
		require.NoError(t, err)

		tm := child.(*testModule)
		assert.False(t, tm.Started(), "WithAutoStart(false) must suppress activation")
		assert.NotSame(t, parent.Router(), tm.Router(), "a prefix override must scope the child's router")
	})

	t.Run("derives the child name when no override is given", func(t *testing.T) {
		parent := newParent(t)

		child, err := parent.LoadChild(ctx, func(cfg module.Config) (*NotesModule, error) {
			m := &NotesModule{}
			node, err := module.New(m, cfg)
			if err != nil {
				return nil, err
			}
			m.Node = node
			return m, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "notes", child.Name(), "the parent's name must not leak into the child")
	})

	t.Run("factory errors surface unwrapped", func(t *testing.T) {
		parent := newParent(t)
		sentinel := errors.New("no database")

		_, err := parent.LoadChild(ctx, func(cfg module.Config) (*testModule, error) {
			return nil, sentinel
		})
		assert.ErrorIs(t, err, sentinel)
		assert.Empty(t, parent.Children(), "a failed construction must not attach anything")
	})

	t.Run("single-return factories work", func(t *testing.T) {
		parent := newParent(t)

		child, err := parent.LoadChild(ctx, func(cfg module.Config) *testModule {
			cfg.Name = "single"
			m, err := newTestModule(cfg)
			require.NoError(t, err)
			return m
		})
		require.NoError(t, err)
		assert.Equal(t, "single", child.Name())
	})

	t.Run("a child whose Start fails is detached", func(t *testing.T) {
		parent := newParent(t)

		_, err := parent.LoadChild(ctx, func(cfg module.Config) (*testModule, error) {
			cfg.Name = "doomed"
			m, err := newTestModule(cfg)
			if err != nil {
				return nil, err
			}
			m.startErr = errors.New("boom")
			return m, nil
		})
		assert.Error(t, err)
		assert.Empty(t, parent.Children(), "a child that failed to start must not stay attached")
	})
}

func TestLoadChildInstance(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches a ready instance as-is", func(t *testing.T) {
		parent := newParent(t)

		cfg := parent.Config()
		cfg.Name = "ready"
		cfg.AutoStart = false
		instance, err := newTestModule(cfg)
		require.NoError(t, err)

		child, err := parent.LoadChild(ctx, instance)
		require.NoError(t, err)
		assert.Same(t, instance, child, "instances attach identity-preserving")
		assert.Same(t, parent, instance.Parent())
		assert.False(t, instance.Started(), "an instance built without autostart stays inert")
	})

	t.Run("activates an unstarted autostart instance", func(t *testing.T) {
		parent := newParent(t)

		cfg := parent.Config()
		cfg.Name = "eager"
		instance, err := newTestModule(cfg)
		require.NoError(t, err)
		require.False(t, instance.Started())

		_, err = parent.LoadChild(ctx, instance)
		require.NoError(t, err)
		assert.True(t, instance.Started())
		assert.Equal(t, 1, instance.startCalls)
	})

	t.Run("does not restart a started instance", func(t *testing.T) {
		parent := newParent(t)

		cfg := parent.Config()
		cfg.Name = "running"
		instance, err := newTestModule(cfg)
		require.NoError(t, err)
		require.NoError(t, module.Activate(ctx, instance))

		_, err = parent.LoadChild(ctx, instance)
		require.NoError(t, err)
		assert.Equal(t, 1, instance.startCalls, "attaching a running instance must not rerun Start")
	})

	t.Run("replaces a child with the same name silently", func(t *testing.T) {
		parent := newParent(t)

		first, err := parent.LoadChild(ctx, newTestModule, module.WithName("twin"))
		require.NoError(t, err)
		second, err := parent.LoadChild(ctx, newTestModule, module.WithName("twin"))
		require.NoError(t, err)

		require.Len(t, parent.Children(), 1)
		got, ok := parent.Child("twin")
		require.True(t, ok)
		assert.Same(t, second, got)
		assert.NotSame(t, first, got)
	})
}

func TestLoadChildInvalidArguments(t *testing.T) {
	ctx := context.Background()
	parent := newParent(t)

	cases := []struct {
		name     string
		v        any
		wantType string
	}{
		{"int", 42, "int"},
		{"string", "notes", "string"},
		{"nil", nil, "nil"},
		{"struct without methods", struct{ Name string }{Name: "fake"}, "struct { Name string }"},
		{"func with wrong shape", func() {}, "func()"},
		{"func with wrong argument", func(s string) *testModule { return nil }, "func(string) *module_test.testModule"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parent.LoadChild(ctx, tc.v)

			var argErr *module.InvalidArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tc.wantType, argErr.TypeName, "the error must name the offending type")
		})
	}

	t.Run("factory returning a non-module", func(t *testing.T) {
		_, err := parent.LoadChild(ctx, func(cfg module.Config) int { return 5 })

		var modErr *module.InvalidModuleError
		require.ErrorAs(t, err, &modErr)
		assert.Equal(t, "int", modErr.TypeName)
	})

	t.Run("nothing attaches on failure", func(t *testing.T) {
		assert.Empty(t, parent.Children())
	})
}

func TestLoadChildren(t *testing.T) {
	ctx := context.Background()

	t.Run("loads in order and preserves it", func(t *testing.T) {
		parent := newParent(t)

		alpha := func(cfg module.Config) (*testModule, error) {
			cfg.Name = "alpha"
			return newTestModule(cfg)
		}
		beta := func(cfg module.Config) (*testModule, error) {
			cfg.Name = "beta"
			return newTestModule(cfg)
		}

		loaded, err := parent.LoadChildren(ctx, []any{alpha, beta})
		require.NoError(t, err)
		require.Len(t, loaded, 2)
		assert.Equal(t, []string{"alpha", "beta"}, parent.ChildNames())
		assert.Same(t, parent, loaded[0].(*testModule).Parent())
		assert.Same(t, parent, loaded[1].(*testModule).Parent())
	})

	t.Run("applies the same options to every child", func(t *testing.T) {
		parent := newParent(t)

		alpha := func(cfg module.Config) (*testModule, error) {
			cfg.Name = "alpha"
			return newTestModule(cfg)
		}
		beta := func(cfg module.Config) (*testModule, error) {
			cfg.Name = "beta"
			return newTestModule(cfg)
		}

		loaded, err := parent.LoadChildren(ctx, []any{alpha, beta}, module.WithAutoStart(false))
		require.NoError(t, err)
		for _, m := range loaded {
			assert.False(t, m.(*testModule).Started())
		}
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		parent := newParent(t)

		good := func(cfg module.Config) (*testModule, error) {
			cfg.Name = "good"
			return newTestModule(cfg)
		}

		loaded, err := parent.LoadChildren(ctx, []any{good, 42, good})
		require.Error(t, err)

		var argErr *module.InvalidArgumentError
		assert.ErrorAs(t, err, &argErr)
		require.Len(t, loaded, 1, "children loaded before the failure are returned")
		assert.Equal(t, "good", loaded[0].Name())
		assert.Len(t, parent.Children(), 1)
	})
}

func TestLoadChildLifecycleEvents(t *testing.T) {
	ctx := context.Background()

	pub := &capturePublisher{}
	parent := newParent(t, module.WithEvents(pub))

	_, err := parent.LoadChild(ctx, newTestModule, module.WithName("watched"))
	require.NoError(t, err)

	events := pub.events(t)
	require.Len(t, events, 2)

	assert.Equal(t, pubsub.EventLoaded, events[0].Event)
	assert.Equal(t, "watched", events[0].Module)
	assert.Equal(t, "parent", events[0].Parent)

	assert.Equal(t, pubsub.EventStarted, events[1].Event)
	assert.Equal(t, "watched", events[1].Module)
	assert.Equal(t, "parent", events[1].Parent)
}

func TestLoadChildTransitive(t *testing.T) {
	ctx := context.Background()
	parent := newParent(t)

	grandchild := func(cfg module.Config) (*testModule, error) {
		cfg.Name = "grandchild"
		return newTestModule(cfg)
	}

	child, err := parent.LoadChild(ctx, func(cfg module.Config) (*testModule, error) {
		cfg.Name = "child"
		m, err := newTestModule(cfg)
		if err != nil {
			return nil, err
		}
		m.onStart = func(ctx context.Context) error {
			_, err := m.LoadChild(ctx, grandchild)
			return err
		}
		return m, nil
	})
	require.NoError(t, err)

	tm := child.(*testModule)
	require.True(t, tm.Started())

	gc, ok := tm.Child("grandchild")
	require.True(t, ok, "loading children from Start must work")
	assert.Same(t, child, gc.(*testModule).Parent())
	assert.True(t, gc.(*testModule).Started())
}
