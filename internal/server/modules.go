package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/nfrund/remora/internal/app"
	"github.com/nfrund/remora/internal/hooks"
	"github.com/nfrund/remora/internal/manifest"
	"github.com/nfrund/remora/internal/module"
)

// Bootstrap brings the module tree up. It reads the module manifest, loads
// every declared module under the root node in manifest order, and runs each
// module's startup hook. Background services (the hub, pub/sub
// subscriptions, the manifest watcher) are bound to ctx and stopped again
// during Start's shutdown sequence.
func (s *Server) Bootstrap(ctx context.Context) error {
	bgCtx, cancel := context.WithCancel(ctx)
	s.cancelBackground = cancel

	go s.Hub.Run(bgCtx)

	if err := module.Activate(bgCtx, s.Root); err != nil {
		return fmt.Errorf("activating root module: %w", err)
	}

	man, err := manifest.Load(s.fs, s.Cfg.GetManifestPath())
	if err != nil {
		return err
	}

	factories := app.Factories(app.Dependencies{
		Config:     s.Cfg,
		Registry:   s.Registry,
		DB:         s.DB,
		Publisher:  s.Publisher,
		Subscriber: s.Subscriber,
		Renderer:   s.Renderer,
		Hub:        s.Hub,
	})

	engine := hooks.NewEngine(s.fs, s.Cfg.GetHooksDir())

	for _, entry := range man.Modules {
		factory, ok := factories[entry.Name]
		if !ok {
			return fmt.Errorf("manifest declares unknown module %q", entry.Name)
		}

		opts := []module.Option{
			module.WithName(entry.Name),
			module.WithAutoStart(entry.AutoStart()),
		}
		if entry.Prefix != "" {
			opts = append(opts, module.WithRouterPrefix(entry.Prefix))
		}

		if _, err := s.Root.LoadChild(bgCtx, factory, opts...); err != nil {
			return fmt.Errorf("loading module %q: %w", entry.Name, err)
		}

		s.runStartupHook(bgCtx, engine, entry)
	}

	// The watcher needs a real filesystem; under an in-memory one (tests)
	// there is nothing to watch.
	if _, ok := s.fs.(*afero.OsFs); ok {
		if err := manifest.Watch(bgCtx, s.Cfg.GetManifestPath()); err != nil {
			slog.Warn("Manifest watcher unavailable", "error", err)
		}
	}

	slog.Info("Module tree ready", "modules", len(man.Modules))
	return nil
}

// runStartupHook executes the entry's hook, if one exists. A failing hook is
// an operator problem, not a reason to abort boot, so failures are logged
// and swallowed.
func (s *Server) runStartupHook(ctx context.Context, engine *hooks.Engine, entry manifest.Entry) {
	vars := map[string]any{
		"route_prefix": entry.Prefix,
		"autostart":    entry.AutoStart(),
	}

	ran, err := engine.RunStartupHook(ctx, entry.HookName(), vars)
	if err != nil {
		slog.Error("Startup hook failed", "module", entry.Name, "hook", entry.HookName(), "error", err)
		return
	}
	if ran {
		slog.Info("Startup hook finished", "module", entry.Name, "hook", entry.HookName())
	}
}
