package app

import (
	"github.com/nfrund/remora/internal/module"
	"github.com/nfrund/remora/internal/modules/announcer"
	"github.com/nfrund/remora/internal/modules/notes"
	"github.com/nfrund/remora/internal/modules/status"
)

// Factory builds one module from the record its parent hands down.
type Factory func(cfg module.Config) (module.Module, error)

// Factories returns the built-in module catalog, keyed by the names used in
// the application manifest. This is the single source of truth for which
// modules the binary can load.
func Factories(deps Dependencies) map[string]Factory {
	return map[string]Factory{
		// Add new application modules here.
		"notes": func(cfg module.Config) (module.Module, error) {
			return notes.New(cfg, notes.Dependencies{
				Renderer: deps.Renderer,
			})
		},
		"status": func(cfg module.Config) (module.Module, error) {
			return status.New(cfg, status.Dependencies{
				Hub:      deps.Hub,
				Registry: deps.Registry,
				Renderer: deps.Renderer,
			})
		},
		"announcer": func(cfg module.Config) (module.Module, error) {
			return announcer.New(cfg, announcer.Dependencies{
				Subscriber: deps.Subscriber,
				Registry:   deps.Registry,
				Hub:        deps.Hub,
			})
		},
	}
}
