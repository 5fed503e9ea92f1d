package manifest

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Entry declares one module the application loads at boot.
type Entry struct {
	// Name selects a factory from the application's module table.
	Name string `yaml:"name" validate:"required"`

	// Prefix mounts the module under a path prefix of the root router.
	// Empty mounts it on the root router itself.
	Prefix string `yaml:"prefix,omitempty" validate:"omitempty,startswith=/"`

	// Autostart activates the module as soon as it is attached. Unset
	// means true; declaring a module you don't want running is the
	// exception, not the rule.
	Autostart *bool `yaml:"autostart,omitempty"`

	// Hook names a Tengo startup hook to run after activation, relative to
	// the hooks directory and without the extension. Empty falls back to a
	// script named after the module, when one exists.
	Hook string `yaml:"hook,omitempty"`
}

// AutoStart resolves the entry's autostart flag, defaulting to true.
func (e Entry) AutoStart() bool {
	return e.Autostart == nil || *e.Autostart
}

// HookName resolves the entry's startup hook script name.
func (e Entry) HookName() string {
	if e.Hook != "" {
		return e.Hook
	}
	return e.Name
}

// Manifest is the application's declared module tree.
type Manifest struct {
	Modules []Entry `yaml:"modules" validate:"required,min=1,dive"`
}

// Load reads and validates a manifest from path on fs. Duplicate module
// names are rejected here: the loader would silently replace the first
// instance, which in a manifest is always a mistake.
func Load(fs afero.Fs, path string) (*Manifest, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	if err := validator.New().Struct(&m); err != nil {
		return nil, fmt.Errorf("validating manifest %s: %w", path, err)
	}

	seen := make(map[string]bool, len(m.Modules))
	for _, entry := range m.Modules {
		if seen[entry.Name] {
			return nil, fmt.Errorf("manifest %s declares module %q twice", path, entry.Name)
		}
		seen[entry.Name] = true
	}

	return &m, nil
}
