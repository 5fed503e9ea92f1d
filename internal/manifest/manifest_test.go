package manifest_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/remora/internal/manifest"
)

func writeManifest(t *testing.T, content string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "remora.yaml", []byte(content), 0o644))
	return fs
}

func TestLoad(t *testing.T) {
	t.Run("parses a full manifest", func(t *testing.T) {
		fs := writeManifest(t, `
modules:
  - name: notes
    prefix: /notes
    hook: seed-notes
  - name: status
    prefix: /status
  - name: announcer
    autostart: false
`)

		m, err := manifest.Load(fs, "remora.yaml")
		require.NoError(t, err)
		require.Len(t, m.Modules, 3)

		notes := m.Modules[0]
		assert.Equal(t, "notes", notes.Name)
		assert.Equal(t, "/notes", notes.Prefix)
		assert.True(t, notes.AutoStart(), "autostart defaults to true")
		assert.Equal(t, "seed-notes", notes.HookName())

		status := m.Modules[1]
		assert.Equal(t, "status", status.HookName(), "hook name falls back to the module name")

		announcer := m.Modules[2]
		assert.False(t, announcer.AutoStart())
		assert.Empty(t, announcer.Prefix)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := manifest.Load(afero.NewMemMapFs(), "remora.yaml")
		assert.Error(t, err)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		fs := writeManifest(t, "modules: [unclosed")
		_, err := manifest.Load(fs, "remora.yaml")
		assert.Error(t, err)
	})

	t.Run("rejects an empty module list", func(t *testing.T) {
		fs := writeManifest(t, "modules: []")
		_, err := manifest.Load(fs, "remora.yaml")
		assert.Error(t, err)
	})

	t.Run("rejects a nameless module", func(t *testing.T) {
		fs := writeManifest(t, `
modules:
  - prefix: /ghost
`)
		_, err := manifest.Load(fs, "remora.yaml")
		assert.Error(t, err)
	})

	t.Run("rejects a prefix without a leading slash", func(t *testing.T) {
		fs := writeManifest(t, `
modules:
  - name: notes
    prefix: notes
`)
		_, err := manifest.Load(fs, "remora.yaml")
		assert.Error(t, err)
	})

	t.Run("rejects duplicate module names", func(t *testing.T) {
		fs := writeManifest(t, `
modules:
  - name: notes
  - name: notes
`)
		_, err := manifest.Load(fs, "remora.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "twice")
	})
}
