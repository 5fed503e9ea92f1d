package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/spf13/afero"
)

// Engine runs per-module startup hooks written in Tengo. A hook is a script
// named <module>.tengo in the hooks directory; modules without one are
// simply skipped. Hooks let operators run small bits of glue (seeding,
// announcements, sanity checks) when a module comes up, without recompiling.
type Engine struct {
	fs  afero.Fs
	dir string

	// Timeout bounds a single hook execution.
	Timeout time.Duration
}

// NewEngine creates a hook engine reading scripts from dir on fs.
func NewEngine(fs afero.Fs, dir string) *Engine {
	return &Engine{
		fs:      fs,
		dir:     dir,
		Timeout: 5 * time.Second,
	}
}

// RunStartupHook executes the hook for the named module, if one exists.
// It reports whether a hook ran. The script sees the module's name and any
// extra vars as globals, plus a log(msg) function wired to the application
// logger.
func (e *Engine) RunStartupHook(ctx context.Context, moduleName string, vars map[string]any) (bool, error) {
	path := filepath.Join(e.dir, moduleName+".tengo")

	exists, err := afero.Exists(e.fs, path)
	if err != nil {
		return false, fmt.Errorf("checking hook %s: %w", path, err)
	}
	if !exists {
		return false, nil
	}

	content, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return false, fmt.Errorf("reading hook %s: %w", path, err)
	}

	script := tengo.NewScript(content)
	script.SetImports(stdlib.GetModuleMap("fmt", "text", "math", "rand"))

	if err := script.Add("module_name", moduleName); err != nil {
		return false, fmt.Errorf("binding module_name: %w", err)
	}
	for key, value := range vars {
		if err := script.Add(key, value); err != nil {
			return false, fmt.Errorf("binding hook variable %s: %w", key, err)
		}
	}
	if err := e.addLogFunction(script, moduleName); err != nil {
		return false, err
	}

	compiled, err := script.Compile()
	if err != nil {
		return false, fmt.Errorf("compiling hook %s: %w", path, err)
	}

	execCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	// Run in a goroutine so a runaway script can't wedge startup, and so a
	// script panic becomes an error instead of taking the process down.
	resultChan := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultChan <- fmt.Errorf("hook panic: %v", r)
			}
		}()
		resultChan <- compiled.Run()
	}()

	select {
	case err := <-resultChan:
		if err != nil {
			return true, fmt.Errorf("running hook %s: %w", path, err)
		}
	case <-execCtx.Done():
		return true, fmt.Errorf("hook %s timed out: %w", path, execCtx.Err())
	}

	slog.Debug("Startup hook finished", "module", moduleName, "path", path)
	return true, nil
}

// addLogFunction exposes log(msg) to the script, wired to the structured
// logger.
func (e *Engine) addLogFunction(script *tengo.Script, moduleName string) error {
	logFunc := &tengo.UserFunction{
		Name: "log",
		Value: func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}

			slog.Info("Hook log", "module", moduleName, "message", args[0].String())
			return tengo.UndefinedValue, nil
		},
	}
	return script.Add("log", logFunc)
}
