package module

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRouter is returned by New when the config carries no router.
	ErrNoRouter = errors.New("module: config requires a router")

	// ErrUnnamed is returned by New when no name was configured and none
	// could be derived from the owner.
	ErrUnnamed = errors.New("module: name missing and not derivable from owner")

	// ErrAlreadyStarted is returned by Activate when the module's Start has
	// already run.
	ErrAlreadyStarted = errors.New("module: already started")
)

// InvalidArgumentError reports a LoadChild argument that is neither a module
// nor a module factory. TypeName carries the argument's runtime type so the
// caller can see exactly what was passed.
type InvalidArgumentError struct {
	TypeName string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("module: cannot load child of type %s: want a module instance or a factory func(Config) (Module, error)", e.TypeName)
}

// InvalidModuleError reports a factory result that fails the module
// capability test.
type InvalidModuleError struct {
	TypeName string
}

func (e *InvalidModuleError) Error() string {
	return fmt.Sprintf("module: factory returned %s, which is not a module", e.TypeName)
}
