// Package modules contains all self-contained application features.
//
// Each subdirectory is a module built around a *module.Node. Modules are
// declared in the manifest (remora.yaml by default) and constructed through
// the factory catalog in internal/app, which the server consults when it
// loads the tree at startup.
package modules
