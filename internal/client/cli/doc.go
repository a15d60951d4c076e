// Package cli provides the interactive StudentHub command-line client.
//
// It opens the local store chosen in the configuration, builds a
// workspace.Workspace over it and the HTTP client, and runs a REPL on top.
// A background watcher pings the services and flips the prompt between
// online and offline; every command keeps working offline against the
// cached data, and writes made offline stay local.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
