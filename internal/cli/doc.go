// Package cli holds the plumbing shared by the machi commands: context
// input, store selection, debug hooks and the HTTP server lifecycle.
package cli
