// Package driving defines the interfaces that front ends call IN to core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// The CLI, HTTP, MCP and TUI adapters all speak these interfaces and
// nothing else.
package driving
