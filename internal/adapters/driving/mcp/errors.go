// Package mcp provides an MCP (Model Context Protocol) server adapter
// for docqa. It lets AI assistants ask questions over the indexed
// document and inspect the index.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")
