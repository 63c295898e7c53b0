// Package domain contains the core types for the document Q&A pipeline.
//
// Domain types carry no behaviour beyond simple accessors and validation.
// They are shared by core services and all adapters, and must not import
// any other internal package.
package domain
