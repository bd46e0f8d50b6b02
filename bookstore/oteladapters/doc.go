// Package oteladapters provides OpenTelemetry implementations of the bookstore observability interfaces.
//
// The same collectors serve the book store and the HTTP layer, both accept the interfaces
// declared in package bookstore.
package oteladapters
