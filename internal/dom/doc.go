// Package dom wraps a parsed HTML tree as a live host document.
//
// Every structural change goes through the Document so that registered
// observers receive one MutationRecord per change, delivered after the
// change is fully applied. Queries use compiled XPath expressions.
//
// A Document is not safe for concurrent use. Callers confine it to a
// single goroutine (the event loop).
package dom
