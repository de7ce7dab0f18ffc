// Package source loads documents to annotate.
//
// Inputs may be local HTML files, Markdown files (rendered to HTML with
// goldmark), http(s) URLs, or doublestar glob patterns that expand to
// local files.
package source
