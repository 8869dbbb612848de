// Package report renders the end-of-run summary.
//
// SimpleWriter produces the fixed plain-text template stored as summary.txt.
// MarkdownWriter and JSONWriter produce the optional summary.md and
// summary.json companions. All writers take a model.Summary snapshot and
// make no decisions of their own.
package report
