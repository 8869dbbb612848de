// Package workspace owns the on-disk layout of a reconchain run.
//
// Initialize normalizes the target, derives
//
//	{base}/{target}/{YYYYMMDD_HHMMSS}/
//
// creates it, and returns the artifact paths every stage reads and writes.
// The package also provides the small line-oriented helpers the stages use
// to count and rewrite those artifacts. Nothing here deletes a run directory.
package workspace
