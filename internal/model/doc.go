// Package model defines the core data structures shared by reconchain packages.
//
// This package contains the following main types:
//   - Target: a normalized reconnaissance target (scheme and trailing slash removed)
//   - RunPaths: the per-run output directory and its artifact files
//   - StageResult: the outcome of one external tool invocation
//   - Finding: one decoded vulnerability record from the scanner stream
//   - Aggregate: per-severity finding counters built while the scanner runs
//   - Run: the state threaded through the pipeline for one target
//
// Models live in their own package so that the stage, classifier, pipeline
// and report packages can share them without import cycles.
package model
