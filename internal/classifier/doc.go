// Package classifier turns the vulnerability scanner's output stream into
// findings and per-severity counts while the scanner is still running.
//
// The scanner interleaves one JSON record per finding with progress and
// statistics text. Classify decodes a single line tolerantly: a JSON object
// becomes a Finding with defaults for missing fields, anything else is
// reported as not a finding and never as an error. Stream applies Classify
// to each line as it arrives and folds the findings into a model.Aggregate,
// which it returns; there is no package-level state.
package classifier
