// Package stage runs the external reconnaissance tools.
//
// Each tool is an opaque executable with a fixed command-line contract.
// Runner is the process primitive: it launches one command, merges its
// stdout and stderr into a single line stream, and enforces an optional
// time budget. Discovery, Filtering and Scanning wrap a Runner with the
// argument vector and output handling of subfinder, httpx and nuclei.
//
// Tool failures are reported as model.StageResult values, never as Go
// errors; only environment problems such as missing executables are
// returned as errors (see CheckTools).
package stage
