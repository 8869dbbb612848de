// Package config holds the settings of a reconchain run and loads the
// optional YAML configuration file that supplies tool paths, extra tool
// arguments and per-target overrides.
package config
