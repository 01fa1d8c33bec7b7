// Package cli constructs the orgdump command-line interface, wiring the Cobra
// root command, the configuration loader with its embedded defaults, and the
// structured and console loggers.
package cli
