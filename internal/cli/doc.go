// Package cli implements the anychargen command line: flag parsing, the
// optional YAML config file, logger construction and the generate and serve
// commands.
package cli
