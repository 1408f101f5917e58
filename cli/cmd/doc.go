// Package cmd implements the munge subcommands.
//
// Each command is a kong command struct whose Run method receives the
// request [context.Context] and the shared [Globals]. Commands write their
// results to the writer stored in the context by [WithOutput], which defaults
// to standard output.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file written by [Init].
	ConfigIdentifier = "config"
)
