package cli

import (
	"context"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/munge/cli/cmd"
	"github.com/ardnew/munge/lang"
	"github.com/ardnew/munge/munge"
	"github.com/ardnew/munge/pkg"
)

// CLI is the top-level command-line interface for munge.
type CLI struct {
	cmd.Globals `embed:""`

	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Config   cmd.Config   `cmd:"" help:"Munge config sources into one .config file."`
	Path     cmd.Path     `cmd:"" help:"Munge path sources into one .path file."`
	Planning cmd.Planning `cmd:"" help:"Munge planning sources, one .congraph per source." aliases:"plan"`
	World    cmd.World    `cmd:"" help:"Munge world sources, one .world per source."`
	ODF      cmd.ODF      `cmd:"" help:"Munge object definitions, one .class per source." name:"odf"`

	Run   cmd.Run   `cmd:"" help:"Run the jobs of a manifest."`
	Watch cmd.Watch `cmd:"" help:"Rerun manifest jobs whenever their sources change."`

	Fmt  cmd.Fmt  `cmd:"" help:"Format a source document."`
	Dump cmd.Dump `cmd:"" help:"Print the chunk tree of a munged file."`
	Req  cmd.Req  `cmd:"" help:"Parse and print a .req dependency file."`
	Hash cmd.Hash `cmd:"" help:"Print the hash tags of names."`
	Repl cmd.Repl `cmd:"" help:"Compile statements interactively."`
	Init cmd.Init `cmd:"" help:"Initialize configuration file."`
}

// Run executes the munge CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	platforms := make([]string, 0, len(lang.Platforms()))
	for _, p := range lang.Platforms() {
		platforms = append(platforms, string(p))
	}

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"version":            pkg.Name + " " + pkg.Version,
		"platforms":          strings.Join(platforms, ", "),
		"kinds":              strings.Join(slices.Collect(lang.Kinds()), ", "),
		"debounce":           munge.DefaultDebounce.String(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags are applied before parsing so errors reported by Kong use
	// them regardless of flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			append([]kong.Group{cli.Log.group()}, cli.Pprof.groups()...),
		),
		kong.DefaultEnvars(strings.ToUpper(pkg.Prefix())),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolveYAML, configFilePath+".yaml", configFilePath+".yml"),
		kong.Configuration(resolve(ctx, cmd.ConfigScope), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	// TimeLayout, Caller, and values read from configuration files are only
	// known once parsing completes.
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(&cli.Globals)
}
