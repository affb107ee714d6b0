package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idelchi/rglob/internal/dirstat"
	"github.com/idelchi/rglob/internal/integration"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// allowedOutputs lists the supported output formats.
//
//nolint:gochecknoglobals // Config constant
var allowedOutputs = []string{"json", "yaml", "table"}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.NewRootCommand().Execute()
}

// NewRootCommand creates the root command with all subcommands attached.
func (c CLI) NewRootCommand() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "rglob",
		Short: "Recursive file system statistics",
		Long: heredoc.Doc(`
			rglob inspects directory trees from the command line.

			Use 'rglob stats' to compute per-directory file size distributions.
		`),
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $XDG_CONFIG_HOME/rglob/*.yaml or $HOME/.rglob.yaml)")
	root.PersistentFlags().Bool("debug", false, "Enable debug output")

	root.AddCommand(newStatsCommand(&cfgFile))
	root.AddCommand(newInitCommand())

	return root
}

// newStatsCommand creates the stats subcommand. cfgFile points at the root's
// --config value, which is only known once flags are parsed.
func newStatsCommand(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [TARGET]",
		Short: "Compute summary statistics for all files in a directory recursively",
		Long: heredoc.Doc(`
			Computes summary statistics for all files in a directory recursively.

			Every directory that has subdirectories, down to --depth levels below
			TARGET, gets an entry keyed by its name. The entry lists one summary per
			immediate subdirectory containing at least one regular file at any depth:
			counts, total size, extreme sizes and their extensions, mean, median,
			deciles, variance, Cohen's d, skewness, kurtosis and IQR.

			TARGET itself is not summarized, and directories without subdirectories
			appear only inside their parent's list.

			Positional Arguments:
			  TARGET                 Directory to analyze. Defaults to the current directory.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			options, output, err := buildOptions(cfg, args)
			if err != nil {
				return err
			}

			log, err := newLogger(cmd.ErrOrStderr(), cfg.GetString(keyLogLevel), cfg.GetBool(keyDebug))
			if err != nil {
				return err
			}

			options.Logger = log

			return logic(cmd.Context(), cmd.OutOrStdout(), options, output, cfg.GetBool(keyDebug))
		},
	}

	addStatsFlags(cmd.Flags())

	return cmd
}

// newInitCommand creates the init subcommand printing the shell integration.
func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Output init script for shell usage",
		Long: heredoc.Doc(`
			Outputs a zsh snippet defining 'rglob-browse', which pipes the output of
			'rglob stats' to fzf (requires fzf and jq):

				eval "$(rglob init)"
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rendered, err := integration.Render()
			if err != nil {
				return fmt.Errorf("rendering integration script: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)

			return err
		},
	}
}

// addStatsFlags registers the stats flags. Defaults mirror the config defaults.
func addStatsFlags(flags *pflag.FlagSet) {
	flags.StringP(keyFilter, "f", "", "Filter files by substring (accepted, not applied to statistics)")
	flags.IntP(keyDepth, "d", dirstat.DefaultDepth, "Maximum recursion depth")
	flags.StringP(keyOutput, "o", "json", fmt.Sprintf("Output format: one of %v", allowedOutputs))
	flags.String(keyKeys, string(dirstat.KeyByName), "Tree keys: 'name' (final path component) or 'path' (relative path)")
	flags.String(keyOnError, string(dirstat.Abort), "On unreadable subtrees: 'abort' the run or 'skip' them")

	flags.SortFlags = false
}

// buildOptions validates the merged configuration and turns it into run options.
func buildOptions(cfg configGetter, args []string) (dirstat.Options, string, error) {
	var options dirstat.Options

	output := cfg.GetString(keyOutput)
	if !slices.Contains(allowedOutputs, output) {
		return options, "", fmt.Errorf("invalid output format %q: must be one of %v", output, allowedOutputs)
	}

	options.Depth = cfg.GetInt(keyDepth)
	if options.Depth < 0 {
		return options, "", errors.New("depth cannot be negative")
	}

	keys, err := dirstat.ParseKeyMode(cfg.GetString(keyKeys))
	if err != nil {
		return options, "", err
	}

	policy, err := dirstat.ParseErrorPolicy(cfg.GetString(keyOnError))
	if err != nil {
		return options, "", err
	}

	options.Keys = keys
	options.OnError = policy
	options.Filter = cfg.GetString(keyFilter)
	options.ProgressInterval = cfg.GetDuration(keyProgressInterval)

	if len(args) == 0 {
		options.Path = "."
	} else {
		options.Path = args[0]
	}

	return options, output, nil
}
