package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/agentic-research/margoviz/api"
	"github.com/agentic-research/margoviz/internal/ingest"
	"github.com/agentic-research/margoviz/internal/render"
	"github.com/agentic-research/margoviz/internal/resolve"
)

// ErrUsage marks bad command lines and bad configuration values.
var ErrUsage = errors.New("usage error")

// app carries per-invocation state shared by the root command and its
// subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     Config
	logger  *zap.Logger
}

// NewRootCmd builds the margoviz command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "margoviz [config.json | -]",
		Short: "Render a margo configuration as a Graphviz digraph",
		Long: `margoviz reads a margo/bedrock configuration (JSON or YAML, "-" for stdin)
and prints a Graphviz digraph of its Argobots pools, the execution streams
pulling from each pool and the providers bound to them.`,
		Args:              inputArg,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { _ = a.logger.Sync() },
		RunE:              a.runGraph,
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	})

	pflags := rootCmd.PersistentFlags()
	pflags.StringVarP(&a.cfgFile, "config", "c", "", "config file (YAML)")
	pflags.StringP("format", "f", string(ingest.FormatAuto), "input format: auto, json or yaml")
	pflags.BoolP("verbose", "v", false, "log skipped bindings and sections to stderr")
	_ = a.v.BindPFlag("input.format", pflags.Lookup("format"))
	_ = a.v.BindPFlag("log.verbose", pflags.Lookup("verbose"))

	flags := rootCmd.Flags()
	flags.Int("max-members", render.DefaultMaxMembers, "largest pool drawn without an ellipsis")
	flags.Int("head-members", render.DefaultHeadMembers, "members drawn before the ellipsis of a truncated pool")
	flags.String("cluster-label", render.DefaultClusterLabel, "label of the outer cluster")
	_ = a.v.BindPFlag("render.max_members", flags.Lookup("max-members"))
	_ = a.v.BindPFlag("render.head_members", flags.Lookup("head-members"))
	_ = a.v.BindPFlag("render.cluster_label", flags.Lookup("cluster-label"))

	rootCmd.AddCommand(newPoolsCmd(a))
	return rootCmd
}

// inputArg requires exactly one input path.
func inputArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cfg.Log.Verbose, cmd.ErrOrStderr())
	return nil
}

func (a *app) load(cmd *cobra.Command, path string) (*ingest.Document, error) {
	format, err := ingest.ParseFormat(a.cfg.Input.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	a.logger.Debug("loading configuration", zap.String("path", path), zap.String("format", string(format)))
	return ingest.Load(path, format, cmd.InOrStdin())
}

func (a *app) resolve(cmd *cobra.Command, path string) (*ingest.Document, *api.PoolTable, error) {
	doc, err := a.load(cmd, path)
	if err != nil {
		return nil, nil, err
	}
	return doc, resolve.New(resolve.WithLogger(a.logger)).Resolve(doc), nil
}

func (a *app) runGraph(cmd *cobra.Command, args []string) error {
	doc, table, err := a.resolve(cmd, args[0])
	if err != nil {
		return err
	}
	r := render.New(
		render.WithOptions(a.cfg.Render.Options()),
		render.WithLogger(a.logger),
	)
	out := r.Render(doc, table)
	if _, err := cmd.OutOrStdout().Write(out); err != nil {
		return fmt.Errorf("writing graph: %w", err)
	}
	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	rootCmd := NewRootCmd()
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, ErrUsage) {
			fmt.Fprint(os.Stderr, cmd.UsageString())
		}
		os.Exit(1)
	}
}
