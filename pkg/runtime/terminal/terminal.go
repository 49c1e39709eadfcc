package terminal

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/service-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/service-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/service-atlas/pkg/services/backends"
	"github.com/de-tools/service-atlas/pkg/services/notify"
)

// CLI represents the command-line interface
type CLI struct {
	registry   backends.Registry
	reporter   *export.Reporter
	plain      *Reporter
	logger     zerolog.Logger
	errOutput  io.Writer
	configPath string
	rootCmd    *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry backends.Registry
	Output   io.Writer
	// ErrOutput receives notices and logs.
	ErrOutput io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	if opts.Registry == nil {
		opts.Registry = backends.Default()
	}

	cli := &CLI{
		registry:  opts.Registry,
		reporter:  export.NewReporter(opts.Output),
		plain:     NewReporter(opts.Output),
		errOutput: opts.ErrOutput,
		logger: zerolog.New(zerolog.ConsoleWriter{Out: opts.ErrOutput, NoColor: true}).
			With().Timestamp().Logger(),
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	cli.rootCmd.SetErr(opts.ErrOutput)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

// ExecuteContext runs the command line with the CLI logger and a notifier
// printing notices to the error output.
func (cli *CLI) ExecuteContext(ctx context.Context) error {
	ctx = cli.logger.WithContext(ctx)
	ctx = notify.WithNotifier(ctx, notify.WriterNotifier{W: cli.errOutput})
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, mostly for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "atlas",
		Short:         "Field service data over interchangeable SQL backends",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&cli.configPath, "config", "c", "",
		"Path to the config or secrets file (environment only when empty)")

	env := commands.Env{ConfigPath: &cli.configPath, Registry: cli.registry}
	cmd.AddCommand(commands.NewQueryCmd(env, cli.reporter))
	cmd.AddCommand(commands.NewReportCmd(env, cli.reporter, cli.plain))
	cmd.AddCommand(commands.NewBoundsCmd(env))
	cmd.AddCommand(commands.NewColumnsCmd(env))
	cmd.AddCommand(commands.NewImportCmd(env))

	return cmd
}
