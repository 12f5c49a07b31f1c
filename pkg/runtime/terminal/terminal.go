package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/revenuecast/pkg/runtime/terminal/commands"
	"github.com/de-tools/revenuecast/pkg/runtime/terminal/export"
	"github.com/de-tools/revenuecast/pkg/services/prediction"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	reporter *export.Reporter
	options  Options
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	NoiseAmplitude float64
	Output         io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.NoiseAmplitude == 0 {
		opts.NoiseAmplitude = prediction.DefaultNoiseAmplitude
	}

	cli := &CLI{
		reporter: export.NewReporter(opts.Output),
		options:  opts,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, mainly for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "revenuecast",
		Short:         "Revenue prediction tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(cli.options.Output)

	cmd.AddCommand(commands.NewPredictCmd(cli.options.NoiseAmplitude, cli.reporter))
	cmd.AddCommand(commands.NewModelInfoCmd(cli.reporter))
	cmd.AddCommand(commands.NewHistoryCmd())

	return cmd
}
