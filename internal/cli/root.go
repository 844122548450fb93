package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

// app holds state shared by every command of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer

	cfgFile   string
	logLevel  string
	logFormat string

	logger   *slog.Logger
	settings settings
}

// NewRootCommand builds the anychargen command tree. Output goes to out; logs go to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "anychargen",
		Short: "Generate every fixed-length string over an alphabet",
		Long: `anychargen builds wordlists: every string of a given length whose characters
come from a given alphabet, repetition allowed.

The output grows as len(alphabet)^length. Use --max to refuse requests that
would produce more combinations than you are willing to store.

Commands:
  generate   Write the combinations to stdout or a file
  serve      Stream combinations to websocket clients`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.init()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "YAML config file")
	pf.StringVar(&a.logLevel, "log-level", "info", "Logging level: 'debug', 'info', 'warn', 'error'")
	pf.StringVar(&a.logFormat, "log-format", "text", "Log output format: 'text' or 'json'")

	root.AddCommand(newGenerateCommand(a), newServeCommand(a))
	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	root := NewRootCommand(out, errOut)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *app) init() error {
	logger, err := newLogger(a.errOut, a.logLevel, a.logFormat)
	if err != nil {
		return err
	}
	a.logger = logger

	a.settings = defaultSettings()
	if a.cfgFile != "" {
		fc, err := LoadFile(a.cfgFile)
		if err != nil {
			return &ExitError{Code: exitUsage, Message: err.Error()}
		}
		a.settings.apply(fc)
		logger.Debug("config file loaded", slog.String("path", a.cfgFile))
	}
	return nil
}

// engineFlags are the scheduler flags shared by generate and serve.
type engineFlags struct {
	batchSize  int
	yieldDelay time.Duration
	max        uint64
	maxLength  int
}

func (f *engineFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.batchSize, "batch-size", 0, "Combinations per batch (default 10000)")
	fs.DurationVar(&f.yieldDelay, "yield-delay", 0, "Pause after each batch (default 1ms)")
	fs.Uint64Var(&f.max, "max", 0, "Refuse requests producing more combinations than this (0 = unbounded)")
	fs.IntVar(&f.maxLength, "max-length", 0, "Refuse requests for longer combinations (default 256)")
}

// overlay copies explicitly set flags onto s.
func (f *engineFlags) overlay(cmd *cobra.Command, s *settings) {
	fs := cmd.Flags()
	if fs.Changed("batch-size") {
		s.batchSize = f.batchSize
	}
	if fs.Changed("yield-delay") {
		s.yieldDelay = f.yieldDelay
	}
	if fs.Changed("max") {
		s.maxCombinations = f.max
	}
	if fs.Changed("max-length") {
		s.maxLength = f.maxLength
	}
}
