package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/marcusdavidalo/anychargen"
	"github.com/marcusdavidalo/anychargen/generator"
	"github.com/marcusdavidalo/anychargen/internal/export"
)

func newGenerateCommand(a *app) *cobra.Command {
	var (
		alphabet string
		length   string
		output   string
		sorted   bool
		ef       engineFlags
	)

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Write every combination to stdout or a file",
		Example: `  anychargen generate --alphabet abc --length 3
  anychargen generate -a 0123456789 -l 4 -o pins.txt
  anychargen generate -a ba -l 2 --sort`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.settings
			ef.overlay(cmd, &s)
			if cmd.Flags().Changed("output") {
				s.output = output
			}
			if cmd.Flags().Changed("sort") {
				s.sort = sorted
			}

			n, err := anychargen.ParseLength(length)
			if err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}
			return a.generate(cmd.Context(), s, alphabet, n)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&alphabet, "alphabet", "a", "", "Characters to build combinations from")
	fs.StringVarP(&length, "length", "l", "", "Length of every combination (positive integer)")
	fs.StringVarP(&output, "output", "o", "-", "Output file or directory ('-' for stdout)")
	fs.BoolVar(&sorted, "sort", false, "Sort combinations before writing (holds all output in memory)")
	ef.register(cmd)
	_ = cmd.MarkFlagRequired("alphabet")
	_ = cmd.MarkFlagRequired("length")

	return cmd
}

func (a *app) generate(ctx context.Context, s settings, alphabet string, length int) (err error) {
	if dups := generator.Duplicates([]rune(alphabet)); len(dups) > 0 {
		a.logger.Warn("repeating characters detected", slog.String("characters", string(dups)))
	}

	sched, err := anychargen.New(ctx, append(s.schedulerOptions(), anychargen.WithLogger(a.logger))...)
	if err != nil {
		return &ExitError{Code: exitUsage, Message: err.Error()}
	}
	defer sched.Close()

	id, err := sched.Start(alphabet, length)
	if err != nil {
		return &ExitError{Code: exitUsage, Message: err.Error()}
	}

	w, closeOutput, err := a.openOutput(s.output)
	if err != nil {
		return &ExitError{Code: exitFailure, Message: err.Error()}
	}
	defer func() {
		if cerr := closeOutput(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	xw := export.NewWriter(w, s.sort)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-sched.Events():
			if ev.JobID != id {
				continue
			}
			if err := xw.WriteBatch(ev.Batch); err != nil {
				return err
			}
			if ev.Kind != anychargen.EventComplete {
				continue
			}
			if err := xw.Flush(); err != nil {
				return err
			}
			a.logger.Info("combinations written",
				slog.Uint64("count", xw.Written()),
				slog.String("output", s.output),
			)
			return nil
		}
	}
}

// openOutput resolves '-' to stdout and a directory to DefaultFileName inside it.
func (a *app) openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return a.out, func() error { return nil }, nil
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, export.DefaultFileName)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
