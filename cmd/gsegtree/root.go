package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gordian-engine/gsegtree/sinput"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "gsegtree",
		Short: "Range min, max and sum queries over an integer array",

		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	root.AddCommand(
		newEvalCmd(),
		newServeCmd(&logLevel),
		newRemoteCmd(),
	)
	return root
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}

// inputFlags are the shared ways of supplying an input array.
type inputFlags struct {
	values  string
	csvPath string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.values, "values", "", "comma-separated input array, e.g. 2,5,1,4")
	cmd.Flags().StringVar(&f.csvPath, "csv", "", "CSV file with an "+sinput.ArrayColumn+" column")
	cmd.MarkFlagsMutuallyExclusive("values", "csv")
	cmd.MarkFlagsOneRequired("values", "csv")
}

func (f *inputFlags) load() ([]int64, error) {
	if f.csvPath == "" {
		return sinput.ParseList(f.values)
	}

	file, err := os.Open(f.csvPath)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	vals, err := sinput.ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.csvPath, err)
	}
	return vals, nil
}
