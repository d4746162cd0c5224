package main

import (
	"fmt"
	"io"
	"os"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lambert",
	Short: "lambert solves Lambert's problem with Gooding's method",
	Long: `lambert computes the transfer orbit between two positions in a given time of flight,
for single transfers (solve) or over departure and arrival windows (porkchop).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every failed cell and debug information")
}

// newLogger returns the logfmt logger of the commands, filtered at info unless verbose.
func newLogger(w io.Writer, verbose bool) kitlog.Logger {
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
	if verbose {
		return level.NewFilter(logger, level.AllowDebug())
	}
	return level.NewFilter(logger, level.AllowInfo())
}
