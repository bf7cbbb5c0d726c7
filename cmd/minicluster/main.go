package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/fiam/minicluster/pkg/minicluster/buildinfo"
)

type rootFlags struct {
	logLevel string
	host     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "minicluster",
		Short:         "Bootstrap helpers for local multi-container test clusters",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := flags.logLevel
			if level == "" {
				level = os.Getenv("LOG_LEVEL")
			}
			logLevel := slog.LevelInfo
			if level != "" {
				var err error
				logLevel, err = parseLogLevel(level)
				if err != nil {
					return err
				}
			}
			logger := slog.New(
				tint.NewHandler(os.Stderr, &tint.Options{
					Level:      logLevel,
					TimeFormat: time.Kitchen,
				}),
			)
			// Every invocation gets a run ID so interleaved bootstrap logs
			// can be pulled apart.
			slog.SetDefault(logger.With(slog.String("run_id", uuid.New().String())))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL or info")
	cmd.PersistentFlags().StringVar(&flags.host, "host", "localhost", "Host where container ports are published")

	cmd.AddCommand(
		newVersionCmd(),
		newFreePortCmd(),
		newIPCmd(flags),
		newZKReadyCmd(flags),
		newRemoveCmd(flags),
		newStopCmd(flags),
		newWaitCmd(flags),
		newStatusCmd(flags),
		newTeardownCmd(flags),
	)
	return cmd
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", level)
}

func formatVersionLine(name string, info buildinfo.Info) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s version=%s", name, info.Version)
	if info.Commit != "" {
		fmt.Fprintf(&sb, " commit=%s", info.Commit)
	}
	fmt.Fprintf(&sb, " dirty=%t", info.Dirty)
	if info.CommitTime != "" {
		fmt.Fprintf(&sb, " commit_time=%s", info.CommitTime)
	}
	if info.GoVersion != "" {
		fmt.Fprintf(&sb, " go=%s", info.GoVersion)
	}
	return sb.String()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), formatVersionLine("minicluster", buildinfo.Current()))
			return nil
		},
	}
}
