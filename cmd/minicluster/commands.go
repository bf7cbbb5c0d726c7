package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fiam/minicluster/pkg/minicluster"
	"github.com/fiam/minicluster/pkg/minicluster/topology"
)

var (
	green  = color.New(color.FgGreen).SprintfFunc()
	blue   = color.New(color.FgBlue).SprintfFunc()
	red    = color.New(color.FgRed).SprintfFunc()
	yellow = color.New(color.FgYellow).SprintfFunc()
)

func newCluster(flags *rootFlags, opts ...minicluster.Option) (*minicluster.Cluster, error) {
	opts = append([]minicluster.Option{
		minicluster.WithHost(flags.host),
		minicluster.WithLogger(slog.Default()),
	}, opts...)
	return minicluster.New(opts...)
}

func newFreePortCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "free-port",
		Short: "Print a TCP port that was free on the host at the time of the call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := minicluster.FreePort()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), port)
			return nil
		},
	}
}

func newIPCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ip <container>",
		Short: "Print a container's local network address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cluster, err := newCluster(flags)
			if err != nil {
				return err
			}
			ip, err := cluster.ContainerIP(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if ip == "" {
				return fmt.Errorf("container %s has no local address", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), ip)
			return nil
		},
	}
}

func newZKReadyCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "zk-ready <port>",
		Short: "Probe a ZooKeeper client port with the ruok liveness command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid port %q: %w", args[0], err)
			}
			if !minicluster.ZooKeeperReady(flags.host, port) {
				return fmt.Errorf("zookeeper on port %d is not ready", port)
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("zookeeper on port %d is ready", port))
			return nil
		},
	}
}

func newRemoveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <container>...",
		Short: "Force-remove containers by name; absent containers are fine",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cluster, err := newCluster(flags)
			if err != nil {
				return err
			}
			for _, name := range args {
				if err := cluster.RemoveContainer(cmd.Context(), name); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), blue("removed container %s", name))
			}
			return nil
		},
	}
}

func newStopCmd(flags *rootFlags) *cobra.Command {
	var stopTimeout time.Duration
	cmd := &cobra.Command{
		Use:   "stop <container>...",
		Short: "Stop containers by name with a grace period; absent containers are fine",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cluster, err := newCluster(flags, minicluster.WithStopTimeout(stopTimeout))
			if err != nil {
				return err
			}
			for _, name := range args {
				if err := cluster.StopContainer(cmd.Context(), name); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), blue("stopped container %s", name))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&stopTimeout, "timeout", 5*time.Second, "Grace period before the daemon kills the container")
	return cmd
}

func newWaitCmd(flags *rootFlags) *cobra.Command {
	var (
		path     string
		attempts int
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "wait <app> <port>",
		Short: "Poll an app's HTTP health endpoint until it answers 200",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid port %q: %w", args[1], err)
			}
			cluster, err := newCluster(flags,
				minicluster.WithHealthPath(path),
				minicluster.WithMaxAttempts(attempts),
				minicluster.WithRetryInterval(interval),
			)
			if err != nil {
				return err
			}
			if err := cluster.WaitForApp(cmd.Context(), args[0], port); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("started %s", args[0]))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "/health", "Health check path")
	cmd.Flags().IntVar(&attempts, "attempts", 100, "Maximum polling attempts")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Pause between attempts")
	return cmd
}

func newStatusCmd(flags *rootFlags) *cobra.Command {
	var topologyFile string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Probe every service in a topology file once and report readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			topo, err := topology.Load(topologyFile)
			if err != nil {
				return err
			}
			// Single-shot probes: status never waits for anything.
			cluster, err := newCluster(flags,
				minicluster.WithMaxAttempts(1),
				minicluster.WithRetryInterval(0),
			)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			down := 0
			for _, zk := range topo.ZooKeepers {
				if cluster.ZooKeeperReady(zk.ClientPort) {
					fmt.Fprintln(out, green("zookeeper %s ready on port %d", zk.Container, zk.ClientPort))
				} else {
					fmt.Fprintln(out, red("zookeeper %s not ready on port %d", zk.Container, zk.ClientPort))
					down++
				}
			}
			for _, app := range topo.Apps {
				path := app.HealthPath
				if path == "" {
					path = "/health"
				}
				if err := cluster.WaitForAppPath(cmd.Context(), app.Name, app.Port, path); err != nil {
					fmt.Fprintln(out, red("app %s not ready on port %d: %v", app.Name, app.Port, err))
					down++
				} else {
					fmt.Fprintln(out, green("app %s ready on port %d", app.Name, app.Port))
				}
			}
			total := len(topo.ZooKeepers) + len(topo.Apps)
			if down > 0 {
				return fmt.Errorf("%d of %d services are not ready", down, total)
			}
			fmt.Fprintln(out, green("all %d services ready", total))
			return nil
		},
	}
	cmd.Flags().StringVarP(&topologyFile, "topology", "f", "minicluster.yaml", "Topology file")
	return cmd
}

func newTeardownCmd(flags *rootFlags) *cobra.Command {
	var (
		topologyFile string
		stopOnly     bool
		stopTimeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Stop or force-remove every container in a topology file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			topo, err := topology.Load(topologyFile)
			if err != nil {
				return err
			}
			cluster, err := newCluster(flags, minicluster.WithStopTimeout(stopTimeout))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			containers := topo.Containers()
			for _, name := range containers {
				if stopOnly {
					err = cluster.StopContainer(cmd.Context(), name)
				} else {
					err = cluster.RemoveContainer(cmd.Context(), name)
				}
				if err != nil {
					fmt.Fprintln(out, yellow("teardown of %s failed", name))
					return err
				}
			}
			fmt.Fprintln(out, green("tore down %d containers", len(containers)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&topologyFile, "topology", "f", "minicluster.yaml", "Topology file")
	cmd.Flags().BoolVar(&stopOnly, "stop", false, "Stop containers instead of removing them")
	cmd.Flags().DurationVar(&stopTimeout, "stop-timeout", 5*time.Second, "Grace period when stopping")
	return cmd
}
