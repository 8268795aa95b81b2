package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildRoot creates the root command and wires all subcommands.
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	cmd := command{flags: globalFlags}

	root := createRootCommand(globalFlags)
	root.AddCommand(
		createCreateCommand(cmd),
		createPsCommand(cmd),
		createStartCommand(cmd),
		createStopCommand(cmd),
		createRestartCommand(cmd),
		createRmCommand(cmd),
		createLogsCommand(cmd),
		createInspectCommand(cmd),
		createUpdateCommand(cmd),
		createBackupCommand(cmd),
		createEventsCommand(cmd),
	)
	return root
}

// createRootCommand creates the root command with minimal persistent flags.
func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "mcpctl",
		Short: "Docker-like management for MCP server processes",
		Long: `Mcpctl creates, starts, stops and inspects long-running MCP server
processes. There is no resident daemon: every command recovers the registry
from disk and reconciles it against live OS processes before acting.

Examples:
  mcpctl create web "python app.py" --auto-start
  mcpctl ps -a
  mcpctl logs web -f
  mcpctl stop web --timeout 30s`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.BaseDir, "base-dir", "", "state directory (default ~/.mcp)")
	root.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "diagnostics log level: debug, info, warn or error")
	return root
}

func createCreateCommand(c command) *cobra.Command {
	flags := &CreateFlags{}
	cmd := &cobra.Command{
		Use:   "create NAME COMMAND",
		Short: "Create a new server record",
		Long: `Create a new server record. The command string is launched through a
shell when it contains shell syntax.

Examples:
  mcpctl create web "python app.py"
  mcpctl create api "./server --port 8080" --health-check "curl -fs localhost:8080/health" --auto-start`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Create(args[0], args[1], *flags)
		},
	}
	cmd.Flags().StringVar(&flags.ConfigFile, "config", "", "auxiliary config file passed to the server")
	cmd.Flags().StringVar(&flags.HealthCheck, "health-check", "", "advisory health check command")
	cmd.Flags().StringArrayVar(&flags.Ports, "port", nil, "informational port mapping (repeatable)")
	cmd.Flags().BoolVar(&flags.AutoStart, "auto-start", false, "start the server right after creating it")
	return cmd
}

func createPsCommand(c command) *cobra.Command {
	flags := &PsFlags{}
	cmd := &cobra.Command{
		Use:     "ps",
		Aliases: []string{"list", "ls"},
		Short:   "List servers",
		Long: `List servers with their reconciled status. Stopped servers are hidden
unless --all is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Ps(*flags)
		},
	}
	cmd.Flags().BoolVarP(&flags.All, "all", "a", false, "include stopped servers")
	cmd.Flags().StringVar(&flags.Format, "format", "table", "output format: table, json or yaml")
	return cmd
}

func createStartCommand(c command) *cobra.Command {
	flags := &StartFlags{}
	cmd := &cobra.Command{
		Use:   "start NAME...",
		Short: "Start one or more servers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Start(args, *flags)
		},
	}
	cmd.Flags().BoolVar(&flags.Idempotent, "idempotent", false, "succeed quietly when already running")
	return cmd
}

func createStopCommand(c command) *cobra.Command {
	flags := &StopFlags{}
	cmd := &cobra.Command{
		Use:   "stop NAME...",
		Short: "Stop one or more servers",
		Long: `Stop a server: request graceful termination, wait up to the timeout,
then kill. The registry reflects the stopping state while the wait runs.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Stop(args, *flags)
		},
	}
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "graceful shutdown timeout (default from config)")
	return cmd
}

func createRestartCommand(c command) *cobra.Command {
	flags := &RestartFlags{}
	cmd := &cobra.Command{
		Use:   "restart NAME...",
		Short: "Restart one or more servers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Restart(args, *flags)
		},
	}
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "graceful shutdown timeout for the stop half")
	return cmd
}

func createRmCommand(c command) *cobra.Command {
	flags := &RmFlags{}
	cmd := &cobra.Command{
		Use:     "rm NAME...",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove one or more server records",
		Long: `Remove a server record and its log file. A running server is protected
unless --force is given, in which case it is stopped first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Rm(args, *flags)
		},
	}
	cmd.Flags().BoolVarP(&flags.Force, "force", "f", false, "remove even if running")
	cmd.Flags().BoolVar(&flags.KeepLogs, "keep-logs", false, "retain the server's log file")
	return cmd
}

func createLogsCommand(c command) *cobra.Command {
	flags := &LogsFlags{}
	cmd := &cobra.Command{
		Use:     "logs NAME",
		Aliases: []string{"log"},
		Short:   "Show server logs",
		Long: `Show a server's log tail, optionally following new output until
interrupted.

Examples:
  mcpctl logs web -n 100
  mcpctl logs web -f
  mcpctl logs web --grep error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Logs(args[0], *flags)
		},
	}
	cmd.Flags().IntVarP(&flags.Tail, "tail", "n", 0, "number of trailing lines (default from config)")
	cmd.Flags().BoolVarP(&flags.Follow, "follow", "f", false, "stream new lines until interrupted")
	cmd.Flags().BoolVar(&flags.Clear, "clear", false, "truncate the log file instead of reading it")
	cmd.Flags().StringVar(&flags.Grep, "grep", "", "only show lines containing this text (case-insensitive)")
	return cmd
}

func createInspectCommand(c command) *cobra.Command {
	flags := &InspectFlags{}
	cmd := &cobra.Command{
		Use:   "inspect NAME",
		Short: "Show detailed server information",
		Long: `Show the reconciled record, live process information and the advisory
health check result for one server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Inspect(args[0], *flags)
		},
	}
	cmd.Flags().StringVar(&flags.Format, "format", "text", "output format: text, json or yaml")
	cmd.Flags().BoolVar(&flags.SkipHealth, "no-health", false, "skip running the health check command")
	return cmd
}

func createUpdateCommand(c command) *cobra.Command {
	flags := &UpdateFlags{}
	cmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Update a server's configuration",
		Long: `Update the mutable fields of an existing record. Only flags that are
explicitly given change the record.`,
		Args: cobra.ExactArgs(1),
	}
	cmd.RunE = func(cc *cobra.Command, args []string) error {
		return c.Update(args[0], cc.Flags().Changed, *flags)
	}
	cmd.Flags().StringVar(&flags.Command, "command", "", "launch command")
	cmd.Flags().StringVar(&flags.ConfigFile, "config", "", "auxiliary config file")
	cmd.Flags().StringVar(&flags.HealthCheck, "health-check", "", "advisory health check command")
	cmd.Flags().StringArrayVar(&flags.Ports, "port", nil, "informational port mapping (repeatable)")
	return cmd
}

func createBackupCommand(c command) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Back up the registry document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Backup()
		},
	}
}

func createEventsCommand(c command) *cobra.Command {
	flags := &EventsFlags{}
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recorded lifecycle events",
		Long: `Show the lifecycle audit trail recorded by the history sink. Requires
history_dsn to be set in config.toml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Events(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.Name, "name", "", "filter by server name")
	cmd.Flags().IntVar(&flags.Limit, "limit", 100, "maximum events to list")
	return cmd
}
