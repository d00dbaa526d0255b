// NeuralDesk: personal productivity dashboard over MCP.
//
// Usage:
//
//	neuraldesk serve              # Start MCP server (stdio transport)
//	neuraldesk snapshot           # Print the workload snapshot
//	neuraldesk ask "question"     # Ask the local assistant
//	neuraldesk chat "prompt"      # Stream a reply from the chat gateway
//	neuraldesk calendar sync      # Import calendar events
//	neuraldesk memory reset       # Forget conversation memory
//	neuraldesk config             # Print the effective configuration
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/neuraldesk/internal/config"
	"github.com/HendryAvila/neuraldesk/internal/logging"
	ndserver "github.com/HendryAvila/neuraldesk/internal/server"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "neuraldesk",
	Short: "NeuralDesk - personal productivity dashboard over MCP",
	Long: `NeuralDesk keeps tasks, goals, projects, events and notes in a local
store and exposes them to any MCP host. A local assistant explains the
day's workload without calling a model; the chat command streams replies
from a configurable gateway.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		logger, err = logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Recompute and print the workload snapshot as JSON",
	Args:  cobra.NoArgs,
	RunE:  runSnapshot,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the local assistant about today's workload",
	Long: `Builds the diagnostic for the active project. A question about
the calendar, progress or next steps adds a focused answer.`,
	RunE: runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat [prompt]",
	Short: "Send a prompt to the chat gateway and stream the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChat,
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Calendar link commands",
}

var calendarSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Connect an account and import its events",
	Args:  cobra.NoArgs,
	RunE:  runCalendarSync,
}

var calendarDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Remove the calendar link",
	Args:  cobra.NoArgs,
	RunE:  runCalendarDisconnect,
}

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Conversation memory commands",
}

var memoryResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the active project's memory and transcript",
	Args:  cobra.NoArgs,
	RunE:  runMemoryReset,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cfg.YAML()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	// Overrides the root hook so version works without a config.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "neuraldesk v%s\n", ndserver.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $"+config.PathEnv+" or "+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	askCmd.Flags().String("user", "", "name the assistant addresses (default assistant.user_name)")
	chatCmd.Flags().String("project", "", "project ID (default: the active project)")
	calendarSyncCmd.Flags().String("email", "", "calendar account to connect")
	_ = calendarSyncCmd.MarkFlagRequired("email")
	memoryResetCmd.Flags().Bool("all", false, "forget every project")

	calendarCmd.AddCommand(calendarSyncCmd, calendarDisconnectCmd)
	memoryCmd.AddCommand(memoryResetCmd)
	rootCmd.AddCommand(serveCmd, snapshotCmd, askCmd, chatCmd, calendarCmd, memoryCmd, configCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
