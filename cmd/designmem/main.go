// designmem: design-memory capture for CAD modelling sessions.
//
// Records each CAD operation with its geometric meaning and inferred
// dependencies, analyses the finished session for workflow patterns, and
// archives it for later search.
//
// Usage:
//
//	designmem serve              # Start MCP server (stdio transport)
//	designmem replay ops.ndjson  # Analyse a recorded operation journal
//	designmem watch ops.ndjson   # Follow a live journal until interrupted
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/designmem/internal/config"
	"github.com/HendryAvila/designmem/internal/logging"
	dmserver "github.com/HendryAvila/designmem/internal/server"
)

var (
	cfg    config.Config
	logger *zap.Logger

	homeDir  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "designmem",
	Short: "Design memory for CAD modelling sessions",
	Long: `designmem captures CAD command history as design memory.

Each operation is enriched with semantic attributes, geometric
transformations and dependency edges. Finished sessions are analysed for
workflow patterns and archived in a searchable SQLite database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if homeDir != "" {
			if err := os.Setenv(config.EnvHome, homeDir); err != nil {
				return err
			}
		}
		if logLevel != "" {
			if err := os.Setenv(config.EnvLogLevel, logLevel); err != nil {
				return err
			}
		}
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if logger, err = logging.New(cfg.Log); err != nil {
			return fmt.Errorf("creating logger: %w", err)
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
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := dmserver.New(cfg, logger)
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}
		defer cleanup()

		logger.Info("serving MCP on stdio", zap.String("version", dmserver.Version))
		// Stdout belongs to the transport; logs go to stderr.
		return server.ServeStdio(s)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	// No config needed.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "designmem v%s\n", dmserver.Version)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialise the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "# home: %s\n", cfg.Home)
		return writeYAML(cmd.OutOrStdout(), cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(cfg.Home, config.FileName)
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.Default(cfg.Home).Write(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "Data directory (default: $DESIGNMEM_HOME or ~/.designmem)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
