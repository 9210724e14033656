package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Placeholders left in place when ldflags inject nothing. buildVersion
// only falls back to VCS metadata while a value still holds its placeholder.
const (
	UnsetVersion   = "dev"
	UnsetCommit    = "none"
	UnsetBuildDate = "unknown"
)

var (
	// Version is injected during build
	Version = UnsetVersion
	// Commit is injected during build
	Commit = UnsetCommit
	// BuildDate is injected during build
	BuildDate = UnsetBuildDate
)

// NewRootCommand builds the lsd-capture command tree.
func NewRootCommand() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "lsd-capture",
		Short: "Capture HTTP exchanges as sequence diagram messages",
		Long: `lsd-capture sits in front of an HTTP service and records every exchange
as a request/response message pair, ready to be rendered as a sequence diagram.

Configuration can be provided via a YAML file, environment variables
(LSD_LISTEN, LSD_UPSTREAM, LSD_LOG_LEVEL, optionally from a .env file) or flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(envFile, cmd.Flags().Changed("env-file"))
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before reading configuration")

	root.AddCommand(newProxyCommand(), newVersionCommand())
	return root
}

// loadEnvFile loads path into the process environment without overriding
// variables already set. A missing default file is not an error.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
