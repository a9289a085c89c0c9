package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cleared-dev/sfimport/internal/buildinfo"
	"github.com/cleared-dev/sfimport/internal/config"
	"github.com/cleared-dev/sfimport/internal/logger"
)

// envPrefix scopes the environment variables the CLI reads, e.g. SFIMPORT_REPO.
const envPrefix = "SFIMPORT"

// settings are the process-level options shared by every subcommand. Flags
// take precedence over SFIMPORT_* variables, which may come from a .env file.
type settings struct {
	v *viper.Viper
}

func (s *settings) repo() (string, error) {
	dir, err := filepath.Abs(s.v.GetString("repo"))
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return dir, nil
}

func (s *settings) loadConfig() (string, *config.Config, error) {
	dir, err := s.repo()
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return "", nil, err
	}
	return dir, cfg, nil
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	s := &settings{v: viper.New()}
	s.v.SetEnvPrefix(envPrefix)
	s.v.AutomaticEnv()
	s.v.SetDefault("repo", ".")
	s.v.SetDefault("log_level", "warn")
	s.v.SetDefault("log_format", "console")

	rootCmd := &cobra.Command{
		Use:     "sfimport",
		Short:   "Import SimpleFIN account data into a double-entry ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env file is fine.
			_ = godotenv.Load()

			level, err := logger.ParseLevel(s.v.GetString("log_level"))
			if err != nil {
				return fmt.Errorf("parsing log level: %w", err)
			}
			var log zerolog.Logger
			switch format := s.v.GetString("log_format"); format {
			case "console":
				log = logger.New(os.Stderr, level)
			case "json":
				log = logger.NewJSON(os.Stderr, level)
			default:
				return fmt.Errorf("unknown log format %q (want console or json)", format)
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(logger.WithContext(ctx, log))
			return nil
		},
	}

	rootCmd.PersistentFlags().String("repo", ".", "repository directory (env SFIMPORT_REPO)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error (env SFIMPORT_LOG_LEVEL)")
	_ = s.v.BindPFlag("repo", rootCmd.PersistentFlags().Lookup("repo"))
	rootCmd.PersistentFlags().String("log-format", "console", "log format: console or json (env SFIMPORT_LOG_FORMAT)")
	_ = s.v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = s.v.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand(s))
	rootCmd.AddCommand(newAccountsCommand(s))
	rootCmd.AddCommand(newMapCommand(s))
	rootCmd.AddCommand(newLogCommand(s))

	return rootCmd
}
