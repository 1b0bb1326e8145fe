package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"cffcheck/internal/config"
	cerrors "cffcheck/internal/errors"
	"cffcheck/internal/slogutil"
	"cffcheck/internal/version"
)

var (
	configPathFlag string
	projectDirFlag string
	logFileFlag    string
	verbosityFlag  int
	quietFlag      bool
)

var rootCmd = &cobra.Command{
	Use:   "cffcheck",
	Short: "cffcheck - JVM class file format checker",
	Long: `cffcheck checks that every transitive binary dependency of a JVM project
was compiled for no newer class file format than the project supports.`,
	Version:       version.Version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.SetVersionTemplate("cffcheck version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "Config file (default .cffcheck/config.json)")
	rootCmd.PersistentFlags().StringVarP(&projectDirFlag, "dir", "C", ".", "Project directory")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Also write debug logs to this file")
	rootCmd.PersistentFlags().CountVarP(&verbosityFlag, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress all logging")
}

// loadConfig loads and validates configuration for the project directory.
func loadConfig() (*config.LoadResult, error) {
	result, err := config.LoadConfigWithDetails(projectDirFlag, configPathFlag)
	if err != nil {
		return nil, cerrors.New(cerrors.ConfigInvalid, "Unable to load configuration", err)
	}
	if err := result.Config.Validate(); err != nil {
		return nil, cerrors.New(cerrors.ConfigInvalid, "Invalid configuration", err)
	}
	return result, nil
}

// newLogger builds the command logger. Verbosity flags win over the
// configured level.
func newLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	level, ok := slogutil.LevelFromVerbosity(verbosityFlag, quietFlag)
	if !ok {
		level = slogutil.LevelFromString(cfg.Logging.Level)
	}
	return slogutil.Setup(slogutil.Options{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: stderr,
		File:   logFileFlag,
	})
}
