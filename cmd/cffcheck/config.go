package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"cffcheck/internal/classfile"
	"cffcheck/internal/config"
	"cffcheck/internal/paths"
)

var (
	configFormat    string
	configInitForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage cffcheck configuration",
	Long:  "View and manage cffcheck configuration stored in .cffcheck/config.json",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after defaults, the config file and environment
overrides are applied.

Examples:
  cffcheck config show                # Human readable
  cffcheck config show --format json  # JSON, as written by config init
  cffcheck config show --format toml  # TOML`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := config.LoadConfigWithDetails(projectDirFlag, configPathFlag)
		if err != nil {
			return err
		}
		return writeConfig(cmd.OutOrStdout(), result, configFormat)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to .cffcheck/config.json",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := paths.ConfigPath(projectDirFlag)
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.DefaultConfig().SaveTo(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List supported environment variables",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, v := range config.GetSupportedEnvVars() {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}
	},
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "human", "Output format (human, json, toml)")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configEnvCmd)
	rootCmd.AddCommand(configCmd)
}

func writeConfig(w io.Writer, result *config.LoadResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result.Config, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "toml":
		return toml.NewEncoder(w).Encode(result.Config)
	case "human":
		writeConfigHuman(w, result)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeConfigHuman(w io.Writer, result *config.LoadResult) {
	cfg := result.Config

	fmt.Fprintln(w, "cffcheck Configuration")
	fmt.Fprintln(w, strings.Repeat("─", 50))
	if result.UsedDefaults {
		fmt.Fprintln(w, "Source: defaults (no config file found)")
	} else if result.ConfigPath != "" {
		fmt.Fprintf(w, "Source: %s\n", result.ConfigPath)
	}

	if len(result.EnvOverrides) > 0 {
		fmt.Fprintln(w, "\nEnvironment Overrides:")
		for _, ov := range result.EnvOverrides {
			fmt.Fprintf(w, "  %s=%s → %s\n", ov.EnvVar, ov.Value, ov.Key)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "supportedClassFileFormat: %d (%s)\n", cfg.SupportedClassFileFormat, classfile.ReleaseName(cfg.SupportedClassFileFormat))
	fmt.Fprintf(w, "excludeScopeTest:         %v\n", cfg.ExcludeScopeTest)
	fmt.Fprintf(w, "excludeScopeProvided:     %v\n", cfg.ExcludeScopeProvided)
	fmt.Fprintf(w, "ignoreVersionedEntries:   %v\n", cfg.IgnoreVersionedEntries)
	fmt.Fprintln(w, "repositories:")
	for _, r := range cfg.Repositories {
		fmt.Fprintf(w, "  - %s\n", r)
	}
	fmt.Fprintf(w, "cache.enabled:            %v\n", cfg.Cache.Enabled)
	fmt.Fprintf(w, "cache.path:               %s\n", cfg.Cache.Path)
	fmt.Fprintf(w, "logging.level:            %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "logging.format:           %s\n", cfg.Logging.Format)
}
