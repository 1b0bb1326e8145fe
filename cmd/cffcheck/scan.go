package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"cffcheck/internal/classfile"
	"cffcheck/internal/config"
	cerrors "cffcheck/internal/errors"
	"cffcheck/internal/version"
)

var (
	scanOutput      string
	scanFormatFlags formatFlags
)

var scanCmd = &cobra.Command{
	Use:   "scan <archive>...",
	Short: "Scan archives for classes newer than the supported format",
	Long: `Scan jar, war or zip archives directly, without a dependency graph.

Examples:
  cffcheck scan lib/*.jar
  cffcheck scan --target 8 app.war`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		maxFormat, err := scanFormatFlags.resolveMaxFormat(cmd, loaded.Config)
		if err != nil {
			return err
		}
		ignoreVersioned := scanFormatFlags.resolveIgnoreVersioned(cmd, loaded.Config)

		logger, closer, err := newLogger(loaded.Config, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closer.Close()

		return runScan(args, maxFormat, ignoreVersioned, OutputFormat(scanOutput), loaded.Config, logger, cmd.OutOrStdout())
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanOutput, "format", string(FormatHuman), "Output format (human, json)")
	scanFormatFlags.register(scanCmd)
	rootCmd.AddCommand(scanCmd)
}

// runScan scans every archive, reporting each. Read failures take
// precedence over violations in the returned error.
func runScan(archives []string, maxFormat int, ignoreVersioned bool, format OutputFormat, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	if format != FormatHuman && format != FormatJSON {
		return fmt.Errorf("unsupported format: %s", format)
	}

	scanner, closer := newArchiveScanner(cfg, projectDirFlag, ignoreVersioned, logger)
	defer closer.Close()

	resp := &ScanResponse{
		Version:    version.Version,
		MaxFormat:  maxFormat,
		MaxRelease: classfile.ReleaseName(maxFormat),
		Archives:   make([]ArchiveResult, 0, len(archives)),
	}

	var readErr error
	violations := 0
	for _, archive := range archives {
		path, err := filepath.Abs(archive)
		if err != nil {
			path = archive
		}
		exceeds, err := scanner.Scan(path, maxFormat)
		result := ArchiveResult{Path: archive, Exceeds: exceeds}
		if err != nil {
			result.Error = err.Error()
			if readErr == nil {
				readErr = cerrors.New(cerrors.ArchiveReadFailed, fmt.Sprintf("Unable to read archive %s", archive), err)
			}
		} else if exceeds {
			violations++
		}
		resp.Archives = append(resp.Archives, result)
	}

	out, err := FormatResponse(resp, format)
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, out)
	if format == FormatJSON {
		fmt.Fprintln(stdout)
	}

	if readErr != nil {
		return reported(readErr)
	}
	if violations > 0 {
		return reported(cerrors.New(cerrors.FormatViolation,
			fmt.Sprintf("%d of %d archives exceed %s", violations, len(archives), resp.MaxRelease), nil))
	}
	return nil
}
