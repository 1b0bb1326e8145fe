package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"cffcheck/internal/classfile"
	"cffcheck/internal/config"
	"cffcheck/internal/rule"
	"cffcheck/internal/storage"
)

// formatFlags are shared by commands that take a maximum format.
type formatFlags struct {
	maxFormat       int
	target          string
	ignoreVersioned bool
}

func (f *formatFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.maxFormat, "max-format", 0, "Maximum class file major version (e.g. 51)")
	cmd.Flags().StringVar(&f.target, "target", "", "Maximum Java release (e.g. 8, 1.7, java11)")
	cmd.Flags().BoolVar(&f.ignoreVersioned, "ignore-versioned", false, "Skip classes under META-INF/versions/")
	cmd.MarkFlagsMutuallyExclusive("max-format", "target")
}

// resolveMaxFormat applies --max-format or --target over the configured value.
func (f *formatFlags) resolveMaxFormat(cmd *cobra.Command, cfg *config.Config) (int, error) {
	switch {
	case cmd.Flags().Changed("max-format"):
		if f.maxFormat < classfile.JDK1_1 {
			return 0, fmt.Errorf("--max-format %d is below %d", f.maxFormat, classfile.JDK1_1)
		}
		return f.maxFormat, nil
	case cmd.Flags().Changed("target"):
		return classfile.ParseTarget(f.target)
	default:
		return cfg.SupportedClassFileFormat, nil
	}
}

func (f *formatFlags) resolveIgnoreVersioned(cmd *cobra.Command, cfg *config.Config) bool {
	if cmd.Flags().Changed("ignore-versioned") {
		return f.ignoreVersioned
	}
	return cfg.IgnoreVersionedEntries
}

// newArchiveScanner returns the class file scanner, wrapped in the scan
// cache when it is enabled. A cache that cannot be opened is logged and
// skipped.
func newArchiveScanner(cfg *config.Config, root string, ignoreVersioned bool, logger *slog.Logger) (rule.ArchiveScanner, io.Closer) {
	scanner := classfile.NewScanner(logger)
	scanner.IgnoreVersionedEntries = ignoreVersioned
	if !cfg.Cache.Enabled {
		return scanner, nopCloser{}
	}

	path, err := cfg.ResolvedCachePath(root)
	if err != nil {
		logger.Warn("Scan cache disabled", "error", err)
		return scanner, nopCloser{}
	}
	cache, err := storage.OpenScanCache(path, logger)
	if err != nil {
		logger.Warn("Scan cache disabled", "path", path, "error", err)
		return scanner, nopCloser{}
	}
	return storage.NewCachingScanner(scanner, cache, scanVariant(ignoreVersioned)), cache
}

func scanVariant(ignoreVersioned bool) string {
	if ignoreVersioned {
		return "ignore-versioned"
	}
	return "all-entries"
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
