package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"cffcheck/internal/config"
	"cffcheck/internal/graph"
	"cffcheck/internal/resolve"
	"cffcheck/internal/rule"
)

var (
	checkGraph           string
	checkPOM             string
	checkRepos           []string
	checkIncludeTest     bool
	checkIncludeProvided bool
	checkOutput          string
	checkFormatFlags     formatFlags
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a project's dependencies against the supported class file format",
	Long: `Resolve every dependency in the project's dependency graph and fail if any
of them contains a class compiled for a newer JVM than the project supports.

The graph is read from a descriptor (.yaml, .json, .toml) or from the output
of "mvn dependency:tree" (.txt). System scoped dependencies take their file
from the descriptor's dependencies or from --pom.

Examples:
  cffcheck check --graph deps.yaml
  cffcheck check --graph tree.txt --pom pom.xml --target 8
  cffcheck check --graph deps.yaml --include-test --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		opts, err := checkOptionsFrom(cmd, loaded.Config)
		if err != nil {
			return err
		}

		logger, closer, err := newLogger(loaded.Config, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closer.Close()

		return runCheck(opts, loaded.Config, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	checkCmd.Flags().StringVarP(&checkGraph, "graph", "g", "", "Dependency graph file (descriptor or mvn dependency:tree output)")
	checkCmd.Flags().StringVar(&checkPOM, "pom", "", "pom.xml providing system scoped dependency paths")
	checkCmd.Flags().StringSliceVar(&checkRepos, "repo", nil, "Local Maven repository (repeatable, replaces configured repositories)")
	checkCmd.Flags().BoolVar(&checkIncludeTest, "include-test", false, "Check test scoped dependencies")
	checkCmd.Flags().BoolVar(&checkIncludeProvided, "include-provided", false, "Check provided scoped dependencies")
	checkCmd.Flags().StringVar(&checkOutput, "format", string(FormatHuman), "Output format (human, json)")
	checkFormatFlags.register(checkCmd)
	_ = checkCmd.MarkFlagRequired("graph")

	rootCmd.AddCommand(checkCmd)
}

type checkOptions struct {
	Graph                  string
	POM                    string
	Root                   string
	MaxFormat              int
	Collect                resolve.Options
	IgnoreVersionedEntries bool
	Repositories           []string
	Format                 OutputFormat
}

// checkOptionsFrom merges flags over configuration.
func checkOptionsFrom(cmd *cobra.Command, cfg *config.Config) (checkOptions, error) {
	maxFormat, err := checkFormatFlags.resolveMaxFormat(cmd, cfg)
	if err != nil {
		return checkOptions{}, err
	}

	repos := cfg.Repositories
	if cmd.Flags().Changed("repo") {
		repos = checkRepos
	}
	cfgRepos := *cfg
	cfgRepos.Repositories = repos
	resolved, err := cfgRepos.ResolvedRepositories(projectDirFlag)
	if err != nil {
		return checkOptions{}, err
	}

	opts := checkOptions{
		Graph:     checkGraph,
		POM:       checkPOM,
		Root:      projectDirFlag,
		MaxFormat: maxFormat,
		Collect: resolve.Options{
			ExcludeScopeTest:     cfg.ExcludeScopeTest,
			ExcludeScopeProvided: cfg.ExcludeScopeProvided,
		},
		IgnoreVersionedEntries: checkFormatFlags.resolveIgnoreVersioned(cmd, cfg),
		Repositories:           resolved,
		Format:                 OutputFormat(checkOutput),
	}
	if cmd.Flags().Changed("include-test") {
		opts.Collect.ExcludeScopeTest = !checkIncludeTest
	}
	if cmd.Flags().Changed("include-provided") {
		opts.Collect.ExcludeScopeProvided = !checkIncludeProvided
	}
	if opts.Format != FormatHuman && opts.Format != FormatJSON {
		return checkOptions{}, fmt.Errorf("unsupported format: %s", opts.Format)
	}
	return opts, nil
}

// runCheck evaluates the project and writes the outcome. A passing check
// writes nothing in human format.
func runCheck(opts checkOptions, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	scanner, closer := newArchiveScanner(cfg, opts.Root, opts.IgnoreVersionedEntries, logger)
	defer closer.Close()

	resolver := resolve.NewLocalRepository(opts.Repositories, logger)
	r := rule.New(rule.Options{MaxFormat: opts.MaxFormat, Collect: opts.Collect}, resolver, scanner, logger)

	res, evalErr := r.Evaluate(graph.NewFileBuilder(opts.Graph, opts.POM))

	if opts.Format == FormatJSON {
		out, err := FormatResponse(newCheckResponse(opts.MaxFormat, res, evalErr), FormatJSON)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, out)
		return reported(evalErr)
	}

	if evalErr != nil {
		fmt.Fprint(stderr, formatErrorHuman(evalErr))
		return reported(evalErr)
	}
	return nil
}
