package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/soapywu/pbxpatch/pbxpatch"
)

var (
	// Global flags
	configPath  string
	projectPath string
	mainGroup   string
	verbose     bool

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pbxpatch [files...]",
	Short: "Register source files in an Xcode project.pbxproj",
	Long: `pbxpatch splices PBXBuildFile, PBXFileReference, PBXGroup and
PBXSourcesBuildPhase entries into a project.pbxproj so the given source
files compile as part of the project.

Files are grouped by their first path segment (Models/Foo.swift joins the
Models group); missing groups are created and registered under the main
application group. Files the manifest already references are skipped, so
re-running against the same project is safe.

The file list comes from positional arguments or a YAML config:

    project: DockTile.xcodeproj/project.pbxproj
    mainGroup: DockTile
    files:
      - Models/ConfigurationModels.swift
      - Views/DockTileConfigurationView.swift`,
	Args: cobra.ArbitraryArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
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
	RunE:          runPatch,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func runPatch(cmd *cobra.Command, args []string) error {
	cfg := pbxpatch.DefaultConfig()
	if configPath != "" {
		loaded, err := pbxpatch.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if projectPath != "" {
		cfg.Project = projectPath
	}
	if mainGroup != "" {
		cfg.MainGroup = mainGroup
	}
	if len(args) > 0 {
		cfg.Files = args
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	project := pbxpatch.NewPbxProject(cfg.Project,
		pbxpatch.WithLogger(logger),
		pbxpatch.WithMainGroup(cfg.MainGroup))
	if err := project.Load(); err != nil {
		return err
	}
	report := project.AddSourceFiles(cfg.Files)
	if err := project.Write(); err != nil {
		return err
	}

	printSummary(cmd, cfg.Project, report)
	return nil
}

func printSummary(cmd *cobra.Command, projectPath string, report *pbxpatch.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Added %d files to %s:\n", len(report.Added), projectPath)
	for _, entry := range report.Added {
		fmt.Fprintf(out, "   • %s\n", entry.Path)
	}
	for _, path := range report.Skipped {
		fmt.Fprintf(out, "   • %s (already registered)\n", path)
	}
	for _, section := range report.Missing {
		fmt.Fprintf(out, "warning: %s not found, manifest only partially updated\n", section)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config naming the project and files")
	rootCmd.Flags().StringVarP(&projectPath, "project", "p", "", "Path to project.pbxproj (overrides config)")
	rootCmd.Flags().StringVarP(&mainGroup, "group", "g", "", "Main group that receives newly created groups")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
