package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/yildizm/BugFinder/internal/bugapi"
	"github.com/yildizm/BugFinder/internal/config"
	"github.com/yildizm/BugFinder/internal/emoji"
	"github.com/yildizm/BugFinder/internal/logger"
	"github.com/yildizm/BugFinder/internal/ui"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	noEmoji   bool
	outputFmt string
	endpoint  string
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bugfinder",
		Short: "AI-Powered Bug Identifier",
		Long: `BugFinder sends a code snippet to the Bug Analysis Service and shows
the detected bug type, a description and, when available, a suggested fix.

Run without arguments in a terminal to open the interactive view, or use
'bugfinder find' in scripts and pipelines.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Auto-disable emojis on Windows if not explicitly set
			if runtime.GOOS == "windows" && !cmd.Flag("no-emoji").Changed {
				noEmoji = true
			}
			// Set emoji state for all components
			emoji.SetEmojiDisabled(noEmoji)
		},
		RunE: runUI,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "output format (text, json, markdown, html)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Bug Analysis Service base URL")

	// Add subcommands
	rootCmd.AddCommand(newUICommand())
	rootCmd.AddCommand(newFindCommand())
	rootCmd.AddCommand(newSamplesCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "BugFinder %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// loadConfig loads the configuration and applies the global flags on top
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loader := config.NewLoader()
	cfg, err := loader.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if endpoint != "" {
		cfg.Service.Endpoint = endpoint
	}
	if outputFmt != "" {
		cfg.Output.DefaultFormat = outputFmt
	}
	if noColor {
		cfg.Output.ColorMode = "never"
	}
	if !cmd.Flags().Changed("verbose") && cfg.Output.Verbose {
		verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ui.SetColorDisabled(!useColor(cfg))
	if !ui.SetThemeByName(cfg.UI.Theme) {
		return nil, fmt.Errorf("unknown theme: %s", cfg.UI.Theme)
	}

	return cfg, nil
}

// newClient builds a service client from cfg
func newClient(cfg *config.Config) (*bugapi.Client, error) {
	clientCfg := cfg.ClientConfig()
	clientCfg.Logger = logger.NewWithCallback("bugapi", isVerbose)
	return bugapi.New(clientCfg)
}

// useColor resolves the color mode against the environment and stdout
func useColor(cfg *config.Config) bool {
	switch cfg.Output.ColorMode {
	case "always":
		return true
	case "never":
		return false
	default:
		return os.Getenv("NO_COLOR") == "" && isTerminal(os.Stdout)
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Global helpers
func isVerbose() bool {
	return verbose
}

func getOutputFormat(cfg *config.Config) string {
	if outputFmt != "" {
		return outputFmt
	}
	return cfg.Output.DefaultFormat
}
