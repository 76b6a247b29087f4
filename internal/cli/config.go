package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yildizm/BugFinder/internal/config"
	"github.com/yildizm/BugFinder/internal/emoji"
)

// newConfigCommand creates the config command with subcommands
func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage BugFinder configuration",
		Long: `Manage BugFinder configuration files and settings.

The config command provides subcommands for initializing, viewing,
validating, and locating configuration files.`,
	}

	// Add subcommands
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigPathCommand())

	return configCmd
}

// newConfigInitCommand creates the config init subcommand
func newConfigInitCommand() *cobra.Command {
	var (
		outputPath string
		minimal    bool
		force      bool
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new configuration file",
		Long: `Initialize a new BugFinder configuration file with default values.

By default, creates a full configuration file with all options and comments.
Use --minimal for a compact configuration with only essential settings.`,
		Example: `  # Create full config in current directory
  bugfinder config init

  # Create minimal config
  bugfinder config init --minimal

  # Create config at specific path
  bugfinder config init --path ~/.config/bugfinder/config.yaml

  # Overwrite existing config
  bugfinder config init --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			// Determine output path
			if outputPath == "" {
				outputPath = ".bugfinder.yaml"
			}

			// Check if file exists and not forcing
			if !force && fileExists(outputPath) {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", outputPath)
			}

			// Create directory if needed
			dir := filepath.Dir(outputPath)
			if dir != "." && dir != "/" {
				if err := os.MkdirAll(dir, 0o750); err != nil {
					return fmt.Errorf("failed to create directory %s: %w", dir, err)
				}
			}

			content := config.SampleConfig()
			if minimal {
				content = config.MinimalSampleConfig()
			}

			if err := os.WriteFile(outputPath, []byte(content), 0o600); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			fmt.Fprintf(out, "%sConfiguration file created at: %s\n", emoji.Prefix("success"), outputPath)
			if minimal {
				fmt.Fprintf(out, "%sCreated minimal configuration with essential settings\n", emoji.Prefix("file"))
			} else {
				fmt.Fprintf(out, "%sCreated full configuration with all options and documentation\n", emoji.Prefix("file"))
			}

			return nil
		},
	}

	initCmd.Flags().StringVarP(&outputPath, "path", "p", "", "output path for config file (default: .bugfinder.yaml)")
	initCmd.Flags().BoolVarP(&minimal, "minimal", "m", false, "create minimal configuration")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing config file")

	return initCmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	var format string

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current effective configuration after loading from all sources.

Shows the merged configuration from defaults, config files, environment
variable overrides and global flags.`,
		Example: `  # Show config in YAML format
  bugfinder config show

  # Show config in JSON format
  bugfinder config show --format json

  # Show config from specific file
  bugfinder --config /path/to/config.yaml config show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal config to JSON: %w", err)
				}
				fmt.Fprintln(out, string(data))
			case "yaml":
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to marshal config to YAML: %w", err)
				}
				fmt.Fprint(out, string(data))
			default:
				return fmt.Errorf("unsupported format: %s (use json or yaml)", format)
			}

			return nil
		},
	}

	showCmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml, json)")

	return showCmd
}

// newConfigValidateCommand creates the config validate subcommand
func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate a BugFinder configuration file for syntax and semantic errors.

Checks the configuration for:
- Valid YAML syntax and known keys
- A reachable-looking http or https service endpoint
- Valid values for themes, languages, formats and color modes
- Non-negative timeouts and debounce`,
		Example: `  # Validate current config
  bugfinder config validate

  # Validate specific config file
  bugfinder --config /path/to/config.yaml config validate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := loadConfig(cmd)
			if err != nil {
				fmt.Fprintf(out, "%sConfiguration validation failed:\n", emoji.Prefix("error"))
				fmt.Fprintf(out, "   %v\n", err)
				return err
			}

			fmt.Fprintf(out, "%sConfiguration is valid\n", emoji.Prefix("success"))

			fmt.Fprintf(out, "%sConfiguration summary:\n", emoji.Prefix("details"))
			fmt.Fprintf(out, "   Version: %s\n", cfg.Version)
			fmt.Fprintf(out, "   Endpoint: %s\n", cfg.Service.Endpoint)
			fmt.Fprintf(out, "   Timeout: %s\n", cfg.Service.Timeout)
			fmt.Fprintf(out, "   Default Language: %s\n", cfg.Language().Label())
			fmt.Fprintf(out, "   Output Format: %s\n", cfg.Output.DefaultFormat)

			return nil
		},
	}
}

// newConfigPathCommand creates the config path subcommand
func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		Long: `Display the list of paths BugFinder searches for configuration files.

Shows the search order and indicates which files exist.`,
		Example: `  # Show config search paths
  bugfinder config path`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "%sConfiguration file search paths (in priority order):\n\n", emoji.Prefix("folder"))

			priority := []string{"Highest", "Medium", "Lowest"}
			for i, path := range config.GetConfigPaths() {
				exists := " (not found)"
				if fileExists(path) {
					exists = " (exists)"
				}

				fmt.Fprintf(out, "  %d. %s%s\n", i+1, path, exists)
				if i < len(priority) {
					fmt.Fprintf(out, "     Priority: %s\n", priority[i])
				}
				fmt.Fprintln(out)
			}

			// Show current config file being used
			if currentConfig, found := config.FindConfigFile(); found {
				fmt.Fprintf(out, "%sCurrent config file: %s\n", emoji.Prefix("target"), currentConfig)
			} else {
				fmt.Fprintf(out, "%sNo config file found, using defaults\n", emoji.Prefix("file"))
			}

			fmt.Fprintln(out)
			fmt.Fprintf(out, "%sEnvironment variables with %s prefix override file settings\n", emoji.Prefix("hint"), config.EnvPrefix)
		},
	}
}

// Helper function to check if file exists
func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
