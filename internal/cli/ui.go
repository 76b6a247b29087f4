package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yildizm/BugFinder/internal/bugapi"
	"github.com/yildizm/BugFinder/internal/config"
	"github.com/yildizm/BugFinder/internal/logger"
	"github.com/yildizm/BugFinder/internal/ui"
)

var uiLanguage string

func newUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui [file]",
		Short: "Open the interactive bug finder",
		Long: `Open the interactive view: pick a language, paste or edit code, and
send it to the Bug Analysis Service.

A file argument preloads the editor; its extension selects the language
unless --language is given.

Keys:
  ctrl+s          find bug
  ctrl+o          load sample cases
  ctrl+l          next language (also shift+tab)
  tab             switch between editor and results
  esc, ctrl+c     quit

Examples:
  bugfinder ui
  bugfinder ui main.py
  bugfinder ui --language c snippet.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runUI,
	}

	cmd.Flags().StringVarP(&uiLanguage, "language", "l", "", "language of the preloaded code (python, javascript, c)")

	return cmd
}

func runUI(cmd *cobra.Command, args []string) error {
	if !isTerminal(os.Stdout) {
		return fmt.Errorf("the interactive view needs a terminal; use 'bugfinder find' for scripted use")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts, err := uiOptions(cmd.InOrStdin(), args, cfg)
	if err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	restore, err := redirectLogs(cfg)
	if err != nil {
		return err
	}
	defer restore()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = ui.Run(ctx, client, opts)
	opts.Logger.Sync()
	return err
}

// uiOptions resolves the preloaded code and language. --language wins over
// the file extension and the configured default.
func uiOptions(stdin io.Reader, args []string, cfg *config.Config) (ui.Options, error) {
	opts := ui.Options{
		Language: cfg.Language(),
		Markdown: cfg.UI.Markdown,
		Logger:   logger.NewWithCallback("ui", isVerbose),
	}

	if len(args) > 0 {
		src, err := readSource(stdin, args, uiLanguage, cfg)
		if err != nil {
			return ui.Options{}, err
		}
		opts.Code = src.code
		opts.Language = src.language
		return opts, nil
	}

	if uiLanguage != "" {
		lang, err := bugapi.ParseLanguage(uiLanguage)
		if err != nil {
			return ui.Options{}, err
		}
		opts.Language = lang
	}
	return opts, nil
}

// redirectLogs keeps log lines off the screen while the view owns it
func redirectLogs(cfg *config.Config) (func(), error) {
	if cfg.Output.LogFile == "" {
		logger.SetOutput(io.Discard)
		return func() { logger.SetOutput(os.Stderr) }, nil
	}

	// #nosec G304 - path comes from the user's own configuration
	file, err := os.OpenFile(cfg.Output.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetOutput(file)

	return func() {
		logger.SetOutput(os.Stderr)
		_ = file.Close()
	}, nil
}
