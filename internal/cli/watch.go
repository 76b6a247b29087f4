package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/BugFinder/internal/bugapi"
	"github.com/yildizm/BugFinder/internal/emoji"
	"github.com/yildizm/BugFinder/internal/formatter"
	"github.com/yildizm/BugFinder/internal/logger"
	"github.com/yildizm/BugFinder/internal/watch"
)

var (
	watchLanguage string
	watchDebounce time.Duration
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-analyze a source file whenever it changes",
		Long: `Analyze a source file once, then again every time it is saved.

Uses file system notifications to detect changes. A save that lands while
an analysis is still running cancels that analysis and starts a new one.
Press Ctrl+C to stop watching.

Examples:
  bugfinder watch main.py
  bugfinder watch --debounce 1s --language c snippet.txt`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().StringVarP(&watchLanguage, "language", "l", "", "file language (python, javascript, c)")
	cmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period after a change (default from config)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Use config values if flags weren't explicitly set
	if !cmd.Flag("debounce").Changed {
		watchDebounce = cfg.Watch.Debounce
	}

	var lang bugapi.Language
	if watchLanguage != "" {
		if lang, err = bugapi.ParseLanguage(watchLanguage); err != nil {
			return err
		}
	}

	f, err := formatter.New(getOutputFormat(cfg), useColor(cfg))
	if err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	log := logger.NewWithCallback("watch", isVerbose)
	defer log.Sync()

	w, err := watch.New(client, watch.Options{
		Path:     args[0],
		Language: lang,
		Debounce: watchDebounce,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "%sWatching file: %s (%s) against %s\n",
			emoji.Prefix("watch"), w.Path(), w.Language().Label(), client.Endpoint())
		fmt.Fprintf(os.Stderr, "%sPress Ctrl+C to stop...\n\n", emoji.Prefix("door"))
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results := make(chan watch.Result)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, results) }()

	out := cmd.OutOrStdout()
	for {
		select {
		case err := <-done:
			return err
		case result := <-results:
			if err := printWatchResult(out, f, result); err != nil {
				stop()
				<-done
				return err
			}
		}
	}
}

// printWatchResult writes one timestamped analysis
func printWatchResult(out io.Writer, f formatter.Formatter, result watch.Result) error {
	fmt.Fprintf(out, "[%s] %s%s\n", result.At.Format("15:04:05"), emoji.Prefix("file"), result.Path)

	if result.Failed() {
		_, err := fmt.Fprintf(out, "%s%s\n\n", emoji.Prefix("error"), result.Message)
		return err
	}

	data, err := f.FormatReport(result.Report)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out)
	return err
}
