package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yildizm/BugFinder/internal/bugapi"
	"github.com/yildizm/BugFinder/internal/formatter"
	"github.com/yildizm/BugFinder/internal/view"
)

var findLanguage string

func newFindCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find [file]",
		Short: "Analyze a code snippet once",
		Long: `Send a snippet to the Bug Analysis Service and print the result.

If no file is specified, reads from stdin. The language is taken from
--language, then the file extension, then ui.default_language.

Examples:
  bugfinder find main.py
  bugfinder find --language c < snippet.txt
  cat app.js | bugfinder find -l javascript -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runFind,
	}

	cmd.Flags().StringVarP(&findLanguage, "language", "l", "", "snippet language (python, javascript, c)")

	return cmd
}

func runFind(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	src, err := readSource(cmd.InOrStdin(), args, findLanguage, cfg)
	if err != nil {
		return err
	}

	f, err := formatter.New(getOutputFormat(cfg), useColor(cfg))
	if err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Analyzing %s as %s with %s...\n", src.name, src.language.Label(), client.Endpoint())
	}

	report, err := findOnce(ctx, client, src)
	if err != nil {
		return err
	}

	out, err := f.FormatReport(&report)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// findOnce drives a single submission through the view state so the CLI
// reports exactly the messages the interactive view would show
func findOnce(ctx context.Context, client *bugapi.Client, src *source) (bugapi.Report, error) {
	state := view.New()
	state, _ = view.Apply(state, view.LanguageSelected{Language: src.language})
	state, _ = view.Apply(state, view.CodeEdited{Code: src.code})

	state, command := view.Apply(state, view.Submit{})
	ticket, ok := command.(view.Ticket)
	if !ok {
		msg, _ := state.Error()
		return bugapi.Report{}, errors.New(msg)
	}

	report, err := client.FindBug(ctx, ticket.Language, ticket.Code)
	if err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
	}

	state, _ = view.Apply(state, view.SubmitSettled{
		Generation: ticket.Generation,
		Report:     report,
		Err:        err,
	})

	if msg, failed := state.Error(); failed {
		return bugapi.Report{}, errors.New(msg)
	}
	result, _ := state.Result()
	return result, nil
}
