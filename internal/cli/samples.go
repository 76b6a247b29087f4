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

func newSamplesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "samples",
		Short: "List the service's sample cases",
		Long: `Fetch the sample cases published by the Bug Analysis Service and print
them in the order the service returns them.

Examples:
  bugfinder samples
  bugfinder samples -o markdown > samples.md`,
		Args: cobra.NoArgs,
		RunE: runSamples,
	}
}

func runSamples(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
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
		fmt.Fprintf(os.Stderr, "Fetching sample cases from %s...\n", client.Endpoint())
	}

	cases, err := fetchSamplesOnce(ctx, client)
	if err != nil {
		return err
	}

	out, err := f.FormatSamples(cases)
	if err != nil {
		return fmt.Errorf("failed to format sample cases: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func fetchSamplesOnce(ctx context.Context, client *bugapi.Client) ([]bugapi.Report, error) {
	state, command := view.Apply(view.New(), view.FetchSamples{})
	ticket := command.(view.SampleTicket)

	cases, err := client.SampleCases(ctx)
	if err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
	}

	state, _ = view.Apply(state, view.SamplesSettled{
		Generation: ticket.Generation,
		Cases:      cases,
		Err:        err,
	})

	if msg, failed := state.Error(); failed {
		return nil, errors.New(msg)
	}
	return state.Samples(), nil
}
