package main

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"qualfill/internal/logging"
	"qualfill/internal/pipeline"
	"qualfill/internal/queue"
)

type runOutput struct {
	Reset   int64            `json:"reset"`
	Summary pipeline.Summary `json:"summary"`
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process every pending queue item",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			lock := flock.New(cfg.LockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return errors.New("another qualfill run is already in progress")
			}
			defer func() { _ = lock.Unlock() }()

			return ctx.withStore(func(store *queue.Store) error {
				reset, err := store.ResetStuckProcessing(cmd.Context())
				if err != nil {
					return err
				}
				if reset > 0 {
					logger.Info("reset interrupted items", logging.Int64("count", reset))
				}
				items, err := store.ClaimPending(cmd.Context())
				if err != nil {
					return err
				}
				mgr, err := newPipeline(cfg, logger, store)
				if err != nil {
					return err
				}
				// Items still processing after a cancelled run are reset by the next run.
				summary, runErr := mgr.Run(cmd.Context(), items)
				if ctx.jsonOutput() {
					if err := writeJSON(cmd, runOutput{Reset: reset, Summary: summary}); err != nil {
						return err
					}
					return runErr
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No pending items")
					return nil
				}
				fmt.Fprintf(out, "Processed %d item(s): %d accepted, %d rejected, %d review, %d failed (%d assumed)\n",
					summary.Total, summary.Accepted, summary.Rejected, summary.Review, summary.Failed, summary.Assumed)
				for _, name := range summary.DisabledStages {
					fmt.Fprintf(out, "Stage %s was disabled; see the log for details\n", name)
				}
				return runErr
			})
		},
	}
}
