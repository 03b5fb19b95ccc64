package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"qualfill/internal/pipeline"
	"qualfill/internal/quality"
	"qualfill/internal/queue"
)

type resolveOutput struct {
	Summary pipeline.Summary `json:"summary"`
	Items   []itemView       `json:"items"`
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var known string

	cmd := &cobra.Command{
		Use:   "resolve <title>...",
		Short: "Run titles through the pipeline without touching the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			var start quality.Descriptor
			if strings.TrimSpace(known) != "" {
				start, err = quality.Parse(known)
				if err != nil {
					return fmt.Errorf("--quality: %w", err)
				}
			}

			items := make([]*queue.Item, 0, len(args))
			for _, title := range args {
				title = strings.TrimSpace(title)
				if title == "" {
					continue
				}
				items = append(items, &queue.Item{Title: title, Status: queue.StatusPending, Quality: start})
			}

			mgr, err := newPipeline(cfg, logger, nil)
			if err != nil {
				return err
			}
			summary, err := mgr.Run(cmd.Context(), items)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, resolveOutput{Summary: summary, Items: newItemViews(items)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, itemTable(items, false))
			fmt.Fprintf(out, "%d accepted, %d rejected, %d review, %d failed (%d assumed)\n",
				summary.Accepted, summary.Rejected, summary.Review, summary.Failed, summary.Assumed)
			for _, name := range summary.DisabledStages {
				fmt.Fprintf(out, "Stage %s was disabled; see the log for details\n", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&known, "quality", "q", "", "Quality already known for every title (for example \"720p\")")
	return cmd
}
