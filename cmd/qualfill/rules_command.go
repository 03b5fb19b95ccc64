package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"qualfill/internal/assume"
	"qualfill/internal/assumption"
)

type ruleView struct {
	Position int    `json:"position"`
	Target   string `json:"target"`
	Score    *int   `json:"score"`
	Quality  string `json:"quality"`
}

func newRulesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Show assume_quality rules in the order they are tried",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			resolver := assume.NewResolver()
			if err := resolver.Prepare(assumption.ResolverConfig(cfg.AssumeQuality)); err != nil {
				return fmt.Errorf("assume_quality: %w", err)
			}
			rules, err := resolver.Rules()
			if err != nil {
				return err
			}

			views := make([]ruleView, 0, len(rules))
			for i, rule := range rules {
				view := ruleView{Position: i + 1, Target: rule.Target(), Quality: rule.Fallback().String()}
				if !rule.IsEverything() {
					score := assume.Score(rule)
					view.Score = &score
				}
				views = append(views, view)
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, views)
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No assumptions configured")
				return nil
			}
			rows := make([][]string, 0, len(views))
			for _, view := range views {
				score := "last"
				if view.Score != nil {
					score = strconv.Itoa(*view.Score)
				}
				rows = append(rows, []string{strconv.Itoa(view.Position), view.Target, score, view.Quality})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]column{{header: "#", right: true}, {header: "Target"}, {header: "Score", right: true}, {header: "Assumes"}},
				rows,
			))
			return nil
		},
	}
}
