// Copyright Matt King, 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattkingphysio/letterkit/internal/plan"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Apply, revert, or verify a recorded CSV plan",
	Long: `Plan works with the CSV plans the rename and dedup commands write.
Apply executes the pending moves, revert restores executed moves to their
original paths, and verify classifies every row against what is on disk.`,
}

var planApplyCmd = &cobra.Command{
	Use:   "apply <plan.csv>",
	Short: "Execute the pending moves of a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := plan.Read(args[0])
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		summary := plan.Apply(rows, limit, dryRun, os.Stdout)
		if !dryRun {
			if err := plan.Write(args[0], rows); err != nil {
				return fmt.Errorf("rewriting plan: %w", err)
			}
		}
		fmt.Printf("\napplied: %d, skipped: %d, failed: %d\n",
			summary.Applied, summary.Skipped, summary.Failed)
		if summary.HasFailures() {
			return fmt.Errorf("%d move(s) failed", summary.Failed)
		}
		return nil
	},
}

var planRevertCmd = &cobra.Command{
	Use:   "revert <plan.csv>",
	Short: "Restore the executed moves of a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := plan.Read(args[0])
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		summary := plan.Revert(rows, dryRun, os.Stdout)
		if !dryRun {
			if err := plan.Write(args[0], rows); err != nil {
				return fmt.Errorf("rewriting plan: %w", err)
			}
		}
		fmt.Printf("\nrestored: %d, skipped: %d, failed: %d\n",
			summary.Applied, summary.Skipped, summary.Failed)
		if summary.HasFailures() {
			return fmt.Errorf("%d restore(s) failed", summary.Failed)
		}
		return nil
	},
}

var planVerifyCmd = &cobra.Command{
	Use:   "verify <plan.csv>",
	Short: "Classify every plan row against what is on disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := plan.Read(args[0])
		if err != nil {
			return err
		}

		res := plan.Verify(rows)
		for _, state := range []plan.RowState{plan.StatePending, plan.StateApplied, plan.StateConflict, plan.StateMissing} {
			fmt.Printf("%-9s %d\n", string(state)+":", res.Counts[state])
		}
		for _, row := range res.Conflicts {
			fmt.Printf("conflict: %s and %s both exist\n", row.Src, row.Dst)
		}
		for _, row := range res.Missing {
			fmt.Printf("missing:  neither %s nor %s exists\n", row.Src, row.Dst)
		}
		if !res.Clean() {
			return fmt.Errorf("plan does not match disk")
		}
		fmt.Println("plan matches disk")
		return nil
	},
}

func init() {
	planApplyCmd.Flags().Int("limit", 0, "maximum moves to execute (0 = no limit)")
	planApplyCmd.Flags().Bool("dry-run", false, "report what would happen without moving files")
	planRevertCmd.Flags().Bool("dry-run", false, "report what would happen without moving files")

	planCmd.AddCommand(planApplyCmd)
	planCmd.AddCommand(planRevertCmd)
	planCmd.AddCommand(planVerifyCmd)

	rootCmd.AddCommand(planCmd)
}
