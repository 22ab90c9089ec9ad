package commands

import (
	"github.com/git-pkgs/repodata-patches/internal/app"
	"github.com/spf13/cobra"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the records that would be patched without writing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.buildApp(cmd)
			if err != nil {
				return err
			}
			diff, _ := cmd.Flags().GetBool("diff")
			return a.Plan(cmd.Context(), app.PlanOptions{
				Out:  cmd.OutOrStdout(),
				Diff: diff,
			})
		},
	}
	cmd.Flags().BoolP("diff", "d", false, "Also diff against the instructions already on disk")
	return cmd
}
