package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Fetch repodata and write patch instructions",
		Args:  cobra.NoArgs,
		RunE:  c.runGenerate,
	}
}

func (c *CLI) runGenerate(cmd *cobra.Command, _ []string) error {
	a, err := c.buildApp(cmd)
	if err != nil {
		return err
	}
	return a.Run(cmd.Context())
}
