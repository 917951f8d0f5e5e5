package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhabedank/workflow-lens/cmd"
	"github.com/dhabedank/workflow-lens/internal/version"
)

var buildVersion = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "workflow-lens",
		Short: "Show how AI reshapes a business process, step by step",
		Long: `workflow-lens drafts today's workflow for a business process and its
AI-augmented target state, with the actor of every step, the tools
involved and the human checkpoints that remain.`,
		Version:       buildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(c *cobra.Command, args []string) {
			if c.Name() != cmd.SetupCmd.Name() && version.IsFirstRun() {
				version.PrintFirstRunNotice(os.Stderr)
			}
		},
	}

	cmd.AddPersistentFlags(rootCmd)
	rootCmd.AddCommand(cmd.GenerateCmd)
	rootCmd.AddCommand(cmd.ServeCmd)
	rootCmd.AddCommand(cmd.PickCmd)
	rootCmd.AddCommand(cmd.SetupCmd)
	rootCmd.AddCommand(cmd.TaxonomyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
