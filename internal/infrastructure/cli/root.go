package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "autoscrum",
	Version: Version,
	Short:   "Turn vague feature requests into assigned, tracked work",
	Long: `AutoScrum drives a feature request through a guided workflow:
1. Clarify the request in a short dialogue.
2. Generate user stories from the accumulated context.
3. Assign the stories across the team by skill and capacity.
4. Commit the approved plan to your ticket system.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}
