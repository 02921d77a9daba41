package cli

import (
	"fmt"

	"github.com/Anajrajeev/AutoScrum/pkg/domain/workflow"
	"github.com/spf13/cobra"
)

var approveCmd = &cobra.Command{
	Use:   "approve <feature-id>",
	Short: "Approve the plan and commit tickets to the tracker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		results, err := services.Workflow.ApproveAndCommit(cmd.Context(), args[0], nil, nil)
		if err != nil {
			return MapError(fmt.Errorf("approve: %w", err))
		}
		printCommitResults(args[0], results)
		return nil
	},
}

var retryCommitCmd = &cobra.Command{
	Use:   "retry-commit <feature-id>",
	Short: "Re-attempt pending ticket creations for a stuck commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		results, err := services.Workflow.RetryCommit(cmd.Context(), args[0])
		if err != nil {
			return MapError(fmt.Errorf("retry commit: %w", err))
		}
		printCommitResults(args[0], results)
		return nil
	},
}

var retryCmd = &cobra.Command{
	Use:   "retry <feature-id>",
	Short: "Resume a failed run from the stage it failed in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		run, err := services.Workflow.Retry(cmd.Context(), args[0])
		if err != nil {
			return MapError(fmt.Errorf("retry: %w", err))
		}
		fmt.Printf("Run resumed, now in stage %s\n", run.Stage)
		return nil
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <feature-id>",
	Short: "Cancel a run awaiting approval, or stop an in-flight commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		run, err := services.Workflow.Cancel(args[0])
		if err != nil {
			return MapError(fmt.Errorf("cancel: %w", err))
		}
		if run.CancelRequested {
			fmt.Println("Cancellation requested, no new tickets will be created.")
			return nil
		}
		fmt.Printf("Run cancelled, stage is %s\n", run.Stage)
		return nil
	},
}

func printCommitResults(featureID string, results []workflow.ItemResult) {
	pending := 0
	for _, item := range results {
		switch item.State {
		case workflow.ItemSucceeded:
			fmt.Printf("  %-38s %s -> %s\n", item.StoryID, item.State, item.ExternalKey)
		case workflow.ItemFailed:
			fmt.Printf("  %-38s %s: %s\n", item.StoryID, item.State, item.Error)
		default:
			pending++
			fmt.Printf("  %-38s %s\n", item.StoryID, item.State)
		}
	}
	if pending > 0 {
		fmt.Printf("\n%d items still pending, re-attempt with: autoscrum retry-commit %s\n", pending, featureID)
	}
}

func init() {
	RootCmd.AddCommand(approveCmd)
	RootCmd.AddCommand(retryCommitCmd)
	RootCmd.AddCommand(retryCmd)
	RootCmd.AddCommand(cancelCmd)
}
