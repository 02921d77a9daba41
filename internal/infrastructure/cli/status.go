package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Anajrajeev/AutoScrum/pkg/domain/workflow"
	"github.com/spf13/cobra"
)

var statusJSONOutput bool

var statusCmd = &cobra.Command{
	Use:   "status <feature-id>",
	Short: "Show the workflow run state for a feature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		run, err := services.Workflow.GetRunState(args[0])
		if err != nil {
			return MapError(fmt.Errorf("status: %w", err))
		}

		if statusJSONOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		}

		fmt.Printf("Feature: %s\n", run.FeatureID)
		fmt.Printf("Stage:   %s\n", run.Stage)
		if run.Stage == workflow.StageFailed {
			fmt.Printf("Failed in: %s\n", run.FailedStage)
			fmt.Printf("Error (%s): %s\n", run.ErrorKind, run.LastError)
			fmt.Printf("Resume with: autoscrum retry %s\n", run.FeatureID)
		}
		if run.CancelRequested {
			fmt.Println("Cancellation requested.")
		}
		if len(run.PreviewStories) > 0 {
			fmt.Printf("Stories: %d generated\n", len(run.PreviewStories))
		}
		if len(run.PreviewWarnings) > 0 {
			fmt.Printf("Assignment warnings: %d\n", len(run.PreviewWarnings))
		}
		if len(run.CommitResults) > 0 {
			succeeded, failed, pending := 0, 0, 0
			for _, item := range run.CommitResults {
				switch item.State {
				case workflow.ItemSucceeded:
					succeeded++
				case workflow.ItemFailed:
					failed++
				default:
					pending++
				}
			}
			fmt.Printf("Commit: %d succeeded, %d failed, %d pending\n", succeeded, failed, pending)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSONOutput, "json", false, "Output in JSON format")
	RootCmd.AddCommand(statusCmd)
}
