package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var featureCmd = &cobra.Command{
	Use:   "feature",
	Short: "Start and inspect feature requests",
}

var featureJSONOutput bool

var featureStartCmd = &cobra.Command{
	Use:   "start <name> <description>",
	Short: "Start the workflow for a new feature request",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		run, err := services.Workflow.StartFeature(cmd.Context(), args[0], args[1])
		if err != nil {
			return MapError(fmt.Errorf("start feature: %w", err))
		}

		fmt.Printf("Feature %s created, run is in stage %s\n", run.FeatureID, run.Stage)
		fmt.Printf("Begin the dialogue with: autoscrum clarify %s \"<your answer>\"\n", run.FeatureID)
		return nil
	},
}

var featureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known features and their run stages",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		features, err := services.Repo.ListFeatures()
		if err != nil {
			return MapError(fmt.Errorf("list features: %w", err))
		}

		if featureJSONOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(features)
		}

		if len(features) == 0 {
			fmt.Println("No features yet. Start one with 'autoscrum feature start'.")
			return nil
		}

		for _, f := range features {
			stage := "-"
			if run, err := services.Workflow.GetRunState(f.ID); err == nil {
				stage = string(run.Stage)
			}
			fmt.Printf("  %-38s %-20s %s\n", f.ID, stage, f.Name)
		}
		return nil
	},
}

func init() {
	featureListCmd.Flags().BoolVar(&featureJSONOutput, "json", false, "Output in JSON format")
	featureCmd.AddCommand(featureStartCmd)
	featureCmd.AddCommand(featureListCmd)
	RootCmd.AddCommand(featureCmd)
}
