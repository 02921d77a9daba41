package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var storiesJSONOutput bool

var storiesCmd = &cobra.Command{
	Use:   "stories <feature-id>",
	Short: "Show the generated story set awaiting approval",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		preview, err := services.Workflow.PreviewStories(args[0])
		if err != nil {
			return MapError(fmt.Errorf("preview stories: %w", err))
		}

		if storiesJSONOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(preview)
		}

		if preview.EpicLabel != "" {
			fmt.Printf("Epic: %s\n\n", preview.EpicLabel)
		}
		for i, story := range preview.Stories {
			fmt.Printf("%d. [%s] %s (%d pts, %s)\n", i+1, story.ID, story.Title, story.Points, story.Priority)
			if story.Description != "" {
				fmt.Printf("   %s\n", story.Description)
			}
			for _, c := range story.AcceptanceCriteria {
				fmt.Printf("   - %s\n", c)
			}
			if len(story.DependsOn) > 0 {
				fmt.Printf("   depends on: %v\n", story.DependsOn)
			}
		}
		return nil
	},
}

func init() {
	storiesCmd.Flags().BoolVar(&storiesJSONOutput, "json", false, "Output in JSON format")
	RootCmd.AddCommand(storiesCmd)
}
