package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var assignJSONOutput bool

var assignCmd = &cobra.Command{
	Use:   "assign <feature-id>",
	Short: "Preview the skill and capacity based assignment",
	Long: `Recomputes the assignment for the feature's generated stories against
the current roster. Nothing is persisted; the authoritative assignment is
written during approval.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		result, err := services.Workflow.PreviewAssignment(args[0], nil)
		if err != nil {
			return MapError(fmt.Errorf("preview assignment: %w", err))
		}

		if assignJSONOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		if len(result.Assignments) == 0 && len(result.Unassigned) == 0 {
			fmt.Println("Nothing to assign.")
			return nil
		}

		for _, a := range result.Assignments {
			skill := a.MatchedSkill
			if skill == "" {
				skill = "any"
			}
			fmt.Printf("  %-38s -> %-12s (skill: %s, load after: %d)\n", a.StoryID, a.MemberID, skill, a.ResultingLoad)
		}
		for _, story := range result.Unassigned {
			fmt.Printf("  %-38s -> UNASSIGNED\n", story.ID)
		}
		if len(result.Warnings) > 0 {
			fmt.Println("\nWarnings:")
			for _, w := range result.Warnings {
				fmt.Printf("  - %s\n", w.Message)
			}
		}
		return nil
	},
}

func init() {
	assignCmd.Flags().BoolVar(&assignJSONOutput, "json", false, "Output in JSON format")
	RootCmd.AddCommand(assignCmd)
}
