package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var clarifyCmd = &cobra.Command{
	Use:   "clarify <feature-id> <answer>",
	Short: "Answer the current clarification question",
	Long: `Feeds one answer into the clarification dialogue. When the context
becomes complete, story generation and assignment run automatically and the
run lands in awaiting_approval.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		featureID := args[0]
		answer := strings.Join(args[1:], " ")

		result, err := services.Workflow.SubmitClarification(cmd.Context(), featureID, answer)
		if err != nil {
			return MapError(fmt.Errorf("clarify: %w", err))
		}

		if result.Duplicate {
			fmt.Println("That answer matches your previous one and was ignored.")
		}

		if result.IsComplete {
			fmt.Println("Clarification complete. Stories were generated and assigned.")
			fmt.Printf("Review them with: autoscrum stories %s\n", featureID)
			fmt.Printf("Then approve with: autoscrum approve %s\n", featureID)
			return nil
		}

		fmt.Printf("Question %d: %s\n", result.Context.QuestionsAsked, result.NextPrompt)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(clarifyCmd)
}
