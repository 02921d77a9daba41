package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Anajrajeev/AutoScrum/pkg/domain/team"
	"github.com/spf13/cobra"
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage the assignment roster",
}

var (
	teamJSONOutput bool
	teamSkills     string
	teamCapacity   int
)

var teamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List roster members with skills and load",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		roster, err := services.Team.Roster()
		if err != nil {
			return MapError(fmt.Errorf("list team: %w", err))
		}

		if teamJSONOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(roster)
		}

		if len(roster.Members) == 0 {
			fmt.Println("No team members configured.")
			return nil
		}

		fmt.Printf("Team Members (%d)\n", len(roster.Members))
		for _, m := range roster.Members {
			fmt.Printf("  %-12s %-20s load %d/%d  skills: %s\n",
				m.ID, m.Name, m.CurrentLoad, m.MaxCapacity, strings.Join(m.Skills, ", "))
		}
		return nil
	},
}

var teamAddCmd = &cobra.Command{
	Use:   "add <id> <name>",
	Short: "Add or update a roster member",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		var skills []string
		for _, s := range strings.Split(teamSkills, ",") {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}

		member := team.Member{
			ID:          args[0],
			Name:        args[1],
			Skills:      skills,
			MaxCapacity: teamCapacity,
		}
		if err := services.Team.AddMember(member); err != nil {
			return MapError(fmt.Errorf("add member: %w", err))
		}

		fmt.Printf("Member %s added (capacity %d)\n", args[0], teamCapacity)
		return nil
	},
}

var teamRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a roster member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		if err := services.Team.RemoveMember(args[0]); err != nil {
			return MapError(fmt.Errorf("remove member: %w", err))
		}

		fmt.Printf("Member %s removed\n", args[0])
		return nil
	},
}

func init() {
	teamListCmd.Flags().BoolVar(&teamJSONOutput, "json", false, "Output in JSON format")
	teamAddCmd.Flags().StringVar(&teamSkills, "skills", "", "Comma-separated skill tags (e.g. development,testing)")
	teamAddCmd.Flags().IntVar(&teamCapacity, "capacity", 10, "Maximum load in story points")
	teamCmd.AddCommand(teamListCmd)
	teamCmd.AddCommand(teamAddCmd)
	teamCmd.AddCommand(teamRemoveCmd)
	RootCmd.AddCommand(teamCmd)
}
