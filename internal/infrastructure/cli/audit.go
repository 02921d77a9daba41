package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit and verify workspace history",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of the audit trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		fmt.Println("Verifying audit trail integrity...")
		violations, err := services.Audit.VerifyIntegrity()
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		if len(violations) == 0 {
			fmt.Println("Audit trail is intact and verified.")
			return nil
		}

		fmt.Printf("Found %d integrity violations:\n", len(violations))
		for _, v := range violations {
			fmt.Printf("  - %s\n", v)
		}
		os.Exit(1)
		return nil
	},
}

var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Print the audit trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		events, err := services.Audit.LoadAll()
		if err != nil {
			return err
		}
		for _, e := range events {
			fmt.Printf("%s  %-24s %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.Actor)
		}
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditLogCmd)
	RootCmd.AddCommand(auditCmd)
}
