package cli

import (
	"fmt"
	"os"

	"github.com/Anajrajeev/AutoScrum/pkg/domain"
	"github.com/Anajrajeev/AutoScrum/pkg/storage"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an autoscrum workspace in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		repo := storage.NewFilesystemRepository(cwd)
		if repo.IsInitialized() {
			return fmt.Errorf("workspace already initialized")
		}
		if err := repo.Initialize(); err != nil {
			return err
		}
		if err := repo.SaveConfig(domain.DefaultWorkspaceConfig()); err != nil {
			return err
		}

		fmt.Println("Initialized autoscrum workspace in .autoscrum/")
		fmt.Println("Next steps:")
		fmt.Println("  autoscrum team add <id> <name> --skills development --capacity 10")
		fmt.Println("  autoscrum feature start \"My feature\" \"What it should do\"")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
