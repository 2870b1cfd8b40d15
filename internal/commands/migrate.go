package commands

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		// openApp migrates as part of startup.
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		cmd.Println("migrations applied")
		return nil
	},
}
