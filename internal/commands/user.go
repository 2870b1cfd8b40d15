package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"tickbug-backend/internal/models"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Example: `  tickbug user create --email ada@example.com --password 's3cret!' --first Ada --last Lovelace`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		email, _ := flags.GetString("email")
		password, _ := flags.GetString("password")
		first, _ := flags.GetString("first")
		last, _ := flags.GetString("last")
		if email == "" || password == "" {
			return errors.New("--email and --password are required")
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		u, err := a.svc.Users.Register(commandContext(cmd), models.RegisterRequest{
			Email:     email,
			Password:  password,
			FirstName: first,
			LastName:  last,
		})
		if err != nil {
			return err
		}
		cmd.Printf("created user %d <%s>\n", u.ID, u.Email)
		return nil
	},
}

func init() {
	userCreateCmd.Flags().String("email", "", "email address")
	userCreateCmd.Flags().String("password", "", "initial password")
	userCreateCmd.Flags().String("first", "", "first name")
	userCreateCmd.Flags().String("last", "", "last name")
	userCmd.AddCommand(userCreateCmd)
}
