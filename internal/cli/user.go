package cli

import (
	"fmt"
	"text/tabwriter"

	"go-approvals/internal/common/models"
	"go-approvals/internal/features/user"

	"github.com/spf13/cobra"
)

var newUser struct {
	username string
	email    string
	role     string
	org      string
	team     string
	timezone string
}

func init() {
	userAddCmd.Flags().StringVar(&newUser.username, "username", "", "login name (required)")
	userAddCmd.Flags().StringVar(&newUser.email, "email", "", "notification address")
	userAddCmd.Flags().StringVar(&newUser.role, "role", string(models.RoleEmployee), "EMPLOYEE, MANAGER or ADMIN")
	userAddCmd.Flags().StringVar(&newUser.org, "org", "", "organization ID")
	userAddCmd.Flags().StringVar(&newUser.team, "team", "", "team ID")
	userAddCmd.Flags().StringVar(&newUser.timezone, "timezone", "UTC", "IANA time zone")
	_ = userAddCmd.MarkFlagRequired("username")

	userCmd.AddCommand(userAddCmd, userListCmd)
	rootCmd.AddCommand(userCmd)
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		u := &models.User{
			Username:       newUser.username,
			Email:          newUser.email,
			Role:           models.Role(newUser.role),
			OrganizationID: newUser.org,
			TeamID:         newUser.team,
			Timezone:       newUser.timezone,
		}
		if err := user.NewUserService(user.NewUserRepository(rt.db)).CreateUser(cmd.Context(), u); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", u.Role, u.Username, u.ID)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		users, err := user.NewUserService(user.NewUserRepository(rt.db)).ListUsers(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tROLE\tEMAIL\tORGANIZATION")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Role, u.Email, u.OrganizationID)
		}
		return w.Flush()
	},
}
