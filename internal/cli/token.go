package cli

import (
	"fmt"
	"time"

	"go-approvals/internal/features/user"
	"go-approvals/pkg/utils"

	"github.com/spf13/cobra"
)

var (
	tokenUsername string
	tokenTTL      time.Duration
)

func init() {
	tokenCmd.Flags().StringVar(&tokenUsername, "username", "", "user to mint the token for (required)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 72*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("username")
	rootCmd.AddCommand(tokenCmd)
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for an existing user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		u, err := user.NewUserRepository(rt.db).FindByUsername(cmd.Context(), tokenUsername)
		if err != nil {
			return err
		}

		utils.SetSecret(rt.cfg.JWTSecret)
		token, err := utils.GenerateToken(u.ID, string(u.Role), tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
