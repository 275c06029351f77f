package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/yourusername/quizbank-api/internal/pkg/errors"
)

func newTokenCmd(a *app) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin API token for a staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repos, svcs, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer repos.Close()

			u, err := repos.Users.GetByUsername(ctx, username)
			if err != nil {
				return err
			}
			if !u.IsAdmin() {
				return fmt.Errorf("%w: %q is not an active staff account", apperrors.ErrForbidden, username)
			}
			token, expires, err := svcs.JWT.GenerateToken(u)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expires.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Staff login name (required)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
