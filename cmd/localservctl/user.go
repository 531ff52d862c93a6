package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newUserCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Block, unblock or promote accounts",
	}
	cmd.AddCommand(
		newUserBlockCmd(c, "block", true),
		newUserBlockCmd(c, "unblock", false),
		newUserAdminCmd(c),
	)
	return cmd
}

func newUserBlockCmd(c *cli, use string, blocked bool) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("%s an account by email", strings.ToUpper(use[:1])+use[1:]),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()
			profiles, err := c.profiles(ctx)
			if err != nil {
				return err
			}
			p, err := profiles.GetProfileByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
			if err != nil {
				return fmt.Errorf("failed to load user %s: %w", email, err)
			}
			if err := profiles.SetBlocked(ctx, p.ID, blocked); err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s (%s) blocked=%t\n", p.ID, p.Email, blocked)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newUserAdminCmd(c *cli) *cobra.Command {
	var (
		email  string
		revoke bool
	)
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Grant or revoke the admin role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()
			profiles, err := c.profiles(ctx)
			if err != nil {
				return err
			}
			p, err := profiles.GetProfileByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
			if err != nil {
				return fmt.Errorf("failed to load user %s: %w", email, err)
			}
			if err := profiles.SetAdmin(ctx, p.ID, !revoke); err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s (%s) admin=%t\n", p.ID, p.Email, !revoke)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove the admin role instead")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
