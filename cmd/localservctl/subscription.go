package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"localserv/internal/domain"
)

func newSubscriptionCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Manage plan subscriptions",
	}
	var (
		email string
		plan  string
		days  int
	)
	activate := &cobra.Command{
		Use:   "activate",
		Short: "Activate a plan for an account, replacing its current subscription",
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
			subs, err := c.subscriptions(ctx)
			if err != nil {
				return err
			}
			sub, err := subs.ActivateSubscription(ctx, p.ID, strings.TrimSpace(plan), days)
			if err != nil {
				return fmt.Errorf("failed to activate subscription: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s (%s) now on plan %s until %s\n",
				p.ID, p.Email, sub.PlanName, sub.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
	activate.Flags().StringVar(&email, "email", "", "account email")
	activate.Flags().StringVar(&plan, "plan", "", "plan id")
	activate.Flags().IntVar(&days, "days", domain.DefaultSubscriptionDays, "subscription length in days")
	_ = activate.MarkFlagRequired("email")
	_ = activate.MarkFlagRequired("plan")
	cmd.AddCommand(activate)
	return cmd
}

func newHighlightCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "highlight",
		Short: "Manage listing highlights",
	}
	var (
		listing string
		days    int
	)
	activate := &cobra.Command{
		Use:   "activate",
		Short: "Highlight a listing for a number of days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()
			subs, err := c.subscriptions(ctx)
			if err != nil {
				return err
			}
			h, err := subs.ActivateHighlight(ctx, strings.TrimSpace(listing), days)
			if err != nil {
				return fmt.Errorf("failed to activate highlight: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listing %s highlighted until %s\n", h.ListingID, h.EndsAt.Format(time.RFC3339))
			return nil
		},
	}
	activate.Flags().StringVar(&listing, "listing", "", "listing id")
	activate.Flags().IntVar(&days, "days", domain.DefaultHighlightDays, "highlight length in days")
	_ = activate.MarkFlagRequired("listing")
	cmd.AddCommand(activate)
	return cmd
}
