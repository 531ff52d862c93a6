package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"localserv/internal/domain"
)

// planCatalog is the YAML layout accepted by "plans import".
type planCatalog struct {
	Plans []domain.Plan `yaml:"plans"`
}

func parsePlanCatalog(r io.Reader) ([]domain.Plan, error) {
	var catalog planCatalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("decode plan catalog: %w", err)
	}
	if len(catalog.Plans) == 0 {
		return nil, fmt.Errorf("plan catalog is empty")
	}
	seen := make(map[string]struct{}, len(catalog.Plans))
	for _, p := range catalog.Plans {
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("plan %q is listed twice", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return catalog.Plans, nil
}

func newPlansCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Manage the plan catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create or update plans from a YAML catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			plans, err := parsePlanCatalog(f)
			if err != nil {
				return err
			}

			ctx, cancel := c.context(cmd)
			defer cancel()
			subs, err := c.subscriptions(ctx)
			if err != nil {
				return err
			}
			for _, p := range plans {
				saved, err := subs.UpsertPlan(ctx, p)
				if err != nil {
					return fmt.Errorf("plan %q: %w", p.ID, err)
				}
				limit := fmt.Sprint(saved.AdLimit)
				if saved.Unlimited() {
					limit = "unlimited"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "plan %s (%s) limit=%s\n", saved.ID, saved.Name, limit)
			}
			return nil
		},
	})
	return cmd
}
