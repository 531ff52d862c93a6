package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"localserv/internal/adapter/repo"
	"localserv/internal/infra"
	"localserv/internal/infra/credentials"
)

// cli holds what the subcommands share. The database is opened lazily so that
// help and flag errors never need one.
type cli struct {
	out     io.Writer
	logger  infra.Logger
	timeout time.Duration

	pool   *pgxpool.Pool
	runner *infra.SQLRunner
}

func main() {
	_ = godotenv.Load()
	c := &cli{out: os.Stdout, logger: infra.NewLogger(os.Getenv("APP_ENV"))}
	root := newRootCmd(c)
	err := root.Execute()
	c.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "localservctl",
		Short:         "Administer the localserv marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 10*time.Second, "Operation timeout")
	root.SetOut(c.out)

	root.AddCommand(
		newMigrateCmd(c),
		newUserCmd(c),
		newSubscriptionCmd(c),
		newHighlightCmd(c),
		newPlansCmd(c),
		newCredentialsCmd(c),
	)
	return root
}

func databaseURL() (string, error) {
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		return "", errors.New("DATABASE_URL is required")
	}
	return dbURL, nil
}

func (c *cli) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), c.timeout)
}

func (c *cli) sql(ctx context.Context) (*infra.SQLRunner, error) {
	if c.runner != nil {
		return c.runner, nil
	}
	dbURL, err := databaseURL()
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	c.pool = pool
	c.runner = infra.NewSQLRunner(pool, infra.Component(c.logger, "sql"))
	return c.runner, nil
}

func (c *cli) close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

func (c *cli) profiles(ctx context.Context) (*repo.ProfileRepository, error) {
	runner, err := c.sql(ctx)
	if err != nil {
		return nil, err
	}
	return repo.NewProfileRepository(runner), nil
}

func (c *cli) subscriptions(ctx context.Context) (*repo.SubscriptionRepository, error) {
	runner, err := c.sql(ctx)
	if err != nil {
		return nil, err
	}
	return repo.NewSubscriptionRepository(runner), nil
}

func (c *cli) credentials(ctx context.Context) (*credentials.Store, error) {
	runner, err := c.sql(ctx)
	if err != nil {
		return nil, err
	}
	return credentials.NewStore(runner), nil
}

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbURL, err := databaseURL()
			if err != nil {
				return err
			}
			if err := infra.Migrate(cmd.Context(), dbURL, infra.Component(c.logger, "migrate")); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newCredentialsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage third-party API credentials",
	}
	var key string
	gemini := &cobra.Command{
		Use:   "gemini",
		Short: "Store the Gemini API key used for text enhancement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key = strings.TrimSpace(key)
			if key == "" {
				key = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
			}
			if key == "" {
				return errors.New("GEMINI API key is required via --key or GEMINI_API_KEY")
			}
			ctx, cancel := c.context(cmd)
			defer cancel()
			store, err := c.credentials(ctx)
			if err != nil {
				return err
			}
			if err := store.SetGeminiAPIKey(ctx, key); err != nil {
				return fmt.Errorf("failed to persist gemini api key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "GEMINI API key stored successfully")
			return nil
		},
	}
	gemini.Flags().StringVar(&key, "key", "", "API key (falls back to GEMINI_API_KEY)")
	cmd.AddCommand(gemini)
	return cmd
}
