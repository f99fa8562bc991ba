package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	appMigrations "github.com/eduhealth/schoolhealth/internal/app/migrations"
	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	appRepos "github.com/eduhealth/schoolhealth/internal/app/repositories"
	"github.com/eduhealth/schoolhealth/internal/app/services"
	"github.com/eduhealth/schoolhealth/internal/bootstrap"
	"github.com/eduhealth/schoolhealth/internal/config"
	"github.com/eduhealth/schoolhealth/internal/db"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "schoolhealth-admin",
		Short:        "School health administration tasks",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(createUserCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// connect loads the configuration and opens a pool; callers close the pool
func connect() (*config.Config, *pgxpool.Pool, zerolog.Logger, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, nil, lgr, err
	}
	pool, err := db.NewPool(cfg)
	if err != nil {
		return nil, nil, lgr, err
	}
	return cfg, pool, lgr, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, lgr, err := connect()
			if err != nil {
				return err
			}
			defer pool.Close()

			return bootstrap.RunMigrations(cmd.Context(), cfg, pool, lgr)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, _, err := connect()
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := appMigrations.NewMigrator(pool).Applied(cmd.Context())
			if err != nil {
				return err
			}
			appliedAt := make(map[string]string, len(applied))
			for _, m := range applied {
				appliedAt[m.Version] = m.AppliedAt.Format("2006-01-02 15:04:05")
			}

			files, err := appMigrations.PendingFiles(cfg.Database.MigrationsDir)
			if err != nil {
				return err
			}

			fmt.Printf("%-40s %-10s %s\n", "FILE", "STATUS", "APPLIED AT")
			for _, f := range files {
				status, at := "pending", ""
				if ts, ok := appliedAt[appMigrations.VersionOf(f)]; ok {
					status, at = "applied", ts
				}
				fmt.Printf("%-40s %-10s %s\n", f, status, at)
			}
			return nil
		},
	})

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default admin account and classes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, lgr, err := connect()
			if err != nil {
				return err
			}
			defer pool.Close()

			return bootstrap.SeedDefaults(cmd.Context(), cfg, appRepos.NewRepositories(pool), lgr)
		},
	}
}

func createUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an admin, staff or parent account",
		RunE: func(cmd *cobra.Command, args []string) error {
			roleFlag, _ := cmd.Flags().GetString("role")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			name, _ := cmd.Flags().GetString("name")

			role := models.RoleType(strings.ToUpper(roleFlag))
			if !role.IsValid() {
				return fmt.Errorf("unknown role %q (want admin, staff or parent)", roleFlag)
			}
			if email == "" || len(password) < 8 || name == "" {
				return errors.New("--email, --name and a --password of at least 8 characters are required")
			}

			_, pool, lgr, err := connect()
			if err != nil {
				return err
			}
			defer pool.Close()

			repos := appRepos.NewRepositories(pool)
			accounts := services.NewAccountService(role, repos.UserRepository, repos.StudentRepository, lgr)
			user, err := accounts.Create(cmd.Context(), &dto.CreateAccountRequest{
				Email:    email,
				Password: password,
				FullName: name,
			})
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Printf("Created %s account %d (%s)\n", user.RoleType, user.ID, user.Email)
			return nil
		},
	}
	cmd.Flags().String("role", "staff", "Account role: admin, staff or parent")
	cmd.Flags().String("email", "", "Login email")
	cmd.Flags().String("password", "", "Initial password")
	cmd.Flags().String("name", "", "Full name")
	return cmd
}
