package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"fruitstore/internal/config"
	"fruitstore/internal/database"
	"fruitstore/internal/model"
	"fruitstore/internal/repository"
	"fruitstore/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type sampleFruit struct {
	name  string
	price string
	stock int
}

// Sample catalogue. Prices are per unit.
var sampleFruits = []sampleFruit{
	{"Apple", "1000", 120},
	{"Banana", "500", 200},
	{"Mango", "2500", 45},
	{"Orange", "1200", 80},
	{"Durian", "15000", 8},
	{"Strawberry", "3000", 0},
}

var sampleCustomers = []model.CreateCustomerRequest{
	{Name: "Walk-in Customer", Email: "walkin@fruitstore.local"},
	{Name: "Green Grocer Ltd", Email: "orders@greengrocer.example"},
}

var (
	adminEmail    string
	adminPassword string
	migrateFirst  bool
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample fruits, customers and an admin user",
	Long: `seed fills an empty fruitstore database with a small catalogue, two customers
and one ADMIN user. Existing rows with the same name or email are left alone,
so running it twice is harmless.`,
	SilenceUsage: true,
	RunE:         runSeed,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the database is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
			var dbName, version string
			if err := pool.QueryRow(ctx, "SELECT current_database(), version()").Scan(&dbName, &version); err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connected to %s\n%s\n", dbName, version)
			return nil
		})
	},
}

func init() {
	rootCmd.Flags().StringVar(&adminEmail, "admin-email", "admin@fruitstore.local", "email of the ADMIN user to create")
	rootCmd.Flags().StringVar(&adminPassword, "admin-password", "", "password of the ADMIN user (skipped when empty)")
	rootCmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply pending migrations before seeding")
	rootCmd.AddCommand(checkCmd)
}

func withPool(ctx context.Context, fn func(context.Context, *pgxpool.Pool, zerolog.Logger) error) error {
	cfg, err := config.LoadMigrate()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, pool, logger)
}

func runSeed(cmd *cobra.Command, args []string) error {
	return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
		if migrateFirst {
			if err := database.NewMigrator(pool, logger).Up(ctx); err != nil {
				return err
			}
		}

		fruits := service.NewFruitService(
			repository.NewFruitRepository(pool, logger),
			repository.NewStockHistoryRepository(pool, logger),
			nil, 0, logger,
		)
		customers := service.NewCustomerService(
			repository.NewCustomerRepository(pool, logger),
			repository.NewOrderRepository(pool, logger),
			logger,
		)
		users := service.NewUserService(repository.NewUserRepository(pool, logger), 0, logger)

		if err := seedFruits(ctx, fruits, logger); err != nil {
			return err
		}

		for _, req := range sampleCustomers {
			_, err := customers.Create(ctx, &req)
			if errors.Is(err, model.ErrDuplicateCustomerEmail) {
				logger.Info().Str("email", req.Email).Msg("customer exists, skipping")
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to seed customer %s: %w", req.Email, err)
			}
		}

		if adminPassword == "" {
			logger.Info().Msg("no admin password given, skipping admin user")
			return nil
		}
		_, err := users.Create(ctx, &model.CreateUserRequest{
			Name:     "Administrator",
			Email:    adminEmail,
			Password: adminPassword,
			Role:     model.RoleAdmin,
		})
		if errors.Is(err, model.ErrDuplicateUserEmail) {
			logger.Info().Str("email", adminEmail).Msg("admin exists, skipping")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
		return nil
	})
}

func seedFruits(ctx context.Context, fruits service.FruitService, logger zerolog.Logger) error {
	for _, f := range sampleFruits {
		page, err := fruits.Search(ctx, model.FruitFilter{Query: f.name, Limit: 100})
		if err != nil {
			return fmt.Errorf("failed to look up fruit %s: %w", f.name, err)
		}
		if containsName(page.Items, f.name) {
			logger.Info().Str("name", f.name).Msg("fruit exists, skipping")
			continue
		}

		if _, err := fruits.Create(ctx, &model.CreateFruitRequest{
			Name:  f.name,
			Price: decimal.RequireFromString(f.price),
			Stock: f.stock,
		}); err != nil {
			return fmt.Errorf("failed to seed fruit %s: %w", f.name, err)
		}
	}
	return nil
}

func containsName(items []model.Fruit, name string) bool {
	for _, item := range items {
		if strings.EqualFold(item.Name, name) {
			return true
		}
	}
	return false
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
