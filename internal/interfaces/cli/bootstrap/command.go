package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/infrastructure/auth"
	"github.com/guardino-io/guardino/internal/infrastructure/config"
	"github.com/guardino-io/guardino/internal/infrastructure/database"
	"github.com/guardino-io/guardino/internal/infrastructure/repository"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

var (
	env      string
	username string
	password string
)

// NewCommand builds the bootstrap subcommand. It migrates the schema and
// creates the root reseller so a fresh deployment can log in.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Migrate the database and create the root reseller",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&username, "username", "u", "root", "Root reseller username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Root reseller password (or GUARDINO_ROOT_PASSWORD)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if password == "" {
		password = os.Getenv("GUARDINO_ROOT_PASSWORD")
	}
	if password == "" {
		return fmt.Errorf("root password is required")
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	ctx := context.Background()
	resellerRepo := repository.NewResellerRepository(database.Get(), log)

	existing, err := resellerRepo.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check for existing reseller: %w", err)
	}
	if existing != nil {
		log.Infow("root reseller already exists", "username", username)
		return nil
	}

	hasher := auth.NewBcryptPasswordHasher(cfg.Auth.Password.BcryptCost)
	hash, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	root, err := reseller.NewReseller(username, hash, reseller.Root(), 0, 0, 0, true)
	if err != nil {
		return fmt.Errorf("failed to build root reseller: %w", err)
	}

	if err := resellerRepo.Create(ctx, root); err != nil {
		return fmt.Errorf("failed to create root reseller: %w", err)
	}

	log.Infow("root reseller created", "username", username, "id", root.ID())
	return nil
}
