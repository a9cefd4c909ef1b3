package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rakhulsr/techstore-api/app/configs"
	"github.com/Rakhulsr/techstore-api/app/db/seeders"
	"github.com/Rakhulsr/techstore-api/app/models/migrations"
	"github.com/Rakhulsr/techstore-api/app/routes"
	"github.com/Rakhulsr/techstore-api/app/services"
	"github.com/Rakhulsr/techstore-api/app/utils/format"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// ensureSecret refuses to boot production without a signing secret. Local runs
// get a throwaway one, so tokens die with the process.
func ensureSecret(env *configs.ENV) error {
	if env.JWTSecret != "" {
		return nil
	}
	if env.IsProduction() {
		return errors.New("JWT_SECRET is required in production, run `generate-keys`")
	}
	secret, err := configs.GenerateJWTSecret()
	if err != nil {
		return err
	}
	env.JWTSecret = secret
	log.Warn().Msg("JWT_SECRET is empty, using an ephemeral secret. Tokens will not survive a restart")
	return nil
}

func bootstrap(env *configs.ENV) (*gorm.DB, *services.Registry, error) {
	if err := ensureSecret(env); err != nil {
		return nil, nil, err
	}
	db, err := configs.OpenConnection(*env)
	if err != nil {
		return nil, nil, err
	}
	return db, services.NewRegistry(db, *env), nil
}

func serve(ctx context.Context, env configs.ENV, logger zerolog.Logger) error {
	db, reg, err := bootstrap(&env)
	if err != nil {
		return err
	}
	if err := migrations.AutoMigrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	server := &http.Server{
		Addr:              env.Port,
		Handler:           routes.NewRouter(db, reg, env, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("env", env.AppEnv).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}

func RunCli(env configs.ENV, logger zerolog.Logger) {
	cmd := &cli.Command{
		Name:  "techstore",
		Usage: "TechStore e-commerce API",
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, env, logger)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the HTTP API",
				Action: func(ctx context.Context, c *cli.Command) error {
					return serve(ctx, env, logger)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					log.Info().Msg("Migration complete")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Seed the reference catalog, optionally with demo customers and orders",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "customers", Usage: "number of faked customers"},
					&cli.IntFlag{Name: "orders", Usage: "number of faked orders"},
					&cli.IntFlag{Name: "products", Usage: "number of filler products"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					db, reg, err := bootstrap(&env)
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					opts := seeders.Options{
						Customers:     int(c.Int("customers")),
						Orders:        int(c.Int("orders")),
						ExtraProducts: int(c.Int("products")),
					}
					if opts.Orders > 0 && opts.Customers == 0 {
						opts.Customers = 1
					}
					if err := seeders.DBSeed(ctx, db, reg, opts); err != nil {
						return err
					}
					log.Info().Msg("Seeding complete")
					return nil
				},
			},
			{
				Name:  "create-admin",
				Usage: "Create an administrator, or promote an existing account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Value: "Admin"},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Usage: "required when the account does not exist yet"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					db, reg, err := bootstrap(&env)
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					user, created, err := reg.Admin.EnsureAdmin(ctx, c.String("name"), c.String("email"), c.String("password"))
					if err != nil {
						return err
					}
					if created {
						log.Info().Uint("id", user.ID).Str("email", user.Email).Msg("Administrator created")
					} else {
						log.Info().Uint("id", user.ID).Str("email", user.Email).Msg("Account promoted to administrator")
					}
					return nil
				},
			},
			{
				Name:  "stats",
				Usage: "Print the dashboard figures",
				Action: func(ctx context.Context, c *cli.Command) error {
					_, reg, err := bootstrap(&env)
					if err != nil {
						return err
					}
					stats, err := reg.Admin.Stats(ctx)
					if err != nil {
						return err
					}
					if stats.TotalUsers != nil {
						fmt.Printf("Users:    %d\n", *stats.TotalUsers)
					}
					if stats.TotalProducts != nil {
						fmt.Printf("Products: %d\n", *stats.TotalProducts)
					}
					fmt.Printf("Orders:   %d\n", stats.TotalOrders)
					fmt.Printf("Revenue:  %s\n", format.Euro(stats.TotalRevenue))
					return nil
				},
			},
			{
				Name:  "generate-keys",
				Usage: "Generate a new JWT signing secret for .env",
				Action: func(ctx context.Context, c *cli.Command) error {
					if err := configs.GenerateAndPrintKeys(); err != nil {
						return err
					}
					log.Info().Msg("Key generation complete. Please copy the keys to your .env file.")
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}
