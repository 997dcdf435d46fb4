package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ogurasousui/codex-roster/internal/adapters/cli"
	"github.com/ogurasousui/codex-roster/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-roster/internal/adapters/seed"
	"github.com/ogurasousui/codex-roster/internal/core/employee"
	"github.com/ogurasousui/codex-roster/internal/platform/config"
	pg "github.com/ogurasousui/codex-roster/internal/platform/db/postgres"
	"github.com/ogurasousui/codex-roster/internal/platform/logger"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = config.DefaultPath
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		fmt.Fprintln(os.Stdout, "Application error")
		return 1
	}

	log, err := logger.New(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		fmt.Fprintln(os.Stdout, "Application error")
		return 1
	}
	defer func() { _ = log.Sync() }()

	app := cli.NewApp(openService(cfg, log), os.Stdin, os.Stdout, log)
	return app.Run(ctx, os.Args[1:])
}

// openService はデータベースに接続し、必要に応じて移行と初期データ投入を行ってからサービスを返します。
func openService(cfg *config.Config, log *zap.Logger) cli.Opener {
	return func(ctx context.Context) (employee.UseCase, func(), error) {
		pool, err := pg.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize database pool: %w", err)
		}

		if cfg.Migrate.OnStartup {
			if err := pg.MigrateUp(cfg.Database.DSN()); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("apply migrations: %w", err)
			}
			log.Debug("migrations applied")
		}

		svc := employee.NewService(postgres.NewEmployeeRepository(pool), nil, pg.NewTransactionManager(pool))

		if cfg.Seed.Enabled {
			inserted, err := svc.SeedIfEmpty(ctx, seed.NewGenerator(cfg.Seed.Count, nil).Generate)
			if err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("seed employees: %w", err)
			}
			if inserted > 0 {
				log.Info("seeded empty roster", zap.Int("employees", inserted))
			}
		}

		return svc, pool.Close, nil
	}
}
