package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/ogurasousui/codex-roster/internal/platform/config"
	pg "github.com/ogurasousui/codex-roster/internal/platform/db/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	flag.Parse()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}

	cfg, err := config.Load(effectiveConfigPath(*configPath))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := runMigration(action, cfg.Database.DSN()); err != nil {
		log.Fatalf("migration %s failed: %v", action, err)
	}

	log.Printf("migration %s completed", action)
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return config.DefaultPath
}

func runMigration(action, dsn string) error {
	m, err := pg.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	switch action {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, applied, err := m.Version()
		if err != nil {
			return err
		}
		if !applied {
			log.Printf("no migration applied")
			return nil
		}
		log.Printf("version=%d dirty=%t", version, dirty)
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}
