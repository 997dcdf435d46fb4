package postgres

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrator は埋め込みのマイグレーションを適用します。
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator は dsn に対する Migrator を生成します。
func NewMigrator(dsn string) (*Migrator, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("postgres: open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return nil, errors.Join(ErrUnavailable, fmt.Errorf("postgres: create migrate instance: %w", err))
	}

	return &Migrator{m: m}, nil
}

// Up は未適用のマイグレーションをすべて適用します。
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: migrate up: %w", err)
	}
	return nil
}

// Down はすべてのマイグレーションを巻き戻します。
func (m *Migrator) Down() error {
	if err := m.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: migrate down: %w", err)
	}
	return nil
}

// Drop はデータベース内のすべてのオブジェクトを削除します。
func (m *Migrator) Drop() error {
	return m.m.Drop()
}

// Version は現在のバージョンを返します。未適用の場合 applied は false です。
func (m *Migrator) Version() (version uint, dirty, applied bool, err error) {
	version, dirty, err = m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, err
	}
	return version, dirty, true, nil
}

// Close はソースとデータベースの接続を閉じます。
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

// MigrateUp は dsn に対して未適用のマイグレーションを適用します。
func MigrateUp(dsn string) error {
	m, err := NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}
