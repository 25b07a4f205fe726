package db

import (
	"log"

	"taskhub/internal/domain/errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migration применяет миграции из каталога migratePath к базе dbStr.
func Migration(dbStr, migratePath string) error {
	if dbStr == "" || migratePath == "" {
		return errors.ErrInvalidInput
	}

	m, err := migrate.New("file://"+migratePath, dbStr)
	if err != nil {
		log.Println("[ERROR] Не удалось инициализировать миграции:", err)
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Println("[ERROR] Не удалось применить миграции:", err)
		return err
	}
	return nil
}
