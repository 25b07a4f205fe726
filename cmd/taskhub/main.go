package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskhub/internal/server"
	db "taskhub/repository/db"
	inmemory "taskhub/repository/inmemory"
)

func main() {
	log.Println("Запуск сервиса TaskHub...")

	cfg := server.ReadConfig()

	repo, sessions := initRepositories(cfg)

	api := server.NewTaskHubAPI(repo, sessions, cfg)
	if api == nil {
		log.Fatal("[ERROR] Не удалось инициализировать API")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Сервис запущен на %s:%d", cfg.Addr, cfg.Port)
		if err := api.Start(); err != nil {
			serverErr <- err
		}
	}()

	select {
	case sig := <-sigChan:
		log.Printf("[INFO] Получен сигнал %v, начинаем graceful shutdown...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := api.Shutdown(shutdownCtx); err != nil {
			log.Printf("[ERROR] Ошибка при graceful shutdown: %v", err)
		} else {
			log.Println("[SUCCESS] Graceful shutdown выполнен успешно")
		}

	case err := <-serverErr:
		log.Printf("[ERROR] Ошибка сервера: %v", err)
	}

	log.Println("Сервис завершен")
}

// initRepositories подключает Postgres, а при недоступной базе переходит
// на хранилище в памяти, чтобы сервис оставался пригодным для разработки.
func initRepositories(cfg *server.Config) (server.Repository, server.SessionRepository) {
	if err := db.Migration(cfg.DBStr, cfg.MigratePath); err != nil {
		log.Println("[WARN] Не удалось применить миграции:", err)
	} else {
		log.Println("[SUCCESS] Миграции применены успешно")
	}

	dbStorage, err := db.NewStorage(cfg.DBStr)
	if err != nil {
		log.Println("[WARN] Не удалось подключиться к БД, используем память:", err)
		inmem := inmemory.NewStorage()
		return inmem, inmem
	}
	return dbStorage, dbStorage
}
