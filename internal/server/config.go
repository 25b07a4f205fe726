package server

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"taskhub/internal/domain/errors"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string `json:"addr"`
	Port        int    `json:"port"`
	DBStr       string `json:"db_str"`
	MigratePath string `json:"migrate_path"`
	SecretKey   string `json:"secret_key"`
}

const (
	defaultAddr        = "0.0.0.0"
	defaultPort        = 8080
	defaultDBStr       = "postgresql://shouldbeinVaultuser:shouldbeinVaultpassword@db:5432/taskhub?sslmode=disable"
	defaultMigratePath = "migrations"
	defaultSecretKey   = "shouldbeinVaultsecret"
)

var (
	addr        = flag.String("addr", defaultAddr, "адрес сервера (по умолчанию 0.0.0.0)")
	port        = flag.Int("port", defaultPort, "порт сервера (по умолчанию 8080)")
	dbstr       = flag.String("dbstr", defaultDBStr, "строка подключения к БД (по умолчанию стандартная)")
	dbDsn       = flag.String("dbdsn", "", "DSN для подключения к базе данных (приоритетнее dbstr)")
	migratePath = flag.String("migratepath", defaultMigratePath, "путь к папке с миграциями")
	secretKey   = flag.String("secret", "", "секрет для подписи сессионных токенов")
	configFile  = flag.String("c", "", "путь к файлу конфигурации JSON")
	parsed      = false
)

func ReadConfig() *Config {
	if !parsed {
		flag.Parse()
		parsed = true
	}

	_ = godotenv.Load(".env")

	cfg := &Config{
		Addr:        defaultAddr,
		Port:        defaultPort,
		DBStr:       defaultDBStr,
		MigratePath: defaultMigratePath,
		SecretKey:   defaultSecretKey,
	}

	jsonConfig := loadJSONConfig()
	if jsonConfig != nil {
		cfg = jsonConfig
	}

	cfg = applyEnvOverrides(cfg)
	cfg = applyFlagOverrides(cfg)

	return cfg
}

func loadJSONConfig() *Config {
	configPath := *configFile
	if configPath == "" {
		configPath = os.Getenv("CONFIG")
	}

	if configPath == "" {
		return nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		fmt.Printf("Warning: %s %s: %v\n", errors.ErrConfigFileReadFailed.Error(), configPath, err)
		return nil
	}

	var jsonConfig Config
	if err := json.Unmarshal(data, &jsonConfig); err != nil {
		fmt.Printf("Warning: %s: %v\n", errors.ErrConfigParseFailed.Error(), err)
		return nil
	}

	fmt.Printf("JSON конфигурация успешно загружена из: %s\n", configPath)
	return &jsonConfig
}

func applyEnvOverrides(cfg *Config) *Config {
	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err != nil {
			fmt.Printf("Warning: %s в переменной окружения PORT: %s\n", errors.ErrConfigInvalidFormat.Error(), port)
		} else if p < 1 || p > 65535 {
			fmt.Printf("Warning: %s - порт должен быть от 1 до 65535: %d\n", errors.ErrConfigInvalidFormat.Error(), p)
		} else {
			cfg.Port = p
		}
	}
	if dbStr := os.Getenv("DB_STR"); dbStr != "" {
		cfg.DBStr = dbStr
	}
	if migratePath := os.Getenv("MIGRATE_PATH"); migratePath != "" {
		cfg.MigratePath = migratePath
	}
	if secret := os.Getenv("SECRET_KEY"); secret != "" {
		cfg.SecretKey = secret
	}

	if cfg.DBStr == defaultDBStr {
		dbUser := os.Getenv("DB_USER")
		dbPassword := os.Getenv("DB_PASSWORD")
		dbName := os.Getenv("DB_NAME")
		dbHost := os.Getenv("DB_HOST")
		dbPort := os.Getenv("DB_PORT")
		if dbUser != "" && dbPassword != "" && dbName != "" && dbHost != "" && dbPort != "" {
			cfg.DBStr = fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, dbHost, dbPort, dbName)
		}
	}

	return cfg
}

// Флаги имеют высший приоритет, но не затирают значения из окружения
// своими значениями по умолчанию.
func applyFlagOverrides(cfg *Config) *Config {
	if *addr != defaultAddr {
		cfg.Addr = *addr
	}
	if *port != defaultPort {
		cfg.Port = *port
	}
	if *migratePath != defaultMigratePath {
		cfg.MigratePath = *migratePath
	}
	if *secretKey != "" {
		cfg.SecretKey = *secretKey
	}

	if *dbDsn != "" {
		cfg.DBStr = *dbDsn
	} else if *dbstr != defaultDBStr {
		cfg.DBStr = *dbstr
	}

	return cfg
}
