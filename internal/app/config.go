package app

import (
	"fmt"
	"os"
	"strings"
)

// Поддерживаемые драйверы хранилища.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	// HTTPAddr — адрес основного HTTP-сервера API.
	HTTPAddr string
	// StorageDriver — memory или postgres.
	StorageDriver string
	// PostgresDSN — строка подключения для драйвера postgres.
	PostgresDSN string
	// PostgresAutoMigrate — применять ли миграции при старте.
	PostgresAutoMigrate bool
	// KafkaBrokers — брокеры Kafka; пустой список отключает публикацию событий.
	KafkaBrokers []string
	// SeedDemoData — заполнять ли каталог демо-товарами (только memory).
	SeedDemoData bool
}

// DefaultConfig возвращает конфигурацию для локального запуска:
// in-memory хранилище с демо-каталогом, без Kafka.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		StorageDriver:       StorageMemory,
		PostgresAutoMigrate: true,
		SeedDemoData:        true,
	}
}

// LoadConfig читает конфигурацию из окружения поверх значений по умолчанию.
// Все переменные имеют префикс STOREFRONT_.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if addr := os.Getenv("STOREFRONT_HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}
	if driver := os.Getenv("STOREFRONT_STORAGE_DRIVER"); driver != "" {
		cfg.StorageDriver = driver
	}
	if dsn := os.Getenv("STOREFRONT_POSTGRES_DSN"); dsn != "" {
		cfg.PostgresDSN = dsn
	}
	if raw := os.Getenv("STOREFRONT_POSTGRES_AUTO_MIGRATE"); raw != "" {
		cfg.PostgresAutoMigrate = raw == "true" || raw == "1"
	}
	if brokers := os.Getenv("STOREFRONT_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	if raw := os.Getenv("STOREFRONT_SEED_DEMO_DATA"); raw != "" {
		cfg.SeedDemoData = raw == "true" || raw == "1"
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность конфигурации.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres storage requires STOREFRONT_POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	return nil
}
