package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Order    OrderConfig    `yaml:"order"`
	Loyalty  LoyaltyConfig  `yaml:"loyalty"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type OrderConfig struct {
	// TaxRate is applied to the order subtotal at placement, e.g. 0.1 for 10%.
	TaxRate float64 `yaml:"tax_rate"`
}

type LoyaltyConfig struct {
	// RedeemValue is the currency value of a single redeemed point.
	RedeemValue float64 `yaml:"redeem_value"`
}

func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv builds a config from environment variables, reading a .env file
// first when one is present.
func LoadEnv() *Config {
	_ = godotenv.Load()

	cfg := defaultConfig()
	cfg.Database = DatabaseConfig{
		Host:     getEnv("POSTGRES_HOST", "localhost"),
		Port:     getEnvInt("POSTGRES_PORT", 5432),
		User:     getEnv("POSTGRES_USER", "admin"),
		Password: getEnv("POSTGRES_PASSWORD", "admin"),
		Database: getEnv("POSTGRES_DBNAME", "dinehub_db"),
	}
	cfg.RabbitMQ = RabbitMQConfig{
		Host:     getEnv("RABBITMQ_HOST", "localhost"),
		Port:     getEnvInt("RABBITMQ_PORT", 5672),
		User:     getEnv("RABBITMQ_USER", "guest"),
		Password: getEnv("RABBITMQ_PASSWORD", "guest"),
	}
	return cfg
}

func defaultConfig() *Config {
	return &Config{
		Order:   OrderConfig{TaxRate: 0.10},
		Loyalty: LoyaltyConfig{RedeemValue: 0.01},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
