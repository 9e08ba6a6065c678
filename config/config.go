package config

import (
	"os"
)

type Config struct {
	// 数据库配置
	DatabaseURL string

	// 服务器配置
	Host string
	Port string

	// AMQP配置 (为空时不启用事件发布)
	AMQPURL      string
	AMQPExchange string

	// 其他配置
	Environment string
}

func Load() *Config {
	return &Config{
		// 数据库配置
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/sportsdata?sslmode=disable"),

		// 服务器配置
		Host: getEnv("HOST", "0.0.0.0"),
		Port: getEnv("PORT", "8000"),

		// AMQP配置
		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "match_events"),

		// 其他配置
		Environment: getEnv("ENVIRONMENT", "development"),
	}
}

// Addr 返回HTTP监听地址
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
