package main

import (
	"os"

	"github.com/golang-migrate/migrate/v4"

	"sports-data-service/database"
	"sports-data-service/logger"
)

// 迁移工具：`migrate up` 应用全部迁移，`migrate down` 回退一步
func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatalf("DATABASE_URL environment variable is not set")
	}

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	m, err := database.NewMigrator(databaseURL)
	if err != nil {
		logger.Fatalf("Failed to create migrator: %v", err)
	}
	defer m.Close()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	default:
		logger.Fatalf("Unknown direction: %s (expected up or down)", direction)
	}

	if err != nil && err != migrate.ErrNoChange {
		logger.Fatalf("Migration failed: %v", err)
	}

	logger.Println("Migration completed")
}
