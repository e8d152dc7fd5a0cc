package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/researchmem/researchmem/internal/app/config"
	"github.com/researchmem/researchmem/internal/infrastructure/database"
	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/researchmem/researchmem/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	command := os.Args[1]

	// Initialize logger
	logger := logger.New()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.New(cfg.GetDatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	switch command {
	case "up":
		runMigrations(db, logger)
	case "reset":
		resetDatabase(db, logger)
	case "seed":
		seedDatabase(db, logger)
	case "status":
		migrationStatus(db, logger)
	default:
		logger.Error("Unknown command", "command", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Usage: go run cmd/migrate/main.go <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  up     - Run all pending migrations")
	fmt.Println("  reset  - Drop all tables and recreate them")
	fmt.Println("  seed   - Seed the database with a development user")
	fmt.Println("  status - Show migration status")
}

func runMigrations(db *database.DB, logger *logger.Logger) {
	logger.Info("Running database migrations...")

	// Auto-migrate all models
	if err := db.AutoMigrate(models.GetAllModels()...); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		return
	}

	// Create indexes for better performance
	if err := createIndexes(db); err != nil {
		logger.Error("Failed to create indexes", "error", err)
		return
	}

	logger.Info("Database migrations completed successfully")
}

func resetDatabase(db *database.DB, logger *logger.Logger) {
	logger.Info("Resetting database...")

	// Drop in reverse order to handle foreign key constraints
	tables := []interface{}{
		&models.Job{},
		&models.Project{},
		&models.File{},
		&models.User{},
	}

	for _, table := range tables {
		if err := db.Migrator().DropTable(table); err != nil {
			logger.Error("Failed to drop table", "error", err)
		}
	}

	if err := db.Exec("DROP TABLE IF EXISTS project_files").Error; err != nil {
		logger.Error("Failed to drop junction table", "table", "project_files", "error", err)
	}

	runMigrations(db, logger)

	logger.Info("Database reset completed")
}

func seedDatabase(db *database.DB, logger *logger.Logger) {
	logger.Info("Seeding database with a development user...")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash seed password", "error", err)
		return
	}

	devUser := &models.User{
		Email:        "dev@localhost",
		Username:     "dev",
		PasswordHash: string(hash),
	}

	if err := db.FirstOrCreate(devUser, models.User{Email: "dev@localhost"}).Error; err != nil {
		logger.Error("Failed to create development user", "error", err)
		return
	}

	logger.Info("Database seeding completed successfully", "user_id", devUser.ID)
}

func migrationStatus(db *database.DB, logger *logger.Logger) {
	logger.Info("Checking migration status...")

	tables := map[string]interface{}{
		"users":    &models.User{},
		"files":    &models.File{},
		"projects": &models.Project{},
		"jobs":     &models.Job{},
	}

	for tableName, model := range tables {
		exists := db.Migrator().HasTable(model)
		status := "exists"
		if !exists {
			status = "missing"
		}
		logger.Info("Table status", "table", tableName, "status", status)
	}

	junctionExists := db.Migrator().HasTable("project_files")
	status := "exists"
	if !junctionExists {
		status = "missing"
	}
	logger.Info("Junction table status", "table", "project_files", "status", status)
}

func createIndexes(db *database.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_files_owner_status ON files(user_id, file_status)",
		"CREATE INDEX IF NOT EXISTS idx_files_created_at ON files(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_projects_owner_deleted ON projects(user_id, is_deleted)",
		"CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_jobs_file_status ON jobs(file_id, status)",
	}

	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
