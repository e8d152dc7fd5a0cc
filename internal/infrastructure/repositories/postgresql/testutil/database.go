package testutil

import (
	"fmt"
	"os"
	"testing"

	"github.com/researchmem/researchmem/internal/infrastructure/database"
	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// TestDB wraps the database for testing
type TestDB struct {
	*database.DB
}

// NewTestDB creates a new test database connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	// Use DATABASE_URL_TEST if available (for Docker), otherwise SQLite
	databaseURL := os.Getenv("DATABASE_URL_TEST")
	if databaseURL == "" {
		// Use SQLite in-memory for testing
		databaseURL = "file::memory:?cache=shared"
		t.Logf("Using SQLite in-memory database for testing")
	} else {
		t.Logf("Using PostgreSQL database for testing: %s", databaseURL)
	}

	db, err := database.New(databaseURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Auto-migrate all models
	if err := db.AutoMigrate(models.GetAllModels()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return &TestDB{DB: db}
}

// Cleanup closes the test database
func (db *TestDB) Cleanup(t *testing.T) {
	t.Helper()
	if err := db.Close(); err != nil {
		t.Errorf("Failed to close test database: %v", err)
	}
}

// CreateTestUser creates a test user
func (db *TestDB) CreateTestUser(t *testing.T) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("test-%s@example.com", uuid.New().String()[:8]),
		Username:     fmt.Sprintf("tester-%s", uuid.New().String()[:8]),
		PasswordHash: "hashedpassword",
		FirstName:    "Test",
		LastName:     "User",
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// CreateTestFile creates a test file owned by user
func (db *TestDB) CreateTestFile(t *testing.T, user *models.User) *models.File {
	t.Helper()

	id := uuid.New()
	file := &models.File{
		ID:            id,
		UserID:        user.ID,
		Slug:          fmt.Sprintf("test-file-%s", id.String()[:8]),
		FileName:      fmt.Sprintf("test-file-%s.pdf", id.String()[:8]),
		FileType:      "application/pdf",
		FileSize:      1024,
		FilePath:      "uploads/test/file.pdf",
		FileExtension: "pdf",
		FileHash:      fmt.Sprintf("hash-%s", id.String()[:16]),
		FileStatus:    models.FileStatusDraft,
		FileMetadata:  models.JSONB{},
		FileTags:      models.StringList{},
	}

	if err := db.Create(file).Error; err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	return file
}

// CreateTestProject creates a test project owned by user
func (db *TestDB) CreateTestProject(t *testing.T, user *models.User) *models.Project {
	t.Helper()

	id := uuid.New()
	project := &models.Project{
		ID:          id,
		UserID:      user.ID,
		Slug:        fmt.Sprintf("test-project-%s", id.String()[:8]),
		Name:        fmt.Sprintf("Test Project %s", id.String()[:8]),
		Description: "A project created for testing",
		Status:      models.ProjectStatusDraft,
	}

	if err := db.Create(project).Error; err != nil {
		t.Fatalf("Failed to create test project: %v", err)
	}

	return project
}

// CreateTestJob creates a test job attached to file
func (db *TestDB) CreateTestJob(t *testing.T, file *models.File) *models.Job {
	t.Helper()

	job := &models.Job{
		ID:      uuid.New(),
		FileID:  &file.ID,
		JobType: models.JobTypeParse,
		Status:  models.JobStatusPending,
	}

	if err := db.Create(job).Error; err != nil {
		t.Fatalf("Failed to create test job: %v", err)
	}

	return job
}
