package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Custom status types
type FileStatus string
type ProjectStatus string
type JobType string
type JobStatus string

const (
	// File Status
	FileStatusDraft     FileStatus = "draft"
	FileStatusPending   FileStatus = "pending"
	FileStatusProcessed FileStatus = "processed"
	FileStatusFailed    FileStatus = "failed"

	// Project Status
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusPublished  ProjectStatus = "published"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusFailed     ProjectStatus = "failed"
	ProjectStatusArchived   ProjectStatus = "archived"

	// Job Types
	JobTypeParse JobType = "parse"
	JobTypeEmbed JobType = "embed"
	JobTypeStats JobType = "stats"
	JobTypeChat  JobType = "chat"

	// Job Status
	JobStatusPending JobStatus = "pending"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusError   JobStatus = "error"
)

// ValidProjectStatus reports whether s is a member of the project status enum.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusPublished, ProjectStatusInProgress,
		ProjectStatusFailed, ProjectStatusArchived:
		return true
	}
	return false
}

// ValidFileStatus reports whether s is a member of the file status enum.
func ValidFileStatus(s FileStatus) bool {
	switch s {
	case FileStatusDraft, FileStatusPending, FileStatusProcessed, FileStatusFailed:
		return true
	}
	return false
}

// JSONB type for PostgreSQL jsonb columns
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	case nil:
		*j = nil
		return nil
	}
	return errors.New("unsupported type for JSONB scan")
}

// StringList is an ordered list of strings stored as a jsonb array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	}
	return errors.New("unsupported type for StringList scan")
}

// User is the identity record an uploaded file or project is scoped to.
// Users are created at registration or first OAuth login and never hard-deleted.
type User struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Email         string    `json:"email" gorm:"type:varchar(320);unique;not null"`
	Username      string    `json:"username" gorm:"type:varchar(100)"`
	FirstName     string    `json:"first_name" gorm:"type:varchar(100)"`
	LastName      string    `json:"last_name" gorm:"type:varchar(100)"`
	PasswordHash  string    `json:"-" gorm:"type:varchar(255)"`
	OAuthProvider string    `json:"oauth_provider,omitempty" gorm:"column:oauth_provider;type:varchar(50)"`
	OAuthSubject  string    `json:"-" gorm:"column:oauth_subject;type:varchar(255);index"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	// Relationships
	Files    []File    `json:"files,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Projects []Project `json:"projects,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// File represents uploaded content with its own status lifecycle,
// independent of any project that references it.
type File struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`

	// Slug is globally unique and immutable once set:
	// slugify(file_name) + "-" + first eight hex chars of the id.
	Slug string `json:"slug" gorm:"type:varchar(300);unique;not null"`

	FileName      string `json:"file_name" gorm:"type:varchar(255);not null"`
	FileType      string `json:"file_type" gorm:"type:varchar(255)"`
	FileSize      int64  `json:"file_size" gorm:"not null"`
	FilePath      string `json:"file_path" gorm:"type:varchar(255);not null"`
	FileExtension string `json:"file_extension" gorm:"type:varchar(255)"`
	FileHash      string `json:"file_hash" gorm:"type:varchar(255);index"`
	FileURL       string `json:"file_url" gorm:"type:varchar(255)"`

	FileStatus   FileStatus `json:"file_status" gorm:"type:varchar(20);not null;default:'draft';index"`
	FileMetadata JSONB      `json:"file_metadata" gorm:"type:jsonb;default:'{}'"`
	FileTags     StringList `json:"file_tags" gorm:"type:jsonb;default:'[]'"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	// Relationships
	User     User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Projects []Project `json:"projects,omitempty" gorm:"many2many:project_files"`
}

// Project groups files under an owner. "Deletion" is the is_deleted flag,
// never a row removal; normal listing filters it out permanently.
type Project struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`

	Slug        string        `json:"slug" gorm:"type:varchar(300);unique;not null"`
	Name        string        `json:"name" gorm:"type:varchar(255);not null"`
	Description string        `json:"description" gorm:"type:text"`
	Status      ProjectStatus `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`

	IsDeleted  bool `json:"is_deleted" gorm:"not null;default:false;index"`
	IsArchived bool `json:"is_archived" gorm:"not null;default:false"`
	IsPinned   bool `json:"is_pinned" gorm:"not null;default:false"`
	IsFavorite bool `json:"is_favorite" gorm:"not null;default:false"`
	IsShared   bool `json:"is_shared" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	// Relationships
	User  User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Files []File `json:"files,omitempty" gorm:"many2many:project_files"`
}

// Job is a unit of asynchronous work (parse/embed/stats/chat). Transitions
// pending -> running -> {done|error} are driven by the worker, not the API.
type Job struct {
	ID     uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	FileID *uuid.UUID `json:"file_id" gorm:"type:uuid;index"`

	JobType  JobType   `json:"job_type" gorm:"type:varchar(20);not null"`
	Status   JobStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Progress float64   `json:"progress" gorm:"type:decimal(5,2);not null;default:0"`
	ErrorMsg string    `json:"error_msg" gorm:"type:text"`

	CreatedAt  time.Time  `json:"created_at" gorm:"not null"`
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`

	// Relationships
	File *File `json:"file,omitempty" gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// GetAllModels returns all models for migration
func GetAllModels() []interface{} {
	return []interface{}{
		&User{},
		&File{},
		&Project{},
		&Job{},
	}
}
