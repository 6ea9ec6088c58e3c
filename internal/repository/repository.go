package repository

import (
	"context"
	"database/sql"
	"time"

	"filehost/internal/models"
)

// ConfigStore persists the single account document.
type ConfigStore interface {
	Exists() (bool, error)
	Load(ctx context.Context) (models.Document, error)
	Save(ctx context.Context, doc models.Document) error
	Update(ctx context.Context, fn func(doc *models.Document) error) error
}

// ActivityRepo is the append-only audit log.
type ActivityRepo interface {
	Append(ctx context.Context, e models.ActivityEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.ActivityEvent, error)
}

type Repository struct {
	Config   ConfigStore
	Activity ActivityRepo
}

func NewRepository(configPath string, db *sql.DB) *Repository {
	return &Repository{
		Config:   NewJSONConfigStore(configPath),
		Activity: NewActivitySQLite(db),
	}
}
