// Package store persists submitted transformations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/odh-assistant/internal/connector"
	"github.com/vitebski/odh-assistant/pkg/models"
)

// TransformationStore saves transformations and returns their id
type TransformationStore interface {
	Save(ctx context.Context, t *models.Transformation) (int64, error)
}

// MySQLStore keeps transformations in the transformations and
// transformation_file_groups tables.
type MySQLStore struct {
	DB     *connector.DatabaseConnector
	Logger *logrus.Logger
	now    func() time.Time
}

// NewMySQLStore creates a new store
func NewMySQLStore(db *connector.DatabaseConnector, logger *logrus.Logger) *MySQLStore {
	return &MySQLStore{
		DB:     db,
		Logger: logger,
		now:    time.Now,
	}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS transformations (
		id             BIGINT AUTO_INCREMENT PRIMARY KEY,
		name           VARCHAR(255) NOT NULL,
		description    TEXT,
		transformation TEXT NOT NULL,
		private        BOOLEAN NOT NULL DEFAULT FALSE,
		created_at     DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transformation_file_groups (
		transformation_id BIGINT NOT NULL,
		position          INT NOT NULL,
		file_group        VARCHAR(255) NOT NULL,
		PRIMARY KEY (transformation_id, position),
		FOREIGN KEY (transformation_id) REFERENCES transformations (id) ON DELETE CASCADE
	)`,
}

// EnsureSchema creates the store tables if needed
func (s *MySQLStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.DB.ExecuteStatement(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create transformation tables: %w", err)
		}
	}
	return nil
}

// Save inserts t with its file groups in one transaction and sets t.ID and t.CreatedAt
func (s *MySQLStore) Save(ctx context.Context, t *models.Transformation) (int64, error) {
	createdAt := s.now().UTC()

	var id int64
	err := s.DB.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"INSERT INTO transformations (name, description, transformation, private, created_at) VALUES (?, ?, ?, ?, ?)",
			t.Name, t.Description, t.Transformation, t.Private, createdAt)
		if err != nil {
			return fmt.Errorf("failed to insert transformation: %w", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read transformation id: %w", err)
		}

		for i, group := range t.FileGroups {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO transformation_file_groups (transformation_id, position, file_group) VALUES (?, ?, ?)",
				id, i, group); err != nil {
				return fmt.Errorf("failed to insert file group %s: %w", group, err)
			}
		}
		return nil
	})
	if err != nil {
		s.Logger.Errorf("Error saving transformation %s: %v", t.Name, err)
		return 0, err
	}

	t.ID = id
	t.CreatedAt = createdAt
	s.Logger.Infof("Saved transformation %s (id %d, %d file groups)", t.Name, id, len(t.FileGroups))
	return id, nil
}

// MemoryStore keeps transformations in memory, for runs without a database
type MemoryStore struct {
	Logger *logrus.Logger

	mu              sync.Mutex
	transformations []models.Transformation
}

func NewMemoryStore(logger *logrus.Logger) *MemoryStore {
	return &MemoryStore{Logger: logger}
}

func (m *MemoryStore) Save(_ context.Context, t *models.Transformation) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t.ID = int64(len(m.transformations) + 1)
	t.CreatedAt = time.Now().UTC()
	t.FileGroups = append([]string(nil), t.FileGroups...)
	m.transformations = append(m.transformations, *t)
	m.Logger.Infof("Kept transformation %s in memory (id %d)", t.Name, t.ID)
	return t.ID, nil
}

// List returns the saved transformations in save order
func (m *MemoryStore) List() []models.Transformation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Transformation(nil), m.transformations...)
}
