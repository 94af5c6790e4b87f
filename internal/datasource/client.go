// Package datasource provides table metadata and preview rows to the assistant.
package datasource

import (
	"context"
	"errors"

	"github.com/vitebski/odh-assistant/pkg/models"
)

// DefaultPageSize is used when a preview or listing asks for no page size
const DefaultPageSize = 25

// ErrTableNotFound is returned when a table reference does not resolve
var ErrTableNotFound = errors.New("table not found")

// Client fetches tabular sources and their preview rows
type Client interface {
	Get(ctx context.Context, id string) (*models.Table, error)
	List(ctx context.Context, params models.ListParams) ([]models.Table, error)
	GetPreview(ctx context.Context, ref string, paging models.Paging) (*models.Preview, error)
}

// Suggester proposes a relationship for a table joining an existing selection
type Suggester interface {
	SuggestRelationship(ctx context.Context, t *models.Table, selected []*models.Table) (models.Relationship, bool, error)
}

func normalizePaging(p models.Paging) models.Paging {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	return p
}
