package datasource

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/odh-assistant/internal/connector"
	"github.com/vitebski/odh-assistant/pkg/models"
)

// CatalogClient serves tables of a MySQL schema, reading their metadata from
// information_schema.
type CatalogClient struct {
	DB     *connector.DatabaseConnector
	Logger *logrus.Logger
}

// NewCatalogClient creates a new catalog client
func NewCatalogClient(db *connector.DatabaseConnector, logger *logrus.Logger) *CatalogClient {
	return &CatalogClient{
		DB:     db,
		Logger: logger,
	}
}

// Get returns the table with its columns
func (c *CatalogClient) Get(ctx context.Context, id string) (*models.Table, error) {
	tableQuery := `
		SELECT table_name, table_comment
		FROM information_schema.tables
		WHERE table_schema = ?
		AND table_name = ?
	`
	result, _, err := c.DB.ExecuteQuery(ctx, tableQuery, c.DB.Database, id)
	if err != nil {
		c.Logger.Errorf("Error getting table %s: %v", id, err)
		return nil, err
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("%s: %w", id, ErrTableNotFound)
	}

	table := c.tableFromRow(result[0])
	columns, err := c.columns(ctx, table.UniqueName)
	if err != nil {
		return nil, err
	}
	table.Columns = columns
	return &table, nil
}

// List returns the tables of the schema whose name contains params.Search.
// Columns are not loaded; use Get for that.
func (c *CatalogClient) List(ctx context.Context, params models.ListParams) ([]models.Table, error) {
	paging := normalizePaging(params.Paging)
	listQuery := `
		SELECT table_name, table_comment
		FROM information_schema.tables
		WHERE table_schema = ?
		AND table_name LIKE ?
		ORDER BY table_name
		LIMIT ? OFFSET ?
	`
	result, _, err := c.DB.ExecuteQuery(ctx, listQuery,
		c.DB.Database, "%"+params.Search+"%", paging.PageSize, paging.Offset())
	if err != nil {
		c.Logger.Errorf("Error listing tables: %v", err)
		return nil, err
	}

	tables := make([]models.Table, 0, len(result))
	for _, row := range result {
		tables = append(tables, c.tableFromRow(row))
	}
	return tables, nil
}

// GetPreview returns one page of rows of ref along with its total row count
func (c *CatalogClient) GetPreview(ctx context.Context, ref string, paging models.Paging) (*models.Preview, error) {
	paging = normalizePaging(paging)

	table, err := c.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	name := quoteMySQLIdent(table.UniqueName)

	countResult, _, err := c.DB.ExecuteQuery(ctx, "SELECT COUNT(*) AS count FROM "+name)
	if err != nil {
		c.Logger.Errorf("Error counting rows of %s: %v", ref, err)
		return nil, err
	}
	count := 0
	if len(countResult) > 0 {
		count = asInt(countResult[0]["count"])
	}

	rows, columns, err := c.DB.ExecuteQuery(ctx,
		"SELECT * FROM "+name+" LIMIT ? OFFSET ?", paging.PageSize, paging.Offset())
	if err != nil {
		c.Logger.Errorf("Error reading preview of %s: %v", ref, err)
		return nil, err
	}
	if rows == nil {
		rows = []map[string]interface{}{}
	}

	return &models.Preview{Count: count, Columns: columns, Data: rows}, nil
}

// ForeignKeys returns the foreign keys declared on table or referencing it
func (c *CatalogClient) ForeignKeys(ctx context.Context, table string) ([]models.ForeignKey, error) {
	fkQuery := `
		SELECT
			table_name,
			column_name,
			referenced_table_name,
			referenced_column_name,
			constraint_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
		AND referenced_table_name IS NOT NULL
		AND (table_name = ? OR referenced_table_name = ?)
		ORDER BY table_name, column_name
	`
	result, _, err := c.DB.ExecuteQuery(ctx, fkQuery, c.DB.Database, table, table)
	if err != nil {
		c.Logger.Errorf("Error getting foreign keys of %s: %v", table, err)
		return nil, err
	}

	var foreignKeys []models.ForeignKey
	for _, row := range result {
		foreignKeys = append(foreignKeys, models.ForeignKey{
			Table:            asString(row["table_name"]),
			Column:           asString(row["column_name"]),
			ReferencedTable:  asString(row["referenced_table_name"]),
			ReferencedColumn: asString(row["referenced_column_name"]),
			ConstraintName:   asString(row["constraint_name"]),
		})
	}
	return foreignKeys, nil
}

// SuggestRelationship proposes a join of t onto one of the selected tables
// using a foreign key between them. The first selected table with a key wins.
func (c *CatalogClient) SuggestRelationship(ctx context.Context, t *models.Table, selected []*models.Table) (models.Relationship, bool, error) {
	foreignKeys, err := c.ForeignKeys(ctx, t.UniqueName)
	if err != nil {
		return models.Relationship{}, false, err
	}
	rel, ok := SuggestRelationship(t, selected, foreignKeys)
	return rel, ok, nil
}

// SuggestRelationship picks a join for t out of foreignKeys. A key declared on t
// joins on t.column = target.referenced column; a key declared on the target
// joins the other way round.
func SuggestRelationship(t *models.Table, selected []*models.Table, foreignKeys []models.ForeignKey) (models.Relationship, bool) {
	for _, target := range selected {
		if target.UniqueName == t.UniqueName {
			continue
		}
		for _, fk := range foreignKeys {
			switch {
			case fk.Table == t.UniqueName && fk.ReferencedTable == target.UniqueName:
				return models.JoinRelationship(models.NewField(fk.ReferencedColumn), models.NewField(fk.Column), target), true
			case fk.Table == target.UniqueName && fk.ReferencedTable == t.UniqueName:
				return models.JoinRelationship(models.NewField(fk.Column), models.NewField(fk.ReferencedColumn), target), true
			}
		}
	}
	return models.Relationship{}, false
}

func (c *CatalogClient) columns(ctx context.Context, table string) ([]models.Column, error) {
	columnsQuery := `
		SELECT
			column_name,
			data_type,
			column_type,
			character_maximum_length,
			numeric_precision,
			numeric_scale,
			is_nullable,
			column_key
		FROM information_schema.columns
		WHERE table_schema = ?
		AND table_name = ?
		ORDER BY ordinal_position
	`
	result, _, err := c.DB.ExecuteQuery(ctx, columnsQuery, c.DB.Database, table)
	if err != nil {
		c.Logger.Warningf("Failed to retrieve columns for table %s: %v", table, err)
		return nil, err
	}

	columns := make([]models.Column, 0, len(result))
	for _, row := range result {
		columns = append(columns, models.Column{
			Name:             asString(row["column_name"]),
			DataType:         asString(row["data_type"]),
			ColumnType:       asString(row["column_type"]),
			CharMaxLength:    asInt64Ptr(row["character_maximum_length"]),
			NumericPrecision: asInt64Ptr(row["numeric_precision"]),
			NumericScale:     asInt64Ptr(row["numeric_scale"]),
			IsNullable:       asString(row["is_nullable"]) == "YES",
			ColumnKey:        asString(row["column_key"]),
		})
	}
	return columns, nil
}

func (c *CatalogClient) tableFromRow(row map[string]interface{}) models.Table {
	return models.Table{
		UniqueName:     asString(row["table_name"]),
		IsPrivate:      strings.Contains(strings.ToLower(asString(row["table_comment"])), "private"),
		ParentGroupRef: c.DB.Database,
	}
}

// quoteMySQLIdent wraps an identifier in backticks, doubling any backtick inside
func quoteMySQLIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func asString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func asInt64Ptr(v interface{}) *int64 {
	if v == nil {
		return nil
	}
	val, err := strconv.ParseInt(asString(v), 10, 64)
	if err != nil {
		return nil
	}
	return &val
}

func asInt(v interface{}) int {
	if p := asInt64Ptr(v); p != nil {
		return int(*p)
	}
	return 0
}
