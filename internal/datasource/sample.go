package datasource

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jaswdr/faker"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/odh-assistant/pkg/models"
	"github.com/zeebo/xxh3"
)

// sampleEpoch anchors generated dates so that they do not move between requests
var sampleEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// SampleClient serves an in-memory catalogue whose preview rows are made up
// from column names and types. Rows are seeded by table and row number, so a
// page always shows the same values.
type SampleClient struct {
	RowCount    int
	ForeignKeys []models.ForeignKey
	Logger      *logrus.Logger

	mu     sync.RWMutex
	tables map[string]models.Table
}

// NewSampleClient creates a sample client serving tables, each with rowCount rows
func NewSampleClient(tables []models.Table, rowCount int, logger *logrus.Logger) *SampleClient {
	c := &SampleClient{
		RowCount: rowCount,
		Logger:   logger,
		tables:   make(map[string]models.Table, len(tables)),
	}
	for _, t := range tables {
		c.tables[t.UniqueName] = t
	}
	return c
}

// Get returns a copy of the table so that selection state never aliases the catalogue
func (c *SampleClient) Get(_ context.Context, id string) (*models.Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrTableNotFound)
	}
	t.Columns = append([]models.Column(nil), t.Columns...)
	return &t, nil
}

// SuggestRelationship proposes a join of t onto a selected table from ForeignKeys
func (c *SampleClient) SuggestRelationship(_ context.Context, t *models.Table, selected []*models.Table) (models.Relationship, bool, error) {
	rel, ok := SuggestRelationship(t, selected, c.ForeignKeys)
	return rel, ok, nil
}

func (c *SampleClient) List(_ context.Context, params models.ListParams) ([]models.Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var names []string
	for name := range c.tables {
		if strings.Contains(name, params.Search) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	paging := normalizePaging(params.Paging)
	start := paging.Offset()
	if start > len(names) {
		start = len(names)
	}
	end := start + paging.PageSize
	if end > len(names) {
		end = len(names)
	}

	tables := make([]models.Table, 0, end-start)
	for _, name := range names[start:end] {
		t := c.tables[name]
		t.Columns = nil
		tables = append(tables, t)
	}
	return tables, nil
}

func (c *SampleClient) GetPreview(ctx context.Context, ref string, paging models.Paging) (*models.Preview, error) {
	table, err := c.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	paging = normalizePaging(paging)

	columns := make([]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		columns = append(columns, col.Name)
	}

	data := []map[string]interface{}{}
	for i := paging.Offset(); i < c.RowCount && len(data) < paging.PageSize; i++ {
		data = append(data, c.row(table, i))
	}

	return &models.Preview{Count: c.RowCount, Columns: columns, Data: data}, nil
}

func (c *SampleClient) row(table *models.Table, n int) map[string]interface{} {
	seed := xxh3.HashString(fmt.Sprintf("%s#%d", table.UniqueName, n))
	gen := faker.NewWithSeed(rand.NewSource(int64(seed)))

	row := make(map[string]interface{}, len(table.Columns))
	for _, col := range table.Columns {
		row[col.Name] = c.value(gen, col, n)
	}
	return row
}

// value picks a fake value from the column name first, then from its type
func (c *SampleClient) value(gen faker.Faker, column models.Column, n int) interface{} {
	columnName := strings.ToLower(column.Name)
	dataType := strings.ToLower(column.DataType)

	if column.ColumnKey == "PRI" && strings.Contains(dataType, "int") {
		return n + 1
	}

	switch {
	case strings.Contains(columnName, "email"):
		return gen.Internet().Email()
	case strings.Contains(columnName, "first") && strings.Contains(columnName, "name"):
		return gen.Person().FirstName()
	case strings.Contains(columnName, "last") && strings.Contains(columnName, "name"):
		return gen.Person().LastName()
	case strings.Contains(columnName, "company"):
		return gen.Company().Name()
	case strings.Contains(columnName, "name"):
		return gen.Person().Name()
	case strings.Contains(columnName, "phone"):
		return gen.Phone().Number()
	case strings.Contains(columnName, "city"):
		return gen.Address().City()
	case strings.Contains(columnName, "country"):
		return gen.Address().Country()
	case strings.Contains(columnName, "address"):
		return gen.Address().Address()
	case strings.Contains(columnName, "uuid"):
		return gen.UUID().V4()
	case strings.Contains(columnName, "description"), strings.Contains(columnName, "summary"):
		return gen.Lorem().Sentence(8)
	case strings.HasSuffix(columnName, "_id"):
		return gen.IntBetween(1, c.RowCount)
	}

	switch dataType {
	case "varchar", "char", "text", "tinytext", "mediumtext", "longtext":
		return gen.Lorem().Word()
	case "int", "tinyint", "smallint", "mediumint", "bigint":
		return gen.IntBetween(0, 10000)
	case "float", "double", "decimal":
		return gen.Float64(2, 0, 1000)
	case "date":
		return sampleEpoch.AddDate(0, 0, -gen.IntBetween(0, 365*5)).Format("2006-01-02")
	case "datetime", "timestamp":
		return sampleEpoch.Add(-time.Duration(gen.IntBetween(0, 365*24*5)) * time.Hour).Format(time.RFC3339)
	case "boolean", "bool":
		return gen.Boolean().Bool()
	default:
		c.Logger.Debugf("No specific sample value for type %s, using a word", dataType)
		return gen.Lorem().Word()
	}
}

// DemoTables is a small catalogue used when no data backend is configured
func DemoTables() []models.Table {
	intCol := func(name, key string) models.Column {
		return models.Column{Name: name, DataType: "int", ColumnType: "int", ColumnKey: key}
	}
	textCol := func(name string) models.Column {
		return models.Column{Name: name, DataType: "varchar", ColumnType: "varchar(255)", IsNullable: true}
	}

	return []models.Table{
		{
			UniqueName:     "ODH1_users",
			ParentGroupRef: "demo",
			Columns:        []models.Column{intCol("id", "PRI"), textCol("first_name"), textCol("last_name"), textCol("email"), textCol("city")},
		},
		{
			UniqueName:     "ODH2_orders",
			ParentGroupRef: "demo",
			Columns: []models.Column{
				intCol("id", "PRI"), intCol("user_id", "MUL"), intCol("product_id", "MUL"),
				{Name: "total", DataType: "decimal", ColumnType: "decimal(10,2)"},
				{Name: "ordered_at", DataType: "datetime", ColumnType: "datetime"},
			},
		},
		{
			UniqueName:     "ODH3_products",
			ParentGroupRef: "demo",
			Columns:        []models.Column{intCol("id", "PRI"), textCol("name"), textCol("description")},
		},
		{
			UniqueName:     "ODH4_salaries",
			IsPrivate:      true,
			ParentGroupRef: "demo",
			Columns:        []models.Column{intCol("id", "PRI"), intCol("user_id", "MUL"), intCol("amount", "")},
		},
	}
}

// DemoForeignKeys are the foreign keys between the demo tables
func DemoForeignKeys() []models.ForeignKey {
	return []models.ForeignKey{
		{Table: "ODH2_orders", Column: "user_id", ReferencedTable: "ODH1_users", ReferencedColumn: "id"},
		{Table: "ODH2_orders", Column: "product_id", ReferencedTable: "ODH3_products", ReferencedColumn: "id"},
		{Table: "ODH4_salaries", Column: "user_id", ReferencedTable: "ODH1_users", ReferencedColumn: "id"},
	}
}
