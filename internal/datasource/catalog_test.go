package datasource

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitebski/odh-assistant/internal/connector"
	"github.com/vitebski/odh-assistant/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

func newMockCatalog(t *testing.T) (*CatalogClient, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	logger := testLogger()
	db := connector.NewDatabaseConnectorWithDB(sqlDB, "catalog", logger)
	return NewCatalogClient(db, logger), mock
}

func expectTable(mock sqlmock.Sqlmock, name, comment string) {
	mock.ExpectQuery("FROM information_schema.tables").
		WithArgs("catalog", name).
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "table_comment"}).AddRow(name, comment))
	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("catalog", name).
		WillReturnRows(sqlmock.NewRows([]string{
			"column_name", "data_type", "column_type", "character_maximum_length",
			"numeric_precision", "numeric_scale", "is_nullable", "column_key",
		}).
			AddRow("id", "int", "int", nil, int64(10), int64(0), "NO", "PRI").
			AddRow("email", "varchar", "varchar(120)", []byte("120"), nil, nil, "YES", ""))
}

func TestCatalogGet(t *testing.T) {
	client, mock := newMockCatalog(t)
	expectTable(mock, "ODH1_users", "Private: HR export")

	table, err := client.Get(context.Background(), "ODH1_users")
	require.NoError(t, err)

	assert.Equal(t, "ODH1_users", table.UniqueName)
	assert.Equal(t, "catalog", table.ParentGroupRef)
	assert.True(t, table.IsPrivate)
	require.Len(t, table.Columns, 2)
	assert.Equal(t, "id", table.Columns[0].Name)
	assert.Equal(t, "PRI", table.Columns[0].ColumnKey)
	assert.Nil(t, table.Columns[0].CharMaxLength)
	require.NotNil(t, table.Columns[1].CharMaxLength)
	assert.EqualValues(t, 120, *table.Columns[1].CharMaxLength)
	assert.True(t, table.Columns[1].IsNullable)
	assert.Equal(t, []models.Field{models.NewField("id"), models.NewField("email")}, table.Fields())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogGetMissingTable(t *testing.T) {
	client, mock := newMockCatalog(t)
	mock.ExpectQuery("FROM information_schema.tables").
		WithArgs("catalog", "nope").
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "table_comment"}))

	_, err := client.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrTableNotFound))
}

func TestCatalogList(t *testing.T) {
	client, mock := newMockCatalog(t)
	mock.ExpectQuery("FROM information_schema.tables").
		WithArgs("catalog", "%ODH%", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "table_comment"}).
			AddRow("ODH1_users", "").
			AddRow("ODH4_salaries", "private"))

	tables, err := client.List(context.Background(), models.ListParams{
		Search: "ODH",
		Paging: models.Paging{Page: 2, PageSize: 10},
	})
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.False(t, tables[0].IsPrivate)
	assert.True(t, tables[1].IsPrivate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogGetPreview(t *testing.T) {
	client, mock := newMockCatalog(t)
	expectTable(mock, "ODH1_users", "")
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS count FROM `ODH1_users`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))
	mock.ExpectQuery("SELECT \\* FROM `ODH1_users` LIMIT").
		WithArgs(DefaultPageSize, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).
			AddRow(int64(1), []byte("a@example.com")))

	preview, err := client.GetPreview(context.Background(), "ODH1_users", models.Paging{})
	require.NoError(t, err)
	assert.Equal(t, 42, preview.Count)
	assert.Equal(t, []string{"id", "email"}, preview.Columns)
	require.Len(t, preview.Data, 1)
	assert.Equal(t, "a@example.com", preview.Data[0]["email"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogSuggestRelationship(t *testing.T) {
	client, mock := newMockCatalog(t)
	mock.ExpectQuery("FROM information_schema.key_column_usage").
		WithArgs("catalog", "ODH2_orders", "ODH2_orders").
		WillReturnRows(sqlmock.NewRows([]string{
			"table_name", "column_name", "referenced_table_name", "referenced_column_name", "constraint_name",
		}).AddRow("ODH2_orders", "user_id", "ODH1_users", "id", "fk_orders_users"))

	users := &models.Table{UniqueName: "ODH1_users", AliasID: "t1"}
	orders := &models.Table{UniqueName: "ODH2_orders"}

	rel, ok, err := client.SuggestRelationship(context.Background(), orders, []*models.Table{users})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.Join, rel.Kind)
	assert.Equal(t, "id", rel.ForeignKey.Name)
	assert.Equal(t, "user_id", rel.JoinField.Name)
	assert.Same(t, users, rel.JoinTable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSuggestRelationshipReverseKey(t *testing.T) {
	users := &models.Table{UniqueName: "ODH1_users"}
	orders := &models.Table{UniqueName: "ODH2_orders"}
	products := &models.Table{UniqueName: "ODH3_products"}

	rel, ok := SuggestRelationship(users, []*models.Table{products, orders}, DemoForeignKeys())
	require.True(t, ok)
	assert.Same(t, orders, rel.JoinTable)
	assert.Equal(t, "user_id", rel.ForeignKey.Name)
	assert.Equal(t, "id", rel.JoinField.Name)

	_, ok = SuggestRelationship(users, []*models.Table{products}, DemoForeignKeys())
	assert.False(t, ok)
}
