package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitebski/odh-assistant/pkg/models"
)

func TestQuoteIdent(t *testing.T) {
	testCases := []struct {
		description string
		name        string
		force       bool
		expected    string
	}{
		{description: "plain", name: "abc", expected: "abc"},
		{description: "underscore and digits", name: "_a1_b2", expected: "_a1_b2"},
		{description: "leading digit", name: "1abc", expected: `"1abc"`},
		{description: "space", name: "first name", expected: `"first name"`},
		{description: "dash", name: "e-mail", expected: `"e-mail"`},
		{description: "forced", name: "abc", force: true, expected: `"abc"`},
		{description: "embedded quote", name: `a"b`, expected: `"a""b"`},
		{description: "empty", name: "", expected: `""`},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.expected, QuoteIdent(testCase.name, testCase.force), testCase.description)
	}
}

func TestAliasedTable(t *testing.T) {
	s := New()
	assert.Equal(t, "ODH1_foo as t1", s.AliasedTable(&models.Table{UniqueName: "ODH1_foo", AliasID: "t1"}))
	assert.Equal(t, "t1", s.AliasedTable(&models.Table{UniqueName: "t1", AliasID: "t1"}))
	assert.Equal(t, `"my table" as t3`, s.AliasedTable(&models.Table{UniqueName: "my table", AliasID: "t3"}))

	s.SetQuotes(true)
	assert.Equal(t, `"ODH1_foo" as "t1"`, s.AliasedTable(&models.Table{UniqueName: "ODH1_foo", AliasID: "t1"}))
}

func TestFieldNames(t *testing.T) {
	s := New()
	fields := []models.Field{
		{Name: "x", Alias: "x"},
		{Name: "x", Alias: "y"},
		{Name: "z"},
		{Name: "first name", Alias: "name"},
	}

	assert.Equal(t, []string{"t1.x", "t1.x AS y", "t1.z", `t1."first name" AS name`}, s.FieldNames(fields, "t1", false))
	assert.Equal(t, []string{"t1.x", "t1.x", "t1.z", `t1."first name"`}, s.FieldNames(fields, "t1", true))

	s.SetQuotes(true)
	assert.Equal(t, []string{`"t1"."x" AS "y"`}, s.FieldNames(fields[1:2], "t1", false))
}

// selectionFixture builds master ODH1_foo (t1) with field x and ODH2_bar (t2)
// with field y.
func selectionFixture() (*SelectionState, *models.Table, *models.Table) {
	s := New()
	a := &models.Table{UniqueName: "ODH1_foo"}
	b := &models.Table{UniqueName: "ODH2_bar"}
	s.AddTable(a)
	s.AddTable(b)
	s.AddField(models.NewField("x"), a)
	s.AddField(models.NewField("y"), b)
	return s, a, b
}

func TestGenerate(t *testing.T) {
	fk := models.NewField("id")
	jf := models.NewField("a_id")

	testCases := []struct {
		description string
		setup       func(s *SelectionState, a, b *models.Table)
		expected    string
		ok          bool
	}{
		{
			description: "single master",
			setup: func(s *SelectionState, a, b *models.Table) {
				s.RemoveTable(b)
			},
			// the master is aliased in FROM like every other table so that t1.x resolves
			expected: "SELECT t1.x \nFROM ODH1_foo as t1 \n",
			ok:       true,
		},
		{
			description: "field alias",
			setup: func(s *SelectionState, a, b *models.Table) {
				s.RemoveTable(b)
				s.AddRemoveField(models.NewField("x"), a)
				s.AddField(models.Field{Name: "x", Alias: "y"}, a)
			},
			expected: "SELECT t1.x AS y \nFROM ODH1_foo as t1 \n",
			ok:       true,
		},
		{
			description: "join prepends joined fields",
			setup: func(s *SelectionState, a, b *models.Table) {
				s.SetRelationship(b, models.JoinRelationship(fk, jf, a))
			},
			expected: "SELECT t2.y,\nt1.x \nFROM ODH1_foo as t1 \nJOIN ODH2_bar as t2 on t1.id = t2.a_id",
			ok:       true,
		},
		{
			description: "union",
			setup: func(s *SelectionState, a, b *models.Table) {
				s.SetRelationship(b, models.UnionRelationship())
			},
			expected: "SELECT t1.x \nFROM ODH1_foo as t1 \n\nUNION \n SELECT t2.y \n FROM ODH2_bar as t2",
			ok:       true,
		},
		{
			description: "union ignores field aliases",
			setup: func(s *SelectionState, a, b *models.Table) {
				s.SetRelationship(b, models.UnionRelationship())
				s.AddRemoveField(models.NewField("y"), b)
				s.AddField(models.Field{Name: "y", Alias: "x"}, b)
			},
			expected: "SELECT t1.x \nFROM ODH1_foo as t1 \n\nUNION \n SELECT t2.y \n FROM ODH2_bar as t2",
			ok:       true,
		},
		{
			description: "union without fields is left out",
			setup: func(s *SelectionState, a, b *models.Table) {
				s.SetRelationship(b, models.UnionRelationship())
				s.AddRemoveField(models.NewField("y"), b)
			},
			expected: "SELECT t1.x \nFROM ODH1_foo as t1 \n",
			ok:       true,
		},
		{
			description: "second free table is skipped",
			setup:       func(s *SelectionState, a, b *models.Table) {},
			expected:    "SELECT t1.x \nFROM ODH1_foo as t1 \n",
			ok:          true,
		},
		{
			description: "join without foreign key is dropped",
			setup: func(s *SelectionState, a, b *models.Table) {
				s.SetRelationship(b, models.Relationship{Kind: models.Join, JoinField: &jf, JoinTable: a})
			},
			expected: "SELECT t1.x \nFROM ODH1_foo as t1 \n",
			ok:       true,
		},
		{
			description: "quotes",
			setup: func(s *SelectionState, a, b *models.Table) {
				s.SetRelationship(b, models.JoinRelationship(fk, jf, a))
				s.SetQuotes(true)
			},
			expected: "SELECT \"t2\".\"y\",\n\"t1\".\"x\" \nFROM \"ODH1_foo\" as \"t1\" \nJOIN \"ODH2_bar\" as \"t2\" on \"t1\".\"id\" = \"t2\".\"a_id\"",
			ok:       true,
		},
		{
			description: "no master",
			setup: func(s *SelectionState, a, b *models.Table) {
				s.SetRelationship(a, models.UnionRelationship())
				s.SetRelationship(b, models.JoinRelationship(fk, jf, a))
			},
			ok: false,
		},
		{
			description: "no fields",
			setup: func(s *SelectionState, a, b *models.Table) {
				s.AddRemoveField(models.NewField("x"), a)
			},
			ok: false,
		},
		{
			description: "fields only on an unused table",
			setup: func(s *SelectionState, a, b *models.Table) {
				s.AddRemoveField(models.NewField("x"), a)
				s.SetRelationship(b, models.Relationship{Kind: models.Join})
			},
			ok: false,
		},
	}

	for _, testCase := range testCases {
		s, a, b := selectionFixture()
		testCase.setup(s, a, b)
		actual, ok := s.Generate()
		assert.Equal(t, testCase.ok, ok, testCase.description)
		assert.Equal(t, testCase.expected, actual, testCase.description)
	}
}

func TestGenerateEmptySelection(t *testing.T) {
	actual, ok := New().Generate()
	assert.False(t, ok)
	assert.Empty(t, actual)
}

func TestGenerateSeveralJoins(t *testing.T) {
	s, a, b := selectionFixture()
	c := &models.Table{UniqueName: "ODH3_baz"}
	s.AddTable(c)
	s.AddField(models.NewField("z"), c)
	s.SetRelationship(b, models.JoinRelationship(models.NewField("id"), models.NewField("a_id"), a))
	s.SetRelationship(c, models.JoinRelationship(models.NewField("id"), models.NewField("b_id"), b))

	actual, ok := s.Generate()
	require.True(t, ok)
	assert.Equal(t,
		"SELECT t3.z,\nt2.y,\nt1.x \nFROM ODH1_foo as t1 \n"+
			"JOIN ODH2_bar as t2 on t1.id = t2.a_id \n JOIN ODH3_baz as t3 on t2.id = t3.b_id",
		actual)
}

func TestGenerateMasterAddedAfterJoin(t *testing.T) {
	s := New()
	orders := &models.Table{UniqueName: "orders"}
	users := &models.Table{UniqueName: "users"}
	s.AddTable(orders)
	s.AddTable(users)
	s.AddField(models.NewField("total"), orders)
	s.AddField(models.Field{Name: "name", Alias: "customer"}, users)
	s.SetRelationship(orders, models.JoinRelationship(models.NewField("id"), models.NewField("user_id"), users))

	actual, ok := s.Generate()
	require.True(t, ok)
	assert.Equal(t,
		"SELECT t2.name AS customer,\nt1.total \nFROM users as t2 \nJOIN orders as t1 on t2.id = t1.user_id",
		actual)
}

func TestGenerateDanglingJoin(t *testing.T) {
	s, _, b := selectionFixture()
	c := &models.Table{UniqueName: "ODH3_baz"}
	s.AddTable(c)
	s.AddField(models.NewField("z"), c)
	s.SetRelationship(c, models.JoinRelationship(models.NewField("id"), models.NewField("b_id"), b))

	s.RemoveTable(b)

	actual, ok := s.Generate()
	require.True(t, ok)
	assert.Equal(t, "SELECT t1.x \nFROM ODH1_foo as t1 \n", actual)

	// re-adding the join target revives the join under the target's new alias
	s.AddTable(b)
	s.SetRelationship(b, models.UnionRelationship())
	s.AddField(models.NewField("y"), b)
	actual, ok = s.Generate()
	require.True(t, ok)
	assert.Equal(t,
		"SELECT t3.z,\nt1.x \nFROM ODH1_foo as t1 \nJOIN ODH3_baz as t3 on t4.id = t3.b_id"+
			"\nUNION \n SELECT t4.y \n FROM ODH2_bar as t4",
		actual)
	// the revived join is emitted as is although t4 is only in scope in the
	// union branch; diagnostics flag it
	assert.Equal(t, []string{"ODH3_baz"}, s.Diagnose().Unreachable)
}
