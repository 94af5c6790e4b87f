package models

import "time"

// Column represents a source column with its properties
type Column struct {
	Name             string
	DataType         string
	ColumnType       string
	CharMaxLength    *int64
	NumericPrecision *int64
	NumericScale     *int64
	IsNullable       bool
	ColumnKey        string
}

// ForeignKey represents a foreign key relationship between two tables
type ForeignKey struct {
	Table            string
	Column           string
	ReferencedTable  string
	ReferencedColumn string
	ConstraintName   string
}

// Field is an output column: the source column name and the name it gets in the result
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Alias string `json:"alias" yaml:"alias"`
}

// NewField returns a field whose alias is its name
func NewField(name string) Field {
	return Field{Name: name, Alias: name}
}

// Table is a selectable tabular source (file group, document or transformation result)
type Table struct {
	UniqueName     string   `json:"unique_name"`
	AliasID        string   `json:"alias_id,omitempty"`
	IsPrivate      bool     `json:"private"`
	ParentGroupRef string   `json:"parent_group,omitempty"`
	Columns        []Column `json:"-"`
}

// Fields returns the default field for every column of the table
func (t *Table) Fields() []Field {
	fields := make([]Field, 0, len(t.Columns))
	for _, col := range t.Columns {
		fields = append(fields, NewField(col.Name))
	}
	return fields
}

// RelationshipKind tells how a selected table takes part in the generated query
type RelationshipKind int

const (
	None RelationshipKind = iota
	Union
	Join
)

func (k RelationshipKind) String() string {
	switch k {
	case Union:
		return "union"
	case Join:
		return "join"
	default:
		return "none"
	}
}

// ParseRelationshipKind is the inverse of RelationshipKind.String
func ParseRelationshipKind(s string) (RelationshipKind, bool) {
	switch s {
	case "", "none":
		return None, true
	case "union":
		return Union, true
	case "join":
		return Join, true
	}
	return None, false
}

// Relationship of a selected table. ForeignKey, JoinField and JoinTable are only
// meaningful for Join: the table is joined on JoinTable.ForeignKey = table.JoinField.
type Relationship struct {
	Kind       RelationshipKind
	ForeignKey *Field
	JoinField  *Field
	JoinTable  *Table
}

func NoRelationship() Relationship {
	return Relationship{Kind: None}
}

func UnionRelationship() Relationship {
	return Relationship{Kind: Union}
}

func JoinRelationship(foreignKey, joinField Field, joinTable *Table) Relationship {
	return Relationship{
		Kind:       Join,
		ForeignKey: &foreignKey,
		JoinField:  &joinField,
		JoinTable:  joinTable,
	}
}

// Paging selects one page of preview rows; Page is 1-based
type Paging struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Offset returns the row offset of the page
func (p Paging) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// ListParams filters a table listing
type ListParams struct {
	Search string
	Paging
}

// Preview is one page of rows of a tabular source
type Preview struct {
	Count   int                      `json:"count"`
	Columns []string                 `json:"columns"`
	Data    []map[string]interface{} `json:"data"`
}

// Transformation is the persisted result of an assistant session
type Transformation struct {
	ID             int64     `json:"id,omitempty"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Transformation string    `json:"transformation"`
	FileGroups     []string  `json:"file_groups"`
	Private        bool      `json:"private"`
	CreatedAt      time.Time `json:"created_at"`
}
