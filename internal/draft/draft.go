// Package draft reads selections written down as YAML so that a transformation
// can be generated without the interactive assistant.
package draft

import (
	"fmt"
	"os"

	"github.com/vitebski/odh-assistant/internal/selection"
	"github.com/vitebski/odh-assistant/pkg/models"
	"gopkg.in/yaml.v3"
)

// Draft is a selection as stored in a file. Tables are selected in file order.
type Draft struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Quotes      bool    `yaml:"quotes"`
	Tables      []Table `yaml:"tables"`
}

type Table struct {
	Name         string         `yaml:"name"`
	Private      bool           `yaml:"private"`
	Fields       []models.Field `yaml:"fields"`
	Relationship *Relationship  `yaml:"relationship"`
}

type Relationship struct {
	Kind       string `yaml:"kind"`
	ForeignKey string `yaml:"foreign_key"`
	JoinField  string `yaml:"join_field"`
	JoinTable  string `yaml:"join_table"`
}

// Load reads a draft file
func Load(path string) (*Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read draft: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a draft
func Parse(data []byte) (*Draft, error) {
	var d Draft
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse draft: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks table names and relationship kinds. Joins to tables missing
// from the draft are allowed; they are left out of the generated query.
func (d *Draft) Validate() error {
	seen := make(map[string]bool, len(d.Tables))
	for i, t := range d.Tables {
		if t.Name == "" {
			return fmt.Errorf("table %d has no name", i+1)
		}
		if seen[t.Name] {
			return fmt.Errorf("table %s is listed twice", t.Name)
		}
		seen[t.Name] = true

		for _, f := range t.Fields {
			if f.Name == "" {
				return fmt.Errorf("table %s has a field without name", t.Name)
			}
		}

		if t.Relationship == nil {
			continue
		}
		kind, ok := models.ParseRelationshipKind(t.Relationship.Kind)
		if !ok {
			return fmt.Errorf("table %s: unknown relationship kind %q", t.Name, t.Relationship.Kind)
		}
		if kind == models.Join && (t.Relationship.ForeignKey == "" || t.Relationship.JoinField == "" || t.Relationship.JoinTable == "") {
			return fmt.Errorf("table %s: join needs foreign_key, join_field and join_table", t.Name)
		}
	}
	return nil
}

// Apply replays the draft onto s: tables in order, then fields, then
// relationships once every table has its alias.
func (d *Draft) Apply(s *selection.SelectionState) {
	s.SetQuotes(d.Quotes)

	tables := make(map[string]*models.Table, len(d.Tables))
	for _, dt := range d.Tables {
		t := &models.Table{UniqueName: dt.Name, IsPrivate: dt.Private}
		s.AddTable(t)
		tables[dt.Name] = t
		for _, f := range dt.Fields {
			if f.Alias == "" {
				f.Alias = f.Name
			}
			s.AddField(f, t)
		}
	}

	for _, dt := range d.Tables {
		if dt.Relationship == nil {
			continue
		}
		s.SetRelationship(tables[dt.Name], dt.Relationship.resolve(tables))
	}
}

func (r *Relationship) resolve(tables map[string]*models.Table) models.Relationship {
	kind, _ := models.ParseRelationshipKind(r.Kind)
	switch kind {
	case models.Union:
		return models.UnionRelationship()
	case models.Join:
		target, ok := tables[r.JoinTable]
		if !ok {
			target = &models.Table{UniqueName: r.JoinTable}
		}
		return models.JoinRelationship(models.NewField(r.ForeignKey), models.NewField(r.JoinField), target)
	default:
		return models.NoRelationship()
	}
}
