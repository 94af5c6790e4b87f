// Package selection holds the state of the transformation assistant: the selected
// tables, the selected fields of each table and the relationship every table has
// with the rest of the selection. The generated query is derived from it.
package selection

import (
	"strconv"

	"github.com/vitebski/odh-assistant/pkg/models"
)

// SelectionState is owned by a single assistant session and is not safe for
// concurrent use.
type SelectionState struct {
	// tables keeps add order; it is also the iteration order of relationships,
	// so the first None table in it is the master.
	tables        []*models.Table
	fieldsByTable map[string][]models.Field
	relationships map[string]models.Relationship
	useQuotes     bool
	privateCount  int
	aliasCounter  int
}

// New creates an empty selection
func New() *SelectionState {
	s := &SelectionState{}
	s.Reset()
	return s
}

// Reset discards the whole selection. Alias numbering starts over since a reset
// selection belongs to a new session.
func (s *SelectionState) Reset() {
	s.tables = nil
	s.fieldsByTable = make(map[string][]models.Field)
	s.relationships = make(map[string]models.Relationship)
	s.useQuotes = false
	s.privateCount = 0
	s.aliasCounter = 1
}

func (s *SelectionState) indexOf(uniqueName string) int {
	for i, t := range s.tables {
		if t.UniqueName == uniqueName {
			return i
		}
	}
	return -1
}

// lookup returns the selected table with the given unique name
func (s *SelectionState) lookup(uniqueName string) *models.Table {
	if i := s.indexOf(uniqueName); i >= 0 {
		return s.tables[i]
	}
	return nil
}

// Contains reports whether a table with the same unique name is selected
func (s *SelectionState) Contains(t *models.Table) bool {
	return t != nil && s.indexOf(t.UniqueName) >= 0
}

// AddTable selects t, minting a fresh alias for it. Adding a table that is
// already selected changes nothing and returns false.
func (s *SelectionState) AddTable(t *models.Table) bool {
	if t == nil || s.Contains(t) {
		return false
	}

	t.AliasID = "t" + strconv.Itoa(s.aliasCounter)
	s.aliasCounter++

	s.relationships[t.UniqueName] = models.NoRelationship()
	s.fieldsByTable[t.UniqueName] = []models.Field{}
	s.tables = append(s.tables, t)
	if t.IsPrivate {
		s.privateCount++
	}
	return true
}

// RemoveTable drops t and its fields and relationship. Joins of other tables
// that point at t are left alone; they stop contributing to the query.
func (s *SelectionState) RemoveTable(t *models.Table) bool {
	if t == nil {
		return false
	}
	i := s.indexOf(t.UniqueName)
	if i < 0 {
		return false
	}

	removed := s.tables[i]
	s.tables = append(s.tables[:i], s.tables[i+1:]...)
	delete(s.fieldsByTable, removed.UniqueName)
	delete(s.relationships, removed.UniqueName)
	if removed.IsPrivate {
		s.privateCount--
	}
	return true
}

// AddRemoveTable toggles t and reports whether it is selected afterwards
func (s *SelectionState) AddRemoveTable(t *models.Table) bool {
	if s.Contains(t) {
		s.RemoveTable(t)
		return false
	}
	return s.AddTable(t)
}

func fieldIndex(fields []models.Field, name string) int {
	for i, f := range fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// AddField appends col to the selected fields of t unless a field with the same
// name is already there. Fields of unselected tables are ignored.
func (s *SelectionState) AddField(col models.Field, t *models.Table) {
	if !s.Contains(t) {
		return
	}
	fields := s.fieldsByTable[t.UniqueName]
	if fieldIndex(fields, col.Name) >= 0 {
		return
	}
	s.fieldsByTable[t.UniqueName] = append(fields, col)
}

// AddRemoveField toggles col in the selected fields of t, keeping the order of
// the other fields.
func (s *SelectionState) AddRemoveField(col models.Field, t *models.Table) {
	if !s.Contains(t) {
		return
	}
	fields := s.fieldsByTable[t.UniqueName]
	i := fieldIndex(fields, col.Name)
	if i < 0 {
		s.fieldsByTable[t.UniqueName] = append(fields, col)
		return
	}
	kept := make([]models.Field, 0, len(fields)-1)
	kept = append(kept, fields[:i]...)
	kept = append(kept, fields[i+1:]...)
	s.fieldsByTable[t.UniqueName] = kept
}

// SetRelationship replaces the relationship of t. Join keys are not checked here.
func (s *SelectionState) SetRelationship(t *models.Table, rel models.Relationship) {
	if !s.Contains(t) {
		return
	}
	s.relationships[t.UniqueName] = rel
}

// SetQuotes forces quoting of every identifier in the generated query
func (s *SelectionState) SetQuotes(value bool) {
	s.useQuotes = value
}

func (s *SelectionState) Quotes() bool {
	return s.useQuotes
}

// IsPrivate reports whether at least one selected table is private
func (s *SelectionState) IsPrivate() bool {
	return s.privateCount > 0
}

// Tables returns the selected tables in add order
func (s *SelectionState) Tables() []*models.Table {
	out := make([]*models.Table, len(s.tables))
	copy(out, s.tables)
	return out
}

// Table returns the selected table with the given unique name, or nil
func (s *SelectionState) Table(uniqueName string) *models.Table {
	return s.lookup(uniqueName)
}

// Fields returns a copy of the selected fields of t
func (s *SelectionState) Fields(t *models.Table) []models.Field {
	if t == nil {
		return nil
	}
	fields, ok := s.fieldsByTable[t.UniqueName]
	if !ok {
		return nil
	}
	out := make([]models.Field, len(fields))
	copy(out, fields)
	return out
}

// Relationship returns the relationship of t and whether t is selected
func (s *SelectionState) Relationship(t *models.Table) (models.Relationship, bool) {
	if t == nil {
		return models.Relationship{}, false
	}
	rel, ok := s.relationships[t.UniqueName]
	return rel, ok
}

// FileGroups lists the unique names of the selected tables, as submitted with a
// transformation.
func (s *SelectionState) FileGroups() []string {
	names := make([]string, 0, len(s.tables))
	for _, t := range s.tables {
		names = append(names, t.UniqueName)
	}
	return names
}
