package selection

import (
	"strings"

	"github.com/vitebski/odh-assistant/pkg/models"
)

// Generate builds the query text for the current selection. It returns false
// when no query can be produced: no master table or no selected field.
//
// The first None table in add order is the master and anchors FROM. Fields of
// the master and of joined tables are prepended as tables are visited, so later
// tables list their fields first. Union tables add a trailing UNION SELECT of
// their own fields. Any further None table, a join with missing keys or a join
// to a table that is no longer selected contributes nothing.
func (s *SelectionState) Generate() (string, bool) {
	var (
		master *models.Table
		fields []string
		joins  []string
		unions []string
	)

	for _, t := range s.tables {
		rel := s.relationships[t.UniqueName]
		switch rel.Kind {
		case models.None:
			if master != nil {
				continue
			}
			master = t
			fields = append(s.FieldNames(s.fieldsByTable[t.UniqueName], t.AliasID, false), fields...)
		case models.Union:
			if clause, ok := s.unionClause(t); ok {
				unions = append(unions, clause)
			}
		case models.Join:
			clause, ok := s.joinClause(t, rel)
			if !ok {
				continue
			}
			fields = append(s.FieldNames(s.fieldsByTable[t.UniqueName], t.AliasID, false), fields...)
			joins = append(joins, clause)
		}
	}

	if master == nil || len(fields) == 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(fields, ",\n"))
	b.WriteString(" \nFROM ")
	b.WriteString(s.AliasedTable(master))
	b.WriteString(" \n")
	b.WriteString(strings.Join(joins, " \n "))
	b.WriteString(strings.Join(unions, ""))
	return b.String(), true
}

// joinTarget resolves the table a join points at, if the join is usable
func (s *SelectionState) joinTarget(rel models.Relationship) *models.Table {
	if rel.ForeignKey == nil || rel.JoinField == nil || rel.JoinTable == nil {
		return nil
	}
	return s.lookup(rel.JoinTable.UniqueName)
}

func (s *SelectionState) joinClause(t *models.Table, rel models.Relationship) (string, bool) {
	target := s.joinTarget(rel)
	if target == nil {
		return "", false
	}
	return "JOIN " + s.AliasedTable(t) +
		" on " + s.quote(target.AliasID) + "." + s.quote(rel.ForeignKey.Name) +
		" = " + s.quote(t.AliasID) + "." + s.quote(rel.JoinField.Name), true
}

func (s *SelectionState) unionClause(t *models.Table) (string, bool) {
	fields := s.fieldsByTable[t.UniqueName]
	if len(fields) == 0 {
		return "", false
	}
	return "\nUNION \n SELECT " + strings.Join(s.FieldNames(fields, t.AliasID, true), ",\n") +
		" \n FROM " + s.AliasedTable(t), true
}
