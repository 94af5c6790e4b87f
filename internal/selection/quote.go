package selection

import (
	"regexp"
	"strings"

	"github.com/vitebski/odh-assistant/pkg/models"
)

var plainIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// QuoteIdent wraps name in double quotes when force is set or when name is not
// a plain identifier. Embedded double quotes are doubled.
func QuoteIdent(name string, force bool) string {
	if !force && plainIdentifier.MatchString(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *SelectionState) quote(name string) string {
	return QuoteIdent(name, s.useQuotes)
}

// AliasedTable renders a table reference for FROM/JOIN clauses:
// `name` when the unique name is the alias, `name as alias` otherwise.
func (s *SelectionState) AliasedTable(t *models.Table) string {
	if t.UniqueName == t.AliasID {
		return s.quote(t.UniqueName)
	}
	return s.quote(t.UniqueName) + " as " + s.quote(t.AliasID)
}

// FieldNames renders every field as `group.name`, or `group.name AS alias` when
// the alias is set, differs from the name and forceNoAlias is not set.
func (s *SelectionState) FieldNames(fields []models.Field, group string, forceNoAlias bool) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		expr := s.quote(f.Name)
		if f.Alias != "" && f.Name != f.Alias && !forceNoAlias {
			expr += " AS " + s.quote(f.Alias)
		}
		names = append(names, s.quote(group)+"."+expr)
	}
	return names
}
