package selection

import (
	"github.com/vitebski/odh-assistant/pkg/models"
	"github.com/yourbasic/graph"
)

// Report explains which parts of the selection end up in the generated query.
// It never changes what Generate returns.
type Report struct {
	Master      string   `json:"master,omitempty"`
	ExtraRoots  []string `json:"extra_roots,omitempty"`
	Dangling    []string `json:"dangling,omitempty"`
	Unreachable []string `json:"unreachable,omitempty"`
	Unions      []string `json:"unions,omitempty"`
	Cyclic      bool     `json:"cyclic"`
}

// OK reports whether every selected table contributes to the query
func (r Report) OK() bool {
	return r.Master != "" &&
		len(r.ExtraRoots) == 0 &&
		len(r.Dangling) == 0 &&
		len(r.Unreachable) == 0 &&
		!r.Cyclic
}

// Diagnose builds the join graph of the selection, with an edge from every join
// target to the joined table, and checks that all joins hang off the master.
func (s *SelectionState) Diagnose() Report {
	var report Report

	joinGraph := graph.New(len(s.tables))
	masterIdx := -1
	var joined []int

	for i, t := range s.tables {
		rel := s.relationships[t.UniqueName]
		switch rel.Kind {
		case models.None:
			if masterIdx < 0 {
				masterIdx = i
				report.Master = t.UniqueName
			} else {
				report.ExtraRoots = append(report.ExtraRoots, t.UniqueName)
			}
		case models.Union:
			report.Unions = append(report.Unions, t.UniqueName)
		case models.Join:
			target := s.joinTarget(rel)
			if target == nil {
				report.Dangling = append(report.Dangling, t.UniqueName)
				continue
			}
			joinGraph.Add(s.indexOf(target.UniqueName), i)
			joined = append(joined, i)
		}
	}

	report.Cyclic = !graph.Acyclic(joinGraph)

	reached := make(map[int]bool)
	if masterIdx >= 0 {
		graph.BFS(joinGraph, masterIdx, func(_, w int, _ int64) {
			reached[w] = true
		})
	}
	for _, i := range joined {
		if !reached[i] {
			report.Unreachable = append(report.Unreachable, s.tables[i].UniqueName)
		}
	}

	return report
}
