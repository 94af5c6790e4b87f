// Package assistant drives one user's transformation assistant: it keeps the
// selection and the query editor in step, loads previews of selected tables and
// submits the finished transformation.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/odh-assistant/internal/datasource"
	"github.com/vitebski/odh-assistant/internal/selection"
	"github.com/vitebski/odh-assistant/internal/store"
	"github.com/vitebski/odh-assistant/pkg/models"
)

var (
	// ErrIncompleteSelection is returned by Submit when there is no query text or no name
	ErrIncompleteSelection = errors.New("selection does not produce a transformation")
	// ErrTableNotSelected is returned when an operation names a table outside the selection
	ErrTableNotSelected = errors.New("table is not selected")
	// ErrInvalidRelationship is returned for an unknown relationship kind
	ErrInvalidRelationship = errors.New("invalid relationship")
)

// PreviewState is what a session knows about the preview of one selected table
type PreviewState struct {
	Loading bool            `json:"loading"`
	Preview *models.Preview `json:"preview,omitempty"`
	Error   string          `json:"error,omitempty"`

	seq uint64
}

// RelationshipInput names the parts of a relationship by table and column name
type RelationshipInput struct {
	Kind       string `json:"kind"`
	ForeignKey string `json:"foreign_key"`
	JoinField  string `json:"join_field"`
	JoinTable  string `json:"join_table"`
}

// TableView is one selected table as shown to the user
type TableView struct {
	UniqueName   string         `json:"unique_name"`
	AliasID      string         `json:"alias_id"`
	Private      bool           `json:"private"`
	Fields       []models.Field `json:"fields"`
	Relationship string         `json:"relationship"`
	JoinTable    string         `json:"join_table,omitempty"`
}

// View is a snapshot of the session
type View struct {
	ID      string      `json:"id"`
	Tables  []TableView `json:"tables"`
	Query   string      `json:"query"`
	Locked  bool        `json:"locked"`
	Quotes  bool        `json:"quotes"`
	Private bool        `json:"private"`
}

// Session is one assistant run. All methods are safe for concurrent use.
type Session struct {
	ID            uuid.UUID
	Client        datasource.Client
	Fetcher       *datasource.Fetcher
	Store         store.TransformationStore
	PreviewPaging models.Paging
	Logger        *logrus.Logger

	mu       sync.Mutex
	state    *selection.SelectionState
	editor   selection.Editor
	previews map[string]*PreviewState
	seq      uint64
}

// NewSession creates an empty session
func NewSession(client datasource.Client, fetcher *datasource.Fetcher, st store.TransformationStore, logger *logrus.Logger) *Session {
	return &Session{
		ID:       uuid.New(),
		Client:   client,
		Fetcher:  fetcher,
		Store:    st,
		Logger:   logger,
		state:    selection.New(),
		previews: make(map[string]*PreviewState),
	}
}

// refresh regenerates the query; must be called with mu held
func (s *Session) refresh() {
	query, ok := s.state.Generate()
	if !s.editor.Refresh(query, ok) {
		s.Logger.Debugf("Session %s: query has manual edits, generated query not applied", s.ID)
	}
}

// ToggleTable selects or deselects a table and reports whether it is selected
// afterwards. A newly selected table gets a join onto the selection when the
// data source can suggest one, and its preview starts loading. The data source
// is queried without holding the session lock.
func (s *Session) ToggleTable(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	if t := s.state.Table(name); t != nil {
		s.state.RemoveTable(t)
		delete(s.previews, name)
		s.refresh()
		s.mu.Unlock()
		s.Logger.Infof("Session %s: removed table %s", s.ID, name)
		return false, nil
	}
	selected := s.state.Tables()
	s.mu.Unlock()

	t, err := s.Client.Get(ctx, name)
	if err != nil {
		s.Logger.Errorf("Session %s: error loading table %s: %v", s.ID, name, err)
		return false, err
	}
	rel, suggested := s.suggest(ctx, t, selected)

	s.mu.Lock()
	defer s.mu.Unlock()

	// selected by a concurrent call in the meantime
	if s.state.Table(name) != nil {
		return true, nil
	}
	s.state.AddTable(t)
	if suggested && s.state.Table(rel.JoinTable.UniqueName) == rel.JoinTable {
		s.state.SetRelationship(t, rel)
		s.Logger.Debugf("Session %s: joined %s onto %s", s.ID, name, rel.JoinTable.UniqueName)
	}
	s.refresh()
	s.loadPreview(ctx, name)

	s.Logger.Infof("Session %s: added table %s as %s", s.ID, name, t.AliasID)
	return true, nil
}

// suggest asks the data source for a join of t onto one of selected
func (s *Session) suggest(ctx context.Context, t *models.Table, selected []*models.Table) (models.Relationship, bool) {
	suggester, ok := s.Client.(datasource.Suggester)
	if !ok || len(selected) == 0 {
		return models.Relationship{}, false
	}
	rel, ok, err := suggester.SuggestRelationship(ctx, t, selected)
	if err != nil {
		s.Logger.Warningf("Session %s: could not suggest a relationship for %s: %v", s.ID, t.UniqueName, err)
		return models.Relationship{}, false
	}
	return rel, ok && rel.JoinTable != nil
}

// loadPreview starts a fetch; must be called with mu held
func (s *Session) loadPreview(ctx context.Context, name string) {
	if s.Fetcher == nil {
		return
	}
	s.seq++
	seq := s.seq
	s.previews[name] = &PreviewState{Loading: true, seq: seq}
	s.Fetcher.Fetch(context.WithoutCancel(ctx), name, s.PreviewPaging, func(r datasource.Result) {
		s.receivePreview(seq, r)
	})
}

func (s *Session) receivePreview(seq uint64, r datasource.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.previews[r.Table]
	if !ok || entry.seq != seq {
		s.Logger.Debugf("Session %s: dropping preview of %s, table is no longer selected", s.ID, r.Table)
		return
	}
	entry.Loading = false
	if r.Err != nil {
		entry.Error = r.Err.Error()
		return
	}
	entry.Preview = r.Preview
}

// ToggleField selects or deselects a field of a selected table
func (s *Session) ToggleField(table string, field models.Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.state.Table(table)
	if t == nil {
		return fmt.Errorf("%s: %w", table, ErrTableNotSelected)
	}
	if field.Alias == "" {
		field.Alias = field.Name
	}
	s.state.AddRemoveField(field, t)
	s.refresh()
	return nil
}

// SetRelationship replaces the relationship of a selected table. A join must
// name a selected join table.
func (s *Session) SetRelationship(table string, in RelationshipInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.state.Table(table)
	if t == nil {
		return fmt.Errorf("%s: %w", table, ErrTableNotSelected)
	}
	kind, ok := models.ParseRelationshipKind(in.Kind)
	if !ok {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRelationship, in.Kind)
	}

	var rel models.Relationship
	switch kind {
	case models.Union:
		rel = models.UnionRelationship()
	case models.Join:
		target := s.state.Table(in.JoinTable)
		if target == nil {
			return fmt.Errorf("join table %s: %w", in.JoinTable, ErrTableNotSelected)
		}
		if in.ForeignKey == "" || in.JoinField == "" {
			return fmt.Errorf("%w: join needs foreign_key and join_field", ErrInvalidRelationship)
		}
		rel = models.JoinRelationship(models.NewField(in.ForeignKey), models.NewField(in.JoinField), target)
	default:
		rel = models.NoRelationship()
	}

	s.state.SetRelationship(t, rel)
	s.refresh()
	return nil
}

func (s *Session) SetQuotes(value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.SetQuotes(value)
	s.refresh()
}

// EditQuery records a manual edit of the query text
func (s *Session) EditQuery(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editor.Edit(text)
	if s.editor.Locked() {
		s.Logger.Debugf("Session %s: query edited manually", s.ID)
	}
}

// Reengage hands the query back to the assistant and regenerates it
func (s *Session) Reengage(confirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editor.Reengage(confirmed); err != nil {
		return err
	}
	s.refresh()
	return nil
}

// Query returns the query text and whether it holds manual edits
func (s *Session) Query() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Text(), s.editor.Locked()
}

func (s *Session) Diagnostics() selection.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Diagnose()
}

// Preview returns the preview state of a selected table
func (s *Session) Preview(table string) (PreviewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Table(table) == nil {
		return PreviewState{}, fmt.Errorf("%s: %w", table, ErrTableNotSelected)
	}
	entry, ok := s.previews[table]
	if !ok {
		return PreviewState{}, nil
	}
	return *entry, nil
}

// View returns a snapshot of the selection and the query
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := View{
		ID:      s.ID.String(),
		Tables:  []TableView{},
		Query:   s.editor.Text(),
		Locked:  s.editor.Locked(),
		Quotes:  s.state.Quotes(),
		Private: s.state.IsPrivate(),
	}
	for _, t := range s.state.Tables() {
		rel, _ := s.state.Relationship(t)
		tv := TableView{
			UniqueName:   t.UniqueName,
			AliasID:      t.AliasID,
			Private:      t.IsPrivate,
			Fields:       s.state.Fields(t),
			Relationship: rel.Kind.String(),
		}
		if rel.Kind == models.Join && rel.JoinTable != nil {
			tv.JoinTable = rel.JoinTable.UniqueName
		}
		view.Tables = append(view.Tables, tv)
	}
	return view
}

// Submit saves the current query as a transformation and starts the session over
func (s *Session) Submit(ctx context.Context, name, description string) (*models.Transformation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := s.editor.Text()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no query", ErrIncompleteSelection)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrIncompleteSelection)
	}

	tr := &models.Transformation{
		Name:           name,
		Description:    description,
		Transformation: text,
		FileGroups:     s.state.FileGroups(),
		Private:        s.state.IsPrivate(),
	}
	if _, err := s.Store.Save(ctx, tr); err != nil {
		s.Logger.Errorf("Session %s: error submitting %s: %v", s.ID, name, err)
		return nil, err
	}

	s.state.Reset()
	s.editor = selection.Editor{}
	s.previews = make(map[string]*PreviewState)
	s.Logger.Infof("Session %s: submitted transformation %s (id %d)", s.ID, tr.Name, tr.ID)
	return tr, nil
}
