package recall

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/recall-project/recall/internal/action"
	"github.com/recall-project/recall/internal/timeline"
	"github.com/recall-project/recall/pkg/errclass"
	"github.com/recall-project/recall/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_AddRecord(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	rec, err := s.AddRecord("customer", "Acme", "key account")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "Acme", rec.Name)

	assert.True(t, s.CanUndo())
	assert.Equal(t, 1, s.EventCount())
	assert.Len(t, s.Records(), 1)
}

func TestSession_AddRecordValidation(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	_, err := s.AddRecord("Customer", "Acme", "")
	assert.True(t, errors.Is(err, errclass.ErrNameInvalid))

	_, err = s.AddRecord("customer", "", "")
	assert.True(t, errors.Is(err, errclass.ErrNameInvalid))

	// Nothing was committed.
	assert.False(t, s.CanUndo())
	assert.Equal(t, 0, s.EventCount())
}

func TestSession_EditAndDelete(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	rec, err := s.AddRecord("customer", "Acme", "")
	require.NoError(t, err)

	edited, err := s.EditRecord(rec.ID, "Acme Corp", "renamed")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", edited.Name)

	require.NoError(t, s.DeleteRecord(rec.ID))
	assert.Empty(t, s.Records())

	// Three business events on the timeline.
	kinds := []model.ActionKind{}
	for _, e := range s.Events() {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []model.ActionKind{model.ActionAdded, model.ActionModified, model.ActionDeleted}, kinds)
}

func TestSession_EditUnknownRecord(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	_, err := s.EditRecord("missing", "Name", "")
	assert.True(t, errors.Is(err, errclass.ErrRecordNotFound))
}

func TestSession_GlobalUndoRedo(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	rec, err := s.AddRecord("customer", "Acme", "")
	require.NoError(t, err)
	_, err = s.EditRecord(rec.ID, "Acme Corp", "")
	require.NoError(t, err)

	require.True(t, s.Undo()) // revert edit
	got, err := s.GetRecord(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	require.True(t, s.Undo()) // revert add
	_, err = s.GetRecord(rec.ID)
	assert.Error(t, err)
	assert.False(t, s.CanUndo())

	require.True(t, s.Redo())
	require.True(t, s.Redo())
	got, err = s.GetRecord(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Name)
}

func TestSession_UndoHistoryStrings(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	rec, _ := s.AddRecord("customer", "Acme", "")
	s.EditRecord(rec.ID, "Acme Corp", "")

	assert.Equal(t, []string{
		`rename customer "Acme" to "Acme Corp"`,
		`add customer "Acme"`,
	}, s.UndoHistory())
}

func TestSession_SelectiveUndoOutOfOrder(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	a, err := s.AddRecord("customer", "Acme", "")
	require.NoError(t, err)
	_, err = s.AddRecord("customer", "Beta", "")
	require.NoError(t, err)

	events := s.Events()
	require.Len(t, events, 2)
	first := events[0] // the Acme add, not the most recent commit

	ok, err := s.UndoEvent(first.ID)
	require.NoError(t, err)
	require.True(t, ok)

	// Acme gone, Beta alive: the single event was unapplied in isolation.
	_, err = s.GetRecord(a.ID)
	assert.Error(t, err)
	require.Len(t, s.Records(), 1)
	assert.Equal(t, "Beta", s.Records()[0].Name)

	// Global undo now skips the selectively undone command and targets
	// the Beta add.
	require.True(t, s.Undo())
	assert.Empty(t, s.Records())
}

func TestSession_UndoEventThenRedoEvent(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	rec, err := s.AddRecord("customer", "Acme", "")
	require.NoError(t, err)
	e := s.Events()[0]

	ok, err := s.UndoEvent(e.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, s.CanUndoEvent(e.ID))
	assert.True(t, s.CanRedoEvent(e.ID))

	ok, err = s.RedoEvent(e.ID)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := s.GetRecord(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.False(t, e.IsUndone)
}

func TestSession_UndoEventUnknownID(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	_, err := s.UndoEvent("missing")
	assert.True(t, errors.Is(err, errclass.ErrEventNotFound))
}

func TestSession_CommitConfirmedCancelLeavesStateUntouched(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	n := 0
	cmd := action.NewFunc("counted", func() { n++ }, func() { n-- })

	done, err := s.CommitConfirmed(func() bool { return false }, cmd, "counter", "n", model.ActionModified)
	require.NoError(t, err)
	assert.False(t, done)

	// No apply, no history entry, no timeline entry.
	assert.Equal(t, 0, n)
	assert.False(t, s.CanUndo())
	assert.Equal(t, 0, s.EventCount())
}

func TestSession_CommitConfirmedAccepted(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	n := 0
	cmd := action.NewFunc("counted", func() { n++ }, func() { n-- })

	done, err := s.CommitConfirmed(func() bool { return true }, cmd, "counter", "n", model.ActionModified)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 1, n)
	assert.True(t, s.CanUndo())
	assert.Equal(t, 1, s.EventCount())
}

func TestSession_SearchRecords(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	s.AddRecord("customer", "Acme", "")
	s.AddRecord("customer", "Acne", "")
	s.AddRecord("customer", "Widget", "")

	names := func(recs []*model.Record) []string {
		var out []string
		for _, r := range recs {
			out = append(out, r.Name)
		}
		return out
	}

	got := s.SearchRecords("acme", "")
	assert.Equal(t, []string{"Acme", "Acne"}, names(got))

	// Empty query: default name ordering, everything kept.
	got = s.SearchRecords("", "")
	assert.Equal(t, []string{"Acme", "Acne", "Widget"}, names(got))
}

func TestSession_SearchRecordsKindFilterComposes(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	s.AddRecord("customer", "Acme", "")
	s.AddRecord("supplier", "Acme Supply", "")

	got := s.SearchRecords("acme", "supplier")
	require.Len(t, got, 1)
	assert.Equal(t, "Acme Supply", got[0].Name)
}

func TestSession_SearchRecordsMatchesNotes(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	s.AddRecord("customer", "Zenith", "the acme of engineering")

	got := s.SearchRecords("acme", "")
	require.Len(t, got, 1)
	assert.Equal(t, "Zenith", got[0].Name)
}

func TestSession_SearchEvents(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	s.AddRecord("customer", "Acme", "")
	s.AddRecord("supplier", "Beta", "")

	got := s.SearchEvents("acme", "", "")
	require.Len(t, got, 1)
	assert.Equal(t, "Acme", got[0].EntityName)

	// Structural filter narrows before ranking.
	got = s.SearchEvents("acme", "", "supplier")
	assert.Empty(t, got)
}

func TestSession_EntityTypes(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	s.AddRecord("customer", "Acme", "")
	s.AddRecord("supplier", "Beta", "")
	s.AddRecord("customer", "Gamma", "")

	assert.Equal(t, []string{"customer", "supplier"}, s.EntityTypes())
}

func TestSession_GroupedTimeline(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	s.AddRecord("customer", "Acme", "")
	s.AddRecord("customer", "Beta", "")

	groups := s.GroupedTimeline()
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Events, 2)
	// Newest first within the day.
	assert.Equal(t, "Beta", groups[0].Events[0].EntityName)
}

func TestSession_ExportTimeline(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	s.AddRecord("customer", "Acme", "")
	path := filepath.Join(t.TempDir(), "timeline.jsonl")
	require.NoError(t, s.ExportTimeline(path))

	count, err := timeline.VerifyExportFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSession_ClosedSessionRejectsMutation(t *testing.T) {
	s := Open(nil)
	require.NoError(t, s.Close())

	_, err := s.AddRecord("customer", "Acme", "")
	assert.True(t, errors.Is(err, errclass.ErrSessionClosed))

	err = s.Close()
	assert.True(t, errors.Is(err, errclass.ErrSessionClosed))
}

func TestSession_ObserverSeesBothViews(t *testing.T) {
	s := Open(nil)
	defer s.Close()

	calls := 0
	s.Subscribe(func() { calls++ })

	s.AddRecord("customer", "Acme", "") // history.Record + RecordEvent
	assert.Equal(t, 2, calls)
}
