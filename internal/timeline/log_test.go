package timeline

import (
	"testing"
	"time"

	"github.com/recall-project/recall/internal/action"
	"github.com/recall-project/recall/internal/history"
	"github.com/recall-project/recall/internal/store"
	"github.com/recall-project/recall/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecord(id, kind, name string) *model.Record {
	now := time.Now().UTC()
	return &model.Record{
		ID:        model.RecordID(id),
		Kind:      kind,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// commitAdd applies an AddRecord command and records it in both views,
// the way the session layer does.
func commitAdd(t *testing.T, s *store.Store, h *history.Stack, l *Log, id, kind, name string) (*action.AddRecord, *model.AuditEvent) {
	t.Helper()
	cmd := action.NewAddRecord(s, newTestRecord(id, kind, name))
	cmd.Apply()
	h.Record(cmd)
	e := l.RecordEvent(cmd.Describe(), kind, name, model.ActionAdded, cmd)
	return cmd, e
}

func TestLog_RecordEventAppends(t *testing.T) {
	h := history.New()
	l := New(h)

	e := l.RecordEvent("add customer \"Acme\"", "customer", "Acme", model.ActionAdded, nil)

	assert.Equal(t, 1, l.EventCount())
	assert.False(t, e.IsUndone)
	assert.Equal(t, model.ActionAdded, e.Kind)
	assert.NotEmpty(t, e.ID)
}

func TestLog_UndoEventPairsWithStack(t *testing.T) {
	s := store.New()
	h := history.New()
	l := New(h)
	cmd, e := commitAdd(t, s, h, l, "r1", "customer", "Acme")

	require.True(t, l.CanUndoEvent(e))
	require.True(t, l.UndoEvent(e))

	// Business state reverted, event flagged, command gone from the undo
	// stack so global undo cannot re-undo it.
	assert.False(t, s.Has("r1"))
	assert.True(t, e.IsUndone)
	assert.False(t, h.Contains(cmd))
	assert.False(t, h.CanUndo())

	// A synthetic meta-event was appended.
	events := l.Events()
	require.Len(t, events, 2)
	assert.Equal(t, model.ActionUndone, events[1].Kind)
	assert.True(t, events[1].Kind.IsMeta())
}

func TestLog_SecondUndoEventRejected(t *testing.T) {
	s := store.New()
	h := history.New()
	l := New(h)
	_, e := commitAdd(t, s, h, l, "r1", "customer", "Acme")

	require.True(t, l.UndoEvent(e))
	assert.False(t, l.CanUndoEvent(e))
	assert.False(t, l.UndoEvent(e))
}

func TestLog_UndoThenRedoRestoresState(t *testing.T) {
	s := store.New()
	h := history.New()
	l := New(h)
	cmd, e := commitAdd(t, s, h, l, "r1", "customer", "Acme")

	require.True(t, l.UndoEvent(e))
	require.True(t, l.CanRedoEvent(e))
	require.True(t, l.RedoEvent(e))

	// Business state restored identically; event active again; command
	// live on the undo stack once more.
	assert.True(t, s.Has("r1"))
	assert.False(t, e.IsUndone)
	assert.True(t, h.Contains(cmd))
	assert.True(t, h.CanUndo())

	// Meta-events for both the undo and the redo.
	kinds := []model.ActionKind{}
	for _, ev := range l.Events() {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []model.ActionKind{model.ActionAdded, model.ActionUndone, model.ActionRedone}, kinds)
}

func TestLog_UnboundedToggling(t *testing.T) {
	s := store.New()
	h := history.New()
	l := New(h)
	_, e := commitAdd(t, s, h, l, "r1", "customer", "Acme")

	for i := 0; i < 3; i++ {
		require.True(t, l.UndoEvent(e), "toggle %d", i)
		require.True(t, l.RedoEvent(e), "toggle %d", i)
	}
	assert.False(t, e.IsUndone)
	assert.True(t, s.Has("r1"))
}

func TestLog_CanUndoEventFalseAfterGlobalUndo(t *testing.T) {
	s := store.New()
	h := history.New()
	l := New(h)
	_, e := commitAdd(t, s, h, l, "r1", "customer", "Acme")

	// Global undo consumes the command; the event stays Active but can
	// no longer be selectively undone through the stack.
	require.True(t, h.Undo())
	assert.False(t, e.IsUndone)
	assert.False(t, l.CanUndoEvent(e))
}

func TestLog_UndoEventUnreachableCommandStillUnapplies(t *testing.T) {
	s := store.New()
	h := history.New()
	l := New(h)
	cmd, e := commitAdd(t, s, h, l, "r1", "customer", "Acme")

	// Simulate the command leaving the stack without the event knowing.
	h.Remove(cmd)
	require.False(t, l.CanUndoEvent(e))

	// The timeline is authoritative: Unapply still runs, only the stack
	// removal is a no-op.
	require.True(t, l.UndoEvent(e))
	assert.False(t, s.Has("r1"))
	assert.True(t, e.IsUndone)
}

func TestLog_MetaEventsCannotBeUndone(t *testing.T) {
	s := store.New()
	h := history.New()
	l := New(h)
	_, e := commitAdd(t, s, h, l, "r1", "customer", "Acme")
	require.True(t, l.UndoEvent(e))

	meta := l.Events()[1]
	assert.False(t, l.CanUndoEvent(meta))
	assert.False(t, l.UndoEvent(meta))
}

func TestLog_FilteredEvents(t *testing.T) {
	s := store.New()
	h := history.New()
	l := New(h)
	commitAdd(t, s, h, l, "r1", "customer", "Acme")
	commitAdd(t, s, h, l, "r2", "supplier", "Beta")
	commitAdd(t, s, h, l, "r3", "customer", "Gamma")

	customers := l.FilteredEvents("", "customer")
	assert.Len(t, customers, 2)

	added := l.FilteredEvents(model.ActionAdded, "")
	assert.Len(t, added, 3)

	both := l.FilteredEvents(model.ActionAdded, "supplier")
	require.Len(t, both, 1)
	assert.Equal(t, "Beta", both[0].EntityName)

	none := l.FilteredEvents(model.ActionDeleted, "")
	assert.Empty(t, none)
}

func TestLog_EntityTypesFirstSeenOrder(t *testing.T) {
	s := store.New()
	h := history.New()
	l := New(h)
	commitAdd(t, s, h, l, "r1", "customer", "Acme")
	commitAdd(t, s, h, l, "r2", "supplier", "Beta")
	commitAdd(t, s, h, l, "r3", "customer", "Gamma")

	assert.Equal(t, []string{"customer", "supplier"}, l.EntityTypes())
}

func TestLog_Clear(t *testing.T) {
	s := store.New()
	h := history.New()
	l := New(h)
	_, e := commitAdd(t, s, h, l, "r1", "customer", "Acme")

	l.Clear()
	assert.Equal(t, 0, l.EventCount())
	assert.False(t, l.UndoEvent(e))
}

func TestLog_FindByID(t *testing.T) {
	h := history.New()
	l := New(h)
	e := l.RecordEvent("add", "customer", "Acme", model.ActionAdded, nil)

	got, ok := l.Find(e.ID)
	require.True(t, ok)
	assert.Same(t, e, got)

	_, ok = l.Find("missing")
	assert.False(t, ok)
}

func TestLog_ObserverNotified(t *testing.T) {
	s := store.New()
	h := history.New()
	l := New(h)
	calls := 0
	l.Subscribe(func() { calls++ })

	_, e := commitAdd(t, s, h, l, "r1", "customer", "Acme") // 1 (RecordEvent)
	l.UndoEvent(e)                                          // 2
	l.RedoEvent(e)                                          // 3

	assert.Equal(t, 3, calls)
}

func TestGroupByDay_TwoDaysNewestFirst(t *testing.T) {
	h := history.New()
	l := New(h)

	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.Local)
	stamps := []time.Time{
		base,                     // day one, morning
		base.Add(2 * time.Hour),  // day one, noon
		base.Add(26 * time.Hour), // day two
	}
	i := 0
	timeNow = func() time.Time { t := stamps[i]; i++; return t }
	defer func() { timeNow = time.Now }()

	l.RecordEvent("first", "customer", "Acme", model.ActionAdded, nil)
	l.RecordEvent("second", "customer", "Beta", model.ActionAdded, nil)
	l.RecordEvent("third", "supplier", "Gamma", model.ActionAdded, nil)

	groups := GroupByDay(l.Events())
	require.Len(t, groups, 2)

	// Newest day first.
	assert.True(t, groups[0].Day.After(groups[1].Day))
	require.Len(t, groups[0].Events, 1)
	assert.Equal(t, "third", groups[0].Events[0].Description)

	// Newest event first within a day.
	require.Len(t, groups[1].Events, 2)
	assert.Equal(t, "second", groups[1].Events[0].Description)
	assert.Equal(t, "first", groups[1].Events[1].Description)
}
