package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_IncAndGet(t *testing.T) {
	r := NewRegistry()
	r.Inc("commit")
	r.Inc("commit")
	r.Inc("undo")

	assert.Equal(t, int64(2), r.Get("commit"))
	assert.Equal(t, int64(1), r.Get("undo"))
	assert.Equal(t, int64(0), r.Get("missing"))
}

func TestRegistry_Snapshot(t *testing.T) {
	r := NewRegistry()
	r.Inc("redo")

	snap := r.Snapshot()
	assert.Equal(t, int64(1), snap["redo"])

	// Snapshot is a copy.
	snap["redo"] = 99
	assert.Equal(t, int64(1), r.Get("redo"))
}

func TestRegistry_Reset(t *testing.T) {
	r := NewRegistry()
	r.Inc("commit")
	r.Reset()
	assert.Equal(t, int64(0), r.Get("commit"))
}

func TestDefault_Singleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}
