// Package action defines the reversible command abstraction and the
// tagged command variants for record mutations.
//
// Commands carry explicit before/after payloads, so Apply and Unapply are
// functions of data the command owns, not of captured outer state. The
// history stack and the audit timeline compare commands by pointer
// identity; always construct them through the New* constructors.
package action

import (
	"fmt"

	"github.com/recall-project/recall/internal/store"
	"github.com/recall-project/recall/pkg/model"
)

// Command is one reversible unit of business mutation.
//
// Apply and Unapply are invoked strictly in the order imposed by the
// owning structure and carry no error signaling; a failing mutation is
// the constructor's problem, not the history engine's. Calling back into
// the history engine from inside Apply/Unapply is undefined by contract.
type Command interface {
	// Describe returns the human-readable display string for history menus.
	Describe() string
	Apply()
	Unapply()
}

// AddRecord inserts a record on apply and removes it on unapply.
type AddRecord struct {
	store  *store.Store
	record *model.Record
}

// NewAddRecord creates an AddRecord command. The record is copied.
func NewAddRecord(s *store.Store, r *model.Record) *AddRecord {
	return &AddRecord{store: s, record: r.Clone()}
}

func (c *AddRecord) Describe() string {
	return fmt.Sprintf("add %s %q", c.record.Kind, c.record.Name)
}

func (c *AddRecord) Apply()   { c.store.Put(c.record) }
func (c *AddRecord) Unapply() { c.store.Remove(c.record.ID) }

// Record returns a copy of the record payload.
func (c *AddRecord) Record() *model.Record { return c.record.Clone() }

// EditRecord swaps a record between explicit before and after states.
type EditRecord struct {
	store  *store.Store
	before *model.Record
	after  *model.Record
}

// NewEditRecord creates an EditRecord command. Both payloads are copied.
func NewEditRecord(s *store.Store, before, after *model.Record) *EditRecord {
	return &EditRecord{store: s, before: before.Clone(), after: after.Clone()}
}

func (c *EditRecord) Describe() string {
	if c.before.Name != c.after.Name {
		return fmt.Sprintf("rename %s %q to %q", c.before.Kind, c.before.Name, c.after.Name)
	}
	return fmt.Sprintf("edit %s %q", c.after.Kind, c.after.Name)
}

func (c *EditRecord) Apply()   { c.store.Put(c.after) }
func (c *EditRecord) Unapply() { c.store.Put(c.before) }

// After returns a copy of the post-edit payload.
func (c *EditRecord) After() *model.Record { return c.after.Clone() }

// DeleteRecord removes a record on apply and restores the full payload
// on unapply.
type DeleteRecord struct {
	store  *store.Store
	record *model.Record
}

// NewDeleteRecord creates a DeleteRecord command. The record is copied.
func NewDeleteRecord(s *store.Store, r *model.Record) *DeleteRecord {
	return &DeleteRecord{store: s, record: r.Clone()}
}

func (c *DeleteRecord) Describe() string {
	return fmt.Sprintf("delete %s %q", c.record.Kind, c.record.Name)
}

func (c *DeleteRecord) Apply()   { c.store.Remove(c.record.ID) }
func (c *DeleteRecord) Unapply() { c.store.Put(c.record) }

// Func adapts a description and a pair of closures into a Command, for
// mutations that live outside the record store.
type Func struct {
	Desc string
	Do   func()
	Undo func()
}

// NewFunc creates a closure-backed command.
func NewFunc(desc string, do, undo func()) *Func {
	return &Func{Desc: desc, Do: do, Undo: undo}
}

func (c *Func) Describe() string { return c.Desc }

func (c *Func) Apply() {
	if c.Do != nil {
		c.Do()
	}
}

func (c *Func) Unapply() {
	if c.Undo != nil {
		c.Undo()
	}
}
