// Package history implements the linear undo/redo stack pair behind
// global undo and redo bindings.
package history

import (
	"github.com/recall-project/recall/internal/action"
	"github.com/recall-project/recall/pkg/logging"
)

// Stack holds the undo and redo stacks for one open document, most
// recent entry last. Single-threaded by contract; reentrant calls from
// inside a command's Apply/Unapply are undefined behavior.
type Stack struct {
	undo      []action.Command
	redo      []action.Command
	observers []func()
}

// New creates an empty stack pair.
func New() *Stack {
	return &Stack{}
}

// Record pushes an already-applied command onto the undo stack and
// permanently discards the redo branch. Always succeeds.
func (s *Stack) Record(cmd action.Command) {
	s.undo = append(s.undo, cmd)
	s.redo = nil
	logging.Debug("history record", map[string]any{"command": cmd.Describe()})
	s.notify()
}

// Undo pops the most recent command, runs its Unapply and moves it to
// the redo stack. Returns false on an empty stack; never an error.
func (s *Stack) Undo() bool {
	if len(s.undo) == 0 {
		return false
	}
	cmd := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	cmd.Unapply()
	s.redo = append(s.redo, cmd)
	logging.Debug("history undo", map[string]any{"command": cmd.Describe()})
	s.notify()
	return true
}

// Redo pops the most recent undone command, runs its Apply and moves it
// back to the undo stack. Returns false on an empty stack.
func (s *Stack) Redo() bool {
	if len(s.redo) == 0 {
		return false
	}
	cmd := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	cmd.Apply()
	s.undo = append(s.undo, cmd)
	logging.Debug("history redo", map[string]any{"command": cmd.Describe()})
	s.notify()
	return true
}

// CanUndo reports whether the undo stack is non-empty.
func (s *Stack) CanUndo() bool { return len(s.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (s *Stack) CanRedo() bool { return len(s.redo) > 0 }

// Remove deletes one specific command from anywhere in the undo stack,
// preserving the relative order of the rest. Commands are matched by
// identity. No-op when absent. This is the sanctioned LIFO violation the
// audit timeline uses for out-of-order undo.
func (s *Stack) Remove(cmd action.Command) bool {
	for i := len(s.undo) - 1; i >= 0; i-- {
		if s.undo[i] == cmd {
			s.undo = append(s.undo[:i], s.undo[i+1:]...)
			s.notify()
			return true
		}
	}
	return false
}

// Contains reports whether the command is live on the undo stack.
func (s *Stack) Contains(cmd action.Command) bool {
	for _, c := range s.undo {
		if c == cmd {
			return true
		}
	}
	return false
}

// UndoHistory returns display strings for the undo stack, most recent first.
func (s *Stack) UndoHistory() []string {
	return describeTopDown(s.undo)
}

// RedoHistory returns display strings for the redo stack, most recent first.
func (s *Stack) RedoHistory() []string {
	return describeTopDown(s.redo)
}

func describeTopDown(cmds []action.Command) []string {
	out := make([]string, 0, len(cmds))
	for i := len(cmds) - 1; i >= 0; i-- {
		out = append(out, cmds[i].Describe())
	}
	return out
}

// Subscribe registers an observer called after every stack mutation.
func (s *Stack) Subscribe(fn func()) {
	s.observers = append(s.observers, fn)
}

func (s *Stack) notify() {
	for _, fn := range s.observers {
		fn()
	}
}
