// Package recall provides the high-level session API for the reversible
// history engine.
//
// A Session owns the (record store, linear history, audit timeline)
// triple for one open document. It replaces the hidden global history of
// older designs with an explicit handle: create one per document open,
// close it on document close, and route every committed mutation through
// its methods so the linear stack and the audit timeline never drift.
//
// # Concurrency
//
// A Session is single-threaded by contract: all mutation must happen on
// one logical (interactive) thread. There is no internal locking, and
// calling back into a Session from inside a command's Apply/Unapply is
// undefined behavior. Distinct Sessions are fully independent.
package recall
