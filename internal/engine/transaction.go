package engine

import (
	"cachehouse/internal/protocol"
	"cachehouse/internal/store"
)

// queuedCommand is one buffered request inside a transaction (spec.md §3).
type queuedCommand struct {
	name string
	args []store.Value
}

// transaction is the per-connection MULTI/EXEC/DISCARD state created on
// MULTI and torn down on EXEC or DISCARD (spec.md §4.3). Its mere presence
// in Engine.tx means the connection is in the InTx state; its absence
// means Idle.
type transaction struct {
	queue     []queuedCommand
	errorFlag bool
}

func (e *Engine) handleMulti(connID int64, args []store.Value) protocol.Reply {
	if len(args) != 0 {
		return errReply("MULTI should have no arguments")
	}
	if _, inTx := e.tx[connID]; inTx {
		return errReply("MULTI calls can not be nested")
	}
	e.tx[connID] = &transaction{}
	return protocol.Reply{Status: protocol.StatusOK}
}

func (e *Engine) handleDiscard(connID int64, args []store.Value) protocol.Reply {
	if len(args) != 0 {
		return errReply("DISCARD should have no arguments")
	}
	if _, inTx := e.tx[connID]; !inTx {
		return errReply("DISCARD called without MULTI")
	}
	delete(e.tx, connID)
	return protocol.Reply{Status: protocol.StatusOK}
}

// handleExec implements spec.md §4.3's EXEC row exactly, including the
// clearing asymmetry traced in SPEC_FULL.md §12: the "otherwise" branch
// clears only the watch set, never the violated flag; the violated branch
// clears both.
func (e *Engine) handleExec(connID int64, args []store.Value) protocol.Reply {
	if len(args) != 0 {
		return errReply("EXEC should have no arguments")
	}
	t, inTx := e.tx[connID]
	if !inTx {
		return errReply("EXEC called without MULTI")
	}
	delete(e.tx, connID)

	if t.errorFlag {
		e.watch.clearWatch(connID)
		e.watch.clearViolated(connID)
		return errReply("Transaction discarded because of previous errors")
	}

	if e.watch.isViolated(connID) {
		e.watch.clearWatch(connID)
		e.watch.clearViolated(connID)
		return protocol.Reply{Status: protocol.StatusOK}
	}

	results := make([]protocol.Reply, 0, len(t.queue))
	for _, qc := range t.queue {
		spec := queueable[qc.name]
		results = append(results, spec.exec(e, connID, qc.args))
	}
	e.watch.clearWatch(connID)
	return protocol.Reply{Status: protocol.StatusOK, Results: results}
}

func (e *Engine) handleWatch(connID int64, args []store.Value) protocol.Reply {
	if len(args) == 0 {
		return errReply("WATCH requires at least one argument")
	}
	for _, k := range args {
		e.watch.addWatch(connID, k)
	}
	return protocol.Reply{Status: protocol.StatusOK}
}

// handleUnwatch clears only the watch set (spec.md §3: the violated flag
// is documented as cleared "on EXEC completion" only, never by UNWATCH).
func (e *Engine) handleUnwatch(connID int64, args []store.Value) protocol.Reply {
	if len(args) != 0 {
		return errReply("UNWATCH should have no arguments")
	}
	e.watch.clearWatch(connID)
	return protocol.Reply{Status: protocol.StatusOK}
}
