// Package engine implements the command-execution core of cachehouse:
// the connection registry, the watch table, the transaction manager, the
// command handlers, and the dispatcher (spec.md §2 items 2–6). It is the
// one package in this repository that is single-threaded and synchronous
// by contract (spec.md §5): Dispatch takes an internal mutex for its
// entire duration, so callers running on separate goroutines (separate
// server connections) are serialized at that call.
package engine

import (
	"fmt"
	"strings"
	"sync"

	"cachehouse/internal/logger"
	"cachehouse/internal/protocol"
	"cachehouse/internal/store"
)

// Engine owns every piece of process-lifetime state the core touches: the
// store, the connection registry, the watch table, and the per-connection
// transaction queues. It holds no I/O, file handles, sockets or timers,
// per spec.md §5.
type Engine struct {
	mu sync.Mutex

	st         *store.Store
	nextConnID int64
	conns      map[int64]struct{}
	watch      *watchTable
	tx         map[int64]*transaction
}

// New builds an Engine backed by a Store of the given capacity.
func New(maxKeys int) *Engine {
	return &Engine{
		st:    store.New(maxKeys),
		conns: make(map[int64]struct{}),
		watch: newWatchTable(),
		tx:    make(map[int64]*transaction),
	}
}

// Dispatch executes spec.md §4.5 end to end: parse is the caller's job
// (the protocol package already decoded the line into req); Dispatch
// verifies connection identity, routes by command name, and returns the
// reply to send back.
func (e *Engine) Dispatch(req protocol.Request) protocol.Reply {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatchLocked(req)
}

func (e *Engine) dispatchLocked(req protocol.Request) protocol.Reply {
	if req.Command == "" {
		return errReply("'command' not present in request")
	}

	name := strings.ToUpper(req.Command)
	if req.ID != nil {
		logger.Debugf("dispatch command=%s id=%d", name, *req.ID)
	} else {
		logger.Debugf("dispatch command=%s", name)
	}

	args := make([]store.Value, len(req.Args))
	for i, a := range req.Args {
		args[i] = store.FromJSON(a)
	}

	if name == "CONNECT" {
		return e.handleConnect(args)
	}

	if !req.HasID {
		return errReply("id not supplied")
	}
	connID := *req.ID
	if _, known := e.conns[connID]; !known {
		logger.Warnf("dispatch: id %d not known", connID)
		return errReply(fmt.Sprintf("id %d not known", connID))
	}

	switch name {
	case "DISCONNECT":
		return e.handleDisconnect(connID, args)
	case "MULTI":
		return e.handleMulti(connID, args)
	case "EXEC":
		return e.handleExec(connID, args)
	case "DISCARD":
		return e.handleDiscard(connID, args)
	case "WATCH":
		return e.handleWatch(connID, args)
	case "UNWATCH":
		return e.handleUnwatch(connID, args)
	}

	spec, ok := queueable[name]
	if !ok {
		logger.Warnf("dispatch: unknown command %q", req.Command)
		return errReply(fmt.Sprintf("command '%s' not found", req.Command))
	}

	return e.dispatchQueueable(connID, spec, args)
}

// dispatchQueueable implements spec.md §4.4's shared shape for SET, GET,
// MGET, MSET, INCR and DECR: validate first; on shape failure inside a
// transaction, poison it (set the error flag) without enqueuing; on shape
// failure outside one, just reply the error. On success, either enqueue
// (InTx) or execute immediately.
func (e *Engine) dispatchQueueable(connID int64, spec *commandSpec, args []store.Value) protocol.Reply {
	if err := spec.validate(args); err != nil {
		if t, inTx := e.tx[connID]; inTx {
			t.errorFlag = true
		}
		return errReply(err.Error())
	}

	if t, inTx := e.tx[connID]; inTx {
		t.queue = append(t.queue, queuedCommand{name: spec.name, args: args})
		return protocol.Reply{Status: protocol.StatusQueued}
	}

	return spec.exec(e, connID, args)
}

func (e *Engine) handleConnect(args []store.Value) protocol.Reply {
	if len(args) != 0 {
		return errReply("CONNECT has no arguments")
	}
	e.nextConnID++
	id := e.nextConnID
	e.conns[id] = struct{}{}
	logger.Debugf("connect: assigned id %d", id)
	return protocol.Reply{Status: protocol.StatusOK, ID: &id}
}

func (e *Engine) handleDisconnect(connID int64, args []store.Value) protocol.Reply {
	if len(args) != 0 {
		return errReply("DISCONNECT has no arguments")
	}
	delete(e.conns, connID)
	delete(e.tx, connID)
	e.watch.forget(connID)
	logger.Debugf("disconnect: id %d", connID)
	return protocol.Reply{Status: protocol.StatusOK}
}

func errReply(detail string) protocol.Reply {
	return protocol.Reply{Status: protocol.StatusError, Detail: detail}
}
