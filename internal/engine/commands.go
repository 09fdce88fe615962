package engine

import (
	"math"

	"cachehouse/internal/protocol"
	"cachehouse/internal/store"
)

// commandSpec is the queueable-command table entry for SET, GET, MGET,
// MSET, INCR and DECR (spec.md §4.4): validate checks argument shape;
// exec performs the actual mutation, used both for immediate execution
// outside a transaction and for each sub-command during EXEC replay.
type commandSpec struct {
	name     string
	validate func(args []store.Value) error
	exec     func(e *Engine, connID int64, args []store.Value) protocol.Reply
}

// queueable holds every command that may be buffered inside a MULTI
// region, keyed by its upper-cased name. Populated once at init, mirroring
// the teacher's registry.Register pattern without the concurrency
// machinery that pattern needed for a long-lived multi-writer registry —
// this one is built once and never mutated again.
var queueable = map[string]*commandSpec{}

func register(spec *commandSpec) {
	queueable[spec.name] = spec
}

func init() {
	register(&commandSpec{name: "SET", validate: validateSet, exec: execSet})
	register(&commandSpec{name: "GET", validate: validateGet, exec: execGet})
	register(&commandSpec{name: "MGET", validate: validateMget, exec: execMget})
	register(&commandSpec{name: "MSET", validate: validateMset, exec: execMset})
	register(&commandSpec{name: "INCR", validate: validateIncrDecr("INCR"), exec: execIncr})
	register(&commandSpec{name: "DECR", validate: validateIncrDecr("DECR"), exec: execDecr})
}

func validateSet(args []store.Value) error {
	if len(args) != 2 {
		return errf("SET requires two arguments: key and value")
	}
	return nil
}

func execSet(e *Engine, connID int64, args []store.Value) protocol.Reply {
	key, val := args[0], args[1]
	e.watch.noteWrite(connID, key)
	ev := e.st.Set(key, val)
	r := protocol.Reply{Status: protocol.StatusOK}
	if ev.Ok {
		r.Evicted = []any{ev.Key.ToJSON(), ev.Val.ToJSON()}
	}
	return r
}

func validateGet(args []store.Value) error {
	if len(args) != 1 {
		return errf("GET requires one argument: key")
	}
	return nil
}

func execGet(e *Engine, _ int64, args []store.Value) protocol.Reply {
	v, _ := e.st.Get(args[0])
	return protocol.Reply{Status: protocol.StatusOK, Result: v.ToJSON()}
}

func validateMget(args []store.Value) error {
	if len(args) < 1 {
		return errf("MGET requires at least one argument: key [key ...]")
	}
	return nil
}

func execMget(e *Engine, _ int64, args []store.Value) protocol.Reply {
	results := make([]any, len(args))
	for i, k := range args {
		v, _ := e.st.Get(k)
		results[i] = v.ToJSON()
	}
	return protocol.Reply{Status: protocol.StatusOK, Result: results}
}

func validateMset(args []store.Value) error {
	if len(args) < 2 || len(args)%2 != 0 {
		return errf("MSET requires at least one pair of arguments: key value [key value ...]")
	}
	return nil
}

func execMset(e *Engine, connID int64, args []store.Value) protocol.Reply {
	var evicted []any
	for i := 0; i < len(args); i += 2 {
		key, val := args[i], args[i+1]
		e.watch.noteWrite(connID, key)
		ev := e.st.Set(key, val)
		if ev.Ok {
			evicted = append(evicted, ev.Key.ToJSON(), ev.Val.ToJSON())
		}
	}
	r := protocol.Reply{Status: protocol.StatusOK}
	if len(evicted) > 0 {
		r.Evicted = evicted
	}
	return r
}

func validateIncrDecr(name string) func([]store.Value) error {
	return func(args []store.Value) error {
		if len(args) != 1 {
			return errf(name + " requires one argument: key")
		}
		return nil
	}
}

func execIncr(e *Engine, connID int64, args []store.Value) protocol.Reply {
	return execIncrDecr(e, connID, args[0], "INCR", 1)
}

func execDecr(e *Engine, connID int64, args []store.Value) protocol.Reply {
	return execIncrDecr(e, connID, args[0], "DECR", -1)
}

// execIncrDecr implements spec.md §4.4's shared INCR/DECR semantics: a
// missing key starts at delta; an existing non-integer value is a type
// error; an existing integer value that would cross the 64-bit signed
// boundary is an overflow error, detected by range comparison rather than
// by letting the addition wrap, per spec.md §9.
func execIncrDecr(e *Engine, connID int64, key store.Value, name string, delta int64) protocol.Reply {
	cur, exists := e.st.Get(key)

	newVal := delta
	if exists {
		i, isInt := cur.AsInt64()
		if !isInt {
			return errReply(name + " works only on 64 bit signed integers")
		}
		sum, ok := addWithOverflowCheck(i, delta)
		if !ok {
			return errReply(name + " would overflow")
		}
		newVal = sum
	}

	e.watch.noteWrite(connID, key)
	ev := e.st.Set(key, store.Int64(newVal))
	r := protocol.Reply{Status: protocol.StatusOK, Result: newVal}
	if ev.Ok {
		r.Evicted = []any{ev.Key.ToJSON(), ev.Val.ToJSON()}
	}
	return r
}

// addWithOverflowCheck reports left+right and whether it stayed within the
// 64-bit signed range, checked before the addition rather than after.
func addWithOverflowCheck(left, right int64) (int64, bool) {
	if right > 0 {
		if left > math.MaxInt64-right {
			return 0, false
		}
	} else {
		if left < math.MinInt64-right {
			return 0, false
		}
	}
	return left + right, true
}
