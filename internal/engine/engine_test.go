package engine

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"cachehouse/internal/protocol"
)

func req(command string, id *int64, args ...any) protocol.Request {
	r := protocol.Request{Command: command, Args: args}
	if id != nil {
		r.ID = id
		r.HasID = true
	}
	return r
}

func idOf(n int64) *int64 { return &n }

func connect(t *testing.T, e *Engine) int64 {
	t.Helper()
	reply := e.Dispatch(req("CONNECT", nil))
	assert.Equal(t, protocol.StatusOK, reply.Status)
	assert.NotNil(t, reply.ID)
	return *reply.ID
}

func TestConnectAssignsMonotonicIDs(t *testing.T) {
	e := New(10)
	id1 := connect(t, e)
	id2 := connect(t, e)
	id3 := connect(t, e)
	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(2), id2)
	assert.Equal(t, int64(3), id3)
}

func TestConnectRejectsArguments(t *testing.T) {
	e := New(10)
	reply := e.Dispatch(req("CONNECT", nil, "bad arg"))
	assert.Equal(t, protocol.StatusError, reply.Status)
	assert.Equal(t, "CONNECT has no arguments", reply.Detail)
}

func TestDisconnectRemovesConnection(t *testing.T) {
	e := New(10)
	id := connect(t, e)

	reply := e.Dispatch(req("DISCONNECT", idOf(id)))
	assert.Equal(t, protocol.StatusOK, reply.Status)

	reply = e.Dispatch(req("GET", idOf(id), "key"))
	assert.Equal(t, protocol.StatusError, reply.Status)
	assert.Equal(t, "id 1 not known", reply.Detail)
}

func TestDispatchMissingCommand(t *testing.T) {
	e := New(10)
	reply := e.Dispatch(protocol.Request{})
	assert.Equal(t, protocol.StatusError, reply.Status)
	assert.Equal(t, "'command' not present in request", reply.Detail)
}

func TestDispatchMalformedJSONIsTheCallersConcern(t *testing.T) {
	_, err := protocol.ParseRequest([]byte("not json"))
	assert.Error(t, err)
}

func TestDispatchRequiresID(t *testing.T) {
	e := New(10)
	reply := e.Dispatch(req("INCR", nil, "key"))
	assert.Equal(t, protocol.StatusError, reply.Status)
	assert.Equal(t, "id not supplied", reply.Detail)
}

func TestDispatchUnknownCommand(t *testing.T) {
	e := New(10)
	id := connect(t, e)
	reply := e.Dispatch(req("NOTACOMMAND", idOf(id)))
	assert.Equal(t, protocol.StatusError, reply.Status)
	assert.Equal(t, "command 'NOTACOMMAND' not found", reply.Detail)
}

func TestSetGetRoundTrip(t *testing.T) {
	e := New(10)
	id := connect(t, e)

	reply := e.Dispatch(req("SET", idOf(id), "foo", "bar"))
	assert.Equal(t, protocol.StatusOK, reply.Status)

	reply = e.Dispatch(req("GET", idOf(id), "foo"))
	assert.Equal(t, protocol.StatusOK, reply.Status)
	assert.Equal(t, "bar", reply.Result)
}

func TestGetMissingKeyReturnsEmptyString(t *testing.T) {
	e := New(10)
	id := connect(t, e)

	reply := e.Dispatch(req("GET", idOf(id), "missing"))
	assert.Equal(t, protocol.StatusOK, reply.Status)
	assert.Equal(t, "", reply.Result)
}

func TestMsetEvictsInOrder(t *testing.T) {
	e := New(2)
	id := connect(t, e)

	reply := e.Dispatch(req("MSET", idOf(id), "key1", "one", "key2", "two", "key3", "three"))
	assert.Equal(t, protocol.StatusOK, reply.Status)
	assert.Equal(t, []any{"key1", "one"}, reply.Evicted)

	reply = e.Dispatch(req("GET", idOf(id), "key1"))
	assert.Equal(t, "", reply.Result)
}

func TestMgetReturnsOnePerKey(t *testing.T) {
	e := New(10)
	id := connect(t, e)

	e.Dispatch(req("MSET", idOf(id), "k1", "v1", "k2", "v2"))
	reply := e.Dispatch(req("MGET", idOf(id), "k1", "k2"))
	assert.Equal(t, protocol.StatusOK, reply.Status)
	assert.Equal(t, []any{"v1", "v2"}, reply.Result)
}

func TestSetWrongArity(t *testing.T) {
	e := New(10)
	id := connect(t, e)

	reply := e.Dispatch(req("SET", idOf(id), "onlykey"))
	assert.Equal(t, protocol.StatusError, reply.Status)
	assert.Equal(t, "SET requires two arguments: key and value", reply.Detail)
}

func TestIncrOnMissingKeyStartsAtOne(t *testing.T) {
	e := New(10)
	id := connect(t, e)

	reply := e.Dispatch(req("INCR", idOf(id), "counter"))
	assert.Equal(t, protocol.StatusOK, reply.Status)
	assert.Equal(t, int64(1), reply.Result)
}

func TestIncrOverflowsAtBoundary(t *testing.T) {
	e := New(10)
	id := connect(t, e)

	e.Dispatch(req("SET", idOf(id), "big", int64Arg(9223372036854775806)))
	reply := e.Dispatch(req("INCR", idOf(id), "big"))
	assert.Equal(t, int64(9223372036854775807), reply.Result)

	reply = e.Dispatch(req("INCR", idOf(id), "big"))
	assert.Equal(t, protocol.StatusError, reply.Status)
	assert.Equal(t, "INCR would overflow", reply.Detail)
}

func TestDecrOverflowsAtBoundary(t *testing.T) {
	e := New(10)
	id := connect(t, e)

	e.Dispatch(req("SET", idOf(id), "negbig", int64Arg(-9223372036854775807)))
	reply := e.Dispatch(req("DECR", idOf(id), "negbig"))
	assert.Equal(t, int64(-9223372036854775808), reply.Result)

	reply = e.Dispatch(req("DECR", idOf(id), "negbig"))
	assert.Equal(t, protocol.StatusError, reply.Status)
	assert.Equal(t, "DECR would overflow", reply.Detail)
}

func TestIncrRejectsNonIntegerValue(t *testing.T) {
	e := New(10)
	id := connect(t, e)

	e.Dispatch(req("SET", idOf(id), "word", "hello"))
	reply := e.Dispatch(req("INCR", idOf(id), "word"))
	assert.Equal(t, protocol.StatusError, reply.Status)
	assert.Equal(t, "INCR works only on 64 bit signed integers", reply.Detail)
}

// int64Arg mimics how a protocol-decoded integer literal actually arrives:
// as a json.Number, the same shape protocol.ParseRequest produces with
// UseNumber() set. Passing a bare Go int64 here would hit store.FromJSON's
// fallback opaque branch and defeat the point of these tests.
func int64Arg(n int64) any {
	return json.Number(strconv.FormatInt(n, 10))
}
