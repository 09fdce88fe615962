package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandHistory(t *testing.T) {
	history := NewCommandHistory(5)
	assert.Equal(t, 0, history.Len())

	history.Add("GET key")
	assert.Equal(t, 1, history.Len())

	history.Add("SET key value")
	assert.Equal(t, 2, history.Len())

	history.Add("")
	assert.Equal(t, 2, history.Len(), "blank commands are not recorded")

	history.Add("SET key value")
	assert.Equal(t, 2, history.Len(), "immediate repeats are not recorded")

	assert.Equal(t, "SET key value", history.Previous())
	assert.Equal(t, "GET key", history.Previous())
	assert.Equal(t, "SET key value", history.Next())
	assert.Equal(t, "", history.Next(), "past the newest entry returns to current input")
}

func TestCommandHistoryMaxSize(t *testing.T) {
	history := NewCommandHistory(3)
	history.Add("one")
	history.Add("two")
	history.Add("three")
	history.Add("four")
	assert.Equal(t, 3, history.Len())
	assert.Equal(t, "four", history.Previous())
	assert.Equal(t, "three", history.Previous())
	assert.Equal(t, "two", history.Previous())
}

func TestTranslateSetsConnectionID(t *testing.T) {
	b, err := translate(7, "SET foo bar")
	assert.NoError(t, err)
	assert.JSONEq(t, `{"command":"SET","id":7,"args":["foo","bar"]}`, string(b))
}

func TestTranslateConnectCarriesNoID(t *testing.T) {
	b, err := translate(7, "CONNECT")
	assert.NoError(t, err)
	assert.JSONEq(t, `{"command":"CONNECT"}`, string(b))
}

func TestTranslateRejectsBlankLine(t *testing.T) {
	_, err := translate(1, "   ")
	assert.Error(t, err)
}

func TestFormatReplyOK(t *testing.T) {
	assert.Equal(t, "OK", formatReply(`{"status":"OK"}`))
}

func TestFormatReplyResult(t *testing.T) {
	assert.Equal(t, `"bar"`, formatReply(`{"status":"OK","result":"bar"}`))
}

func TestFormatReplyError(t *testing.T) {
	assert.Equal(t, "(error) id 1 not known", formatReply(`{"status":"ERROR","detail":"id 1 not known"}`))
}

func TestFormatReplyQueued(t *testing.T) {
	assert.Equal(t, "QUEUED", formatReply(`{"status":"QUEUED"}`))
}

func TestFormatReplyEvicted(t *testing.T) {
	out := formatReply(`{"status":"OK","evicted":["key1","one"]}`)
	assert.Equal(t, `OK (evicted ["key1","one"])`, out)
}
