// Package protocol implements the wire envelope (spec.md §6, SPEC_FULL.md
// §4.6): one JSON object per line in, one JSON object per line out. It is
// pure data transformation between the line-oriented transport and the
// engine's request/reply types, and never touches engine state.
package protocol

import (
	"bytes"
	"encoding/json"
)

// Status is the tag on a Reply.
type Status string

const (
	StatusOK     Status = "OK"
	StatusError  Status = "ERROR"
	StatusQueued Status = "QUEUED"
)

// Request is one decoded line from the input channel.
type Request struct {
	Command string
	ID      *int64
	HasID   bool
	Args    []any // raw decoded JSON values; the engine converts each with store.FromJSON
}

// Reply is one line written back to the caller. Results holds the
// sub-replies produced by an EXEC replay (spec.md §4.3); Evicted carries
// whatever shape the originating command defines — a flat [key, value]
// pair for SET/INCR/DECR, or for MSET every evicted key and value
// appended to one flat list in eviction order (spec.md §4.4, §8 scenario 1).
type Reply struct {
	Status  Status
	ID      *int64
	Result  any
	Results []Reply
	Evicted any
	Detail  string
}

// ParseRequest decodes one line into a Request. A malformed line is the
// one error this package reports to its caller as a Go error; the
// server turns that into the "could not parse json" reply per spec.md
// §4.5 step 1.
func ParseRequest(line []byte) (Request, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	var generic map[string]any
	if err := dec.Decode(&generic); err != nil {
		return Request{}, err
	}

	req := Request{}
	if cmd, ok := generic["command"].(string); ok {
		req.Command = cmd
	} else if generic["command"] != nil {
		// A non-string command value: leave Command empty so the
		// dispatcher's "'command' not present" check catches it, rather
		// than panicking on a type assertion.
		req.Command = ""
	}

	if rawID, present := generic["id"]; present && rawID != nil {
		if n, ok := rawID.(json.Number); ok {
			if id, err := n.Int64(); err == nil {
				req.ID = &id
				req.HasID = true
			}
		}
	}

	if rawArgs, present := generic["args"]; present && rawArgs != nil {
		if arr, ok := rawArgs.([]any); ok {
			req.Args = arr
		}
	}

	return req, nil
}

// wireReply is the JSON shape a Reply marshals to. Optional fields are
// omitted entirely rather than sent as null, matching spec.md §6.
type wireReply struct {
	Status  Status      `json:"status"`
	ID      *int64      `json:"id,omitempty"`
	Result  any         `json:"result,omitempty"`
	Results []wireReply `json:"results,omitempty"`
	Evicted any         `json:"evicted,omitempty"`
	Detail  string      `json:"detail,omitempty"`
}

func toWire(r Reply) wireReply {
	w := wireReply{
		Status:  r.Status,
		ID:      r.ID,
		Result:  r.Result,
		Evicted: r.Evicted,
		Detail:  r.Detail,
	}
	if len(r.Results) > 0 {
		w.Results = make([]wireReply, len(r.Results))
		for i, sub := range r.Results {
			w.Results[i] = toWire(sub)
		}
	}
	return w
}

// Marshal encodes a Reply as one line (without its trailing newline).
func Marshal(r Reply) ([]byte, error) {
	return json.Marshal(toWire(r))
}
