// Package server implements the thin, explicitly non-core line-oriented
// frame loop described in SPEC_FULL.md §4.7: accept a connection, read one
// JSON line, dispatch it against a single shared engine, write one JSON
// line back. It owns no command logic, no store state, and no transaction
// state — all of that lives in the *engine.Engine it was constructed with.
package server

import (
	"bufio"
	"net"

	"cachehouse/internal/engine"
	"cachehouse/internal/logger"
	"cachehouse/internal/protocol"
)

// Config configures a Server.
type Config struct {
	Addr string
}

// Server accepts connections and serves them against a shared engine.
type Server struct {
	cfg Config
	eng *engine.Engine
}

// New builds a Server bound to eng. The caller owns eng's lifetime; many
// Servers (or none) may share one engine.
func New(cfg Config, eng *engine.Engine) *Server {
	return &Server{cfg: cfg, eng: eng}
}

// ListenAndServe blocks, accepting connections on cfg.Addr until the
// listener errors. The listener it binds is not exposed to the caller, so
// it cannot be closed from outside; cmd/root.go simply exits the process
// on SIGINT/SIGTERM.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	defer ln.Close()
	return s.Serve(ln)
}

// Serve accepts connections off an already-bound listener. Split out from
// ListenAndServe so callers that need the concrete ephemeral address (e.g.
// tests, the benchmark harness wiring its own listener) can bind first and
// read back ln.Addr() before serving.
func (s *Server) Serve(ln net.Listener) error {
	logger.Infof("server: listening on %s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.serve(conn)
	}
}

// serve reads newline-delimited JSON requests off conn and writes one
// JSON reply per line until the connection closes. Malformed JSON on a
// line does not close the connection — the client simply gets an ERROR
// reply and the loop reads the next line, per spec.md §7.
func (s *Server) serve(conn net.Conn) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	logger.Debugf("server: accepted connection from %s", remote)

	scanner := bufio.NewScanner(conn)
	writer := bufio.NewWriter(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		reply := s.handleLine(line)

		encoded, err := protocol.Marshal(reply)
		if err != nil {
			logger.Errorf("server: failed to marshal reply for %s: %v", remote, err)
			continue
		}

		if _, err := writer.Write(encoded); err != nil {
			logger.Debugf("server: write error for %s: %v", remote, err)
			return
		}
		if err := writer.WriteByte('\n'); err != nil {
			return
		}
		if err := writer.Flush(); err != nil {
			logger.Debugf("server: flush error for %s: %v", remote, err)
			return
		}
	}

	logger.Debugf("server: connection from %s closed", remote)
}

func (s *Server) handleLine(line []byte) protocol.Reply {
	req, err := protocol.ParseRequest(line)
	if err != nil {
		return protocol.Reply{Status: protocol.StatusError, Detail: "could not parse json"}
	}
	return s.eng.Dispatch(req)
}
