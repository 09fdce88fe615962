package server

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cachehouse/internal/engine"
)

func startTestServer(t *testing.T) net.Conn {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New(Config{Addr: ln.Addr().String()}, engine.New(10))
	go s.Serve(ln)
	t.Cleanup(func() { ln.Close() })

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	conn.SetDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func sendLine(t *testing.T, conn net.Conn, line string) string {
	t.Helper()
	_, err := conn.Write([]byte(line + "\n"))
	require.NoError(t, err)

	reply, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	return reply
}

func TestServerRoundTripsConnectAndGet(t *testing.T) {
	conn := startTestServer(t)

	reply := sendLine(t, conn, `{"command":"CONNECT"}`)
	assert.Contains(t, reply, `"status":"OK"`)
	assert.Contains(t, reply, `"id":1`)

	reply = sendLine(t, conn, `{"command":"GET","id":1,"args":["missing"]}`)
	assert.Contains(t, reply, `"status":"OK"`)
}

func TestServerMalformedLineDoesNotCloseConnection(t *testing.T) {
	conn := startTestServer(t)

	reply := sendLine(t, conn, "not json")
	assert.Contains(t, reply, `"could not parse json"`)

	reply = sendLine(t, conn, `{"command":"CONNECT"}`)
	assert.Contains(t, reply, `"status":"OK"`)
}
