package benchmark

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cachehouse/internal/engine"
	"cachehouse/internal/server"
)

func startServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := server.New(server.Config{Addr: ln.Addr().String()}, engine.New(1000))
	go s.Serve(ln)
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String()
}

func TestRunProducesResultsPerCommand(t *testing.T) {
	addr := startServer(t)

	results := Run(Config{
		Addr:        addr,
		Requests:    20,
		Concurrency: 4,
		Commands:    []string{"SET", "GET"},
		KeySpace:    10,
		Timeout:     2 * time.Second,
		Quiet:       true,
	})

	assert.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, int64(20), r.Requests)
		assert.Equal(t, int64(0), r.Errors)
		assert.Greater(t, r.Throughput, 0.0)
	}
}
