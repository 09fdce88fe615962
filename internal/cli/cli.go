// Package cli is the interactive client described in SPEC_FULL.md §4.8: it
// dials the server, issues CONNECT once, and sends every subsequent typed
// command under that connection id, printing the decoded reply. Trimmed
// from the teacher's internal/cli: no AUTH/SELECT/TLS, since the protocol
// underneath has none of those either.
package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"cachehouse/internal/logger"
)

// Config configures a CLI run.
type Config struct {
	Host    string
	Port    int
	Timeout time.Duration
	Eval    string // run one command non-interactively
	File    string // run a script of commands non-interactively
}

// Run dials the server, CONNECTs, and then either evaluates one command,
// replays a script file, or starts the interactive REPL, in that order of
// precedence.
func Run(config Config) error {
	addr := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	conn, err := net.DialTimeout("tcp", addr, config.Timeout)
	if err != nil {
		return fmt.Errorf("cli: dial %s: %w", addr, err)
	}
	defer conn.Close()

	reader := bufio.NewReader(conn)
	connID, err := connect(conn, reader)
	if err != nil {
		return fmt.Errorf("cli: CONNECT: %w", err)
	}
	logger.Debugf("cli: connected as id %d", connID)

	client := &client{conn: conn, reader: reader, connID: connID}

	switch {
	case config.Eval != "":
		fmt.Println(client.run(config.Eval))
		return nil
	case config.File != "":
		return client.runFile(config.File)
	default:
		return client.interactive()
	}
}

// client wraps one dialed connection plus the CONNECT id the engine
// assigned it; every subsequent command rides on that id, per spec.md §3's
// definition of a Connection.
type client struct {
	conn   net.Conn
	reader *bufio.Reader
	connID int64
}

func connect(conn net.Conn, reader *bufio.Reader) (int64, error) {
	if _, err := conn.Write([]byte(`{"command":"CONNECT"}` + "\n")); err != nil {
		return 0, err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		return 0, err
	}
	var reply struct {
		Status string `json:"status"`
		ID     int64  `json:"id"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal([]byte(line), &reply); err != nil {
		return 0, err
	}
	if reply.Status != "OK" {
		return 0, fmt.Errorf("%s", reply.Detail)
	}
	return reply.ID, nil
}

// run sends one typed line (e.g. "SET foo bar") and returns the printable
// reply.
func (c *client) run(line string) string {
	req, err := translate(c.connID, line)
	if err != nil {
		return "(error) " + err.Error()
	}
	if _, err := c.conn.Write(append(req, '\n')); err != nil {
		return "(error) " + err.Error()
	}
	resp, err := c.reader.ReadString('\n')
	if err != nil {
		return "(error) " + err.Error()
	}
	return formatReply(resp)
}

func (c *client) runFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fmt.Println(c.run(line))
	}
	return scanner.Err()
}

// translate turns a typed command line into the JSON request line the
// wire protocol expects (spec.md §6). Arguments are split on whitespace;
// quoting is not supported, trading fidelity for the size this tool is
// scoped to.
func translate(connID int64, line string) ([]byte, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	command := strings.ToUpper(fields[0])
	args := fields[1:]

	req := struct {
		Command string   `json:"command"`
		ID      *int64   `json:"id,omitempty"`
		Args    []string `json:"args,omitempty"`
	}{Command: command, Args: args}
	if command != "CONNECT" {
		req.ID = &connID
	}
	return json.Marshal(req)
}

// formatReply renders a decoded reply line the way a human typing commands
// wants to read it, rather than the raw JSON envelope.
func formatReply(line string) string {
	var reply map[string]any
	if err := json.Unmarshal([]byte(line), &reply); err != nil {
		return strings.TrimSpace(line)
	}

	status, _ := reply["status"].(string)
	switch status {
	case "ERROR":
		detail, _ := reply["detail"].(string)
		return "(error) " + detail
	case "QUEUED":
		return "QUEUED"
	}

	if results, ok := reply["results"]; ok {
		b, _ := json.Marshal(results)
		return string(b)
	}
	if result, ok := reply["result"]; ok {
		b, _ := json.Marshal(result)
		suffix := ""
		if evicted, ok := reply["evicted"]; ok {
			eb, _ := json.Marshal(evicted)
			suffix = " (evicted " + string(eb) + ")"
		}
		return string(b) + suffix
	}
	if evicted, ok := reply["evicted"]; ok {
		eb, _ := json.Marshal(evicted)
		return "OK (evicted " + string(eb) + ")"
	}
	return "OK"
}

const prompt = "cachehouse> "

// interactive runs the raw-mode REPL: terminal raw mode via
// golang.org/x/term gives us byte-at-a-time input so arrow keys can drive
// CommandHistory, matching the teacher's internal/cli approach. A
// non-terminal stdin (e.g. piped input in a test harness) falls back to
// line-buffered reads.
func (c *client) interactive() error {
	fmt.Println("cachehouse CLI")
	fmt.Printf("connected as connection %d\n", c.connID)
	fmt.Println("type 'help' for commands, 'quit' to exit")

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return c.interactiveLineBuffered()
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		logger.Warnf("cli: could not enter raw mode, falling back: %v", err)
		return c.interactiveLineBuffered()
	}
	defer term.Restore(fd, oldState)

	history := NewCommandHistory(100)
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("\r" + prompt)
		line, err := readLineWithHistory(reader, history)
		if err != nil {
			if err == io.EOF {
				fmt.Print("\r\n")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			fmt.Print("\r\n")
			return nil
		}
		if line == "help" {
			printHelp()
			continue
		}

		history.Add(line)
		fmt.Print("\r\n" + c.run(line) + "\r\n")
	}
}

// interactiveLineBuffered is the fallback path when raw mode isn't
// available, mirroring the teacher's executeInteractiveFallback.
func (c *client) interactiveLineBuffered() error {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print(prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if line == "help" {
			printHelp()
			continue
		}
		fmt.Println(c.run(line))
	}
}

// readLineWithHistory reads one line in raw mode, honoring backspace and
// the up/down arrow escape sequences (ESC [ A / ESC [ B) for history
// recall. Left/right cursor movement and line editing beyond backspace are
// out of scope for this trimmed client.
func readLineWithHistory(reader *bufio.Reader, history *CommandHistory) (string, error) {
	var buf []byte

	for {
		b, err := reader.ReadByte()
		if err != nil {
			return "", err
		}

		switch b {
		case '\r', '\n':
			return string(buf), nil
		case 127, '\b': // backspace
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
				fmt.Print("\b \b")
			}
			continue
		case 27: // ESC
			next, err := reader.ReadByte()
			if err != nil {
				return "", err
			}
			if next != '[' {
				continue
			}
			third, err := reader.ReadByte()
			if err != nil {
				return "", err
			}
			switch third {
			case 'A': // up
				if cmd := history.Previous(); cmd != "" {
					buf = redrawLine(buf, cmd)
				}
			case 'B': // down
				buf = redrawLine(buf, history.Next())
			}
			continue
		default:
			buf = append(buf, b)
			fmt.Printf("%c", b)
		}
	}
}

func redrawLine(current []byte, replacement string) []byte {
	fmt.Print("\r" + prompt + "\033[K")
	fmt.Print(replacement)
	return []byte(replacement)
}

func printHelp() {
	fmt.Println(`commands: CONNECT, DISCONNECT, GET, SET, MGET, MSET, INCR, DECR,
MULTI, EXEC, DISCARD, WATCH, UNWATCH. type 'quit' or 'exit' to leave.`)
}
