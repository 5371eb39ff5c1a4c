package vm

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"
)

// qmpClient speaks the minimal subset of the QEMU Machine Protocol needed for
// the shutdown fallback: handshake, then quit. It connects fresh per command;
// the socket is not held open across the session.
type qmpClient struct {
	path    string
	timeout time.Duration
}

func newQMPClient(path string) *qmpClient {
	return &qmpClient{path: path, timeout: 3 * time.Second}
}

// Available reports whether the management socket exists. The socket is an
// optional capability: it is missing when QEMU was started without it or has
// already torn it down.
func (q *qmpClient) Available() bool {
	info, err := os.Stat(q.path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSocket != 0
}

// Quit asks QEMU to exit immediately via the management socket.
func (q *qmpClient) Quit() error {
	conn, err := net.DialTimeout("unix", q.path, q.timeout)
	if err != nil {
		return fmt.Errorf("dial qmp socket: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(q.timeout)); err != nil {
		return fmt.Errorf("set qmp deadline: %w", err)
	}

	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	// QEMU greets first; commands are rejected until capabilities negotiation.
	var greeting map[string]json.RawMessage
	if err := dec.Decode(&greeting); err != nil {
		return fmt.Errorf("read qmp greeting: %w", err)
	}
	if _, ok := greeting["QMP"]; !ok {
		return fmt.Errorf("unexpected qmp greeting")
	}

	if err := enc.Encode(map[string]string{"execute": "qmp_capabilities"}); err != nil {
		return fmt.Errorf("send qmp_capabilities: %w", err)
	}
	var reply map[string]json.RawMessage
	if err := dec.Decode(&reply); err != nil {
		return fmt.Errorf("read qmp_capabilities reply: %w", err)
	}

	if err := enc.Encode(map[string]string{"execute": "quit"}); err != nil {
		return fmt.Errorf("send quit: %w", err)
	}
	// QEMU may exit before acknowledging quit; a read error here is fine.
	_ = dec.Decode(&reply)

	return nil
}

// Remove deletes the socket file left behind by a dead process.
func (q *qmpClient) Remove() {
	_ = os.Remove(q.path)
}
