package guest

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/storagelab/storagelab/internal/logger"
)

const (
	testUser     = "labuser"
	testPassword = "labpass"
)

// startSSHServer runs a minimal in-process SSH server that accepts password
// auth and executes a small fixed command set. Returns the listening port.
func startSSHServer(t *testing.T) int {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate host key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("host key signer: %v", err)
	}

	cfg := &ssh.ServerConfig{
		PasswordCallback: func(conn ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if conn.User() == testUser && string(pass) == testPassword {
				return nil, nil
			}
			return nil, fmt.Errorf("auth denied for %s", conn.User())
		},
	}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveSSHConn(conn, cfg)
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port
}

func serveSSHConn(nc net.Conn, cfg *ssh.ServerConfig) {
	sc, chans, reqs, err := ssh.NewServerConn(nc, cfg)
	if err != nil {
		return
	}
	defer sc.Close()
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			_ = newCh.Reject(ssh.UnknownChannelType, "unsupported")
			continue
		}
		ch, chReqs, err := newCh.Accept()
		if err != nil {
			continue
		}
		go serveSession(ch, chReqs)
	}
}

func serveSession(ch ssh.Channel, reqs <-chan *ssh.Request) {
	defer ch.Close()
	for req := range reqs {
		if req.Type != "exec" {
			_ = req.Reply(false, nil)
			continue
		}
		var payload struct{ Command string }
		_ = ssh.Unmarshal(req.Payload, &payload)
		_ = req.Reply(true, nil)

		status := 0
		switch payload.Command {
		case "echo ok":
			_, _ = io.WriteString(ch, "ok\n")
		case "echo hello":
			_, _ = io.WriteString(ch, "hello\n")
		case "false":
			status = 1
		default:
			_, _ = io.WriteString(ch, "unknown command\n")
			status = 127
		}
		_, _ = ch.SendRequest("exit-status", false,
			ssh.Marshal(struct{ Status uint32 }{uint32(status)}))
		return
	}
}

// closedPort returns a loopback port that nothing is listening on.
func closedPort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func TestCheck(t *testing.T) {
	port := startSSHServer(t)

	t.Run("reachable", func(t *testing.T) {
		c := NewClient(port, testUser, testPassword, logger.Discard())
		if !c.Check() {
			t.Error("Check() = false against a serving guest")
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		c := NewClient(port, testUser, "wrong", logger.Discard())
		if c.Check() {
			t.Error("Check() = true with rejected credentials")
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		c := NewClient(closedPort(t), testUser, testPassword, logger.Discard())
		if c.Check() {
			t.Error("Check() = true against a closed port")
		}
	})
}

func TestWaitReadyImmediate(t *testing.T) {
	port := startSSHServer(t)
	c := NewClient(port, testUser, testPassword, logger.Discard())

	start := time.Now()
	if err := c.WaitReady(context.Background(), 10*time.Second); err != nil {
		t.Fatalf("WaitReady() failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("WaitReady() on a ready guest took %s, want immediate return", elapsed)
	}
}

func TestWaitReadyTimeout(t *testing.T) {
	c := NewClient(closedPort(t), testUser, testPassword, logger.Discard())

	start := time.Now()
	err := c.WaitReady(context.Background(), 200*time.Millisecond)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrWaitTimeout) {
		t.Errorf("WaitReady() error = %v, want ErrWaitTimeout", err)
	}
	if elapsed > 3*time.Second {
		t.Errorf("WaitReady() returned after %s, well past its 200ms budget", elapsed)
	}
}

func TestWaitReadyCanceled(t *testing.T) {
	c := NewClient(closedPort(t), testUser, testPassword, logger.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := c.WaitReady(ctx, time.Minute)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitReady() error = %v, want context deadline", err)
	}
}

func TestExec(t *testing.T) {
	port := startSSHServer(t)
	c := NewClient(port, testUser, testPassword, logger.Discard())
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		out, status, err := c.Exec(ctx, "echo hello")
		if err != nil {
			t.Fatalf("Exec() failed: %v", err)
		}
		if out != "hello\n" || status != 0 {
			t.Errorf("Exec() = (%q, %d), want (%q, 0)", out, status, "hello\n")
		}
	})

	t.Run("nonzero exit is not an error", func(t *testing.T) {
		_, status, err := c.Exec(ctx, "false")
		if err != nil {
			t.Fatalf("Exec() failed: %v", err)
		}
		if status != 1 {
			t.Errorf("Exec() status = %d, want 1", status)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		unreachable := NewClient(closedPort(t), testUser, testPassword, logger.Discard())
		if _, _, err := unreachable.Exec(ctx, "echo hello"); err == nil {
			t.Error("Exec() against a closed port succeeded, want transport error")
		}
	})
}
