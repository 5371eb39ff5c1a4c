// Package guest is the transport to the lab VM's operating system: an
// authenticated SSH channel on a forwarded loopback port. All storage objects
// live inside the guest and are observed only through captured command output.
package guest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
	"golang.org/x/term"
)

// ErrWaitTimeout is returned by WaitReady when the guest never became
// reachable within the budget. Recoverable: the caller may re-poll or give up.
var ErrWaitTimeout = errors.New("guest: wait for SSH readiness timed out")

const (
	dialTimeout  = 5 * time.Second
	pollInterval = 3 * time.Second
)

// Client holds the connection parameters for one VM session. The parameters
// are immutable for the session's lifetime; connections themselves are opened
// per call, since readiness can flap while the guest boots or powers off.
type Client struct {
	host     string
	port     int
	user     string
	password string
	log      *logrus.Entry
}

// NewClient creates a transport for a guest on a forwarded loopback port.
func NewClient(port int, user, password string, log *logrus.Entry) *Client {
	return &Client{
		host:     "127.0.0.1",
		port:     port,
		user:     user,
		password: password,
		log:      log,
	}
}

// clientConfig builds the per-dial SSH configuration. Host-key checking is
// deliberately disabled: the guest is a disposable sandbox with a fresh host
// key on every provision, not a production trust boundary.
func (c *Client) clientConfig() *ssh.ClientConfig {
	return &ssh.ClientConfig{
		User:            c.user,
		Auth:            []ssh.AuthMethod{ssh.Password(c.password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         dialTimeout,
	}
}

func (c *Client) addr() string {
	return net.JoinHostPort(c.host, fmt.Sprintf("%d", c.port))
}

// Check reports whether the guest currently accepts and executes commands.
// Every failure (refused connection, auth, timeout, half-booted sshd) is
// normalized to false; this is a non-diagnostic probe.
func (c *Client) Check() bool {
	conn, err := ssh.Dial("tcp", c.addr(), c.clientConfig())
	if err != nil {
		return false
	}
	defer conn.Close()

	session, err := conn.NewSession()
	if err != nil {
		return false
	}
	defer session.Close()

	return session.Run("echo ok") == nil
}

// WaitReady polls Check until the guest answers, the timeout elapses
// (ErrWaitTimeout), or ctx is canceled. The first probe fires immediately so
// an already-booted guest returns without waiting a full interval.
func (c *Client) WaitReady(ctx context.Context, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()

	for {
		if c.Check() {
			return nil
		}
		c.log.Debug("guest not ready yet")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w after %s", ErrWaitTimeout, timeout)
		case <-tick.C:
		}
	}
}

// Exec runs a single command in the guest and returns combined stdout+stderr
// plus the remote exit status. A non-zero exit is data for the caller to
// inspect, not an error; errors mean the transport itself failed.
func (c *Client) Exec(ctx context.Context, command string) (string, int, error) {
	conn, err := ssh.Dial("tcp", c.addr(), c.clientConfig())
	if err != nil {
		return "", 0, fmt.Errorf("dial guest: %w", err)
	}
	defer conn.Close()

	session, err := conn.NewSession()
	if err != nil {
		return "", 0, fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	var output bytes.Buffer
	session.Stdout = &output
	session.Stderr = &output

	// Tear the session down if the context ends while the command runs.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = session.Close()
		case <-done:
		}
	}()

	err = session.Run(command)
	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return output.String(), exitErr.ExitStatus(), nil
		}
		if ctx.Err() != nil {
			return output.String(), 0, ctx.Err()
		}
		return output.String(), 0, fmt.Errorf("run %q: %w", command, err)
	}
	return output.String(), 0, nil
}

// Interactive attaches the caller's terminal to a shell in the guest and
// blocks until the remote session ends. Operator convenience only; no
// automated path uses it.
func (c *Client) Interactive() error {
	conn, err := ssh.Dial("tcp", c.addr(), c.clientConfig())
	if err != nil {
		return fmt.Errorf("dial guest: %w", err)
	}
	defer conn.Close()

	session, err := conn.NewSession()
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	fd := int(os.Stdin.Fd())
	width, height := 80, 24
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("set raw terminal: %w", err)
		}
		defer term.Restore(fd, oldState)

		if w, h, err := term.GetSize(fd); err == nil {
			width, height = w, h
		}
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := session.RequestPty("xterm-256color", height, width, modes); err != nil {
		return fmt.Errorf("request pty: %w", err)
	}

	session.Stdin = os.Stdin
	session.Stdout = os.Stdout
	session.Stderr = os.Stderr

	if err := session.Shell(); err != nil {
		return fmt.Errorf("start shell: %w", err)
	}

	if err := session.Wait(); err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			// User-typed exit with non-zero status is a normal session end.
			return nil
		}
		return fmt.Errorf("shell session: %w", err)
	}
	return nil
}
