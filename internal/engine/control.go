package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
)

const maxControlPayload = 8 * 1024

// controlMessage is the wire format of one control datagram.
type controlMessage struct {
	Command string `json:"command"`
}

// DefaultControlSocketPath returns the per-user control socket location.
func DefaultControlSocketPath() string {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return filepath.Join(runtimeDir, "cursor-automator", "control.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("cursor-automator-%d", os.Getuid()), "control.sock")
}

// ControlSocket receives operator commands as JSON datagrams on a unix
// socket, so scripts can drive a running session without its terminal.
// Responses are not sent back; command effects land in the log.
type ControlSocket struct {
	engine *Engine
	path   string

	mu     sync.Mutex
	conn   *net.UnixConn
	closed bool
}

// NewControlSocket creates a control socket for the engine at path.
func NewControlSocket(engine *Engine, path string) *ControlSocket {
	return &ControlSocket{engine: engine, path: path}
}

// SocketPath returns the socket location.
func (c *ControlSocket) SocketPath() string {
	return c.path
}

// Start binds the socket and reads datagrams until the context ends.
// The socket directory and file are restricted to the owning user.
func (c *ControlSocket) Start(ctx context.Context) error {
	if c.engine == nil {
		return fmt.Errorf("engine is required")
	}
	if c.path == "" {
		return fmt.Errorf("socket path is required")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("create socket dir: %w", err)
	}
	if err := os.Chmod(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("chmod socket dir: %w", err)
	}
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	addr, err := net.ResolveUnixAddr("unixgram", c.path)
	if err != nil {
		return fmt.Errorf("resolve unix addr: %w", err)
	}
	conn, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		return fmt.Errorf("listen unixgram: %w", err)
	}
	if err := os.Chmod(c.path, 0o600); err != nil {
		_ = conn.Close()
		return fmt.Errorf("chmod socket: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.closed = false
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.close()
	}()

	go c.readLoop()

	return nil
}

func (c *ControlSocket) readLoop() {
	buf := make([]byte, maxControlPayload)
	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return
		}

		n, _, err := conn.ReadFromUnix(buf)
		if err != nil {
			if c.isClosed() {
				return
			}
			continue
		}

		if n <= 0 || n >= maxControlPayload {
			continue
		}

		var msg controlMessage
		if err := json.Unmarshal(buf[:n], &msg); err != nil {
			continue
		}
		if msg.Command == "" {
			continue
		}

		response, stop := c.engine.Execute(msg.Command)
		if response != "" {
			c.engine.Log.Info("control command", "command", msg.Command, "response", firstLine(response))
		}
		if stop {
			return
		}
	}
}

func (c *ControlSocket) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *ControlSocket) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	_ = os.Remove(c.path)
}

// firstLine truncates a multi-line response for single-line logging.
func firstLine(s string) string {
	for i := range s {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
