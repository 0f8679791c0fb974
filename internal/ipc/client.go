package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"
)

// Client holds one unix-socket connection to the daemon. The server keeps
// the connection open across requests, so a client driving several commands
// (key-down, key-up, transcribe) can reuse it.
type Client struct {
	conn    net.Conn
	enc     *json.Encoder
	reader  *bufio.Reader
	timeout time.Duration
}

// Dial connects to the daemon socket at path.
func Dial(ctx context.Context, path string, timeout time.Duration) (*Client, error) {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn:    conn,
		enc:     json.NewEncoder(conn),
		reader:  bufio.NewReader(conn),
		timeout: timeout,
	}, nil
}

// Do performs one request/response roundtrip with a per-call deadline.
func (c *Client) Do(req Request) (Response, error) {
	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return Response{}, fmt.Errorf("set deadline: %w", err)
	}

	if err := c.enc.Encode(req); err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}

	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Send performs a single-command roundtrip on a fresh connection.
func Send(ctx context.Context, path string, req Request, timeout time.Duration) (Response, error) {
	client, err := Dial(ctx, path, timeout)
	if err != nil {
		return Response{}, err
	}
	defer client.Close()
	return client.Do(req)
}

// Probe checks whether a responsive owner is currently listening on path.
func Probe(ctx context.Context, path string, timeout time.Duration) (bool, error) {
	_, err := Send(ctx, path, Request{Command: "status"}, timeout)
	if err == nil {
		return true, nil
	}
	if isSocketMissing(err) || isConnectionRefused(err) {
		return false, nil
	}
	return false, fmt.Errorf("probe socket: %w", err)
}

// isSocketMissing reports absent-socket failures.
func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist)
}

// isConnectionRefused reports no-listener failures.
func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
