package toolhost

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Client speaks the JSON-line protocol with a tool host. One request line out,
// one response line back, serialized under a mutex so concurrent callers do
// not interleave on the pipe.
type Client struct {
	mu      sync.Mutex
	enc     *json.Encoder
	scanner *bufio.Scanner
	process *Process // nil when attached to raw streams
}

// NewClient attaches a client to a managed tool-host process.
func NewClient(p *Process) *Client {
	c := newClient(p.Stdin(), p.Stdout())
	c.process = p
	return c
}

// newClient attaches to arbitrary streams. Split out so tests can drive the
// protocol over in-memory pipes.
func newClient(w io.Writer, r io.Reader) *Client {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Client{
		enc:     json.NewEncoder(w),
		scanner: scanner,
	}
}

// roundTrip sends one request and reads one line of response.
func (c *Client) roundTrip(ctx context.Context, req any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.enc.Encode(req); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if c.scanner.Scan() {
		return c.scanner.Bytes(), nil
	}
	if err := c.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return nil, fmt.Errorf("tool host closed its stdout")
}

// ListTools fetches the host's tool catalog.
func (c *Client) ListTools(ctx context.Context) ([]ToolSpec, error) {
	raw, err := c.roundTrip(ctx, ListToolsRequest{Method: MethodListTools})
	if err != nil {
		return nil, err
	}

	var resp ListToolsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("malformed list_tools response: %w", err)
	}
	return resp.Tools, nil
}

// CallTool invokes a named tool with the given arguments and returns its
// decoded result.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (CallResult, error) {
	raw, err := c.roundTrip(ctx, CallToolRequest{Method: MethodCallTool, Name: name, Args: args})
	if err != nil {
		return CallResult{}, err
	}
	return decodeCallResult(name, raw)
}

// Close releases the underlying host process, if any.
func (c *Client) Close() error {
	if c.process == nil {
		return nil
	}
	return c.process.Stop()
}
