package toolhost

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
)

// fakeHost replies to each request line from canned responses, in order.
type fakeHost struct {
	requests  []string
	responses []string
}

// run wires the fake host to a client over in-memory pipes.
func (h *fakeHost) run(t *testing.T) (*Client, func()) {
	clientReader, hostWriter := io.Pipe()
	hostReader, clientWriter := io.Pipe()

	go func() {
		scanner := bufio.NewScanner(hostReader)
		for i := 0; scanner.Scan(); i++ {
			h.requests = append(h.requests, scanner.Text())
			if i >= len(h.responses) {
				break
			}
			if _, err := io.WriteString(hostWriter, h.responses[i]+"\n"); err != nil {
				return
			}
		}
		hostWriter.Close()
	}()

	client := newClient(clientWriter, clientReader)
	return client, func() {
		clientWriter.Close()
		clientReader.Close()
	}
}

func TestClientListTools(t *testing.T) {
	host := &fakeHost{
		responses: []string{
			`{"tools":[{"name":"get_knowledge_base","description":"Retrieve the company knowledge base"},{"name":"add","description":"Add two numbers"}]}`,
		},
	}
	client, cleanup := host.run(t)
	defer cleanup()

	tools, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools() error: %v", err)
	}
	if len(tools) != 2 {
		t.Fatalf("ListTools() returned %d tools, want 2", len(tools))
	}
	if tools[0].Name != "get_knowledge_base" {
		t.Errorf("tools[0].Name = %q", tools[0].Name)
	}

	var req ListToolsRequest
	if err := json.Unmarshal([]byte(host.requests[0]), &req); err != nil {
		t.Fatalf("request was not valid JSON: %v", err)
	}
	if req.Method != MethodListTools {
		t.Errorf("request method = %q, want %q", req.Method, MethodListTools)
	}
}

func TestClientCallTool(t *testing.T) {
	host := &fakeHost{
		responses: []string{
			`{"result":"Hello, Ana! Nice to meet you."}`,
		},
	}
	client, cleanup := host.run(t)
	defer cleanup()

	result, err := client.CallTool(context.Background(), "say_hello", map[string]any{"name": "Ana"})
	if err != nil {
		t.Fatalf("CallTool() error: %v", err)
	}
	if result.Tool != "say_hello" {
		t.Errorf("result.Tool = %q, want say_hello", result.Tool)
	}
	if result.Text != "Hello, Ana! Nice to meet you." {
		t.Errorf("result.Text = %q", result.Text)
	}

	var req CallToolRequest
	if err := json.Unmarshal([]byte(host.requests[0]), &req); err != nil {
		t.Fatalf("request was not valid JSON: %v", err)
	}
	if req.Method != MethodCallTool || req.Name != "say_hello" {
		t.Errorf("request = %+v", req)
	}
	if req.Args["name"] != "Ana" {
		t.Errorf("request args = %v", req.Args)
	}
}

func TestClientCallTool_HostError(t *testing.T) {
	host := &fakeHost{
		responses: []string{
			`{"result":"","error":"unknown tool: frobnicate"}`,
		},
	}
	client, cleanup := host.run(t)
	defer cleanup()

	_, err := client.CallTool(context.Background(), "frobnicate", nil)
	if err == nil {
		t.Fatal("CallTool() should surface host errors")
	}
	if !strings.Contains(err.Error(), "unknown tool") {
		t.Errorf("CallTool() error = %v, want host message", err)
	}
}

func TestClientCallTool_CancelledContext(t *testing.T) {
	client := newClient(&bytes.Buffer{}, strings.NewReader(""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.CallTool(ctx, "add", nil); err == nil {
		t.Error("CallTool() should fail on a cancelled context")
	}
}

func TestClientCallTool_ClosedHost(t *testing.T) {
	client := newClient(&bytes.Buffer{}, strings.NewReader(""))

	_, err := client.CallTool(context.Background(), "add", map[string]any{"a": 1, "b": 2})
	if err == nil {
		t.Error("CallTool() should fail when the host closes stdout")
	}
}

func TestDecodeCallResult_Malformed(t *testing.T) {
	if _, err := decodeCallResult("add", []byte("not json")); err == nil {
		t.Error("decodeCallResult() should reject malformed payloads")
	}
}
