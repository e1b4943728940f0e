// kbhost is a demo tool host for askdesk. It answers the line-delimited JSON
// protocol on stdin/stdout with three tools: get_knowledge_base, say_hello,
// and add. Point askdesk at a different knowledge base with -kb.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/nmoreau/askdesk/internal/toolhost"
)

const defaultKB = `Q1: What is the company vacation policy?
A1: Employees receive 15 days of paid vacation per year, accrued monthly. Unused days roll over up to a maximum of 5 days into the next year.

Q2: How do I request a software license?
A2: Submit a license request through the IT portal. Requests under $500 are approved automatically; larger requests need manager sign-off.

Q3: What is the remote work policy?
A3: Employees may work remotely up to 3 days per week with manager approval. Fully remote arrangements require VP approval.

Q4: How do I submit an expense report?
A4: Submit expense reports through the finance portal within 30 days of the expense. Attach receipts for anything over $25.

Q5: Who do I contact about a security incident?
A5: Email security@company.example immediately and do not power off the affected machine. The on-call security engineer will respond within 15 minutes.`

func main() {
	kbPath := flag.String("kb", "", "path to a knowledge base text file (uses the built-in demo KB when empty)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	kbText := defaultKB
	if *kbPath != "" {
		data, err := os.ReadFile(*kbPath)
		if err != nil {
			logger.Error("failed to read knowledge base", "path", *kbPath, "error", err)
			os.Exit(1)
		}
		kbText = string(data)
	}

	host := &host{kb: kbText, logger: logger}
	if err := host.serve(os.Stdin, os.Stdout); err != nil {
		logger.Error("host stopped", "error", err)
		os.Exit(1)
	}
}

type host struct {
	kb     string
	logger *slog.Logger
}

// serve answers one JSON request per input line until EOF.
func (h *host) serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req toolhost.CallToolRequest
		if err := json.Unmarshal(line, &req); err != nil {
			if err := enc.Encode(toolhost.CallToolResponse{Error: "malformed request"}); err != nil {
				return err
			}
			continue
		}

		var resp any
		switch req.Method {
		case toolhost.MethodListTools:
			resp = toolhost.ListToolsResponse{Tools: h.tools()}
		case toolhost.MethodCallTool:
			resp = h.call(req.Name, req.Args)
		default:
			resp = toolhost.CallToolResponse{Error: "unknown method: " + req.Method}
		}

		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (h *host) tools() []toolhost.ToolSpec {
	return []toolhost.ToolSpec{
		{
			Name:        "get_knowledge_base",
			Description: "Retrieve the entire company knowledge base as text",
		},
		{
			Name:        "say_hello",
			Description: "Say hello to someone by name",
			InputSchema: &toolhost.ToolInput{
				Type: "object",
				Properties: map[string]toolhost.ToolProperty{
					"name": {Type: "string", Description: "The person's name to greet"},
				},
				Required: []string{"name"},
			},
		},
		{
			Name:        "add",
			Description: "Add two numbers together",
			InputSchema: &toolhost.ToolInput{
				Type: "object",
				Properties: map[string]toolhost.ToolProperty{
					"a": {Type: "number", Description: "First number"},
					"b": {Type: "number", Description: "Second number"},
				},
				Required: []string{"a", "b"},
			},
		},
	}
}

func (h *host) call(name string, args map[string]any) toolhost.CallToolResponse {
	h.logger.Info("tool call", "tool", name)

	switch name {
	case "get_knowledge_base":
		return toolhost.CallToolResponse{Result: h.kb}
	case "say_hello":
		who, _ := args["name"].(string)
		if who == "" {
			return toolhost.CallToolResponse{Error: "name is required"}
		}
		return toolhost.CallToolResponse{Result: "Hello, " + who + "! Nice to meet you."}
	case "add":
		a, okA := toFloat(args["a"])
		b, okB := toFloat(args["b"])
		if !okA || !okB {
			return toolhost.CallToolResponse{Error: "a and b must be numbers"}
		}
		return toolhost.CallToolResponse{Result: formatNumber(a + b)}
	default:
		return toolhost.CallToolResponse{Error: "unknown tool: " + name}
	}
}

// toFloat accepts the numeric shapes JSON decoding can produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// formatNumber prints integers without a decimal point.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprintf("%g", f)
}
