// Package memtools provides the MCP tool handlers for design capture and
// the design-memory archive.
//
// Every handler follows the same shape:
//   - a struct holding its dependency (session.Manager or memory.Store),
//     injected via constructor
//   - Definition() returns the mcp.Tool schema
//   - Handle() processes the request
//
// User faults come back as tool errors, never as Go errors.
package memtools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// rawJSONArg returns an argument as JSON bytes. Objects are re-encoded;
// strings are taken to already hold JSON.
func rawJSONArg(req mcp.CallToolRequest, key string) ([]byte, error) {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("'%s' is required", key)
	}
	if s, ok := v.(string); ok {
		if s == "" {
			return nil, fmt.Errorf("'%s' is required", key)
		}
		return []byte(s), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", key, err)
	}
	return data, nil
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}
