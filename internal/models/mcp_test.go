package models

import (
	"encoding/json"
	"testing"
)

func TestPrimaryText(t *testing.T) {
	tests := []struct {
		name   string
		result *ToolCallResult
		want   string
	}{
		{"nil result", nil, NoContent},
		{"empty content", &ToolCallResult{Content: []ContentItem{}}, NoContent},
		{"first item", &ToolCallResult{Content: []ContentItem{{Type: "text", Text: "hi"}, {Type: "text", Text: "bye"}}}, "hi"},
		{"non-text item", &ToolCallResult{Content: []ContentItem{{Type: "image"}}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.PrimaryText(); got != tt.want {
				t.Errorf("PrimaryText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeText(t *testing.T) {
	result := &ToolCallResult{Content: []ContentItem{{Type: "text", Text: `[{"id":1,"item":"Buy groceries"}]`}}}
	var todos []struct {
		ID   int    `json:"id"`
		Item string `json:"item"`
	}
	if err := result.DecodeText(&todos); err != nil {
		t.Fatalf("DecodeText failed: %v", err)
	}
	if len(todos) != 1 || todos[0].Item != "Buy groceries" {
		t.Errorf("Unexpected todos %+v", todos)
	}

	empty := &ToolCallResult{}
	if err := empty.DecodeText(&todos); err == nil {
		t.Error("Expected error for empty content")
	}
}

func TestToolParameters(t *testing.T) {
	var tool ToolDescriptor
	raw := `{
		"name": "create_todo",
		"inputSchema": {
			"type": "object",
			"properties": {
				"todo": {"type": "object", "description": "the todo"},
				"priority": {"description": "optional"}
			},
			"required": ["todo"]
		}
	}`
	if err := json.Unmarshal([]byte(raw), &tool); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	params := tool.Parameters()
	if len(params) != 2 {
		t.Fatalf("Expected 2 parameters, got %d", len(params))
	}
	if params[0].Name != "priority" || params[0].Type != "unknown" || params[0].Required {
		t.Errorf("Unexpected first parameter %+v", params[0])
	}
	if params[1].Name != "todo" || params[1].Type != "object" || !params[1].Required || params[1].Description != "the todo" {
		t.Errorf("Unexpected second parameter %+v", params[1])
	}

	if (ToolDescriptor{Name: "get_todos"}).Parameters() != nil {
		t.Error("Expected no parameters without a schema")
	}
}

func TestFindTool(t *testing.T) {
	tools := []ToolDescriptor{{Name: "echo"}, {Name: "add_two"}}
	if tool, ok := FindTool(tools, "add_two"); !ok || tool.Name != "add_two" {
		t.Errorf("FindTool(add_two) = %+v, %v", tool, ok)
	}
	if _, ok := FindTool(tools, "get_todos"); ok {
		t.Error("Expected get_todos to be missing")
	}
}

func TestResponseMatchesID(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"", true},
		{"null", true},
		{"7", true},
		{`"7"`, true},
		{"8", false},
		{`"abc"`, false},
	}
	for _, tt := range tests {
		resp := &RPCResponse{ID: json.RawMessage(tt.raw)}
		if got := resp.MatchesID(7); got != tt.want {
			t.Errorf("MatchesID(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestResponseValidate(t *testing.T) {
	ok := &RPCResponse{Result: json.RawMessage(`{}`)}
	if err := ok.Validate(); err != nil {
		t.Errorf("Expected valid response, got %v", err)
	}
	both := &RPCResponse{Result: json.RawMessage(`{}`), Error: &RPCErrorObject{Code: 1}}
	if err := both.Validate(); err == nil {
		t.Error("Expected error for result and error together")
	}
	if err := (&RPCResponse{}).Validate(); err == nil {
		t.Error("Expected error for empty response")
	}
}
