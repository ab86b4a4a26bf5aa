package mcptest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
)

// RegisterEcho 注册echo工具，原样返回message
func RegisterEcho(s *Server) {
	tool := mcp.NewTool("echo",
		mcp.WithDescription("Echo a message back"),
		mcp.WithString("message", mcp.Required(), mcp.Description("message to echo")),
	)
	s.AddTool(tool, func(args map[string]interface{}) (*mcp.CallToolResult, error) {
		message, ok := args["message"].(string)
		if !ok {
			return nil, fmt.Errorf("message must be a string")
		}
		return mcp.NewToolResultText(message), nil
	})
}

// RegisterAddTwo 注册add_two工具，返回n+2
func RegisterAddTwo(s *Server) {
	tool := mcp.NewTool("add_two",
		mcp.WithDescription("Add two to a number"),
		mcp.WithNumber("n", mcp.Required(), mcp.Description("number to add two to")),
	)
	s.AddTool(tool, func(args map[string]interface{}) (*mcp.CallToolResult, error) {
		n, ok := args["n"].(float64)
		if !ok {
			return nil, fmt.Errorf("n must be a number")
		}
		return mcp.NewToolResultText(strconv.FormatFloat(n+2, 'f', -1, 64)), nil
	})
}

// Todo 待办事项
type Todo struct {
	ID   int    `json:"id"`
	Item string `json:"item"`
}

// RegisterTodos 注册get_todos和create_todo，状态保存在内存中。
// 列表为空时get_todos返回空content。
func RegisterTodos(s *Server) {
	var (
		mu    sync.Mutex
		todos []Todo
	)

	s.AddTool(mcp.NewTool("get_todos", mcp.WithDescription("A get_todos tool")),
		func(map[string]interface{}) (*mcp.CallToolResult, error) {
			mu.Lock()
			defer mu.Unlock()
			if len(todos) == 0 {
				return &mcp.CallToolResult{Content: []mcp.Content{}}, nil
			}
			encoded, err := json.Marshal(todos)
			if err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(string(encoded)), nil
		})

	s.AddTool(mcp.NewTool("create_todo",
		mcp.WithDescription("A create_todos tool"),
		mcp.WithObject("todo", mcp.Required(), mcp.Description("todo with id and item")),
	), func(args map[string]interface{}) (*mcp.CallToolResult, error) {
		raw, err := json.Marshal(args["todo"])
		if err != nil {
			return nil, err
		}
		var todo Todo
		if err := json.Unmarshal(raw, &todo); err != nil || todo.Item == "" {
			return nil, fmt.Errorf("todo must have id and item")
		}
		mu.Lock()
		todos = append(todos, todo)
		mu.Unlock()
		return mcp.NewToolResultText(`{"message":"Todo was added"}`), nil
	})
}
