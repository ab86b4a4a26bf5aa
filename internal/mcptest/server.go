// Package mcptest 提供测试用的进程内MCP端点，每个响应都包装为单个SSE事件。
package mcptest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/contextkeeper/mcpprobe/internal/models"
)

// EndpointPath 测试服务器上的MCP端点路径
const EndpointPath = "/mcp/"

// ToolHandler 工具实现
type ToolHandler func(args map[string]interface{}) (*mcp.CallToolResult, error)

// Request 服务器收到的一次请求
type Request struct {
	ID      json.RawMessage
	Method  string
	Params  map[string]interface{}
	Headers http.Header
}

type toolEntry struct {
	tool    mcp.Tool
	handler ToolHandler
}

type incoming struct {
	JSONRPC string                 `json:"jsonrpc"`
	ID      json.RawMessage        `json:"id"`
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params"`
}

// Server 基于gin的测试MCP服务器
type Server struct {
	*httptest.Server

	info mcp.Implementation

	mu       sync.Mutex
	tools    []toolEntry
	requests []Request
	status   int
	rawBody  string
	failures map[string]*models.RPCErrorObject
}

// NewServer 启动测试服务器，使用完毕后调用Close
func NewServer(name, version string) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		info:     mcp.Implementation{Name: name, Version: version},
		failures: map[string]*models.RPCErrorObject{},
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.POST("/*path", s.handle)
	s.Server = httptest.NewServer(router)
	return s
}

// Endpoint MCP端点完整URL
func (s *Server) Endpoint() string {
	return s.Server.URL + EndpointPath
}

// AddTool 注册工具
func (s *Server) AddTool(tool mcp.Tool, handler ToolHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools = append(s.tools, toolEntry{tool: tool, handler: handler})
}

// SetStatus 让后续所有请求返回指定HTTP状态码
func (s *Server) SetStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
}

// SetRawBody 让后续所有请求原样返回body
func (s *Server) SetRawBody(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawBody = body
}

// FailMethod 让指定方法返回JSON-RPC错误
func (s *Server) FailMethod(method string, code int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = &models.RPCErrorObject{Code: code, Message: message}
}

// Requests 已收到的请求副本
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) handle(c *gin.Context) {
	var req incoming
	if err := c.ShouldBindJSON(&req); err != nil {
		writeEvent(c, &models.RPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			Error:   &models.RPCErrorObject{Code: mcp.PARSE_ERROR, Message: "Parse error: " + err.Error()},
		})
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		ID:      req.ID,
		Method:  req.Method,
		Params:  req.Params,
		Headers: c.Request.Header.Clone(),
	})
	status, rawBody, failure := s.status, s.rawBody, s.failures[req.Method]
	s.mu.Unlock()

	if status != 0 {
		c.String(status, http.StatusText(status))
		return
	}
	if rawBody != "" {
		c.Header("Content-Type", "text/event-stream")
		c.String(http.StatusOK, "%s", rawBody)
		return
	}

	resp := &models.RPCResponse{JSONRPC: mcp.JSONRPC_VERSION, ID: req.ID}
	if failure != nil {
		resp.Error = failure
		writeEvent(c, resp)
		return
	}

	result, rpcErr := s.dispatch(req)
	if rpcErr != nil {
		resp.Error = rpcErr
	} else {
		encoded, err := json.Marshal(result)
		if err != nil {
			resp.Error = &models.RPCErrorObject{Code: mcp.INTERNAL_ERROR, Message: err.Error()}
		} else {
			resp.Result = encoded
		}
	}
	writeEvent(c, resp)
}

func (s *Server) dispatch(req incoming) (interface{}, *models.RPCErrorObject) {
	switch req.Method {
	case "initialize":
		return map[string]interface{}{
			"protocolVersion": models.ProtocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{"listChanged": false},
			},
			"serverInfo": s.info,
		}, nil
	case "tools/list":
		s.mu.Lock()
		tools := make([]mcp.Tool, 0, len(s.tools))
		for _, entry := range s.tools {
			tools = append(tools, entry.tool)
		}
		s.mu.Unlock()
		return map[string]interface{}{"tools": tools}, nil
	case "tools/call":
		return s.callTool(req.Params)
	default:
		return nil, &models.RPCErrorObject{Code: mcp.METHOD_NOT_FOUND, Message: "Method not found"}
	}
}

func (s *Server) callTool(params map[string]interface{}) (interface{}, *models.RPCErrorObject) {
	name, _ := params["name"].(string)
	args, _ := params["arguments"].(map[string]interface{})

	s.mu.Lock()
	var handler ToolHandler
	for _, entry := range s.tools {
		if entry.tool.Name == name {
			handler = entry.handler
			break
		}
	}
	s.mu.Unlock()

	if handler == nil {
		return nil, &models.RPCErrorObject{Code: mcp.INVALID_PARAMS, Message: fmt.Sprintf("Unknown tool: %s", name)}
	}
	result, err := handler(args)
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(err.Error())},
			IsError: true,
		}, nil
	}
	return result, nil
}

func writeEvent(c *gin.Context, resp *models.RPCResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.String(http.StatusOK, "event: message\ndata: %s\n\n", payload)
}
