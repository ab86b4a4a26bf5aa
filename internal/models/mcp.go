package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// MCP协议相关的数据结构定义

// ProtocolVersion 客户端在initialize中声明的协议版本
const ProtocolVersion = "2024-11-05"

// NoContent 工具结果没有内容时PrimaryText返回的哨兵值
const NoContent = ""

// RPCRequest 表示JSON-RPC 2.0请求
type RPCRequest struct {
	JSONRPC string                 `json:"jsonrpc"`
	ID      interface{}            `json:"id"`
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params"`
}

// NewRPCRequest 创建请求，params为nil时发送空对象
func NewRPCRequest(id interface{}, method string, params map[string]interface{}) *RPCRequest {
	if params == nil {
		params = map[string]interface{}{}
	}
	return &RPCRequest{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      id,
		Method:  method,
		Params:  params,
	}
}

// RPCResponse JSON-RPC响应，result与error有且只有一个
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCErrorObject `json:"error,omitempty"`
}

// RPCErrorObject 响应中的error对象
type RPCErrorObject struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// HasResult 响应是否携带result字段
func (r *RPCResponse) HasResult() bool {
	return len(r.Result) > 0
}

// Validate 检查result/error互斥
func (r *RPCResponse) Validate() error {
	switch {
	case r.HasResult() && r.Error != nil:
		return fmt.Errorf("response carries both result and error")
	case !r.HasResult() && r.Error == nil:
		return fmt.Errorf("response carries neither result nor error")
	}
	return nil
}

// MatchesID 判断响应id是否与请求id一致。服务端省略id时视为匹配。
func (r *RPCResponse) MatchesID(id int64) bool {
	raw := strings.TrimSpace(string(r.ID))
	if raw == "" || raw == "null" {
		return true
	}
	want := strconv.FormatInt(id, 10)
	return raw == want || raw == strconv.Quote(want)
}

// InitializeResult initialize方法的结果
type InitializeResult struct {
	ProtocolVersion string                 `json:"protocolVersion,omitempty"`
	Capabilities    map[string]interface{} `json:"capabilities,omitempty"`
	ServerInfo      *mcp.Implementation    `json:"serverInfo,omitempty"`
	Instructions    string                 `json:"instructions,omitempty"`
}

// ListToolsResult tools/list方法的结果
type ListToolsResult struct {
	Tools []ToolDescriptor `json:"tools"`
}

// ToolDescriptor 服务端声明的工具
type ToolDescriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolParameter inputSchema.properties中的单个参数摘要
type ToolParameter struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Parameters 按名称排序返回inputSchema中声明的参数
func (t ToolDescriptor) Parameters() []ToolParameter {
	props, _ := t.InputSchema["properties"].(map[string]interface{})
	if len(props) == 0 {
		return nil
	}

	required := map[string]bool{}
	if list, ok := t.InputSchema["required"].([]interface{}); ok {
		for _, item := range list {
			if name, ok := item.(string); ok {
				required[name] = true
			}
		}
	}

	params := make([]ToolParameter, 0, len(props))
	for name, raw := range props {
		param := ToolParameter{Name: name, Type: "unknown", Required: required[name]}
		if schema, ok := raw.(map[string]interface{}); ok {
			if typ, ok := schema["type"].(string); ok && typ != "" {
				param.Type = typ
			}
			param.Description, _ = schema["description"].(string)
		}
		params = append(params, param)
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
	return params
}

// FindTool 按名称查找工具
func FindTool(tools []ToolDescriptor, name string) (ToolDescriptor, bool) {
	for _, tool := range tools {
		if tool.Name == name {
			return tool, true
		}
	}
	return ToolDescriptor{}, false
}

// ToolCallResult 工具调用结果
type ToolCallResult struct {
	Content []ContentItem `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ContentItem 内容块
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// HasContent 结果是否包含内容
func (r *ToolCallResult) HasContent() bool {
	return r != nil && len(r.Content) > 0
}

// PrimaryText 返回content[0].text，没有内容时返回NoContent
func (r *ToolCallResult) PrimaryText() string {
	if !r.HasContent() {
		return NoContent
	}
	return r.Content[0].Text
}

// DecodeText 将主文本按JSON解码到v
func (r *ToolCallResult) DecodeText(v interface{}) error {
	text := r.PrimaryText()
	if text == NoContent {
		return fmt.Errorf("tool result has no text content")
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("decode tool text failed: %w", err)
	}
	return nil
}
