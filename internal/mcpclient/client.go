package mcpclient

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/contextkeeper/mcpprobe/internal/models"
)

// State 握手状态
type State int

const (
	StateUnconnected State = iota
	StateInitializing
	StateReady
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Client 在Session之上执行initialize握手，并只在Ready状态下放行工具调用
type Client struct {
	session         *Session
	clientInfo      mcp.Implementation
	protocolVersion string

	mu         sync.RWMutex
	state      State
	initResult *models.InitializeResult
	tools      []models.ToolDescriptor
}

// ClientOption 客户端选项
type ClientOption func(*Client)

// WithProtocolVersion 覆盖initialize中声明的协议版本
func WithProtocolVersion(version string) ClientOption {
	return func(c *Client) {
		if version != "" {
			c.protocolVersion = version
		}
	}
}

// NewClient 创建处于Unconnected状态的客户端
func NewClient(session *Session, clientInfo mcp.Implementation, opts ...ClientOption) *Client {
	c := &Client{
		session:         session,
		clientInfo:      clientInfo,
		protocolVersion: models.ProtocolVersion,
		state:           StateUnconnected,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session 底层会话
func (c *Client) Session() *Session {
	return c.session
}

// State 当前握手状态
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// ServerInfo 握手成功后服务端声明的名称和版本
func (c *Client) ServerInfo() (mcp.Implementation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.initResult == nil || c.initResult.ServerInfo == nil {
		return mcp.Implementation{}, false
	}
	return *c.initResult.ServerInfo, true
}

// Initialize 执行握手：Unconnected -> Initializing -> Ready | Failed。
// Failed是终态，不会自动重连。
func (c *Client) Initialize(ctx context.Context) (*models.InitializeResult, error) {
	c.mu.Lock()
	if c.state != StateUnconnected {
		state := c.state
		c.mu.Unlock()
		return nil, &SequenceError{Op: "initialize", State: state}
	}
	c.state = StateInitializing
	c.mu.Unlock()

	params := map[string]interface{}{
		"protocolVersion": c.protocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"clientInfo": map[string]interface{}{
			"name":    c.clientInfo.Name,
			"version": c.clientInfo.Version,
		},
	}

	result, err := c.initialize(ctx, params)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInitializing {
		// Close在握手期间被调用
		return nil, &SequenceError{Op: "initialize", State: c.state}
	}
	if err != nil {
		c.state = StateFailed
		return nil, err
	}
	c.state = StateReady
	c.initResult = result
	return result, nil
}

func (c *Client) initialize(ctx context.Context, params map[string]interface{}) (*models.InitializeResult, error) {
	resp, err := c.session.Call(ctx, "initialize", params)
	if err != nil {
		return nil, err
	}

	var result models.InitializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, &ProtocolError{Reason: "invalid initialize result", Err: err}
	}
	if result.ServerInfo == nil || result.ServerInfo.Name == "" || result.ServerInfo.Version == "" {
		return nil, &ProtocolError{Reason: "initialize result missing serverInfo"}
	}
	return &result, nil
}

// requireReady 非Ready状态下快速失败，不发起网络请求
func (c *Client) requireReady(op string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != StateReady {
		return &SequenceError{Op: op, State: c.state}
	}
	return nil
}

// Close 断开会话
func (c *Client) Close() error {
	c.mu.Lock()
	c.state = StateClosed
	c.mu.Unlock()
	return c.session.Close()
}
