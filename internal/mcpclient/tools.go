package mcpclient

import (
	"context"
	"encoding/json"

	"github.com/contextkeeper/mcpprobe/internal/models"
)

// ListTools 获取服务端工具列表并缓存，只能在Ready状态调用
func (c *Client) ListTools(ctx context.Context) ([]models.ToolDescriptor, error) {
	if err := c.requireReady("tools/list"); err != nil {
		return nil, err
	}

	resp, err := c.session.Call(ctx, "tools/list", nil)
	if err != nil {
		return nil, err
	}

	var result models.ListToolsResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, &ProtocolError{Reason: "invalid tools/list result", Err: err}
	}

	c.mu.Lock()
	c.tools = result.Tools
	c.mu.Unlock()
	return c.Tools(), nil
}

// Tools 返回最近一次ListTools的结果副本
func (c *Client) Tools() []models.ToolDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.ToolDescriptor, len(c.tools))
	copy(out, c.tools)
	return out
}

// CallTool 调用工具。不做客户端schema校验，未知工具名原样发送，由服务端以RPCError拒绝。
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}) (*models.ToolCallResult, error) {
	if err := c.requireReady("tools/call"); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	resp, err := c.session.Call(ctx, "tools/call", map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		return nil, err
	}

	var result models.ToolCallResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, &ProtocolError{Reason: "invalid tools/call result", Err: err}
	}
	return &result, nil
}
