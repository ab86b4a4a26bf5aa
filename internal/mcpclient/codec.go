package mcpclient

import (
	"encoding/json"
	"strings"

	"github.com/contextkeeper/mcpprobe/internal/models"
)

// dataPrefix 单事件SSE响应中承载JSON-RPC消息的行前缀
const dataPrefix = "data: "

// Encode 将请求序列化为紧凑JSON，不加额外分帧
func Encode(req *models.RPCRequest) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &ProtocolError{Reason: "encode request", Err: err}
	}
	return payload, nil
}

// DecodeSSE 解析单事件SSE响应体。
// 只使用第一条以"data: "开头的行，不是通用的SSE流解析器。
func DecodeSSE(body string) (*models.RPCResponse, error) {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
		var resp models.RPCResponse
		if err := json.Unmarshal([]byte(payload), &resp); err != nil {
			return nil, &ProtocolError{Reason: "invalid JSON in data line", Err: err}
		}
		if err := resp.Validate(); err != nil {
			return nil, &ProtocolError{Reason: "malformed response", Err: err}
		}
		return &resp, nil
	}
	return nil, &ProtocolError{Reason: "no data line in SSE body"}
}
