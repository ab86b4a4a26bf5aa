package mcpclient

import (
	"encoding/json"
	"fmt"
)

// TransportError HTTP层失败：非2xx状态、连接失败、超时
type TransportError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("http transport error: %s", e.Status)
	}
	return fmt.Sprintf("http transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError 响应体不符合单事件SSE + JSON-RPC约定
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Reason, e.Err)
	}
	return "protocol error: " + e.Reason
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// RPCError 服务端返回的JSON-RPC error对象
type RPCError struct {
	Code    int
	Message string
	Data    json.RawMessage
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// SequenceError 在不允许的状态下调用了操作，不会发起网络请求
type SequenceError struct {
	Op    string
	State State
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Op, e.State)
}
